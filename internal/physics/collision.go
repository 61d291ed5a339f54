package physics

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB осевой ограничивающий параллелепипед
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// NewAABB создаёт коробку по центру и полуразмерам
func NewAABB(center, extent mgl64.Vec3) AABB {
	return AABB{Min: center.Sub(extent), Max: center.Add(extent)}
}

// OrientedAABB возвращает осевую коробку, описанную вокруг повёрнутой коробки
func OrientedAABB(center mgl64.Vec3, rotation mgl64.Quat, extent mgl64.Vec3) AABB {
	lo := mgl64.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mgl64.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}

	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				corner := rotation.Rotate(mgl64.Vec3{sx * extent[0], sy * extent[1], sz * extent[2]})
				for i := 0; i < 3; i++ {
					lo[i] = math.Min(lo[i], corner[i])
					hi[i] = math.Max(hi[i], corner[i])
				}
			}
		}
	}

	return AABB{Min: center.Add(lo), Max: center.Add(hi)}
}

// Intersects проверяет строгое пересечение (касание гранями не считается)
func (a AABB) Intersects(b AABB) bool {
	for i := 0; i < 3; i++ {
		if a.Max[i] <= b.Min[i] || b.Max[i] <= a.Min[i] {
			return false
		}
	}
	return true
}

// Contains проверяет, находится ли точка внутри коробки
func (a AABB) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < a.Min[i] || p[i] > a.Max[i] {
			return false
		}
	}
	return true
}

// BoxCollider коллайдер размещённой структуры
type BoxCollider struct {
	ID  string
	Box AABB
}

// World набор коллайдеров, по которому выполняются запросы занятости
type World struct {
	mu        sync.RWMutex
	colliders map[string]BoxCollider
}

// NewWorld создаёт пустой мир коллизий
func NewWorld() *World {
	return &World{colliders: make(map[string]BoxCollider)}
}

// Add регистрирует коллайдер (повторный id заменяет старый)
func (w *World) Add(c BoxCollider) {
	w.mu.Lock()
	w.colliders[c.ID] = c
	w.mu.Unlock()
}

// Remove удаляет коллайдер
func (w *World) Remove(id string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.colliders[id]; !ok {
		return false
	}
	delete(w.colliders, id)
	return true
}

// Len количество коллайдеров
func (w *World) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.colliders)
}

// Clear удаляет все коллайдеры
func (w *World) Clear() {
	w.mu.Lock()
	w.colliders = make(map[string]BoxCollider)
	w.mu.Unlock()
}

// IsOccupied проверяет, пересекает ли повёрнутая коробка хотя бы один коллайдер
func (w *World) IsOccupied(location mgl64.Vec3, rotation mgl64.Quat, extent mgl64.Vec3) bool {
	probe := OrientedAABB(location, rotation, extent)

	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, c := range w.colliders {
		if c.Box.Intersects(probe) {
			return true
		}
	}
	return false
}
