package util

import (
	"math"

	"github.com/aquilax/go-perlin"
)

// Noise генератор шума Перлина с собственным сидом
type Noise struct {
	p     *perlin.Perlin
	scale float64
}

// NewNoise создаёт генератор. scale: множитель координат (частота выборки).
func NewNoise(seed int64, scale float64) *Noise {
	alpha := 2.0  // Сглаживание шума
	beta := 2.0   // Частота шума
	n := int32(3) // Количество октав
	if scale <= 0 {
		scale = 0.1
	}
	return &Noise{p: perlin.NewPerlin(alpha, beta, n, seed), scale: scale}
}

// Noise2D возвращает значение шума для указанных координат (от 0 до 1)
func (n *Noise) Noise2D(x, y float64) float64 {
	return clamp01((n.p.Noise2D(x*n.scale, y*n.scale) + 1.0) / 2.0)
}

// Noise3D возвращает значение шума для указанных координат (от 0 до 1)
func (n *Noise) Noise3D(x, y, z float64) float64 {
	return clamp01((n.p.Noise3D(x*n.scale, y*n.scale, z*n.scale) + 1.0) / 2.0)
}

// Index отображает значение шума в индекс из [0, count)
func (n *Noise) Index(x, y, z float64, count int) int {
	if count <= 1 {
		return 0
	}
	idx := int(math.Floor(n.Noise3D(x, y, z) * float64(count)))
	if idx >= count {
		idx = count - 1
	}
	return idx
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
