package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/annel0/dungeon-gen/internal/vec"
)

// CellState структурная роль ячейки подземелья
type CellState uint8

const (
	Empty CellState = iota
	Blocked
	Room
	Corridor
	Stairs
)

// String возвращает строковое представление состояния
func (s CellState) String() string {
	switch s {
	case Empty:
		return "empty"
	case Blocked:
		return "blocked"
	case Room:
		return "room"
	case Corridor:
		return "corridor"
	case Stairs:
		return "stairs"
	default:
		return "unknown"
	}
}

// ParseCellState обратная операция к String
func ParseCellState(s string) (CellState, error) {
	for st := Empty; st <= Stairs; st++ {
		if st.String() == s {
			return st, nil
		}
	}
	return Empty, fmt.Errorf("unknown cell state %q", s)
}

// Walkable сообщает, можно ли строить лестницу через ячейку
func (s CellState) Walkable() bool {
	return s == Empty || s == Corridor
}

// ErrInvalidSize возвращается при неположительном размере сетки
var ErrInvalidSize = errors.New("grid: extent must be positive on every axis")

// Layout описывает геометрию сетки: размер в мировых единицах, шаг и отступ от края.
// Используется как самой сеткой, так и поисковыми структурами, хранящими данные
// в плоских массивах той же формы.
type Layout struct {
	size   vec.Vec3
	dims   vec.Vec3
	unit   int
	border int
}

// NewLayout создаёт описание сетки. Размерность по оси = round(extent+1)/unit.
func NewLayout(size vec.Vec3, border, unit int) (Layout, error) {
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 || unit <= 0 {
		return Layout{}, fmt.Errorf("%w: size=%v unit=%d", ErrInvalidSize, size, unit)
	}

	return Layout{
		size: size,
		dims: vec.Vec3{
			X: (size.X + 1) / unit,
			Y: (size.Y + 1) / unit,
			Z: (size.Z + 1) / unit,
		},
		unit:   unit,
		border: border,
	}, nil
}

// Size размер сетки в мировых единицах
func (l Layout) Size() vec.Vec3 { return l.size }

// Dims количество ячеек по каждой оси
func (l Layout) Dims() vec.Vec3 { return l.dims }

// Unit шаг сетки
func (l Layout) Unit() int { return l.unit }

// Border отступ от края, используемый InBounds
func (l Layout) Border() int { return l.border }

// Len общее количество ячеек
func (l Layout) Len() int { return l.dims.X * l.dims.Y * l.dims.Z }

// CellIndex переводит мировую позицию в индексы ячейки.
// Координаты должны быть кратны unit: иначе разные позиции попадут в одну ячейку.
func (l Layout) CellIndex(pos vec.Vec3) vec.Vec3 {
	return vec.Vec3{
		X: pos.X / l.unit,
		Y: pos.Y / l.unit,
		Z: pos.Z / l.unit,
	}
}

// Index возвращает линейный индекс ячейки и признак того, что она существует
func (l Layout) Index(pos vec.Vec3) (int, bool) {
	if pos.X < 0 || pos.Y < 0 || pos.Z < 0 {
		return 0, false
	}
	c := l.CellIndex(pos)
	if c.X >= l.dims.X || c.Y >= l.dims.Y || c.Z >= l.dims.Z {
		return 0, false
	}
	return (c.Z*l.dims.Y+c.Y)*l.dims.X + c.X, true
}

// Position обратная к Index операция
func (l Layout) Position(idx int) vec.Vec3 {
	x := idx % l.dims.X
	y := (idx / l.dims.X) % l.dims.Y
	z := idx / (l.dims.X * l.dims.Y)
	return vec.Vec3{X: x * l.unit, Y: y * l.unit, Z: z * l.unit}
}

// InBounds проверяет, что позиция лежит внутри сетки с учётом отступа:
// border <= p < size-border по каждой оси.
func (l Layout) InBounds(pos vec.Vec3) bool {
	b := l.border
	return pos.X >= b && pos.X < l.size.X-b &&
		pos.Y >= b && pos.Y < l.size.Y-b &&
		pos.Z >= b && pos.Z < l.size.Z-b
}

// InBoundsIgnoreOffset проверяет попадание в [0, size) без отступа
func (l Layout) InBoundsIgnoreOffset(pos vec.Vec3) bool {
	return pos.X >= 0 && pos.X < l.size.X &&
		pos.Y >= 0 && pos.Y < l.size.Y &&
		pos.Z >= 0 && pos.Z < l.size.Z
}

// Snap округляет вещественную координату к ближайшему узлу сетки
func (l Layout) Snap(p vec.Vec3Float) vec.Vec3 {
	return p.GridSnap(l.unit)
}

// Grid плотная 3D сетка состояний ячеек
type Grid struct {
	Layout
	cells []CellState
}

// New создаёт сетку. При неположительном размере возвращает ErrInvalidSize.
func New(size vec.Vec3, border, unit int) (*Grid, error) {
	layout, err := NewLayout(size, border, unit)
	if err != nil {
		return nil, err
	}
	return &Grid{
		Layout: layout,
		cells:  make([]CellState, layout.Len()),
	}, nil
}

// Default возвращает сетку 1x1x1 (как конструктор по умолчанию)
func Default() *Grid {
	g, _ := New(vec.Vec3{X: 1, Y: 1, Z: 1}, 0, 1)
	return g
}

// Get возвращает состояние ячейки. Для позиций вне массива возвращается Empty.
func (g *Grid) Get(pos vec.Vec3) CellState {
	idx, ok := g.Index(pos)
	if !ok {
		return Empty
	}
	return g.cells[idx]
}

// Set задаёт состояние ячейки. Возвращает false, если позиция вне массива.
func (g *Grid) Set(pos vec.Vec3, state CellState) bool {
	idx, ok := g.Index(pos)
	if !ok {
		return false
	}
	g.cells[idx] = state
	return true
}

// Contains сообщает, адресуема ли позиция
func (g *Grid) Contains(pos vec.Vec3) bool {
	_, ok := g.Index(pos)
	return ok
}

// ForEach обходит все ячейки в порядке x, y, z
func (g *Grid) ForEach(fn func(pos vec.Vec3, state CellState)) {
	for i, st := range g.cells {
		fn(g.Position(i), st)
	}
}

// Count возвращает количество ячеек в каждом состоянии
func (g *Grid) Count() map[CellState]int {
	res := make(map[CellState]int)
	for _, st := range g.cells {
		res[st]++
	}
	return res
}

// PointsInBox возвращает все узлы сетки внутри коробки [min, max]:
// X и Y включительно, Z: без верхней границы.
func (l Layout) PointsInBox(min, max vec.Vec3Float) []vec.Vec3 {
	lo := l.Snap(min)
	hi := l.Snap(max)

	var points []vec.Vec3
	for x := lo.X; x <= hi.X; x += l.unit {
		for y := lo.Y; y <= hi.Y; y += l.unit {
			for z := lo.Z; z < hi.Z; z += l.unit {
				points = append(points, vec.Vec3{X: x, Y: y, Z: z})
			}
		}
	}
	return points
}

// FloorOf возвращает номер этажа для мировой позиции (этаж 0 начинается на высоте 3*unit)
func (l Layout) FloorOf(location vec.Vec3Float) int {
	z := math.Round(location.Z/float64(l.unit)) * float64(l.unit)
	return int(z-float64(l.unit*3)) / l.unit
}

// Bytes копия состояний ячеек в линейном порядке
func (g *Grid) Bytes() []byte {
	out := make([]byte, len(g.cells))
	for i, st := range g.cells {
		out[i] = byte(st)
	}
	return out
}

// FromBytes восстанавливает сетку из результата Bytes
func FromBytes(size vec.Vec3, border, unit int, data []byte) (*Grid, error) {
	g, err := New(size, border, unit)
	if err != nil {
		return nil, err
	}
	if len(data) != len(g.cells) {
		return nil, fmt.Errorf("grid: expected %d cells, got %d", len(g.cells), len(data))
	}
	for i, b := range data {
		if CellState(b) > Stairs {
			return nil, fmt.Errorf("grid: invalid cell state %d at %d", b, i)
		}
		g.cells[i] = CellState(b)
	}
	return g, nil
}
