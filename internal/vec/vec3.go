package vec

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 представляет трехмерный вектор с целочисленными координатами.
// Все позиции сетки подземелья кратны размеру ячейки (unit).
type Vec3 struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
	Z int `json:"z" yaml:"z"`
}

// Vec3Float представляет трехмерный вектор с плавающими координатами
type Vec3Float struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

// Zero нулевой вектор
var Zero = Vec3{}

// DistanceTo возвращает евклидово расстояние до другого вектора
func (v Vec3) DistanceTo(other Vec3) float64 {
	return r3.Norm(r3.Sub(v.R3(), other.R3()))
}

// Equals проверяет равенство векторов
func (v Vec3) Equals(other Vec3) bool {
	return v.X == other.X && v.Y == other.Y && v.Z == other.Z
}

// Add складывает два вектора
func (v Vec3) Add(other Vec3) Vec3 {
	return Vec3{
		X: v.X + other.X,
		Y: v.Y + other.Y,
		Z: v.Z + other.Z,
	}
}

// Sub вычитает вектор
func (v Vec3) Sub(other Vec3) Vec3 {
	return Vec3{
		X: v.X - other.X,
		Y: v.Y - other.Y,
		Z: v.Z - other.Z,
	}
}

// Scale умножает вектор на целое число
func (v Vec3) Scale(k int) Vec3 {
	return Vec3{X: v.X * k, Y: v.Y * k, Z: v.Z * k}
}

// Horizontal обнуляет Z
func (v Vec3) Horizontal() Vec3 {
	return Vec3{X: v.X, Y: v.Y}
}

// R3 переводит вектор в gonum r3.Vec
func (v Vec3) R3() r3.Vec {
	return r3.Vec{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

// ToFloat переводит вектор в Vec3Float
func (v Vec3) ToFloat() Vec3Float {
	return Vec3Float{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Z)}
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

// FromR3 округляет r3.Vec до ближайших целых координат
func FromR3(p r3.Vec) Vec3 {
	return Vec3{
		X: int(math.Round(p.X)),
		Y: int(math.Round(p.Y)),
		Z: int(math.Round(p.Z)),
	}
}

// Add складывает два вектора
func (v Vec3Float) Add(other Vec3Float) Vec3Float {
	return Vec3Float{X: v.X + other.X, Y: v.Y + other.Y, Z: v.Z + other.Z}
}

// Lerp возвращает точку между v и other (t=0.5: середина)
func (v Vec3Float) Lerp(other Vec3Float, t float64) Vec3Float {
	return Vec3Float{
		X: v.X + (other.X-v.X)*t,
		Y: v.Y + (other.Y-v.Y)*t,
		Z: v.Z + (other.Z-v.Z)*t,
	}
}

// GridSnap привязывает координаты к сетке с шагом unit
func (v Vec3Float) GridSnap(unit int) Vec3 {
	if unit <= 0 {
		unit = 1
	}
	u := float64(unit)
	return Vec3{
		X: int(math.Round(v.X/u)) * unit,
		Y: int(math.Round(v.Y/u)) * unit,
		Z: int(math.Round(v.Z/u)) * unit,
	}
}

// Clamp ограничивает значение отрезком [lo, hi]
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
