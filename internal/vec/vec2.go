package vec

import "math"

// Vec2 представляет целочисленные 2D координаты (чанки, ячейки сетки)
type Vec2 struct {
	X, Y int
}

// Add складывает два вектора
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub вычитает вектор
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{X: v.X - other.X, Y: v.Y - other.Y}
}

// Min возвращает покомпонентный минимум
func (v Vec2) Min(other Vec2) Vec2 {
	return Vec2{X: min(v.X, other.X), Y: min(v.Y, other.Y)}
}

// Max возвращает покомпонентный максимум
func (v Vec2) Max(other Vec2) Vec2 {
	return Vec2{X: max(v.X, other.X), Y: max(v.Y, other.Y)}
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2) DistanceTo(other Vec2) float64 {
	dx := float64(v.X - other.X)
	dy := float64(v.Y - other.Y)
	return math.Sqrt(dx*dx + dy*dy)
}
