package vec

import "math"

// Vec2Float представляет 2D координаты с плавающей точкой (метры мирового пространства)
type Vec2Float struct {
	X, Y float64
}

// ToVec2 преобразует в целочисленные координаты (floor)
func (v Vec2Float) ToVec2() Vec2 {
	return Vec2{X: int(math.Floor(v.X)), Y: int(math.Floor(v.Y))}
}

// FromVec2 создает Vec2Float из Vec2
func FromVec2(v Vec2) Vec2Float {
	return Vec2Float{X: float64(v.X), Y: float64(v.Y)}
}

// FromAngle возвращает единичный вектор по углу (радианы)
func FromAngle(angle float64) Vec2Float {
	return Vec2Float{X: math.Cos(angle), Y: math.Sin(angle)}
}

// Add складывает два вектора
func (v Vec2Float) Add(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X + other.X, Y: v.Y + other.Y}
}

// AddScaled прибавляет other*scalar (интеграция позиции без промежуточных аллокаций)
func (v Vec2Float) AddScaled(other Vec2Float, scalar float64) Vec2Float {
	return Vec2Float{X: v.X + other.X*scalar, Y: v.Y + other.Y*scalar}
}

// Sub вычитает вектор
func (v Vec2Float) Sub(other Vec2Float) Vec2Float {
	return Vec2Float{X: v.X - other.X, Y: v.Y - other.Y}
}

// Mul умножает вектор на скаляр
func (v Vec2Float) Mul(scalar float64) Vec2Float {
	return Vec2Float{X: v.X * scalar, Y: v.Y * scalar}
}

// Dot возвращает скалярное произведение
func (v Vec2Float) Dot(other Vec2Float) float64 {
	return v.X*other.X + v.Y*other.Y
}

// Normalized возвращает нормализованный вектор
func (v Vec2Float) Normalized() Vec2Float {
	length := v.Length()
	if length == 0 {
		return Vec2Float{X: 0, Y: 0}
	}
	return Vec2Float{X: v.X / length, Y: v.Y / length}
}

// Length возвращает длину вектора
func (v Vec2Float) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y)
}

// LengthSquared возвращает квадрат длины вектора
func (v Vec2Float) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Angle возвращает угол вектора в радианах
func (v Vec2Float) Angle() float64 {
	return math.Atan2(v.Y, v.X)
}

// Rotate поворачивает вектор на угол (радианы)
func (v Vec2Float) Rotate(angle float64) Vec2Float {
	sin, cos := math.Sincos(angle)
	return Vec2Float{
		X: v.X*cos - v.Y*sin,
		Y: v.X*sin + v.Y*cos,
	}
}

// Lerp линейно интерполирует к other с коэффициентом t из [0,1]
func (v Vec2Float) Lerp(other Vec2Float, t float64) Vec2Float {
	return Vec2Float{
		X: v.X + (other.X-v.X)*t,
		Y: v.Y + (other.Y-v.Y)*t,
	}
}

// DistanceTo вычисляет расстояние до другой точки
func (v Vec2Float) DistanceTo(other Vec2Float) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// DistanceSquaredTo вычисляет квадрат расстояния до другой точки
func (v Vec2Float) DistanceSquaredTo(other Vec2Float) float64 {
	dx := v.X - other.X
	dy := v.Y - other.Y
	return dx*dx + dy*dy
}
