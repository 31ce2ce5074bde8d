package vec

// AABB представляет выровненный по осям ограничивающий прямоугольник.
// Чистый value-тип: не владеет никакими ресурсами.
type AABB struct {
	Min, Max Vec2Float
}

// NewAABB создаёт AABB по двум произвольным углам
func NewAABB(a, b Vec2Float) AABB {
	box := AABB{Min: a, Max: b}
	if box.Min.X > box.Max.X {
		box.Min.X, box.Max.X = box.Max.X, box.Min.X
	}
	if box.Min.Y > box.Max.Y {
		box.Min.Y, box.Max.Y = box.Max.Y, box.Min.Y
	}
	return box
}

// AABBFromCircle создаёт AABB, описывающий окружность
func AABBFromCircle(center Vec2Float, radius float64) AABB {
	return AABB{
		Min: Vec2Float{X: center.X - radius, Y: center.Y - radius},
		Max: Vec2Float{X: center.X + radius, Y: center.Y + radius},
	}
}

// Width возвращает ширину прямоугольника
func (a AABB) Width() float64 {
	return a.Max.X - a.Min.X
}

// Height возвращает высоту прямоугольника
func (a AABB) Height() float64 {
	return a.Max.Y - a.Min.Y
}

// Center возвращает центр прямоугольника
func (a AABB) Center() Vec2Float {
	return Vec2Float{X: (a.Min.X + a.Max.X) * 0.5, Y: (a.Min.Y + a.Max.Y) * 0.5}
}

// Contains проверяет, находится ли точка внутри прямоугольника
func (a AABB) Contains(p Vec2Float) bool {
	return p.X >= a.Min.X && p.X < a.Max.X && p.Y >= a.Min.Y && p.Y < a.Max.Y
}

// Intersects проверяет пересечение с другим прямоугольником
func (a AABB) Intersects(b AABB) bool {
	return a.Min.X < b.Max.X && a.Max.X > b.Min.X &&
		a.Min.Y < b.Max.Y && a.Max.Y > b.Min.Y
}

// Expand возвращает прямоугольник, расширенный на delta во все стороны
func (a AABB) Expand(delta float64) AABB {
	return AABB{
		Min: Vec2Float{X: a.Min.X - delta, Y: a.Min.Y - delta},
		Max: Vec2Float{X: a.Max.X + delta, Y: a.Max.Y + delta},
	}
}
