package world

import (
	"math"

	"github.com/annel0/naval-game/internal/vec"
)

// sectorID адресует ячейку пространственного индекса. Координаты
// насыщаются на краях диапазона int16, поэтому далёкие сущности
// оседают в крайних секторах, а не теряются.
type sectorID struct {
	x, y int16
}

// sector одна ячейка индекса: плотный срез сущностей, удаление
// свопом с последним элементом.
type sector struct {
	entities []*Entity
}

// sectorOf возвращает ячейку для мировой позиции
func (w *World) sectorOf(pos vec.Vec2Float) sectorID {
	return sectorID{
		x: saturateSector(pos.X / w.sectorSize),
		y: saturateSector(pos.Y / w.sectorSize),
	}
}

func saturateSector(v float64) int16 {
	f := math.Floor(v)
	if f <= math.MinInt16 {
		return math.MinInt16
	}
	if f >= math.MaxInt16 {
		return math.MaxInt16
	}
	return int16(f)
}

// insert добавляет сущность в ячейку её позиции. Паникует при попытке
// мутировать индекс во время итерации: это нарушение контракта фаз.
func (w *World) insert(e *Entity) {
	w.assertWritable()

	id := w.sectorOf(e.Position)
	s := w.sectors[id]
	if s == nil {
		s = &sector{}
		w.sectors[id] = s
	}

	e.sector = id
	e.sectorIdx = len(s.entities)
	s.entities = append(s.entities, e)
}

// remove исключает сущность из её ячейки свопом с последним элементом
func (w *World) remove(e *Entity) {
	w.assertWritable()

	s := w.sectors[e.sector]
	last := len(s.entities) - 1
	if e.sectorIdx != last {
		moved := s.entities[last]
		s.entities[e.sectorIdx] = moved
		moved.sectorIdx = e.sectorIdx
	}
	s.entities[last] = nil
	s.entities = s.entities[:last]
	e.sectorIdx = -1

	if len(s.entities) == 0 {
		delete(w.sectors, e.sector)
	}
}

// rebucket переносит сущность в ячейку её новой позиции, если та сменилась
func (w *World) rebucket(e *Entity) {
	if w.sectorOf(e.Position) == e.sector {
		return
	}
	w.remove(e)
	w.insert(e)
}

// assertWritable паникует, если индекс читается итерацией. Ловит
// мутацию из колбэков на этапе разработки вместо тихой порчи срезов.
func (w *World) assertWritable() {
	if w.readDepth > 0 {
		panic("world: мутация пространственного индекса во время итерации")
	}
}
