package world

import (
	"math"
	"sync/atomic"

	"github.com/annel0/naval-game/internal/vec"
)

// World хранит сущности в секторной сетке и отвечает за пространственные
// запросы. Мутации (Add/Remove/Rebucket) допустимы только вне итераций;
// итерации могут быть вложенными (внешний обход + радиусный запрос).
//
// Потокобезопасность обеспечивается дисциплиной тика, а не мьютексами:
// фаза A не трогает индекс, фаза B однопоточна.
type World struct {
	sectorSize   float64
	borderRadius float64

	sectors  map[sectorID]*sector
	entities map[EntityID]*Entity

	table   *EntityTypeTable
	players *PlayerArena

	nextID    EntityID
	readDepth int
	count     atomic.Int64 // дублирует len(entities) для конкурентных читателей
}

// NewWorld создаёт пустой мир с круговой границей borderRadius метров
// и ячейками индекса sectorSize метров.
func NewWorld(borderRadius, sectorSize float64, table *EntityTypeTable) *World {
	return &World{
		sectorSize:   sectorSize,
		borderRadius: borderRadius,
		sectors:      make(map[sectorID]*sector),
		entities:     make(map[EntityID]*Entity),
		table:        table,
		players:      NewPlayerArena(),
	}
}

// BorderRadius возвращает радиус круговой границы мира
func (w *World) BorderRadius() float64 { return w.borderRadius }

// Table возвращает таблицу типов мира
func (w *World) Table() *EntityTypeTable { return w.table }

// Players возвращает арену владельцев
func (w *World) Players() *PlayerArena { return w.players }

// NextEntityID выдаёт следующий свободный идентификатор
func (w *World) NextEntityID() EntityID {
	w.nextID++
	return w.nextID
}

// Count возвращает число сущностей в мире. Безопасен для конкурентных
// читателей (сервисный REST) во время тика.
func (w *World) Count() int { return int(w.count.Load()) }

// Get возвращает сущность по ID
func (w *World) Get(id EntityID) (*Entity, bool) {
	e, ok := w.entities[id]
	return e, ok
}

// Spawn создаёт сущность типа et в позиции pos и помещает её в индекс
func (w *World) Spawn(et EntityType, owner PlayerID, pos vec.Vec2Float, direction float64) *Entity {
	e := NewEntity(w.NextEntityID(), et, w.table)
	e.Owner = owner
	e.Position = pos
	e.Direction = direction
	e.DirectionTarget = direction
	w.Add(e)
	return e
}

// Add помещает готовую сущность в мир
func (w *World) Add(e *Entity) {
	w.assertWritable()
	w.entities[e.ID] = e
	w.insert(e)
	w.count.Add(1)
}

// Remove исключает сущность из мира. Лодка при этом отвязывается от
// владельца.
func (w *World) Remove(e *Entity) {
	w.assertWritable()
	if _, ok := w.entities[e.ID]; !ok {
		return
	}
	delete(w.entities, e.ID)
	w.remove(e)
	w.count.Add(-1)

	if e.data.Kind == EntityKindBoat {
		w.players.UnbindBoat(e.Owner)
	}
}

// Rebucket переносит сущность в актуальную ячейку после смены позиции.
// Вызывается после фазы A для каждой живой сущности.
func (w *World) Rebucket(e *Entity) {
	w.rebucket(e)
}

// Entities возвращает срез-снимок всех сущностей. Порядок не определён.
// Снимок позволяет фазе A обновлять сущности, не держа итерацию индекса.
func (w *World) Entities(buf []*Entity) []*Entity {
	buf = buf[:0]
	for _, e := range w.entities {
		buf = append(buf, e)
	}
	return buf
}

// ForEntities обходит все сущности. Колбэк возвращает false для
// досрочного выхода. Мутация индекса из колбэка запрещена.
func (w *World) ForEntities(cb func(e *Entity) bool) {
	w.readDepth++
	defer func() { w.readDepth-- }()

	for _, s := range w.sectors {
		for _, e := range s.entities {
			if !cb(e) {
				return
			}
		}
	}
}

// ForEntitiesInRadius обходит сущности в радиусе radius от center.
// Кандидаты берутся из пересечённых ячеек и фильтруются точным
// сравнением квадрата расстояния. Колбэк возвращает false для выхода.
func (w *World) ForEntitiesInRadius(center vec.Vec2Float, radius float64, cb func(distSq float64, e *Entity) bool) {
	w.readDepth++
	defer func() { w.readDepth-- }()

	lo := w.sectorOf(vec.Vec2Float{X: center.X - radius, Y: center.Y - radius})
	hi := w.sectorOf(vec.Vec2Float{X: center.X + radius, Y: center.Y + radius})
	radiusSq := radius * radius

	for sy := lo.y; ; sy++ {
		for sx := lo.x; ; sx++ {
			if s := w.sectors[sectorID{x: sx, y: sy}]; s != nil {
				for _, e := range s.entities {
					distSq := center.DistanceSquaredTo(e.Position)
					if distSq <= radiusSq && !cb(distSq, e) {
						return
					}
				}
			}
			if sx == hi.x {
				break
			}
		}
		if sy == hi.y {
			break
		}
	}
}

// ForEntitiesAndOthers обходит пары субъект-объект: для каждой сущности
// selectRadius выбирает радиус интереса (0 — пропуск субъекта), затем
// cb вызывается для каждой другой сущности в этом радиусе. Возвращаемые
// флаги (removeSubject, removeOther) применяются ПОСЛЕ завершения
// внутреннего цикла субъекта, чтобы не мутировать индекс под итерацией.
//
// Пара (a, b) посещается дважды — как (субъект a, объект b) и наоборот;
// вызывающий обязан строить диспетчеризацию так, чтобы эффект пары
// применялся ровно один раз.
func (w *World) ForEntitiesAndOthers(
	selectRadius func(e *Entity) float64,
	cb func(e *Entity, distSq float64, other *Entity) (removeSubject, removeOther bool),
) {
	subjects := w.Entities(nil)

	var pendingRemoval []*Entity
	for _, e := range subjects {
		if e.sectorIdx < 0 {
			continue // уже удалена предыдущим субъектом
		}
		radius := selectRadius(e)
		if radius <= 0 {
			continue
		}

		removeSelf := false
		w.ForEntitiesInRadius(e.Position, radius, func(distSq float64, other *Entity) bool {
			if other == e || other.sectorIdx < 0 {
				return true
			}
			rmE, rmO := cb(e, distSq, other)
			if rmO {
				pendingRemoval = append(pendingRemoval, other)
			}
			if rmE {
				removeSelf = true
				return false
			}
			return true
		})

		if removeSelf {
			pendingRemoval = append(pendingRemoval, e)
		}

		// Отложенные удаления между субъектами: итерация по радиусу
		// уже завершена, индекс можно мутировать
		for _, r := range pendingRemoval {
			if r.sectorIdx >= 0 {
				w.Remove(r)
			}
		}
		pendingRemoval = pendingRemoval[:0]
	}
}

// DistanceFromCenter возвращает расстояние позиции от центра мира
func (w *World) DistanceFromCenter(pos vec.Vec2Float) float64 {
	return math.Sqrt(pos.X*pos.X + pos.Y*pos.Y)
}
