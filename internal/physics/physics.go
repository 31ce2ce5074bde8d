package physics

import (
	"context"
	"math/rand"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/naval-game/internal/eventbus"
	"github.com/annel0/naval-game/internal/logging"
	"github.com/annel0/naval-game/internal/rules"
	"github.com/annel0/naval-game/internal/terrain"
	"github.com/annel0/naval-game/internal/vec"
	"github.com/annel0/naval-game/internal/world"
)

// Размер порции сущностей, выдаваемой воркеру фазы A за раз
const phaseABatch = 64

// Physics продвигает мир на один тик в две фазы.
//
// Фаза A (параллельная): каждая сущность интегрируется независимо —
// кинематика, срок жизни, граница мира, рельеф. Пространственный индекс
// не мутируется; каждую сущность трогает ровно одна горутина.
//
// Фаза B (однопоточная): парные взаимодействия через радиусные запросы
// индекса — наведение, притяжение, контактные столкновения, начисление
// очков и лут.
type Physics struct {
	world   *world.World
	terrain terrain.Terrain
	rules   *rules.Rules
	bus     eventbus.EventBus
	metrics *Metrics
	workers int
	rng     *rand.Rand
	log     *logging.Logger

	snapshot []*world.Entity // переиспользуемый буфер фазы A
	steering steering        // состояние выбора цели текущего субъекта фазы B
	spawns   []spawnRequest  // отложенные спавны фазы B
	reaped   []*world.Entity // погибшие в фазе B, ждут учёта
}

// spawnRequest отложенный спавн: внутри итерации индекс доступен только
// для чтения, поэтому авиация и прочие источники складывают заявки сюда.
type spawnRequest struct {
	entityType world.EntityType
	owner      world.PlayerID
	position   vec.Vec2Float
	direction  float64
	velocity   float64
	altitude   float64
}

// NewPhysics создаёт резолвер. workers <= 0 означает GOMAXPROCS;
// reg == nil даёт приватный реестр метрик (для тестов).
func NewPhysics(w *world.World, t terrain.Terrain, r *rules.Rules, bus eventbus.EventBus, workers int, reg prometheus.Registerer) *Physics {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	return &Physics{
		world:   w,
		terrain: t,
		rules:   r,
		bus:     bus,
		metrics: NewMetrics(reg),
		workers: workers,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		log:     logging.GetSimLogger(),
	}
}

// Update продвигает мир на dt секунд
func (p *Physics) Update(dt float64) {
	start := time.Now()
	p.updateEntities(dt)
	p.metrics.phaseDuration.WithLabelValues("update").Observe(time.Since(start).Seconds())

	start = time.Now()
	p.updateCollisions(dt)
	p.metrics.phaseDuration.WithLabelValues("collide").Observe(time.Since(start).Seconds())

	p.metrics.entities.Set(float64(p.world.Count()))
}

// updateEntities фаза A: параллельная интеграция каждой сущности
func (p *Physics) updateEntities(dt float64) {
	p.snapshot = p.world.Entities(p.snapshot)
	snapshot := p.snapshot
	if len(snapshot) == 0 {
		return
	}

	dead := make(chan *world.Entity, len(snapshot))
	var cursor atomic.Int64
	var wg sync.WaitGroup

	workers := p.workers
	if workers > len(snapshot) {
		workers = len(snapshot)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				lo := int(cursor.Add(phaseABatch)) - phaseABatch
				if lo >= len(snapshot) {
					return
				}
				hi := min(lo+phaseABatch, len(snapshot))
				for _, e := range snapshot[lo:hi] {
					if p.updateEntity(e, dt) {
						dead <- e
					}
				}
			}
		}()
	}
	wg.Wait()
	close(dead)

	// Серийная часть: ребакет живых, затем удаление мёртвых с побочными
	// эффектами. Порядок важен: лут хоронимых спавнится в валидный индекс.
	for _, e := range snapshot {
		if !e.Dead {
			p.world.Rebucket(e)
		}
	}
	for e := range dead {
		p.bury(e)
		p.world.Remove(e)
	}
}

// updateEntity продвигает одну сущность; возвращает true, если она
// погибла на этом шаге. Вызывается из воркеров: допустимы только
// чтение индекса/арены и мутация самой сущности.
func (p *Physics) updateEntity(e *world.Entity, dt float64) bool {
	data := e.Data()

	var input *world.PlayerInput
	if data.Kind == world.EntityKindBoat {
		if owner, ok := p.world.Players().Get(e.Owner); ok {
			input = &owner.Input
		}
	}

	if e.Update(dt, p.rules, input) {
		return true
	}

	// Круговая граница мира: всё, кроме лодок, за ней гибнет сразу;
	// лодки выталкиваются внутрь и горят, пока не вернутся
	dist := p.world.DistanceFromCenter(e.Position)
	border := p.world.BorderRadius()
	if dist > border && data.Kind != world.EntityKindObstacle {
		if data.Kind != world.EntityKindBoat || dist > border*p.rules.BorderClearance {
			e.Kill(world.DeathCauseBorder, world.PlayerIDInvalid)
			return true
		}
		inward := e.Position.Mul(-1 / dist)
		e.Position = e.Position.AddScaled(inward, p.rules.BorderPushMPS*dt)
		if e.Hurt(p.rules.BorderDamagePerSecond*dt, world.DeathCauseBorder, world.PlayerIDInvalid) {
			return true
		}
		p.publish(eventbus.EventBorderContact, 0, map[string]string{
			"entity": strconv.FormatUint(uint64(e.ID), 10),
		})
	}

	// Рельеф
	if p.terrain.Collides(e, dt) {
		switch {
		case data.SubKind == world.EntitySubKindDredger:
			// Дноуглубитель срывает грунт перед собой вместо урона
			p.terrain.Sculpt(e.FrontPosition(), -p.rules.DredgePerSecond*dt)
			p.publish(eventbus.EventTerrainSculpt, 0, map[string]string{
				"entity": strconv.FormatUint(uint64(e.ID), 10),
			})
		case data.SubKind == world.EntitySubKindHovercraft:
			// Амфибия проходит над отмелью свободно
		case data.Kind == world.EntityKindBoat:
			e.Velocity *= 1 - 0.5*dt // грунт гасит ход
			if e.Hurt(p.rules.TerrainDamagePerSecond*dt, world.DeathCauseTerrain, world.PlayerIDInvalid) {
				return true
			}
		case data.Kind == world.EntityKindWeapon, data.Kind == world.EntityKindDecoy,
			data.Kind == world.EntityKindCollectible:
			e.Kill(world.DeathCauseTerrain, world.PlayerIDInvalid)
			return true
		}
	}

	return e.Dead
}

// publish отправляет событие в шину, если она подключена
func (p *Physics) publish(eventType string, priority int, metadata map[string]string) {
	if p.bus == nil {
		return
	}
	_ = p.bus.Publish(context.Background(), eventbus.NewEnvelope("physics", eventType, priority, metadata))
}
