package physics

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/naval-game/internal/eventbus"
	"github.com/annel0/naval-game/internal/rules"
	"github.com/annel0/naval-game/internal/terrain"
	"github.com/annel0/naval-game/internal/vec"
	"github.com/annel0/naval-game/internal/world"
)

// newTestPhysics собирает резолвер над плоским глубоководьем
func newTestPhysics(t *testing.T) (*Physics, *world.World) {
	t.Helper()

	w := world.NewWorld(10000, 250, world.DefaultTypeTable())
	store := terrain.NewStore(terrain.FlatSource(0x20), time.Hour)
	bus := eventbus.NewMemoryBus(256)

	p := NewPhysics(w, store, rules.Default(), bus, 2, nil)
	return p, w
}

// matureBoat спавнит лодку с истёкшей защитой новичка
func matureBoat(w *world.World, et world.EntityType, name string, pos vec.Vec2Float) (*world.Player, *world.Entity) {
	owner := w.Players().Add(name, false)
	boat := w.Spawn(et, owner.ID, pos, 0)
	boat.Lifespan = 1000
	_ = w.Players().BindBoat(owner.ID, boat.ID)
	owner.Input.DirectionTarget = boat.Direction
	return owner, boat
}

// TestWeaponHitKillsAndScores сценарий: торпеда добивает повреждённую
// лодку — жертва теряет очки, убийца получает награду, выпадает лут
func TestWeaponHitKillsAndScores(t *testing.T) {
	p, w := newTestPhysics(t)

	killer, _ := matureBoat(w, world.TypeCorvette, "killer", vec.Vec2Float{X: -500, Y: 0})
	killer.Score = 40

	victim, victimBoat := matureBoat(w, world.TypeCorvette, "victim", vec.Vec2Float{X: 0, Y: 0})
	victim.Score = 100
	victimBoat.Damage = victimBoat.Data().MaxHealth - 1 // на волоске

	// Торпеда убийцы вплотную к жертве
	torpedo := w.Spawn(world.TypeTorpedo, killer.ID, vec.Vec2Float{X: -20, Y: 0}, 0)
	torpedo.Velocity = 30
	torpedo.VelocityTarget = 30
	torpedo.Lifespan = 1 // не истекает в тесте

	for i := 0; i < 20 && victim.BoatID != 0; i++ {
		p.Update(0.1)
	}

	// Лодка жертвы погибла и отвязана
	assert.Equal(t, world.EntityID(0), victim.BoatID)
	_, alive := w.Get(victimBoat.ID)
	assert.False(t, alive)

	// Очки: жертва ополовинена (с капом), убийца награждён от исходного счёта
	assert.Equal(t, 50, victim.Score)
	assert.Equal(t, 40+10+100/4, killer.Score)
	assert.NotEmpty(t, victim.DeathMsg)

	// Лут: у корвета длиной 60 м и снятой защитой — 2 ящика
	crates := 0
	w.ForEntities(func(e *world.Entity) bool {
		if e.Data().Kind == world.EntityKindCollectible {
			crates++
		}
		return true
	})
	assert.Equal(t, 2, crates)
}

// TestSpawnGraceReducesIncomingDamage сценарий: свежая лодка получает
// кратно меньше урона, чем лодка со снятой защитой
func TestSpawnGraceReducesIncomingDamage(t *testing.T) {
	r := rules.Default()

	damageTaken := func(fresh bool) float64 {
		p, w := newTestPhysics(t)
		shooter, _ := matureBoat(w, world.TypeCorvette, "shooter", vec.Vec2Float{X: -500, Y: 0})

		// Ялик первого уровня: защита новичка действует только на нём
		owner, boat := matureBoat(w, world.TypeSkiff, "target", vec.Vec2Float{X: 0, Y: 0})
		if fresh {
			boat.Lifespan = 0
		}
		_ = owner

		torpedo := w.Spawn(world.TypeTorpedo, shooter.ID, boat.Position, 0)
		torpedo.Lifespan = 1

		p.Update(0.1)
		return boat.Damage
	}

	freshDamage := damageTaken(true)
	matureDamage := damageTaken(false)

	require.Greater(t, freshDamage, 0.0)
	require.Greater(t, matureDamage, freshDamage)

	// К моменту попадания фаза A уже продвинула срок жизни на один тик
	assert.InDelta(t, r.SpawnGrace(0.1), freshDamage/matureDamage, 1e-9)
}

// TestRammingIsSymmetric сценарий: два одинаковых корпуса на встречных
// курсах получают одинаковый урон и расталкиваются в разные стороны
func TestRammingIsSymmetric(t *testing.T) {
	p, w := newTestPhysics(t)

	ownerA, boatA := matureBoat(w, world.TypeCorvette, "a", vec.Vec2Float{X: -30, Y: 0})
	ownerB, boatB := matureBoat(w, world.TypeCorvette, "b", vec.Vec2Float{X: 30, Y: 0})

	boatA.Direction, boatA.DirectionTarget = 0, 0
	boatB.Direction, boatB.DirectionTarget = math.Pi, math.Pi
	boatA.Velocity, boatB.Velocity = 10, 10
	ownerA.Input.VelocityTarget, ownerA.Input.DirectionTarget = 10, 0
	ownerB.Input.VelocityTarget, ownerB.Input.DirectionTarget = 10, math.Pi

	p.Update(0.1)

	require.Greater(t, boatA.Damage, 0.0, "контакт должен был случиться")
	assert.InDelta(t, boatA.Damage, boatB.Damage, 1e-9, "урон тарана симметричен")

	// Обоих отбросило назад: скорость упала ниже хода до удара
	assert.Less(t, boatA.Velocity, 10.0)
	assert.Less(t, boatB.Velocity, 10.0)
	assert.InDelta(t, boatA.Velocity, boatB.Velocity, 1e-9, "импульсы симметричны")
}

// TestBoatPickupCollectible сценарий: лодка подбирает ящик — очки
// владельцу, починка корпуса, ящик исчезает
func TestBoatPickupCollectible(t *testing.T) {
	p, w := newTestPhysics(t)

	owner, boat := matureBoat(w, world.TypeCorvette, "collector", vec.Vec2Float{X: 0, Y: 0})
	boat.Damage = 10

	crate := w.Spawn(world.TypeBarrel, world.PlayerIDInvalid, vec.Vec2Float{X: 5, Y: 0}, 0)

	p.Update(0.1)

	_, alive := w.Get(crate.ID)
	assert.False(t, alive, "предмет подобран")
	assert.Equal(t, 1, owner.Score)
	assert.Less(t, boat.Damage, 10.0, "бочка чинит корпус")
}

// TestBorderPushesAndBurns сценарий: лодка за границей получает урон и
// выталкивается внутрь; оружие за границей гибнет сразу
func TestBorderPushesAndBurns(t *testing.T) {
	p, w := newTestPhysics(t)

	_, boat := matureBoat(w, world.TypeCorvette, "runner", vec.Vec2Float{X: 10050, Y: 0})
	distBefore := w.DistanceFromCenter(boat.Position)

	shell := w.Spawn(world.TypeShell, world.PlayerIDInvalid, vec.Vec2Float{X: 10050, Y: 0}, 0)

	p.Update(0.1)

	assert.Greater(t, boat.Damage, 0.0, "за границей жжёт")
	assert.Less(t, w.DistanceFromCenter(boat.Position), distBefore, "выталкивает к центру")

	_, alive := w.Get(shell.ID)
	assert.False(t, alive, "оружие за границей гибнет")
}

// TestTerrainKillsSurfaceWeapon сценарий: снаряд и ящик над отмелью
// садятся на мель и исчезают
func TestTerrainKillsSurfaceWeapon(t *testing.T) {
	w := world.NewWorld(100000, 250, world.DefaultTypeTable())
	store := terrain.NewStore(terrain.FlatSource(0x60), time.Hour) // отмель везде
	p := NewPhysics(w, store, rules.Default(), eventbus.NewMemoryBus(16), 1, nil)

	w.Spawn(world.TypeShell, world.PlayerIDInvalid, vec.Vec2Float{X: 50, Y: 50}, 0)
	w.Spawn(world.TypeCrate, world.PlayerIDInvalid, vec.Vec2Float{X: -50, Y: -50}, 0)

	p.Update(0.1)
	assert.Equal(t, 0, w.Count(), "снаряд и ящик сели на мель")
}

// TestHomingPullWeighting сценарий: торпеда подтягивает курс к близкой
// цели сильнее, чем к далёкой, и к центрированной сильнее, чем к краевой
func TestHomingPullWeighting(t *testing.T) {
	// pull возвращает долю угловой ошибки, выбранную за один тик
	pull := func(dist, bearing float64) float64 {
		p, w := newTestPhysics(t)
		_, _ = matureBoat(w, world.TypeCorvette, "prey", vec.FromAngle(bearing).Mul(dist))

		shooter := w.Players().Add("shooter", false)
		torpedo := w.Spawn(world.TypeTorpedo, shooter.ID, vec.Vec2Float{}, 0)

		p.Update(0.1)
		return math.Abs(torpedo.DirectionTarget) / bearing
	}

	assert.Greater(t, pull(50, 0.3), pull(250, 0.3), "ближняя цель тянет сильнее")
	assert.Greater(t, pull(100, 0.1), pull(100, 0.6), "центрированная цель тянет сильнее")
}

// TestHomingConeFromTargetHeading сценарий: цель вне конуса от текущего
// курса, но в конусе от целевого курса, не теряется
func TestHomingConeFromTargetHeading(t *testing.T) {
	p, w := newTestPhysics(t)
	_, _ = matureBoat(w, world.TypeCorvette, "prey", vec.FromAngle(1.2).Mul(100))

	shooter := w.Players().Add("shooter", false)
	torpedo := w.Spawn(world.TypeTorpedo, shooter.ID, vec.Vec2Float{}, 0)
	torpedo.DirectionTarget = 1.0 // уже довернула почти к цели

	p.Update(0.1)
	assert.Greater(t, torpedo.DirectionTarget, 1.0, "захват не сорвался")
}

// TestRamDamageScalesWithRemainingHealth сценарий: потрёпанная пара
// бьётся слабее — урон тарана идёт от минимального запаса здоровья
func TestRamDamageScalesWithRemainingHealth(t *testing.T) {
	damageTo := func(preDamage float64) float64 {
		p, w := newTestPhysics(t)
		_, boatA := matureBoat(w, world.TypeCorvette, "a", vec.Vec2Float{X: -29, Y: 0})
		_, boatB := matureBoat(w, world.TypeCorvette, "b", vec.Vec2Float{X: 29, Y: 0})
		boatA.Damage = preDamage

		p.Update(0.1)
		return boatB.Damage
	}

	full := damageTo(0)
	halved := damageTo(30) // у корвета остаётся половина здоровья
	require.Greater(t, full, 0.0, "контакт должен был случиться")
	assert.InDelta(t, full/2, halved, 1e-9, "урон пропорционален запасу здоровья")
}

// TestMineDriftsTowardEnemy сценарий: мина разворачивается к вражеской
// лодке в зоне притяжения
func TestMineDriftsTowardEnemy(t *testing.T) {
	p, w := newTestPhysics(t)

	enemy, _ := matureBoat(w, world.TypeCorvette, "enemy", vec.Vec2Float{X: 40, Y: 0})
	_ = enemy

	miner := w.Players().Add("miner", false)
	mine := w.Spawn(world.TypeMine, miner.ID, vec.Vec2Float{X: 0, Y: 0}, 0)
	before := mine.Position.X

	for i := 0; i < 10; i++ {
		p.Update(0.1)
	}

	assert.Greater(t, mine.Position.X, before, "мина дрейфует к врагу")
	assert.Greater(t, mine.VelocityTarget, 0.0, "притяжение задало ход")
}

// TestProximityMultiplierBounds свойства множителя близости: границы
// [min, max] и монотонное невозрастание по квадрату расстояния
func TestProximityMultiplierBounds(t *testing.T) {
	r := rules.Default()
	refSq := 3600.0

	prev := math.Inf(1)
	for distSq := 0.0; distSq <= 4*refSq; distSq += refSq / 16 {
		m := r.ProximityMultiplier(distSq, refSq)
		assert.GreaterOrEqual(t, m, r.ProximityMin)
		assert.LessOrEqual(t, m, r.ProximityMax)
		assert.LessOrEqual(t, m, prev, "множитель не возрастает по distSq")
		prev = m
	}

	assert.Equal(t, r.ProximityMax, r.ProximityMultiplier(0, refSq))
}

// TestFireSpawnsWeapon проверяет выстрел: оружие спавнится у носа с
// скоростью из таблицы, слот уходит в перезарядку
func TestFireSpawnsWeapon(t *testing.T) {
	p, w := newTestPhysics(t)

	owner, boat := matureBoat(w, world.TypeSubmarine, "sub", vec.Vec2Float{X: 0, Y: 0})

	require.NoError(t, p.Fire(owner.ID, 0)) // торпедный слот

	var torpedo *world.Entity
	w.ForEntities(func(e *world.Entity) bool {
		if e.Data().Kind == world.EntityKindWeapon {
			torpedo = e
		}
		return true
	})

	require.NotNil(t, torpedo)
	assert.Equal(t, owner.ID, torpedo.Owner)
	assert.InDelta(t, torpedo.Data().Speed, torpedo.Velocity, 1e-9)
	assert.InDelta(t, boat.FrontPosition().X, torpedo.Position.X, 1e-9)

	// Слоты исчерпываются
	for i := 0; i < 10; i++ {
		_ = p.Fire(owner.ID, 0)
	}
	assert.Error(t, p.Fire(owner.ID, 0))
}
