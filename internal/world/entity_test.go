package world

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/naval-game/internal/rules"
	"github.com/annel0/naval-game/internal/vec"
)

// TestSpawnGraceDecay проверяет защиту новичка: множитель растёт от пола
// до единицы за окно защиты и аннулируется у лодок выше первого уровня
func TestSpawnGraceDecay(t *testing.T) {
	r := rules.Default()
	table := DefaultTypeTable()

	e := NewEntity(1, TypeSkiff, table) // Level 1
	assert.InDelta(t, r.SpawnGraceFloor, e.SpawnGrace(r), 1e-9, "свежий спавн защищён максимально")

	e.Lifespan = r.SpawnGraceSeconds / 2
	mid := e.SpawnGrace(r)
	assert.Greater(t, mid, r.SpawnGraceFloor)
	assert.Less(t, mid, 1.0)

	e.Lifespan = r.SpawnGraceSeconds + 1
	assert.Equal(t, 1.0, e.SpawnGrace(r), "после окна защита снята")

	upgraded := NewEntity(2, TypeCorvette, table) // Level 2
	assert.Equal(t, 1.0, upgraded.SpawnGrace(r), "апгрейд аннулирует защиту")
}

// TestUpdateAcceleratesTowardTarget проверяет разгон с потолком ускорения
// и ограничение заднего хода третью максимальной скорости
func TestUpdateAcceleratesTowardTarget(t *testing.T) {
	r := rules.Default()
	e := NewEntity(1, TypeSkiff, DefaultTypeTable())

	input := &PlayerInput{VelocityTarget: 1000} // заведомо выше максимума
	e.Update(0.1, r, input)

	assert.InDelta(t, r.MaxAccelerationMPS2*0.1, e.Velocity, 1e-9, "за тик не больше потолка ускорения")

	// Доводим до максимума
	for i := 0; i < 1000; i++ {
		e.Update(0.1, r, input)
	}
	assert.InDelta(t, e.Data().Speed, e.Velocity, 1e-9)

	// Задний ход ограничен
	input.VelocityTarget = -1000
	for i := 0; i < 1000; i++ {
		e.Update(0.1, r, input)
	}
	assert.InDelta(t, -e.Data().Speed/3, e.Velocity, 1e-9)
}

// TestUpdateIntegratesPosition проверяет интеграцию позиции вдоль курса
func TestUpdateIntegratesPosition(t *testing.T) {
	r := rules.Default()
	e := NewEntity(1, TypeTorpedo, DefaultTypeTable())
	e.Velocity = 30
	e.VelocityTarget = 30

	e.Update(1.0, r, nil)

	assert.InDelta(t, 30, e.Position.X, 1e-9)
	assert.InDelta(t, 0, e.Position.Y, 1e-9)
}

// TestUpdateTurnsTowardTarget проверяет доворот курса к цели
func TestUpdateTurnsTowardTarget(t *testing.T) {
	r := rules.Default()
	e := NewEntity(1, TypeSkiff, DefaultTypeTable())
	e.DirectionTarget = math.Pi / 2

	before := math.Abs(vec.AngleDiff(e.Direction, e.DirectionTarget))
	for i := 0; i < 100; i++ {
		e.Update(0.1, r, nil)
	}
	after := math.Abs(vec.AngleDiff(e.Direction, e.DirectionTarget))

	assert.Less(t, after, before)
	assert.InDelta(t, math.Pi/2, e.Direction, 1e-6)
}

// TestTurnRateScaling проверяет форму кривой доворота: большая угловая
// ошибка доворачивается медленнее, недобранный ход — тоже
func TestTurnRateScaling(t *testing.T) {
	r := rules.Default()
	table := DefaultTypeTable()

	turned := func(delta, velocity, velocityTarget float64) float64 {
		e := NewEntity(1, TypeSkiff, table)
		e.Velocity = velocity
		e.DirectionTarget = delta
		e.Update(0.1, r, &PlayerInput{VelocityTarget: velocityTarget})
		return math.Abs(e.Direction)
	}

	// Обратная зависимость от угловой ошибки
	assert.Greater(t, turned(0.3, 10, 10), turned(3.0, 10, 10),
		"крутой доворот должен идти медленнее")

	// Прямая зависимость от близости хода к целевому
	assert.Greater(t, turned(1.0, 10, 10), turned(1.0, 10, 17),
		"недобранный ход замедляет доворот")
}

// TestLifespanExpiryKillsOrDowngrades проверяет истечение срока жизни:
// оружие гибнет, укрепление деградирует в следующий тип
func TestLifespanExpiryKillsOrDowngrades(t *testing.T) {
	r := rules.Default()
	table := DefaultTypeTable()

	shell := NewEntity(1, TypeShell, table)
	died := shell.Update(shell.Data().Lifespan+1, r, nil)
	assert.True(t, died)
	assert.True(t, shell.Dead)
	assert.Equal(t, DeathCauseLifespan, shell.Cause)

	hq := NewEntity(2, TypeHQ, table)
	died = hq.Update(hq.Data().Lifespan+1, r, nil)
	assert.False(t, died, "деградация вместо смерти")
	assert.Equal(t, TypePlatform, hq.Type)
	assert.Equal(t, 0.0, hq.Lifespan, "срок жизни нового типа отсчитывается заново")
}

// TestArmamentChargeModel проверяет модель зарядов: слот с несколькими
// зарядами стреляет подряд, затем перезаряжается по одному
func TestArmamentChargeModel(t *testing.T) {
	r := rules.Default()
	e := NewEntity(1, TypeCorvette, DefaultTypeTable())

	// Слот 0: 2 снаряда, перезарядка 8 с
	require.True(t, e.HasArmament(0))
	e.ConsumeArmament(0)
	assert.True(t, e.HasArmament(0), "второй заряд доступен сразу")
	e.ConsumeArmament(0)
	assert.False(t, e.HasArmament(0), "оба заряда израсходованы")

	// Половина перезарядки — ещё рано
	e.Update(4, r, nil)
	assert.False(t, e.HasArmament(0))

	// Полная перезарядка одного заряда
	e.Update(4.1, r, nil)
	assert.True(t, e.HasArmament(0))
}

// TestHurtAndRepair проверяет накопление урона, смерть и починку
func TestHurtAndRepair(t *testing.T) {
	e := NewEntity(1, TypeSkiff, DefaultTypeTable())

	assert.False(t, e.Hurt(5, DeathCauseWeapon, 7))
	assert.Equal(t, 15.0, e.Health())

	e.Repair(100)
	assert.Equal(t, 20.0, e.Health(), "починка не выше максимума")

	assert.True(t, e.Hurt(25, DeathCauseWeapon, 7))
	assert.True(t, e.Dead)
	assert.Equal(t, PlayerID(7), e.Killer)

	// Повторное убийство не переписывает причину
	e.Kill(DeathCauseBorder, 9)
	assert.Equal(t, DeathCauseWeapon, e.Cause)
	assert.Equal(t, PlayerID(7), e.Killer)
}

// TestCollidesWithSweep проверяет сметённое пересечение: быстрые сущности
// не проскакивают друг сквозь друга между тиками
func TestCollidesWithSweep(t *testing.T) {
	table := DefaultTypeTable()

	shell := NewEntity(1, TypeShell, table)
	shell.Position = vec.Vec2Float{X: -100, Y: 0}
	shell.Velocity = 150 // за 1 с пролетит далеко за лодку

	boat := NewEntity(2, TypeSkiff, table)
	boat.Position = vec.Vec2Float{X: 0, Y: 0}

	assert.True(t, shell.CollidesWith(boat, 1.0), "свип обязан поймать пролёт")
	assert.False(t, shell.CollidesWith(boat, 0.01), "за короткий тик контакта нет")

	// Параллельные курсы на расстоянии не пересекаются
	far := NewEntity(3, TypeSkiff, table)
	far.Position = vec.Vec2Float{X: -100, Y: 500}
	far.Velocity = 10
	assert.False(t, far.CollidesWith(boat, 1.0))
}

// TestTurretAim проверяет доворот башни к точке прицеливания с
// ограничением угловой скорости
func TestTurretAim(t *testing.T) {
	r := rules.Default()
	e := NewEntity(1, TypeCorvette, DefaultTypeTable())

	// Цель строго слева по борту
	input := &PlayerInput{TurretTarget: vec.Vec2Float{X: 0, Y: 1000}}

	first := e.TurretAngles[0]
	e.Update(0.1, r, input)
	moved := math.Abs(vec.AngleDiff(first, e.TurretAngles[0]))
	assert.LessOrEqual(t, moved, r.TurretTurnRate*0.1+1e-9, "не быстрее лимита")
	assert.Greater(t, moved, 0.0)

	for i := 0; i < 200; i++ {
		e.Update(0.1, r, input)
	}
	want := vec.AngleDiff(e.Direction, input.TurretTarget.Sub(e.TurretWorldPosition(0)).Angle())
	assert.InDelta(t, want, e.TurretAngles[0], 1e-3)
}
