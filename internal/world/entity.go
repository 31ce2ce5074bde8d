package world

import (
	"math"

	"github.com/annel0/naval-game/internal/rules"
	"github.com/annel0/naval-game/internal/vec"
)

// EntityID уникальный идентификатор сущности в пределах мира
type EntityID uint32

// DeathCause причина смерти сущности (для трансляции и начисления очков)
type DeathCause uint8

const (
	DeathCauseNone DeathCause = iota
	DeathCauseWeapon
	DeathCauseRam
	DeathCauseTerrain
	DeathCauseObstacle
	DeathCauseBorder
	DeathCauseLifespan
)

var deathCauseNames = map[DeathCause]string{
	DeathCauseNone:     "",
	DeathCauseWeapon:   "weapon",
	DeathCauseRam:      "ram",
	DeathCauseTerrain:  "terrain",
	DeathCauseObstacle: "obstacle",
	DeathCauseBorder:   "border",
	DeathCauseLifespan: "lifespan",
}

// String возвращает имя причины смерти
func (dc DeathCause) String() string { return deathCauseNames[dc] }

// Collider проверяет столкновение сущности с внешним препятствием
// (рельефом). Интерфейс объявлен здесь, чтобы пакет рельефа мог
// принимать *Entity без циклического импорта.
type Collider interface {
	Collides(e *Entity, seconds float64) bool
}

// Entity динамическое состояние одной сущности мира. Статические данные
// типа живут в таблице и доступны через Data().
//
// Поля мутируются в двух точках тика: фазой A (каждую сущность трогает
// ровно одна горутина) и фазой B (однопоточно). Вне тика сущности
// только читаются.
type Entity struct {
	ID    EntityID
	Type  EntityType
	Owner PlayerID // слабая ссылка: индекс в PlayerArena

	Position  vec.Vec2Float
	Direction float64 // курс, рад
	Velocity  float64 // подписанная скорость вдоль курса, м/с
	Altitude  float64 // -1 (макс. глубина) .. +1 (воздух); 0 — поверхность

	DirectionTarget float64
	VelocityTarget  float64
	AltitudeTarget  float64

	Lifespan float64 // секунды с момента спавна
	Damage   float64 // накопленный урон; смерть при Damage >= MaxHealth

	// Состояние башен и перезарядки по слотам типа; nil у не-лодок
	TurretAngles        []float64 // текущий азимут относительно курса
	ArmamentConsumption []float64 // оставшиеся секунды перезарядки по слотам

	// Кэш сектора пространственного индекса; ведёт пакет world
	sector    sectorID
	sectorIdx int

	Dead   bool
	Cause  DeathCause
	Killer PlayerID // кто убил (для награды); 0 — среда

	data  *EntityTypeData
	table *EntityTypeTable
}

// NewEntity создаёт сущность указанного типа. Слоты башен и вооружения
// инициализируются из таблицы типов.
func NewEntity(id EntityID, et EntityType, table *EntityTypeTable) *Entity {
	data := table.Data(et)

	e := &Entity{
		ID:        id,
		Type:      et,
		data:      data,
		table:     table,
		sectorIdx: -1,
	}

	if n := len(data.Turrets); n > 0 {
		e.TurretAngles = make([]float64, n)
		for i, t := range data.Turrets {
			e.TurretAngles[i] = t.Azimuth
		}
	}
	if n := len(data.Armaments); n > 0 {
		e.ArmamentConsumption = make([]float64, n)
	}

	// Авиация живёт над поверхностью
	if data.Kind == EntityKindAircraft {
		e.Altitude = 1
		e.AltitudeTarget = 1
	}

	return e
}

// Data возвращает статические данные типа сущности
func (e *Entity) Data() *EntityTypeData { return e.data }

// Health возвращает оставшееся здоровье
func (e *Entity) Health() float64 {
	return e.data.MaxHealth - e.Damage
}

// Kill помечает сущность мёртвой с указанием причины и виновника.
// Повторные вызовы сохраняют первую причину.
func (e *Entity) Kill(cause DeathCause, killer PlayerID) {
	if e.Dead {
		return
	}
	e.Dead = true
	e.Cause = cause
	e.Killer = killer
}

// Hurt наносит урон и убивает сущность при исчерпании здоровья.
// Возвращает true, если сущность погибла от этого урона.
func (e *Entity) Hurt(amount float64, cause DeathCause, attacker PlayerID) bool {
	if e.Dead {
		return false
	}
	e.Damage += amount
	if e.Damage >= e.data.MaxHealth {
		e.Kill(cause, attacker)
		return true
	}
	return false
}

// Repair уменьшает накопленный урон, не опускаясь ниже нуля
func (e *Entity) Repair(amount float64) {
	e.Damage = math.Max(0, e.Damage-amount)
}

// SpawnGrace возвращает множитель входящего урона по защите новичка.
// Лодки выше начального уровня защиту теряют.
func (e *Entity) SpawnGrace(r *rules.Rules) float64 {
	if e.data.Level > 1 {
		return 1
	}
	return r.SpawnGrace(e.Lifespan)
}

// FrontPosition возвращает мировую точку носа сущности
func (e *Entity) FrontPosition() vec.Vec2Float {
	return e.Position.AddScaled(vec.FromAngle(e.Direction), e.data.Length*0.5)
}

// TurretWorldPosition возвращает мировую позицию башни i
func (e *Entity) TurretWorldPosition(i int) vec.Vec2Float {
	t := &e.data.Turrets[i]
	normal := vec.FromAngle(e.Direction)
	tangent := normal.Rotate(math.Pi / 2)
	return e.Position.AddScaled(normal, t.PositionForward).AddScaled(tangent, t.PositionSide)
}

// HasArmament сообщает, есть ли в слоте i готовый заряд. Слот хранит
// суммарный долг перезарядки; заряд готов, пока долг меньше полного
// времени восстановления всех зарядов, кроме одного.
func (e *Entity) HasArmament(i int) bool {
	if i >= len(e.ArmamentConsumption) {
		return false
	}
	a := &e.data.Armaments[i]
	return e.ArmamentConsumption[i] <= float64(a.Count-1)*a.ReloadTime
}

// ConsumeArmament расходует заряд слота i, добавляя долг перезарядки
func (e *Entity) ConsumeArmament(i int) {
	e.ArmamentConsumption[i] += e.data.Armaments[i].ReloadTime
}

// Update продвигает сущность на dt секунд: срок жизни, доворот курса,
// разгон, глубина, башни, перезарядка и интеграция позиции. Возвращает
// true, если сущность погибла на этом шаге (истечение срока жизни без
// деградации).
//
// Вызывается фазой A: каждую сущность обновляет ровно одна горутина,
// пространственный индекс при этом не мутируется.
func (e *Entity) Update(dt float64, r *rules.Rules, input *PlayerInput) bool {
	e.Lifespan += dt

	// Истечение срока жизни: деградация или смерть
	if e.data.Lifespan > 0 && e.Lifespan >= e.data.Lifespan {
		if e.data.DowngradeTo != EntityTypeInvalid {
			e.downgrade()
		} else {
			e.Kill(DeathCauseLifespan, PlayerIDInvalid)
			return true
		}
	}

	if input != nil {
		e.DirectionTarget = input.DirectionTarget
		e.VelocityTarget = input.VelocityTarget
		e.AltitudeTarget = input.AltitudeTarget
	}

	// Целевая скорость: задний ход ограничен третью максимальной
	target := vec.Clamp(e.VelocityTarget, -e.data.Speed/3, e.data.Speed)

	// Доворот курса: крутой доворот идёт медленнее (обратно угловой
	// ошибке), а корпус, не вышедший на целевой ход, доворачивает хуже —
	// в поворот входят, сбрасывая скорость
	deltaAngle := vec.AngleDiff(e.Direction, e.DirectionTarget)
	errScale := 1 / (1 + math.Abs(deltaAngle))
	velScale := 1.0
	if e.data.Speed > 0 {
		velScale = 1 - 0.5*math.Min(math.Abs(target-e.Velocity)/e.data.Speed, 1)
	}
	turnRate := (math.Pi / 2) * errScale * velScale
	e.Direction = vec.NormalizeAngle(e.Direction + vec.ClampMagnitude(deltaAngle, turnRate*dt))

	// Разгон к целевой скорости с потолком ускорения
	e.Velocity += vec.ClampMagnitude(target-e.Velocity, r.MaxAccelerationMPS2*dt)

	// Глубина меняется плавно; надводные типы прижаты к поверхности
	switch {
	case e.data.Kind == EntityKindAircraft,
		e.data.SubKind == EntitySubKindSubmarine,
		e.data.SubKind == EntitySubKindTorpedo,
		e.data.SubKind == EntitySubKindDepthCharge,
		e.data.SubKind == EntitySubKindSam:
		e.Altitude += vec.ClampMagnitude(e.AltitudeTarget-e.Altitude, r.AltitudeRate*dt)
	default:
		e.Altitude = 0
	}

	// Башни доворачиваются к точке прицеливания с ограничением скорости
	if len(e.TurretAngles) > 0 && input != nil {
		e.aimTurrets(dt, r, input.TurretTarget)
	}

	// Перезарядка: восстанавливается слот с наименьшим остатком, чтобы
	// хоть один был готов как можно раньше
	e.replenishArmaments(dt)

	e.Position = e.Position.AddScaled(vec.FromAngle(e.Direction), e.Velocity*dt)
	return false
}

// downgrade переводит сущность в тип DowngradeTo, сохраняя долю урона
func (e *Entity) downgrade() {
	old := e.data
	e.Type = old.DowngradeTo
	// таблица общая для мира: DowngradeTo валиден по построению
	e.data = e.table.Data(e.Type)

	if old.MaxHealth > 0 && !math.IsInf(old.MaxHealth, 1) {
		e.Damage = e.Damage / old.MaxHealth * e.data.MaxHealth
	} else {
		e.Damage = 0
	}
	e.Lifespan = 0
	e.TurretAngles = nil
	e.ArmamentConsumption = nil
	if n := len(e.data.Armaments); n > 0 {
		e.ArmamentConsumption = make([]float64, n)
	}
}

// aimTurrets доворачивает башни к мировой точке target
func (e *Entity) aimTurrets(dt float64, r *rules.Rules, target vec.Vec2Float) {
	for i := range e.TurretAngles {
		want := vec.AngleDiff(e.Direction, target.Sub(e.TurretWorldPosition(i)).Angle())
		diff := vec.AngleDiff(e.TurretAngles[i], want)
		e.TurretAngles[i] = vec.NormalizeAngle(e.TurretAngles[i] + vec.ClampMagnitude(diff, r.TurretTurnRate*dt))
	}
}

// replenishArmaments тикает перезарядку: в первую очередь добивается
// слот, которому осталось меньше всех
func (e *Entity) replenishArmaments(dt float64) {
	for dt > 0 {
		best := -1
		for i, c := range e.ArmamentConsumption {
			if c > 0 && (best == -1 || c < e.ArmamentConsumption[best]) {
				best = i
			}
		}
		if best == -1 {
			return
		}
		used := math.Min(dt, e.ArmamentConsumption[best])
		e.ArmamentConsumption[best] -= used
		dt -= used
	}
}

// CollidesWith проверяет пересечение с другой сущностью в течение
// seconds секунд: сметённые окружности вдоль текущих курсов, дискретный
// шаг не крупнее меньшего радиуса.
func (e *Entity) CollidesWith(o *Entity, seconds float64) bool {
	rSum := e.data.Radius + o.data.Radius

	va := vec.FromAngle(e.Direction).Mul(e.Velocity)
	vb := vec.FromAngle(o.Direction).Mul(o.Velocity)

	// Относительное движение: шаг подбирается так, чтобы между
	// проверками сущности не проскочили друг сквозь друга
	rel := va.Sub(vb)
	relSpeed := rel.Length()

	minRadius := math.Min(e.data.Radius, o.data.Radius)
	if minRadius < 1 {
		minRadius = 1
	}

	steps := 1
	if relSpeed > 0 {
		steps = int(math.Ceil(relSpeed * seconds / minRadius))
		if steps < 1 {
			steps = 1
		}
	}

	pa, pb := e.Position, o.Position
	stepDt := seconds / float64(steps)
	for i := 0; i <= steps; i++ {
		if pa.DistanceSquaredTo(pb) <= rSum*rSum {
			return true
		}
		pa = pa.AddScaled(va, stepDt)
		pb = pb.AddScaled(vb, stepDt)
	}
	return false
}

// AltitudeOverlap проверяет, находятся ли сущности достаточно близко по
// вертикали, чтобы взаимодействовать
func (e *Entity) AltitudeOverlap(o *Entity) bool {
	return math.Abs(e.Altitude-o.Altitude) <= 0.5
}
