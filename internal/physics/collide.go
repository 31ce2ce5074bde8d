package physics

import (
	"math"
	"strconv"

	"github.com/annel0/naval-game/internal/eventbus"
	"github.com/annel0/naval-game/internal/vec"
	"github.com/annel0/naval-game/internal/world"
)

// steering выбирает лучшую цель субъекта по ходу радиусной итерации.
// Итерация обходит субъекта подряд, поэтому достаточно одного слота:
// смена субъекта сбрасывает состояние.
type steering struct {
	subject *world.Entity
	bestSq  float64
	base    float64 // исходный DirectionTarget субъекта на начало тика
}

func (s *steering) observe(e *world.Entity) {
	if e != s.subject {
		s.subject = e
		s.bestSq = math.Inf(1)
		s.base = e.DirectionTarget
	}
}

// better возвращает true, если weight лучше всех виденных у субъекта
func (s *steering) better(weight float64) bool {
	if weight >= s.bestSq {
		return false
	}
	s.bestSq = weight
	return true
}

func (s *steering) reset() {
	s.subject = nil
}

// updateCollisions фаза B: однопоточный парный проход. Наведение,
// притяжение и контактные столкновения; учёт смертей и отложенные
// спавны выполняются после завершения итерации.
func (p *Physics) updateCollisions(dt float64) {
	p.steering.reset()

	p.world.ForEntitiesAndOthers(
		p.interestRadius,
		func(e *world.Entity, distSq float64, other *world.Entity) (bool, bool) {
			return p.interact(e, other, distSq, dt)
		},
	)

	for _, e := range p.reaped {
		p.bury(e)
	}
	p.reaped = p.reaped[:0]

	for _, req := range p.spawns {
		s := p.world.Spawn(req.entityType, req.owner, req.position, req.direction)
		s.Velocity = req.velocity
		s.VelocityTarget = req.velocity
		s.Altitude = req.altitude
		s.AltitudeTarget = req.altitude
	}
	p.spawns = p.spawns[:0]
}

// interestRadius возвращает радиус интереса субъекта; 0 — субъект
// в фазе B пассивен.
func (p *Physics) interestRadius(e *world.Entity) float64 {
	data := e.Data()
	contact := data.Radius * 2

	switch data.Kind {
	case world.EntityKindBoat, world.EntityKindObstacle, world.EntityKindDecoy:
		return contact
	case world.EntityKindWeapon:
		r := math.Max(contact, data.SensorRange)
		if data.SubKind == world.EntitySubKindMine {
			r = math.Max(r, p.rules.MineAttractRadius)
		}
		return r
	case world.EntityKindCollectible:
		return math.Max(contact, p.rules.CollectibleAttractRadius)
	case world.EntityKindAircraft:
		return math.Max(contact, data.SensorRange)
	}
	return 0
}

// interact обрабатывает пару субъект-объект: сначала бесконтактное
// поведение субъекта, затем контактное столкновение. Контакт разрешает
// участник с большим радиусом — его радиус интереса гарантированно
// покрывает дистанцию касания, и эффект пары применяется ровно один раз.
func (p *Physics) interact(e, other *world.Entity, distSq, dt float64) (removeSubject, removeOther bool) {
	if p.nearMiss(e, other, distSq, dt) {
		p.reaped = append(p.reaped, e)
		return true, false
	}

	if !handlesPair(e, other) {
		return false, false
	}
	if !e.AltitudeOverlap(other) {
		return false, false
	}
	if !e.CollidesWith(other, dt) {
		return false, false
	}

	removeSubject, removeOther = p.collide(e, other, dt)
	if removeSubject {
		p.reaped = append(p.reaped, e)
	}
	if removeOther {
		p.reaped = append(p.reaped, other)
	}
	return removeSubject, removeOther
}

// handlesPair решает, какой из двух визитов пары применяет контактный
// эффект: участник с большим радиусом, при равенстве — с меньшим ID.
func handlesPair(e, o *world.Entity) bool {
	re, ro := e.Data().Radius, o.Data().Radius
	if re != ro {
		return re > ro
	}
	return e.ID < o.ID
}

// friendly проверяет, принадлежат ли сущности одному владельцу.
// Бесхозные сущности среды друг другу не дружественны.
func (p *Physics) friendly(e, o *world.Entity) bool {
	return e.Owner != world.PlayerIDInvalid && e.Owner == o.Owner
}

// nearMiss бесконтактное поведение субъекта рядом с объектом.
// Возвращает true, если субъект погиб (сбит ПВО).
func (p *Physics) nearMiss(e, other *world.Entity, distSq, dt float64) bool {
	data := e.Data()

	switch data.Kind {
	case world.EntityKindWeapon:
		switch data.SubKind {
		case world.EntitySubKindTorpedo, world.EntitySubKindMissile, world.EntitySubKindSam:
			p.guide(e, other, distSq, dt)
		case world.EntitySubKindMine:
			if other.Data().Kind == world.EntityKindBoat && !p.friendly(e, other) {
				p.attract(e, other, distSq, p.rules.MineAttractRadius, p.rules.MineAttractRate)
			}
		}
	case world.EntityKindCollectible:
		if other.Data().Kind == world.EntityKindBoat {
			p.attract(e, other, distSq, p.rules.CollectibleAttractRadius, p.rules.CollectibleAttractRate)
		}
	case world.EntityKindAircraft:
		return p.aircraftBehavior(e, other, distSq, dt)
	}
	return false
}

// guide самонаведение: из целей в конусе захвата выбирается ближайшая
// (ложные цели весят меньше и потому приоритетнее), курс подтягивается
// к ней тем сильнее, чем цель ближе и чем ровнее она в конусе.
func (p *Physics) guide(e, target *world.Entity, distSq, dt float64) {
	if !p.validTarget(e, target) {
		return
	}

	p.steering.observe(e)

	// Конус меряется и от текущего курса, и от целевого: уже
	// довернувшая ракета не теряет цель на краю конуса
	want := target.Position.Sub(e.Position).Angle()
	off := math.Min(
		math.Abs(vec.AngleDiff(e.Direction, want)),
		math.Abs(vec.AngleDiff(p.steering.base, want)),
	)
	if off > p.rules.HomingConeRadians {
		return
	}

	weight := distSq
	if target.Data().Kind == world.EntityKindDecoy {
		weight *= 0.25
	}
	if !p.steering.better(weight) {
		return
	}

	sensor := math.Max(e.Data().SensorRange, 1)
	closeness := 1 - math.Min(1, math.Sqrt(distSq)/sensor)
	centering := 1 - off/p.rules.HomingConeRadians
	t := math.Min(1, p.rules.HomingLerpBase*dt*closeness*centering)

	e.DirectionTarget = vec.NormalizeAngle(p.steering.base + vec.AngleDiff(p.steering.base, want)*t)
	e.AltitudeTarget = target.Altitude
	e.VelocityTarget = e.Data().Speed
}

// validTarget проверяет, может ли оружие навестись на цель
func (p *Physics) validTarget(w, target *world.Entity) bool {
	if p.friendly(w, target) {
		return false
	}

	td := target.Data()
	switch w.Data().SubKind {
	case world.EntitySubKindTorpedo, world.EntitySubKindDepthCharge:
		return (td.Kind == world.EntityKindBoat || td.Kind == world.EntityKindDecoy) &&
			target.Altitude <= 0.25
	case world.EntitySubKindMissile:
		return (td.Kind == world.EntityKindBoat && target.Altitude > -0.25) ||
			td.Kind == world.EntityKindDecoy
	case world.EntitySubKindSam:
		return (td.Kind == world.EntityKindAircraft || td.SubKind == world.EntitySubKindMissile) &&
			target.Altitude > 0.5
	}
	return false
}

// attract дрейф субъекта к ближайшей цели в радиусе притяжения
func (p *Physics) attract(e, target *world.Entity, distSq, radius, rate float64) {
	if distSq > radius*radius {
		return
	}

	p.steering.observe(e)
	if !p.steering.better(distSq) {
		return
	}

	e.DirectionTarget = target.Position.Sub(e.Position).Angle()
	e.VelocityTarget = rate
}

// aircraftBehavior ведёт авиацию к ближайшей вражеской лодке, сбрасывает
// суббоеприпас в зоне сброса и разыгрывает шанс сбития ПВО.
// Возвращает true, если авиация сбита.
func (p *Physics) aircraftBehavior(e, other *world.Entity, distSq, dt float64) bool {
	od := other.Data()
	if od.Kind != world.EntityKindBoat || p.friendly(e, other) {
		return false
	}

	// ПВО: шанс сбития растёт с близостью к цели
	if od.AntiAircraft > 0 && distSq < p.rules.AntiAircraftRange*p.rules.AntiAircraftRange {
		closeness := 1 - math.Sqrt(distSq)/p.rules.AntiAircraftRange
		if p.rng.Float64() < od.AntiAircraft*p.rules.AntiAircraftScale*dt*closeness {
			e.Kill(world.DeathCauseWeapon, other.Owner)
			return true
		}
	}

	p.steering.observe(e)
	if !p.steering.better(distSq) {
		return false
	}

	want := other.Position.Sub(e.Position).Angle()
	e.DirectionTarget = want

	data := e.Data()
	if data.SubMunition != world.EntityTypeInvalid &&
		distSq < p.rules.AircraftDropRange*p.rules.AircraftDropRange &&
		math.Abs(vec.AngleDiff(e.Direction, want)) < p.rules.HomingConeRadians &&
		e.HasArmament(0) {

		e.ConsumeArmament(0)
		p.spawns = append(p.spawns, spawnRequest{
			entityType: data.SubMunition,
			owner:      e.Owner,
			position:   e.Position,
			direction:  e.Direction,
			velocity:   p.world.Table().Data(data.SubMunition).Speed,
			altitude:   0,
		})
		p.publish(eventbus.EventEntitySpawned, 0, map[string]string{
			"type":  p.world.Table().Data(data.SubMunition).Label,
			"owner": strconv.FormatUint(uint64(e.Owner), 10),
		})
	}
	return false
}

// collide применяет контактный эффект пары по сигнатуре родов.
// Возвращает флаги удаления (субъект, объект).
func (p *Physics) collide(e, other *world.Entity, dt float64) (bool, bool) {
	ek := e.Data().Kind
	ko := other.Data().Kind
	friendly := p.friendly(e, other)

	switch {
	case ek == world.EntityKindBoat && ko == world.EntityKindCollectible:
		p.pickup(e, other)
		return false, true
	case ek == world.EntityKindCollectible && ko == world.EntityKindBoat:
		p.pickup(other, e)
		return true, false

	case ek == world.EntityKindBoat && ko == world.EntityKindWeapon:
		if friendly {
			return false, false
		}
		return p.weaponHit(other, e), true
	case ek == world.EntityKindWeapon && ko == world.EntityKindBoat:
		if friendly {
			return false, false
		}
		return true, p.weaponHit(e, other)

	case ek == world.EntityKindBoat && ko == world.EntityKindBoat:
		if friendly {
			return false, false
		}
		return p.ram(e, other, dt)

	case ek == world.EntityKindBoat && ko == world.EntityKindObstacle:
		return p.obstacleContact(e, other, dt), false
	case ek == world.EntityKindObstacle && ko == world.EntityKindBoat:
		return false, p.obstacleContact(other, e, dt)

	case ek == world.EntityKindWeapon && ko == world.EntityKindWeapon:
		if friendly {
			return false, false
		}
		e.Kill(world.DeathCauseWeapon, other.Owner)
		other.Kill(world.DeathCauseWeapon, e.Owner)
		p.metrics.collisions.Inc()
		return true, true

	case ek == world.EntityKindWeapon && ko == world.EntityKindObstacle:
		e.Kill(world.DeathCauseObstacle, world.PlayerIDInvalid)
		return true, false
	case ek == world.EntityKindObstacle && ko == world.EntityKindWeapon:
		other.Kill(world.DeathCauseObstacle, world.PlayerIDInvalid)
		return false, true

	case ek == world.EntityKindWeapon && ko == world.EntityKindDecoy:
		if friendly {
			return false, false
		}
		e.Kill(world.DeathCauseWeapon, other.Owner)
		other.Kill(world.DeathCauseWeapon, e.Owner)
		p.metrics.collisions.Inc()
		return true, true
	case ek == world.EntityKindDecoy && ko == world.EntityKindWeapon:
		if friendly {
			return false, false
		}
		e.Kill(world.DeathCauseWeapon, other.Owner)
		other.Kill(world.DeathCauseWeapon, e.Owner)
		p.metrics.collisions.Inc()
		return true, true

	case ek == world.EntityKindWeapon && ko == world.EntityKindAircraft:
		if friendly {
			return false, false
		}
		other.Kill(world.DeathCauseWeapon, e.Owner)
		e.Kill(world.DeathCauseWeapon, other.Owner)
		p.metrics.collisions.Inc()
		return true, true
	case ek == world.EntityKindAircraft && ko == world.EntityKindWeapon:
		if friendly {
			return false, false
		}
		e.Kill(world.DeathCauseWeapon, other.Owner)
		other.Kill(world.DeathCauseWeapon, e.Owner)
		p.metrics.collisions.Inc()
		return true, true
	}

	return false, false
}

// pickup лодка подбирает коллекционный предмет: починка и очки
func (p *Physics) pickup(boat, item *world.Entity) {
	if item.Data().SubKind == world.EntitySubKindRepair {
		boat.Repair(p.rules.CollectibleRepair)
	}

	score := 0
	if p.world.Players().Mutate(boat.Owner, func(owner *world.Player) {
		owner.Score += p.rules.CollectibleScore
		score = owner.Score
	}) {
		p.publish(eventbus.EventCollectiblePop, 0, map[string]string{
			"player": strconv.FormatUint(uint64(boat.Owner), 10),
			"score":  strconv.Itoa(score),
		})
	}

	item.Kill(world.DeathCauseNone, boat.Owner)
	p.metrics.collisions.Inc()
}

// weaponHit оружие поражает лодку. Урон масштабируется множителем
// близости от носовой точки цели и защитой новичка. Возвращает true,
// если лодка погибла.
func (p *Physics) weaponHit(w, boat *world.Entity) bool {
	refSq := boat.Data().Radius * 2
	refSq *= refSq

	frontSq := w.Position.DistanceSquaredTo(boat.FrontPosition())
	damage := w.Data().Damage * p.rules.ProximityMultiplier(frontSq, refSq) * boat.SpawnGrace(p.rules)

	died := boat.Hurt(damage, world.DeathCauseWeapon, w.Owner)
	w.Kill(world.DeathCauseWeapon, boat.Owner)
	p.metrics.collisions.Inc()
	return died
}

// ram столкновение двух лодок: обоюдный урон от минимального запаса
// здоровья пары и расталкивающие импульсы, обратные массе (длине).
// Возвращает флаги гибели (e, other).
func (p *Physics) ram(a, b *world.Entity, dt float64) (bool, bool) {
	ad, bd := a.Data(), b.Data()

	base := p.rules.RamDamageFactor * math.Min(a.Health(), b.Health()) * dt
	dmgA := base * a.SpawnGrace(p.rules)
	dmgB := base * b.SpawnGrace(p.rules)

	if ad.SubKind == world.EntitySubKindRam {
		dmgB *= p.rules.RamDealMultiplier
		dmgA *= p.rules.RamResistFactor
	}
	if bd.SubKind == world.EntitySubKindRam {
		dmgA *= p.rules.RamDealMultiplier
		dmgB *= p.rules.RamResistFactor
	}

	// Расталкивание вдоль линии центров: лёгкий корпус отлетает сильнее
	away := a.Position.Sub(b.Position).Normalized()
	va := vec.FromAngle(a.Direction).Mul(a.Velocity)
	vb := vec.FromAngle(b.Direction).Mul(b.Velocity)
	closing := math.Max(0, vb.Sub(va).Dot(away))
	impulse := closing * p.rules.RamImpulseFactor
	total := ad.Length + bd.Length

	a.Velocity += impulse * (bd.Length / total) * away.Dot(vec.FromAngle(a.Direction))
	b.Velocity -= impulse * (ad.Length / total) * away.Dot(vec.FromAngle(b.Direction))

	aDied := a.Hurt(dmgA, world.DeathCauseRam, b.Owner)
	bDied := b.Hurt(dmgB, world.DeathCauseRam, a.Owner)
	p.metrics.collisions.Inc()
	return aDied, bDied
}

// obstacleContact лодка трётся о препятствие: урон за секунду контакта
// и выталкивание от центра препятствия. Возвращает true при гибели лодки.
func (p *Physics) obstacleContact(boat, obstacle *world.Entity, dt float64) bool {
	away := boat.Position.Sub(obstacle.Position).Normalized()
	boat.Position = boat.Position.AddScaled(away, p.rules.ObstaclePushMPS*dt)

	damage := p.rules.ObstacleDamagePerSecond * dt * boat.SpawnGrace(p.rules)
	died := boat.Hurt(damage, world.DeathCauseObstacle, obstacle.Owner)
	p.metrics.collisions.Inc()
	return died
}
