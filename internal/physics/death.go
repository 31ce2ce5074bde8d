package physics

import (
	"fmt"
	"math"
	"strconv"

	"github.com/annel0/naval-game/internal/eventbus"
	"github.com/annel0/naval-game/internal/vec"
	"github.com/annel0/naval-game/internal/world"
)

// bury ведёт учёт погибшей сущности: очки, сообщение о смерти, лут,
// события. Вызывается строго вне итераций индекса.
func (p *Physics) bury(e *world.Entity) {
	p.metrics.deaths.Inc()

	data := e.Data()
	if data.Kind != world.EntityKindBoat {
		return
	}

	arena := p.world.Players()

	msg := deathMessage(e, arena)
	victimScore := 0
	if arena.Mutate(e.Owner, func(victim *world.Player) {
		victimScore = victim.Score
		victim.Score = p.rules.DeathScore(victim.Score)
		victim.DeathMsg = msg
	}) {
		p.log.Info("лодка %s (%d) погибла: %s", data.Label, e.ID, msg)
	}

	if e.Killer != world.PlayerIDInvalid && e.Killer != e.Owner {
		killerScore := 0
		if arena.Mutate(e.Killer, func(killer *world.Player) {
			killer.Score += p.rules.KillReward(victimScore)
			killerScore = killer.Score
		}) {
			p.publish(eventbus.EventPlayerKill, 5, map[string]string{
				"killer": strconv.FormatUint(uint64(e.Killer), 10),
				"victim": strconv.FormatUint(uint64(e.Owner), 10),
				"score":  strconv.Itoa(killerScore),
			})
		}
	}

	p.spawnLoot(e)

	p.publish(eventbus.EventEntityDied, 5, map[string]string{
		"entity": strconv.FormatUint(uint64(e.ID), 10),
		"type":   data.Label,
		"cause":  e.Cause.String(),
	})
}

// spawnLoot рассыпает предметы вокруг погибшей лодки. Количество
// пропорционально длине корпуса и дисконтируется защитой новичка,
// чтобы гибель свежего спавна не кормила округу.
func (p *Physics) spawnLoot(e *world.Entity) {
	data := e.Data()

	count := int(math.Round(data.Length * p.rules.LootPerMeter * e.SpawnGrace(p.rules)))
	for i := 0; i < count; i++ {
		angle := p.rng.Float64() * 2 * math.Pi
		dist := p.rng.Float64() * data.Radius
		pos := e.Position.AddScaled(vec.FromAngle(angle), dist)
		p.world.Spawn(world.TypeCrate, world.PlayerIDInvalid, pos, angle)
		p.metrics.lootSpawned.Inc()
	}
}

// deathMessage собирает человекочитаемую причину смерти
func deathMessage(e *world.Entity, arena *world.PlayerArena) string {
	if killer, ok := arena.Get(e.Killer); ok && e.Killer != e.Owner {
		switch e.Cause {
		case world.DeathCauseRam:
			return fmt.Sprintf("протаранен игроком %s", killer.Name)
		default:
			return fmt.Sprintf("потоплен игроком %s", killer.Name)
		}
	}

	switch e.Cause {
	case world.DeathCauseTerrain:
		return "разбился о сушу"
	case world.DeathCauseObstacle:
		return "разбился о препятствие"
	case world.DeathCauseBorder:
		return "вышел за границу мира"
	case world.DeathCauseLifespan:
		return "истёк срок службы"
	default:
		return "погиб"
	}
}
