package physics

import (
	"fmt"
	"math"
	"strconv"

	"github.com/annel0/naval-game/internal/eventbus"
	"github.com/annel0/naval-game/internal/vec"
	"github.com/annel0/naval-game/internal/world"
)

// Fire производит выстрел из слота вооружения лодки владельца.
// Вызывается между тиками: индекс мира доступен для записи.
func (p *Physics) Fire(playerID world.PlayerID, slot int) error {
	player, ok := p.world.Players().Get(playerID)
	if !ok {
		return fmt.Errorf("physics: владелец %d не найден", playerID)
	}
	boat, ok := p.world.Get(player.BoatID)
	if !ok {
		return fmt.Errorf("physics: у владельца %d нет лодки", playerID)
	}

	data := boat.Data()
	if slot < 0 || slot >= len(data.Armaments) {
		return fmt.Errorf("physics: слот %d вне диапазона вооружения %q", slot, data.Label)
	}
	if !boat.HasArmament(slot) {
		return fmt.Errorf("physics: слот %d перезаряжается", slot)
	}

	arm := &data.Armaments[slot]
	weaponData := p.world.Table().Data(arm.Type)

	pos := boat.FrontPosition()
	dir := boat.Direction

	// Снаряды уходят из башни, наведённой ближе всех к точке прицеливания
	if weaponData.SubKind == world.EntitySubKindShell && len(boat.TurretAngles) > 0 {
		i := p.bestTurret(boat, player.Input.TurretTarget)
		pos = boat.TurretWorldPosition(i)
		dir = vec.NormalizeAngle(boat.Direction + boat.TurretAngles[i])
	}

	w := p.world.Spawn(arm.Type, playerID, pos, dir)
	w.Velocity = weaponData.Speed
	w.VelocityTarget = weaponData.Speed
	w.Altitude = boat.Altitude
	w.AltitudeTarget = boat.Altitude

	boat.ConsumeArmament(slot)
	p.metrics.shotsFired.Inc()
	p.publish(eventbus.EventEntitySpawned, 0, map[string]string{
		"type":  weaponData.Label,
		"owner": strconv.FormatUint(uint64(playerID), 10),
	})
	return nil
}

// bestTurret выбирает башню с минимальной угловой ошибкой до цели
func (p *Physics) bestTurret(boat *world.Entity, target vec.Vec2Float) int {
	best, bestErr := 0, math.Inf(1)
	for i := range boat.TurretAngles {
		want := target.Sub(boat.TurretWorldPosition(i)).Angle()
		current := vec.NormalizeAngle(boat.Direction + boat.TurretAngles[i])
		if err := math.Abs(vec.AngleDiff(current, want)); err < bestErr {
			best, bestErr = i, err
		}
	}
	return best
}
