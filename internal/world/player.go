package world

import (
	"fmt"
	"sync"

	"github.com/annel0/naval-game/internal/vec"
)

// PlayerID слабая ссылка на владельца: индекс в арене, а не указатель.
// Сущность не может пережить владельца с висячей ссылкой — арена
// возвращает (nil, false) для освобождённых слотов.
type PlayerID uint32

// PlayerIDInvalid обозначает отсутствие владельца
const PlayerIDInvalid = PlayerID(0)

// PlayerInput состояние управления, выставляемое владельцем.
// Фаза A читает его без блокировок: владелец меняет input только
// между тиками.
type PlayerInput struct {
	VelocityTarget  float64       // целевая скорость, м/с
	DirectionTarget float64       // целевой курс, рад
	AltitudeTarget  float64       // целевая глубина для подводных, [-1, 0]
	TurretTarget    vec.Vec2Float // мировая точка прицеливания башен
}

// Player владелец сущностей: счёт, текущая лодка, причина смерти.
type Player struct {
	ID       PlayerID
	Name     string
	Score    int
	BoatID   EntityID // 0 — лодки нет
	DeathMsg string   // причина последней смерти (для слоя трансляции)
	Bot      bool
	Input    PlayerInput
}

// Friendly проверяет дружественность двух владельцев
func (p *Player) Friendly(other *Player) bool {
	return other != nil && p.ID == other.ID
}

// PlayerArena хранит владельцев по индексам. Слоты переиспользуются;
// ID 0 зарезервирован как "нет владельца".
type PlayerArena struct {
	mu      sync.RWMutex
	players map[PlayerID]*Player
	nextID  PlayerID
}

// NewPlayerArena создаёт пустую арену владельцев
func NewPlayerArena() *PlayerArena {
	return &PlayerArena{
		players: make(map[PlayerID]*Player),
		nextID:  1,
	}
}

// Add регистрирует нового владельца
func (a *PlayerArena) Add(name string, bot bool) *Player {
	a.mu.Lock()
	defer a.mu.Unlock()

	p := &Player{
		ID:   a.nextID,
		Name: name,
		Bot:  bot,
	}
	a.players[p.ID] = p
	a.nextID++
	return p
}

// Get возвращает владельца по ID; (nil, false) для освобождённых слотов
func (a *PlayerArena) Get(id PlayerID) (*Player, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	p, ok := a.players[id]
	return p, ok
}

// Remove освобождает слот владельца
func (a *PlayerArena) Remove(id PlayerID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.players, id)
}

// Count возвращает число владельцев
func (a *PlayerArena) Count() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.players)
}

// Mutate применяет fn к владельцу под блокировкой арены и сообщает,
// найден ли владелец. Score/DeathMsg конкурентно читают сервисные
// обработчики, поэтому резолвер меняет эти поля только через Mutate.
// fn не должна обращаться к арене повторно.
func (a *PlayerArena) Mutate(id PlayerID, fn func(p *Player)) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	p, ok := a.players[id]
	if !ok {
		return false
	}
	fn(p)
	return true
}

// ForEach вызывает cb для каждого владельца
func (a *PlayerArena) ForEach(cb func(p *Player)) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	for _, p := range a.players {
		cb(p)
	}
}

// BindBoat привязывает лодку к владельцу. У владельца может быть только
// одна управляемая лодка; повторная привязка — ошибка контракта.
func (a *PlayerArena) BindBoat(id PlayerID, boat EntityID) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	p, ok := a.players[id]
	if !ok {
		return fmt.Errorf("world: владелец %d не найден", id)
	}
	if p.BoatID != 0 {
		return fmt.Errorf("world: владелец %d уже управляет лодкой %d", id, p.BoatID)
	}
	p.BoatID = boat
	return nil
}

// UnbindBoat отвязывает лодку владельца (смерть лодки)
func (a *PlayerArena) UnbindBoat(id PlayerID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if p, ok := a.players[id]; ok {
		p.BoatID = 0
	}
}
