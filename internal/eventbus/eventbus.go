package eventbus

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Типы событий симуляции. Шина — внутрипроцессный шов, к которому
// подключился бы сетевой слой трансляции состояний.
const (
	EventEntityDied     = "entity.died"
	EventPlayerKill     = "player.kill"
	EventScoreChanged   = "score.changed"
	EventTerrainSculpt  = "terrain.sculpted"
	EventEntitySpawned  = "entity.spawned"
	EventBorderContact  = "border.contact"
	EventCollectiblePop = "collectible.pickup"
)

// Envelope контейнер события симуляции. Поля фиксированы для
// версиирования и трассировки.
type Envelope struct {
	ID        string            // UUID события
	Timestamp time.Time         // время создания (UTC)
	Source    string            // компонент-источник ("physics", "terrain")
	EventType string            // один из Event* выше
	Version   int               // схема полезной нагрузки
	Priority  int               // 0=Low … 9=Critical (для backpressure)
	Metadata  map[string]string // полезная нагрузка ключ-значение
}

// NewEnvelope создаёт конверт с заполненными ID и временем
func NewEnvelope(source, eventType string, priority int, metadata map[string]string) *Envelope {
	return &Envelope{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Source:    source,
		EventType: eventType,
		Version:   1,
		Priority:  priority,
		Metadata:  metadata,
	}
}

// Filter позволяет подписаться только на нужные события
type Filter struct {
	Types   []string // если пусто — все типы
	Sources []string // если пусто — все источники
}

// Subscription возвращается при подписке; позволяет отписаться
type Subscription interface {
	Unsubscribe()
}

// Handler потребляет события
type Handler func(ctx context.Context, ev *Envelope)

// Stats агрегированные метрики шины
type Stats struct {
	Published uint64
	Consumed  uint64
	Dropped   uint64
	InFlight  int
}

// EventBus определяет абстракцию шины событий симуляции
type EventBus interface {
	Publish(ctx context.Context, ev *Envelope) error
	Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error)
	Metrics() Stats
}

//================ In-Memory implementation =================//

type memoryBus struct {
	mu          sync.RWMutex
	subscribers map[int]subscriber
	nextID      int
	stats       Stats
	buffer      chan *Envelope
}

type subscriber struct {
	filter  Filter
	handler Handler
	ctx     context.Context
	cancel  context.CancelFunc
}

// NewMemoryBus создаёт in-memory шину с указанным буфером
func NewMemoryBus(capacity int) EventBus {
	mb := &memoryBus{
		subscribers: make(map[int]subscriber),
		buffer:      make(chan *Envelope, capacity),
	}
	go mb.dispatchLoop()
	return mb
}

func (mb *memoryBus) Publish(ctx context.Context, ev *Envelope) error {
	select {
	case mb.buffer <- ev:
		mb.mu.Lock()
		mb.stats.Published++
		mb.mu.Unlock()
		return nil
	default:
		// Буфер заполнен: низкий приоритет дропаем, чтобы тик симуляции
		// никогда не блокировался на телеметрии
		if ev.Priority < 5 {
			mb.mu.Lock()
			mb.stats.Dropped++
			mb.mu.Unlock()
			return nil
		}
		select {
		case mb.buffer <- ev:
			mb.mu.Lock()
			mb.stats.Published++
			mb.mu.Unlock()
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (mb *memoryBus) Subscribe(ctx context.Context, f Filter, h Handler) (Subscription, error) {
	mb.mu.Lock()
	id := mb.nextID
	mb.nextID++
	cctx, cancel := context.WithCancel(ctx)
	mb.subscribers[id] = subscriber{filter: f, handler: h, ctx: cctx, cancel: cancel}
	mb.mu.Unlock()

	return &memSub{bus: mb, id: id}, nil
}

func (mb *memoryBus) Metrics() Stats {
	mb.mu.RLock()
	defer mb.mu.RUnlock()
	s := mb.stats
	s.InFlight = len(mb.buffer)
	return s
}

func (mb *memoryBus) dispatchLoop() {
	for ev := range mb.buffer {
		mb.mu.RLock()
		subs := make([]subscriber, 0, len(mb.subscribers))
		for _, sub := range mb.subscribers {
			subs = append(subs, sub)
		}
		mb.mu.RUnlock()

		for _, sub := range subs {
			if !matchFilter(ev, sub.filter) {
				continue
			}
			go func(s subscriber) {
				select {
				case <-s.ctx.Done():
					return
				default:
					s.handler(s.ctx, ev)
					mb.mu.Lock()
					mb.stats.Consumed++
					mb.mu.Unlock()
				}
			}(sub)
		}
	}
}

func matchFilter(ev *Envelope, f Filter) bool {
	match := func(val string, arr []string) bool {
		if len(arr) == 0 {
			return true
		}
		for _, v := range arr {
			if v == val {
				return true
			}
		}
		return false
	}
	return match(ev.EventType, f.Types) && match(ev.Source, f.Sources)
}

type memSub struct {
	bus *memoryBus
	id  int
}

func (s *memSub) Unsubscribe() {
	s.bus.mu.Lock()
	if sub, ok := s.bus.subscribers[s.id]; ok {
		sub.cancel()
		delete(s.bus.subscribers, s.id)
	}
	s.bus.mu.Unlock()
}
