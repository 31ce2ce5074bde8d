package terrain

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/annel0/naval-game/internal/logging"
	"github.com/annel0/naval-game/internal/nibble"
	"github.com/annel0/naval-game/internal/vec"
	"github.com/annel0/naval-game/internal/world"
)

// Store реализует Terrain поверх ограниченной сетки лениво генерируемых
// чанков. Указатель на чанк читается атомарно; промах сериализуется
// мьютексом генерации с повторной проверкой, чтобы два читателя не
// сгенерировали один чанк дважды.
type Store struct {
	source        Source
	chunks        [GridChunks * GridChunks]atomic.Pointer[chunk]
	generateMu    sync.Mutex
	regenInterval time.Duration
	jitter        *rand.Rand // используется только из Repair (эксклюзивно)
	generated     atomic.Int64
	log           *logging.Logger
}

// NewStore создаёт хранилище рельефа с указанным источником высот
func NewStore(source Source, regenInterval time.Duration) *Store {
	if regenInterval <= 0 {
		regenInterval = 30 * time.Minute
	}
	return &Store{
		source:        source,
		regenInterval: regenInterval,
		jitter:        rand.New(rand.NewSource(time.Now().UnixNano())),
		log:           logging.GetTerrainLogger(),
	}
}

// getChunk возвращает чанк по координатам чанка, генерируя его при первом
// обращении. Возвращает nil за пределами сетки.
func (s *Store) getChunk(cx, cy int) *chunk {
	if cx < 0 || cy < 0 || cx >= GridChunks || cy >= GridChunks {
		return nil
	}

	slot := &s.chunks[cy*GridChunks+cx]
	if c := slot.Load(); c != nil {
		return c
	}

	s.generateMu.Lock()
	defer s.generateMu.Unlock()

	// Повторная проверка: чанк могли сгенерировать, пока мы ждали мьютекс
	if c := slot.Load(); c != nil {
		return c
	}

	c := generateChunk(s.source, cx, cy, nil)
	c.regen = time.Now().UnixMilli() + s.regenInterval.Milliseconds()
	slot.Store(c)
	s.generated.Add(1)
	return c
}

// atSample возвращает высоту сэмпла сетки; вне сетки — минимальная высота
func (s *Store) atSample(x, y int) byte {
	if x < 0 || y < 0 || x >= Width || y >= Width {
		return 0
	}

	c := s.getChunk(x>>chunkSizeBits, y>>chunkSizeBits)
	if c == nil {
		return 0
	}
	return c.at(uint(x), uint(y))
}

// worldToSample переводит мировые метры в дробные координаты сэмплов
func worldToSample(pos vec.Vec2Float) (float64, float64) {
	return (pos.X - OffsetX) / Scale, (pos.Y - OffsetY) / Scale
}

// sampleToWorld переводит координаты сэмпла в мировые метры
func sampleToWorld(x, y int) vec.Vec2Float {
	return vec.Vec2Float{
		X: float64(x)*Scale + OffsetX,
		Y: float64(y)*Scale + OffsetY,
	}
}

// AtPos возвращает высоту в мировой точке, билинейно интерполируя
// 2x2 соседних сэмпла. Вне сетки возвращается минимальная высота.
func (s *Store) AtPos(pos vec.Vec2Float) byte {
	fx, fy := worldToSample(pos)
	if fx < 0 || fy < 0 || fx >= Width-1 || fy >= Width-1 {
		return 0
	}

	x0, y0 := int(fx), int(fy)
	dx, dy := fx-float64(x0), fy-float64(y0)

	h00 := float64(s.atSample(x0, y0))
	h10 := float64(s.atSample(x0+1, y0))
	h01 := float64(s.atSample(x0, y0+1))
	h11 := float64(s.atSample(x0+1, y0+1))

	top := h00 + (h10-h00)*dx
	bottom := h01 + (h11-h01)*dx
	return byte(top + (bottom-top)*dy)
}

// Clamp приводит область к границам сетки и выравнивает по чанкам,
// чтобы вызывающие могли кэшировать ровно те границы, которые вернёт At.
func (s *Store) Clamp(aabb vec.AABB) vec.AABB {
	fx0, fy0 := worldToSample(aabb.Min)
	fx1, fy1 := worldToSample(aabb.Max)

	x0 := clampSample(int(math.Floor(fx0/chunkSize)) * chunkSize)
	y0 := clampSample(int(math.Floor(fy0/chunkSize)) * chunkSize)
	x1 := clampSample(int(math.Ceil(fx1/chunkSize)) * chunkSize)
	y1 := clampSample(int(math.Ceil(fy1/chunkSize)) * chunkSize)

	return vec.AABB{Min: sampleToWorld(x0, y0), Max: sampleToWorld(x1, y1)}
}

func clampSample(v int) int {
	if v < 0 {
		return 0
	}
	if v > Width {
		return Width
	}
	return v
}

// At возвращает сжатую карту высот области. Границы предварительно
// проходят через Clamp. Буфер нужно вернуть через Data.Pool().
func (s *Store) At(aabb vec.AABB) *Data {
	clamped := s.Clamp(aabb)

	fx0, fy0 := worldToSample(clamped.Min)
	fx1, fy1 := worldToSample(clamped.Max)
	x0, y0, x1, y1 := int(fx0), int(fy0), int(fx1), int(fy1)

	width := x1 - x0
	height := y1 - y0

	data := NewData()
	data.AABB = clamped
	data.Stride = width
	data.Length = width * height

	raw := rawPool.Get().([]byte)[:0]
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			raw = append(raw, s.atSample(x, y))
		}
	}

	data.Data = nibble.Encode(data.Data[:0], raw)
	rawPool.Put(raw[:0])
	return data
}

var rawPool = sync.Pool{
	New: func() interface{} {
		return make([]byte, 0, chunkSize*chunkSize)
	},
}

// Decode распаковывает сжатую область в карту высот
func (s *Store) Decode(data *Data) ([]byte, error) {
	out := nibble.Decode(make([]byte, 0, data.Length), data.Data)
	if len(out) != data.Length {
		return nil, fmt.Errorf("terrain: длина распакованных данных %d не совпадает с ожидаемой %d", len(out), data.Length)
	}
	return out, nil
}

// Collides проверяет, столкнётся ли сущность с рельефом за seconds секунд.
// Поверхностное оружие садится на мель раньше корпусов (порог по подвиду).
func (s *Store) Collides(e *world.Entity, seconds float64) bool {
	data := e.Data()

	// Авиация над рельефом не сталкивается
	if e.Altitude > 0 {
		return false
	}

	threshold := LandLevel
	if data.Kind != world.EntityKindBoat {
		threshold = SandLevel
	}

	sweep := e.Velocity * seconds

	// Малые и медленные сущности: одиночный сэмпл в точке
	if data.Length < Scale && math.Abs(sweep) < Scale {
		return s.AtPos(e.Position) > threshold
	}

	normal := vec.FromAngle(e.Direction)
	tangent := normal.Rotate(math.Pi / 2)

	alongStart := -data.Length * 0.5
	alongEnd := data.Length * 0.5
	if sweep < 0 {
		alongStart += sweep
	} else {
		alongEnd += sweep
	}

	// Шаг ограничен так, чтобы в любом пересекаемом чанке оказался сэмпл
	maxStep := float64(chunkSize) * Scale * 2 / 3
	alongSteps := sweepSteps(alongEnd-alongStart, math.Min(maxStep, math.Max(data.Length*0.499, 1)))
	acrossSteps := sweepSteps(data.Width, math.Min(maxStep, math.Max(data.Width*0.499, 1)))

	for i := 0; i <= alongSteps; i++ {
		along := alongStart + (alongEnd-alongStart)*float64(i)/float64(alongSteps)
		for j := 0; j <= acrossSteps; j++ {
			across := -data.Width*0.5 + data.Width*float64(j)/float64(acrossSteps)

			samplePos := e.Position.AddScaled(normal, along).AddScaled(tangent, across)
			if s.AtPos(samplePos) > threshold {
				return true
			}
		}
	}

	return false
}

// sweepSteps возвращает число шагов (минимум 1) для покрытия span с шагом step
func sweepSteps(span, step float64) int {
	n := int(math.Ceil(math.Abs(span) / step))
	if n < 1 {
		n = 1
	}
	return n
}

// Sculpt применяет билинейно взвешенное изменение высоты к четырём
// сэмплам вокруг точки. Результат ограничен [0, GrassLevel].
// change задаётся в единицах высоты (0..255).
func (s *Store) Sculpt(pos vec.Vec2Float, change float64) {
	fx, fy := worldToSample(pos)
	if fx < 0 || fy < 0 || fx >= Width-1 || fy >= Width-1 {
		return // скульптинг вне сетки — no-op
	}

	x0, y0 := int(fx), int(fy)
	dx, dy := fx-float64(x0), fy-float64(y0)

	weights := [4]struct {
		x, y int
		w    float64
	}{
		{x0, y0, (1 - dx) * (1 - dy)},
		{x0 + 1, y0, dx * (1 - dy)},
		{x0, y0 + 1, (1 - dx) * dy},
		{x0 + 1, y0 + 1, dx * dy},
	}

	for _, sample := range weights {
		c := s.getChunk(sample.x>>chunkSizeBits, sample.y>>chunkSizeBits)
		if c == nil {
			continue
		}
		c.addClamped(uint(sample.x), uint(sample.y), change*sample.w, GrassLevel)
	}
}

// Repair сдвигает сэмплы чанков с истёкшим дедлайном на один шаг ниббла
// к сгенерированному состоянию и переназначает дедлайн с джиттером,
// чтобы чанки не регенерировались синхронно.
func (s *Store) Repair() {
	now := time.Now().UnixMilli()
	interval := s.regenInterval.Milliseconds()

	for cy := 0; cy < GridChunks; cy++ {
		for cx := 0; cx < GridChunks; cx++ {
			c := s.chunks[cy*GridChunks+cx].Load()
			if c == nil || now < c.regen {
				continue
			}

			generateChunk(s.source, cx, cy, c)
			c.regen = now + interval + s.jitter.Int63n(interval/4+1)
		}
	}
}

// Generated возвращает число сгенерированных чанков (для метрик)
func (s *Store) Generated() int64 {
	return s.generated.Load()
}

// DebugString возвращает карту занятости сетки и счётчики
func (s *Store) DebugString() string {
	var b strings.Builder
	fmt.Fprintf(&b, "terrain: %dx%d чанков, сгенерировано %d\n", GridChunks, GridChunks, s.generated.Load())

	for cy := 0; cy < GridChunks; cy++ {
		for cx := 0; cx < GridChunks; cx++ {
			if s.chunks[cy*GridChunks+cx].Load() != nil {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Debug пишет отладочную информацию в лог террейна
func (s *Store) Debug() {
	s.log.Debug("%s", s.DebugString())
}
