package terrain

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/annel0/naval-game/internal/vec"
	"github.com/annel0/naval-game/internal/world"
)

// TestDeterministicGeneration проверяет, что два хранилища с одним сидом
// дают идентичные высоты независимо от порядка обращений
func TestDeterministicGeneration(t *testing.T) {
	a := NewStore(NewPerlinSource(Seed), time.Hour)
	b := NewStore(NewPerlinSource(Seed), time.Hour)

	points := []vec.Vec2Float{
		{X: 0, Y: 0},
		{X: 1000, Y: -2500},
		{X: -7000, Y: 7000},
		{X: 123.4, Y: -987.6},
	}

	// Прогреваем b в обратном порядке, чтобы чанки генерировались иначе
	for i := len(points) - 1; i >= 0; i-- {
		b.AtPos(points[i])
	}

	for _, p := range points {
		assert.Equal(t, a.AtPos(p), b.AtPos(p), "высота в %v должна совпадать", p)
	}
}

// TestAtPosOutsideGrid проверяет минимальную высоту за пределами сетки
func TestAtPosOutsideGrid(t *testing.T) {
	s := NewStore(FlatSource(0x70), time.Hour)

	outside := vec.Vec2Float{X: float64(Width)*Scale + 1000, Y: 0}
	assert.Equal(t, byte(0), s.AtPos(outside))
}

// TestAtDecodeRoundTrip проверяет, что Decode(At(aabb)) возвращает
// карту ожидаемого размера со значениями старшего ниббла источника
func TestAtDecodeRoundTrip(t *testing.T) {
	s := NewStore(FlatSource(0x73), time.Hour)

	data := s.At(vec.NewAABB(vec.Vec2Float{X: -500, Y: -500}, vec.Vec2Float{X: 500, Y: 500}))
	defer data.Pool()

	heights, err := s.Decode(data)
	require.NoError(t, err)
	require.Equal(t, data.Length, len(heights))
	require.NotZero(t, data.Stride)

	for _, h := range heights {
		assert.Equal(t, byte(0x70), h, "значим только старший ниббл")
	}
}

// TestClampAlignsToChunks проверяет выравнивание области по чанкам
func TestClampAlignsToChunks(t *testing.T) {
	s := NewStore(FlatSource(0x10), time.Hour)

	clamped := s.Clamp(vec.NewAABB(vec.Vec2Float{X: -100, Y: -100}, vec.Vec2Float{X: 100, Y: 100}))

	// Повторный Clamp не меняет уже выровненную область
	assert.Equal(t, clamped, s.Clamp(clamped))
	assert.LessOrEqual(t, clamped.Min.X, -100.0)
	assert.GreaterOrEqual(t, clamped.Max.X, 100.0)
}

// TestSculptClampAndRead проверяет скульптинг: изменение видно в AtPos,
// результат ограничен потолком травы и полом нуля
func TestSculptClampAndRead(t *testing.T) {
	s := NewStore(FlatSource(0x70), time.Hour)
	pos := vec.Vec2Float{X: 12.5, Y: -12.5} // внутри сетки

	before := s.AtPos(pos)

	// Многократное поднятие упирается в потолок
	for i := 0; i < 100; i++ {
		s.Sculpt(pos, 64)
	}
	assert.LessOrEqual(t, s.AtPos(pos), GrassLevel)
	assert.Greater(t, s.AtPos(pos), before)

	// Многократное опускание упирается в ноль
	for i := 0; i < 200; i++ {
		s.Sculpt(pos, -64)
	}
	assert.Equal(t, byte(0), s.AtPos(pos))
}

// TestSculptOutsideGridNoop проверяет, что скульптинг вне сетки — no-op
func TestSculptOutsideGridNoop(t *testing.T) {
	s := NewStore(FlatSource(0x70), time.Hour)

	s.Sculpt(vec.Vec2Float{X: 1e9, Y: 1e9}, 64)
	assert.Equal(t, int64(0), s.Generated(), "чанк не должен был сгенерироваться")
}

// TestConcurrentReadersSingleGeneration гоняет читателей по одному чанку:
// чанк обязан сгенерироваться ровно один раз, значения согласованы
func TestConcurrentReadersSingleGeneration(t *testing.T) {
	s := NewStore(NewPerlinSource(Seed), time.Hour)
	pos := vec.Vec2Float{X: 100, Y: 100}

	want := NewStore(NewPerlinSource(Seed), time.Hour).AtPos(pos)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				if got := s.AtPos(pos); got != want {
					t.Errorf("высота %d != %d", got, want)
					return
				}
			}
		}()
	}
	wg.Wait()

	// Точка внутри одного чанка, но билинейная интерполяция могла
	// затронуть соседние сэмплы того же чанка
	assert.Equal(t, int64(1), s.Generated())
}

// TestCollides проверяет пороги посадки на мель для корпусов и оружия
func TestCollides(t *testing.T) {
	table := world.DefaultTypeTable()

	tests := []struct {
		name   string
		height byte
		et     world.EntityType
		want   bool
	}{
		{"лодка над водой", 0x40, world.TypeSkiff, false},
		{"лодка на отмели", 0x60, world.TypeSkiff, false},
		{"лодка на суше", 0x70, world.TypeSkiff, true},
		{"торпеда на отмели", 0x60, world.TypeTorpedo, true},
		{"торпеда на глубине", 0x40, world.TypeTorpedo, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore(FlatSource(tt.height), time.Hour)
			e := world.NewEntity(1, tt.et, table)
			e.Position = vec.Vec2Float{X: 50, Y: 50}
			assert.Equal(t, tt.want, s.Collides(e, 0.1))
		})
	}
}

// TestCollidesAirborneSkips проверяет, что авиация не задевает рельеф
func TestCollidesAirborneSkips(t *testing.T) {
	s := NewStore(FlatSource(0xF0), time.Hour)
	e := world.NewEntity(1, world.TypeSeaplane, world.DefaultTypeTable())
	e.Position = vec.Vec2Float{X: 50, Y: 50}

	assert.False(t, s.Collides(e, 0.1))
}

// TestRepairStepsTowardGenerated проверяет шаговую регенерацию:
// вскопанный чанк с истёкшим дедлайном приближается к исходной высоте
func TestRepairStepsTowardGenerated(t *testing.T) {
	s := NewStore(FlatSource(0x70), -1) // отрицательный интервал заменяется дефолтом
	s.regenInterval = time.Millisecond

	pos := vec.Vec2Float{X: 12.5, Y: 12.5}
	for i := 0; i < 10; i++ {
		s.Sculpt(pos, -64)
	}
	dug := s.AtPos(pos)
	require.Less(t, dug, byte(0x70))

	time.Sleep(5 * time.Millisecond)
	s.Repair()

	repaired := s.AtPos(pos)
	assert.Greater(t, repaired, dug, "высота должна шагнуть к сгенерированной")
	assert.LessOrEqual(t, repaired, byte(0x70))
}

// TestSnapshotWritesCompressedBlob проверяет, что снапшот непустой и
// начинается с gzip-магии
func TestSnapshotWritesCompressedBlob(t *testing.T) {
	s := NewStore(FlatSource(0x30), time.Hour)

	var buf bytes.Buffer
	require.NoError(t, s.Snapshot(&buf))

	raw := buf.Bytes()
	require.Greater(t, len(raw), 2)
	assert.Equal(t, byte(0x1f), raw[0])
	assert.Equal(t, byte(0x8b), raw[1])
}
