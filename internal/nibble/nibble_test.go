package nibble

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	// Round-trip для любых байтов сохраняет ровно старшие 4 бита
	rng := rand.New(rand.NewSource(42))

	for trial := 0; trial < 1000; trial++ {
		n := rng.Intn(512)
		src := make([]byte, n)
		rng.Read(src)

		encoded := Encode(nil, src)
		decoded := Decode(nil, encoded)

		require.Equal(t, len(src), len(decoded), "длина после round-trip должна совпадать")
		for i := range src {
			assert.Equal(t, src[i]&0xF0, decoded[i], "байт %d: должен сохраниться только старший ниббл", i)
			assert.Zero(t, decoded[i]&0x0F, "байт %d: младший ниббл должен быть обнулён", i)
		}
	}
}

func TestEncodeEmpty(t *testing.T) {
	assert.Empty(t, Encode(nil, nil))
	assert.Empty(t, Decode(nil, nil))
	assert.Zero(t, DecodedLen(nil))
}

func TestEncodeLongRun(t *testing.T) {
	// Серия из 40 одинаковых значений: 16+16+8 -> 3 байта
	src := make([]byte, 40)
	for i := range src {
		src[i] = 0x70
	}

	encoded := Encode(nil, src)
	assert.Len(t, encoded, 3)
	assert.Equal(t, byte(0x70|15), encoded[0])
	assert.Equal(t, byte(0x70|15), encoded[1])
	assert.Equal(t, byte(0x70|7), encoded[2])
	assert.Equal(t, 40, DecodedLen(encoded))
}

func TestEncodeIgnoresLowNibble(t *testing.T) {
	// Байты с одинаковым старшим нибблом образуют одну серию
	src := []byte{0x31, 0x3F, 0x30, 0x3A}
	encoded := Encode(nil, src)
	require.Len(t, encoded, 1)
	assert.Equal(t, byte(0x30|3), encoded[0])
}

func TestEncodeAlternating(t *testing.T) {
	// Худший случай: чередование значений не сжимается
	src := []byte{0x10, 0x20, 0x10, 0x20}
	encoded := Encode(nil, src)
	assert.Len(t, encoded, 4)
	assert.Equal(t, src, Decode(nil, encoded))
}

func TestDecodedLenMatchesDecode(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	src := make([]byte, 300)
	rng.Read(src)

	encoded := Encode(nil, src)
	assert.Equal(t, len(Decode(nil, encoded)), DecodedLen(encoded))
}

func BenchmarkEncode(b *testing.B) {
	src := make([]byte, 4096)
	rand.New(rand.NewSource(1)).Read(src)
	dst := make([]byte, 0, 4096)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		dst = Encode(dst[:0], src)
	}
}
