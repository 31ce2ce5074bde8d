package terrain

import (
	"github.com/aquilax/go-perlin"
)

// Source генерирует сырые байты карты высот для прямоугольной области.
// Реализация обязана быть детерминированной относительно (сид, область):
// один и тот же сэмпл возвращает одно и то же значение независимо от
// порядка и размера запросов.
type Source interface {
	Generate(x, y, width, height int) []byte
}

// PerlinSource генерирует высоты многооктавным шумом Перлина.
type PerlinSource struct {
	noise *perlin.Perlin
	seed  int64
}

// Параметры шума
const (
	perlinAlpha   = 2.0 // Сглаживание шума
	perlinBeta    = 2.0 // Частота шума
	perlinOctaves = 3   // Количество октав
	noiseScale    = 0.05
)

// NewPerlinSource создаёт детерминированный источник высот по сиду
func NewPerlinSource(seed int64) *PerlinSource {
	return &PerlinSource{
		noise: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, seed),
		seed:  seed,
	}
}

// Generate возвращает карту высот области в порядке построчного обхода.
// Значение каждого сэмпла занимает полный байт; хранилище значимо
// использует только старший ниббл.
func (ps *PerlinSource) Generate(x, y, width, height int) []byte {
	data := make([]byte, width*height)

	for j := 0; j < height; j++ {
		for i := 0; i < width; i++ {
			nx := float64(x+i) * noiseScale
			ny := float64(y+j) * noiseScale

			// Noise2D возвращает [-1, 1]; приводим к [0, 1]
			v := (ps.noise.Noise2D(nx, ny) + 1.0) / 2.0

			data[j*width+i] = byte(v * 255)
		}
	}

	return data
}

// FlatSource возвращает постоянную высоту; используется в тестах.
type FlatSource byte

// Generate заполняет область постоянным значением
func (fs FlatSource) Generate(x, y, width, height int) []byte {
	data := make([]byte, width*height)
	for i := range data {
		data[i] = byte(fs)
	}
	return data
}
