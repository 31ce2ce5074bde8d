package terrain

import (
	"math"
	"sync/atomic"
)

const (
	// chunkSizeBits размер чанка в битах
	chunkSizeBits = 6
	// chunkSize ширина и высота чанка в сэмплах (степень двойки)
	chunkSize = 1 << chunkSizeBits

	// nibblesPerWord сэмплов в одном упакованном слове
	nibblesPerWord = 8
	// chunkWords слов на чанк
	chunkWords = chunkSize * chunkSize / nibblesPerWord
)

// chunk хранит область карты высот как нибблы, упакованные по 8 в uint32.
// Чтение и точечная запись лок-фри: load/CAS на содержащем слове.
// Поле regen читается и пишется только держателем эксклюзивного доступа
// (генерация под мьютексом хранилища либо Repair).
type chunk struct {
	words [chunkWords]uint32
	regen int64 // unix-миллисекунды следующей частичной регенерации
}

// wordIndex возвращает индекс слова и сдвиг ниббла для локальных координат
func wordIndex(x, y uint) (word int, shift uint) {
	idx := (y&(chunkSize-1))<<chunkSizeBits | (x & (chunkSize - 1))
	return int(idx / nibblesPerWord), (idx % nibblesPerWord) * 4
}

// at возвращает высоту сэмпла; значим только старший ниббл результата
func (c *chunk) at(x, y uint) byte {
	word, shift := wordIndex(x, y)
	w := atomic.LoadUint32(&c.words[word])
	return byte((w>>shift)&0xF) << 4
}

// set записывает высоту сэмпла (берётся старший ниббл value)
func (c *chunk) set(x, y uint, value byte) {
	word, shift := wordIndex(x, y)
	nib := uint32(value>>4) & 0xF

	for {
		old := atomic.LoadUint32(&c.words[word])
		new := old&^(uint32(0xF)<<shift) | nib<<shift
		if old == new || atomic.CompareAndSwapUint32(&c.words[word], old, new) {
			return
		}
	}
}

// addClamped прибавляет delta (в единицах высоты 0..255) к сэмплу,
// ограничивая результат диапазоном [0, max]. Конкурентные вызовы
// сериализуются CAS-циклом на содержащем слове.
func (c *chunk) addClamped(x, y uint, delta float64, max byte) {
	word, shift := wordIndex(x, y)
	maxNib := int32(max >> 4)

	for {
		old := atomic.LoadUint32(&c.words[word])
		oldNib := int32((old >> shift) & 0xF)

		newNib := oldNib + int32(math.Round(delta/16))
		if newNib < 0 {
			newNib = 0
		} else if newNib > maxNib {
			newNib = maxNib
		}

		if newNib == oldNib {
			return
		}

		new := old&^(uint32(0xF)<<shift) | uint32(newNib)<<shift
		if atomic.CompareAndSwapUint32(&c.words[word], old, new) {
			return
		}
	}
}

// generateChunk генерирует чанк из источника. Если c != nil, вместо полной
// генерации каждый сэмпл сдвигается на один шаг ниббла к целевому значению
// (частичная регенерация после скульптинга).
func generateChunk(source Source, cx, cy int, c *chunk) *chunk {
	heightmap := source.Generate(cx*chunkSize, cy*chunkSize, chunkSize, chunkSize)

	// Ранняя проверка границ
	_ = heightmap[chunkSize*chunkSize-1]

	if c == nil {
		c = new(chunk)
		for y := uint(0); y < chunkSize; y++ {
			for x := uint(0); x < chunkSize; x++ {
				c.set(x, y, heightmap[y*chunkSize+x])
			}
		}
		return c
	}

	for y := uint(0); y < chunkSize; y++ {
		for x := uint(0); x < chunkSize; x++ {
			target := heightmap[y*chunkSize+x] & 0xF0
			current := c.at(x, y)
			if target > current {
				c.set(x, y, current+0x10)
			} else if target < current {
				c.set(x, y, current-0x10)
			}
		}
	}
	return c
}
