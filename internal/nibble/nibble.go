// Package nibble реализует RLE-кодек для 4-битных значений высот.
// Каждый байт вывода несёт старший ниббл значения и 4-битный счётчик
// повторов (count-1, серии длиной 1..16). Кодек намеренно lossy:
// младший ниббл входных байтов обнуляется.
package nibble

// MaxRun максимальная длина серии, кодируемая одним байтом.
const MaxRun = 16

// EncodedValue возвращает значащую часть байта (старший ниббл).
func EncodedValue(b byte) byte {
	return b & 0xF0
}

// Encode сжимает src в dst и возвращает расширенный dst.
// Сравнение идёт только по старшим нибблам.
func Encode(dst, src []byte) []byte {
	for i := 0; i < len(src); {
		value := src[i] & 0xF0
		run := 1
		for i+run < len(src) && run < MaxRun && src[i+run]&0xF0 == value {
			run++
		}
		dst = append(dst, value|byte(run-1))
		i += run
	}
	return dst
}

// DecodedLen возвращает длину распакованных данных.
func DecodedLen(src []byte) int {
	n := 0
	for _, b := range src {
		n += int(b&0x0F) + 1
	}
	return n
}

// Decode распаковывает src в dst и возвращает расширенный dst.
// Каждый выходной байт содержит только старший ниббл.
func Decode(dst, src []byte) []byte {
	for _, b := range src {
		value := b & 0xF0
		run := int(b&0x0F) + 1
		for j := 0; j < run; j++ {
			dst = append(dst, value)
		}
	}
	return dst
}
