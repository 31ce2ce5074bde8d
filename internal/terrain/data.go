package terrain

import (
	"sync"

	"github.com/annel0/naval-game/internal/vec"
)

// Data описывает часть карты высот в сжатом ниббл-RLE виде.
// Буферы переиспользуются через пул, чтобы не аллоцировать каждый тик.
type Data struct {
	vec.AABB
	Data   []byte `json:"data"`   // Сжатая карта высот
	Stride int    `json:"stride"` // Ширина области в сэмплах
	Length int    `json:"length"` // Длина распакованных данных
}

var dataPool = sync.Pool{
	New: func() interface{} {
		return &Data{
			Data: make([]byte, 0, 2048),
		}
	},
}

// NewData берёт буфер из пула
func NewData() *Data {
	return dataPool.Get().(*Data)
}

// Pool возвращает буфер в пул; после вызова использовать Data нельзя
func (data *Data) Pool() {
	*data = Data{
		Data: data.Data[:0],
	}
	dataPool.Put(data)
}
