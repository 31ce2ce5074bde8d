package terrain

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"

	"github.com/annel0/naval-game/internal/vec"
)

// snapshotVersion версия формата блоба; блоб осмыслен только для
// совпадающей версии декодера.
const snapshotVersion = uint32(1)

// Snapshot пишет в w сжатый блоб всей сетки: gzip поверх ниббл-RLE.
// Формат: version u32 | stride u32 | length u32 | RLE-байты.
func (s *Store) Snapshot(w io.Writer) error {
	full := vec.AABB{
		Min: sampleToWorld(0, 0),
		Max: sampleToWorld(Width, Width),
	}

	data := s.At(full)
	defer data.Pool()

	gz := gzip.NewWriter(w)

	header := [3]uint32{snapshotVersion, uint32(data.Stride), uint32(data.Length)}
	if err := binary.Write(gz, binary.LittleEndian, header[:]); err != nil {
		return fmt.Errorf("terrain: запись заголовка снапшота: %w", err)
	}
	if _, err := gz.Write(data.Data); err != nil {
		return fmt.Errorf("terrain: запись снапшота: %w", err)
	}
	return gz.Close()
}
