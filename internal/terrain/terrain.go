package terrain

import (
	"github.com/annel0/naval-game/internal/vec"
	"github.com/annel0/naval-game/internal/world"
)

/*
	Подобранные сиды с удачным рельефом:
		1
		46
		56
*/

// Seed сид генерации по умолчанию
const Seed = int64(56)

// Scale ширина/высота сэмпла в метрах.
// Переводит мировое пространство в пространство террейна.
const Scale = 25

const (
	// GridChunks чанков на сторону ограниченной сетки
	GridChunks = 16
	// Width сэмплов на сторону сетки
	Width = GridChunks * chunkSize
	// OffsetX смещение сетки от начала координат мира по X в метрах
	OffsetX = -Width / 2 * Scale
	// OffsetY смещение сетки от начала координат мира по Y в метрах
	OffsetY = -Width / 2 * Scale
)

// Уровни высот (значим старший ниббл)
const (
	// SandLevel порог посадки на мель: поверхностное оружие гибнет выше него
	SandLevel = byte(0x50)
	// LandLevel порог суши: корпуса сталкиваются выше него
	LandLevel = byte(0x60)
	// GrassLevel потолок скульптинга: выше террейн поднять нельзя
	GrassLevel = byte(0x80)
)

// Terrain хранит рельеф игрового мира и отвечает на запросы высот.
// Все методы можно вызывать конкурентно, кроме Repair и Debug.
type Terrain interface {
	// At возвращает сжатую карту высот области (буфер из пула)
	At(vec.AABB) *Data
	// AtPos возвращает высоту в точке (билинейная интерполяция)
	AtPos(vec.Vec2Float) byte
	// Clamp приводит область к границам и чанкам сетки
	Clamp(vec.AABB) vec.AABB
	// Collides проверяет столкновение сущности с рельефом за dt секунд
	Collides(e *world.Entity, seconds float64) bool
	// Decode распаковывает данные этого террейна в карту высот
	Decode(*Data) ([]byte, error)
	// Sculpt изменяет высоту в окрестности точки.
	Sculpt(pos vec.Vec2Float, change float64)
	// Repair немного восстанавливает рельеф к сгенерированному состоянию.
	// Нельзя вызывать конкурентно с Sculpt.
	Repair()
	// Debug пишет отладочную информацию в лог
	Debug()
}
