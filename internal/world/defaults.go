package world

import "math"

// Индексы типов в таблице по умолчанию. Боевые константы таблицы —
// умолчания для headless-прогона и тестов; продовая таблица грузится
// из YAML через LoadTypeTable.
const (
	TypeShell EntityType = iota
	TypeTorpedo
	TypeMissile
	TypeMine
	TypeDepthCharge
	TypeSam
	TypeDecoy
	TypeCrate
	TypeBarrel
	TypePlatform
	TypeHQ
	TypeSeaplane
	TypeSkiff
	TypeCorvette
	TypeSubmarine
	TypeDredger
	TypeRamship
)

// DefaultTypeTable возвращает встроенную таблицу типов
func DefaultTypeTable() *EntityTypeTable {
	return NewEntityTypeTable([]EntityTypeData{
		TypeShell: {
			Label: "shell", Kind: EntityKindWeapon, SubKind: EntitySubKindShell,
			Length: 1, Width: 0.3, Speed: 150, Damage: 4, Lifespan: 2,
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
		TypeTorpedo: {
			Label: "torpedo", Kind: EntityKindWeapon, SubKind: EntitySubKindTorpedo,
			Length: 6, Width: 0.6, Speed: 30, Damage: 10, Lifespan: 30, SensorRange: 300,
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
		TypeMissile: {
			Label: "missile", Kind: EntityKindWeapon, SubKind: EntitySubKindMissile,
			Length: 4, Width: 0.5, Speed: 90, Damage: 8, Lifespan: 12, SensorRange: 500,
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
		TypeMine: {
			Label: "mine", Kind: EntityKindWeapon, SubKind: EntitySubKindMine,
			Length: 2, Width: 2, Speed: 4, Damage: 16, Lifespan: 600,
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
		TypeDepthCharge: {
			Label: "depthcharge", Kind: EntityKindWeapon, SubKind: EntitySubKindDepthCharge,
			Length: 1.5, Width: 1, Speed: 5, Damage: 12, Lifespan: 8,
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
		TypeSam: {
			Label: "sam", Kind: EntityKindWeapon, SubKind: EntitySubKindSam,
			Length: 3, Width: 0.4, Speed: 120, Damage: 6, Lifespan: 8, SensorRange: 600,
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
		TypeDecoy: {
			Label: "decoy", Kind: EntityKindDecoy, SubKind: EntitySubKindSonar,
			Length: 2, Width: 0.5, Speed: 5, Lifespan: 20,
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
		TypeCrate: {
			Label: "crate", Kind: EntityKindCollectible, SubKind: EntitySubKindScore,
			Length: 2, Width: 2, Speed: 8, Lifespan: 120,
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
		TypeBarrel: {
			Label: "barrel", Kind: EntityKindCollectible, SubKind: EntitySubKindRepair,
			Length: 2, Width: 2, Speed: 8, Lifespan: 120,
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
		TypePlatform: {
			Label: "platform", Kind: EntityKindObstacle, SubKind: EntitySubKindStructure,
			Length: 60, Width: 60, MaxHealth: math.Inf(1),
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
		TypeHQ: {
			Label: "hq", Kind: EntityKindObstacle, SubKind: EntitySubKindStructure,
			Length: 80, Width: 80, MaxHealth: math.Inf(1), Lifespan: 1800, AntiAircraft: 0.5,
			DowngradeTo: TypePlatform, SubMunition: EntityTypeInvalid,
		},
		TypeSeaplane: {
			Label: "seaplane", Kind: EntityKindAircraft, SubKind: EntitySubKindPlane,
			Length: 10, Width: 12, Speed: 70, Lifespan: 60, SensorRange: 800,
			Armaments: []Armament{
				{Type: TypeTorpedo, Count: 1, ReloadTime: 10},
			},
			DowngradeTo: EntityTypeInvalid, SubMunition: TypeTorpedo,
		},
		TypeSkiff: {
			Label: "skiff", Kind: EntityKindBoat, SubKind: EntitySubKindHull,
			Level: 1, Length: 10, Width: 3, Speed: 17, MaxHealth: 20,
			Armaments: []Armament{
				{Type: TypeShell, Count: 1, ReloadTime: 4},
			},
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
		TypeCorvette: {
			Label: "corvette", Kind: EntityKindBoat, SubKind: EntitySubKindHull,
			Level: 2, Length: 60, Width: 10, Speed: 14, MaxHealth: 60, AntiAircraft: 0.3,
			Armaments: []Armament{
				{Type: TypeShell, Count: 2, ReloadTime: 8},
				{Type: TypeTorpedo, Count: 1, ReloadTime: 12},
			},
			Turrets: []Turret{
				{PositionForward: 18, Azimuth: 0},
				{PositionForward: -20, Azimuth: math.Pi},
			},
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
		TypeSubmarine: {
			Label: "submarine", Kind: EntityKindBoat, SubKind: EntitySubKindSubmarine,
			Level: 2, Length: 70, Width: 8, Speed: 11, MaxHealth: 50,
			Armaments: []Armament{
				{Type: TypeTorpedo, Count: 4, ReloadTime: 10},
				{Type: TypeDecoy, Count: 1, ReloadTime: 20},
			},
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
		TypeDredger: {
			Label: "dredger", Kind: EntityKindBoat, SubKind: EntitySubKindDredger,
			Level: 2, Length: 50, Width: 12, Speed: 9, MaxHealth: 45,
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
		TypeRamship: {
			Label: "ramship", Kind: EntityKindBoat, SubKind: EntitySubKindRam,
			Level: 2, Length: 45, Width: 9, Speed: 16, MaxHealth: 55,
			DowngradeTo: EntityTypeInvalid, SubMunition: EntityTypeInvalid,
		},
	})
}
