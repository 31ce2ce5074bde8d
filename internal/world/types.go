package world

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EntityKind представляет род сущности
type EntityKind uint8

const (
	EntityKindBoat EntityKind = iota
	EntityKindWeapon
	EntityKindDecoy
	EntityKindCollectible
	EntityKindObstacle
	EntityKindAircraft
)

var kindNames = map[EntityKind]string{
	EntityKindBoat:        "boat",
	EntityKindWeapon:      "weapon",
	EntityKindDecoy:       "decoy",
	EntityKindCollectible: "collectible",
	EntityKindObstacle:    "obstacle",
	EntityKindAircraft:    "aircraft",
}

var kindByName = invert(kindNames)

// String возвращает имя рода
func (k EntityKind) String() string { return kindNames[k] }

// EntitySubKind уточняет поведение внутри рода
type EntitySubKind uint8

const (
	EntitySubKindHull EntitySubKind = iota
	EntitySubKindSubmarine
	EntitySubKindDredger
	EntitySubKindHovercraft
	EntitySubKindRam
	EntitySubKindTorpedo
	EntitySubKindMissile
	EntitySubKindShell
	EntitySubKindDepthCharge
	EntitySubKindMine
	EntitySubKindSam
	EntitySubKindPlane
	EntitySubKindHeli
	EntitySubKindStructure
	EntitySubKindScore
	EntitySubKindRepair
	EntitySubKindSonar
)

var subKindNames = map[EntitySubKind]string{
	EntitySubKindHull:        "hull",
	EntitySubKindSubmarine:   "submarine",
	EntitySubKindDredger:     "dredger",
	EntitySubKindHovercraft:  "hovercraft",
	EntitySubKindRam:         "ram",
	EntitySubKindTorpedo:     "torpedo",
	EntitySubKindMissile:     "missile",
	EntitySubKindShell:       "shell",
	EntitySubKindDepthCharge: "depthcharge",
	EntitySubKindMine:        "mine",
	EntitySubKindSam:         "sam",
	EntitySubKindPlane:       "plane",
	EntitySubKindHeli:        "heli",
	EntitySubKindStructure:   "structure",
	EntitySubKindScore:       "score",
	EntitySubKindRepair:      "repair",
	EntitySubKindSonar:       "sonar",
}

var subKindByName = invert(subKindNames)

// String возвращает имя подвида
func (sk EntitySubKind) String() string { return subKindNames[sk] }

func invert[K comparable, V comparable](m map[K]V) map[V]K {
	out := make(map[V]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// EntityType индекс типа в таблице типов
type EntityType uint16

// EntityTypeInvalid обозначает отсутствие типа (DowngradeTo, SubMunition)
const EntityTypeInvalid = EntityType(0xFFFF)

// Armament описывает слот вооружения типа лодки
type Armament struct {
	Type       EntityType // тип спавнящейся сущности
	Count      int        // число зарядов в слоте
	ReloadTime float64    // секунды до восстановления заряда
}

// Turret описывает башню типа лодки
type Turret struct {
	PositionForward float64 // смещение вдоль корпуса от центра, м
	PositionSide    float64 // смещение поперёк корпуса, м
	Azimuth         float64 // угол покоя относительно курса, рад
}

// EntityTypeData статические данные типа. Таблица строится при старте и
// далее только читается; сущности никогда её не мутируют.
type EntityTypeData struct {
	Label        string
	Kind         EntityKind
	SubKind      EntitySubKind
	Level        int     // тир; защита новичка аннулируется при Level > 1
	Length       float64 // м
	Width        float64 // м
	Radius       float64 // м; 0 = max(Length, Width)/2 при сборке таблицы
	Speed        float64 // м/с
	MaxHealth    float64
	Damage       float64
	Lifespan     float64 // секунды; 0 = бессрочно
	SensorRange  float64 // м; дальность ГСН/радара
	AntiAircraft float64 // вероятность сбития цели в упор, 0..1
	Armaments    []Armament
	Turrets      []Turret
	DowngradeTo  EntityType // во что деградирует по истечении Lifespan
	SubMunition  EntityType // что сбрасывает авиация
}

// EntityTypeTable неизменяемая таблица статических данных типов.
// Передаётся в симуляцию при старте; глобального состояния нет.
type EntityTypeTable struct {
	data    []EntityTypeData
	byLabel map[string]EntityType
}

// NewEntityTypeTable собирает таблицу и вычисляет производные поля
func NewEntityTypeTable(data []EntityTypeData) *EntityTypeTable {
	table := &EntityTypeTable{
		data:    data,
		byLabel: make(map[string]EntityType, len(data)),
	}
	for i := range table.data {
		d := &table.data[i]
		if d.Radius == 0 {
			d.Radius = max(d.Length, d.Width) / 2
		}
		table.byLabel[d.Label] = EntityType(i)
	}
	return table
}

// Data возвращает статические данные типа
func (t *EntityTypeTable) Data(et EntityType) *EntityTypeData {
	return &t.data[et]
}

// ByLabel ищет тип по имени
func (t *EntityTypeTable) ByLabel(label string) (EntityType, bool) {
	et, ok := t.byLabel[label]
	return et, ok
}

// Len возвращает число типов в таблице
func (t *EntityTypeTable) Len() int { return len(t.data) }

//================ YAML загрузка =================//

type typeSpec struct {
	Label        string  `yaml:"label"`
	Kind         string  `yaml:"kind"`
	SubKind      string  `yaml:"subkind"`
	Level        int     `yaml:"level"`
	Length       float64 `yaml:"length"`
	Width        float64 `yaml:"width"`
	Speed        float64 `yaml:"speed"`
	MaxHealth    float64 `yaml:"max_health"`
	Damage       float64 `yaml:"damage"`
	Lifespan     float64 `yaml:"lifespan"`
	SensorRange  float64 `yaml:"sensor_range"`
	AntiAircraft float64 `yaml:"anti_aircraft"`
	Armaments    []struct {
		Type   string  `yaml:"type"`
		Count  int     `yaml:"count"`
		Reload float64 `yaml:"reload"`
	} `yaml:"armaments"`
	Turrets []struct {
		Forward float64 `yaml:"forward"`
		Side    float64 `yaml:"side"`
		Azimuth float64 `yaml:"azimuth"`
	} `yaml:"turrets"`
	DowngradeTo string `yaml:"downgrade_to"`
	SubMunition string `yaml:"sub_munition"`
}

// LoadTypeTable читает таблицу типов из YAML. Ссылки между типами
// (armaments, downgrade_to, sub_munition) задаются именами и
// разрешаются после чтения всего файла.
func LoadTypeTable(path string) (*EntityTypeTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var specs []typeSpec
	if err := yaml.Unmarshal(raw, &specs); err != nil {
		return nil, fmt.Errorf("world: разбор таблицы типов: %w", err)
	}

	data := make([]EntityTypeData, len(specs))
	labels := make(map[string]EntityType, len(specs))
	for i, spec := range specs {
		labels[spec.Label] = EntityType(i)

		kind, ok := kindByName[spec.Kind]
		if !ok {
			return nil, fmt.Errorf("world: тип %q: неизвестный род %q", spec.Label, spec.Kind)
		}
		subKind, ok := subKindByName[spec.SubKind]
		if !ok {
			return nil, fmt.Errorf("world: тип %q: неизвестный подвид %q", spec.Label, spec.SubKind)
		}

		data[i] = EntityTypeData{
			Label:        spec.Label,
			Kind:         kind,
			SubKind:      subKind,
			Level:        spec.Level,
			Length:       spec.Length,
			Width:        spec.Width,
			Speed:        spec.Speed,
			MaxHealth:    spec.MaxHealth,
			Damage:       spec.Damage,
			Lifespan:     spec.Lifespan,
			SensorRange:  spec.SensorRange,
			AntiAircraft: spec.AntiAircraft,
			DowngradeTo:  EntityTypeInvalid,
			SubMunition:  EntityTypeInvalid,
		}
	}

	resolve := func(owner, label string) (EntityType, error) {
		if label == "" {
			return EntityTypeInvalid, nil
		}
		et, ok := labels[label]
		if !ok {
			return EntityTypeInvalid, fmt.Errorf("world: тип %q ссылается на неизвестный тип %q", owner, label)
		}
		return et, nil
	}

	for i, spec := range specs {
		for _, a := range spec.Armaments {
			et, err := resolve(spec.Label, a.Type)
			if err != nil {
				return nil, err
			}
			data[i].Armaments = append(data[i].Armaments, Armament{
				Type:       et,
				Count:      a.Count,
				ReloadTime: a.Reload,
			})
		}
		for _, tu := range spec.Turrets {
			data[i].Turrets = append(data[i].Turrets, Turret{
				PositionForward: tu.Forward,
				PositionSide:    tu.Side,
				Azimuth:         tu.Azimuth,
			})
		}

		var err error
		if data[i].DowngradeTo, err = resolve(spec.Label, spec.DowngradeTo); err != nil {
			return nil, err
		}
		if data[i].SubMunition, err = resolve(spec.Label, spec.SubMunition); err != nil {
			return nil, err
		}
	}

	return NewEntityTypeTable(data), nil
}
