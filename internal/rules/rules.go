package rules

import (
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules содержит все балансные константы движка одним инжектируемым объектом.
// Объект неизменяем после загрузки; резолвер и сущности только читают его.

type Rules struct {
	// Защита недавно заспавнившихся: множитель урона растёт от floor до 1
	// в течение окна. Аннулируется после апгрейда лодки с начального уровня.
	SpawnGraceSeconds float64 `yaml:"spawn_grace_seconds"`
	SpawnGraceFloor   float64 `yaml:"spawn_grace_floor"`

	// Множитель близости попадания (оружие по лодке), ограничен [Min, Max].
	ProximityMin float64 `yaml:"proximity_min"`
	ProximityMax float64 `yaml:"proximity_max"`

	// Тараны: базовый коэффициент урона от min() здоровья, модификаторы
	// подвида "ram" и сила импульса от встречной скорости.
	RamDamageFactor   float64 `yaml:"ram_damage_factor"`
	RamDealMultiplier float64 `yaml:"ram_deal_multiplier"`
	RamResistFactor   float64 `yaml:"ram_resist_factor"`
	RamImpulseFactor  float64 `yaml:"ram_impulse_factor"`

	// Граница мира: урон за секунду снаружи, сила выталкивания и
	// множитель радиуса, за которым лодка погибает сразу.
	BorderDamagePerSecond float64 `yaml:"border_damage_per_second"`
	BorderPushMPS         float64 `yaml:"border_push_mps"`
	BorderClearance       float64 `yaml:"border_clearance"`

	// Коллекционные предметы: починка, очки и притяжение к лодкам.
	CollectibleRepair        float64 `yaml:"collectible_repair"`
	CollectibleScore         int     `yaml:"collectible_score"`
	CollectibleAttractRadius float64 `yaml:"collectible_attract_radius"`
	CollectibleAttractRate   float64 `yaml:"collectible_attract_rate"`

	// Мины и прочее неуправляемое оружие: зона и скорость дрейфа к врагу.
	MineAttractRadius float64 `yaml:"mine_attract_radius"`
	MineAttractRate   float64 `yaml:"mine_attract_rate"`

	// Самонаведение: конус захвата от текущего курса или текущей цели
	// и базовая скорость подтягивания цели.
	HomingConeRadians float64 `yaml:"homing_cone_radians"`
	HomingLerpBase    float64 `yaml:"homing_lerp_base"`

	// Авиация: дальность сброса суббоеприпаса и кривая шанса быть
	// сбитым ПВО (шанс растёт с близостью, зона ограничена радиусом).
	AircraftDropRange float64 `yaml:"aircraft_drop_range"`
	AntiAircraftScale float64 `yaml:"anti_aircraft_scale"`
	AntiAircraftRange float64 `yaml:"anti_aircraft_range"`

	// Очки: награда за убийство = база + score жертвы / доля;
	// после смерти score жертвы делится пополам, но не выше капа.
	KillRewardBase     int `yaml:"kill_reward_base"`
	KillRewardShareDiv int `yaml:"kill_reward_share_div"`
	ScoreHalveCap      int `yaml:"score_halve_cap"`

	// Лут при смерти лодки: штук на метр длины корпуса.
	LootPerMeter float64 `yaml:"loot_per_meter"`

	// Движение: потолок ускорения и скорость изменения глубины подлодок.
	MaxAccelerationMPS2 float64 `yaml:"max_acceleration_mps2"`
	AltitudeRate        float64 `yaml:"altitude_rate"`
	TurretTurnRate      float64 `yaml:"turret_turn_rate"`

	// Урон лодке за секунду контакта с сушей (не амфибии) и с препятствием,
	// скорость выталкивания от препятствия и скорость срытия грунта
	// дноуглубителем (единицы высоты в секунду).
	TerrainDamagePerSecond  float64 `yaml:"terrain_damage_per_second"`
	ObstacleDamagePerSecond float64 `yaml:"obstacle_damage_per_second"`
	ObstaclePushMPS         float64 `yaml:"obstacle_push_mps"`
	DredgePerSecond         float64 `yaml:"dredge_per_second"`
}

// Default возвращает баланс по умолчанию
func Default() *Rules {
	return &Rules{
		SpawnGraceSeconds: 15,
		SpawnGraceFloor:   0.25,

		ProximityMin: 0.5,
		ProximityMax: 1.5,

		RamDamageFactor:   0.3,
		RamDealMultiplier: 2.0,
		RamResistFactor:   0.5,
		RamImpulseFactor:  0.5,

		BorderDamagePerSecond: 4,
		BorderPushMPS:         6,
		BorderClearance:       1.1,

		CollectibleRepair:        2,
		CollectibleScore:         1,
		CollectibleAttractRadius: 40,
		CollectibleAttractRate:   10,

		MineAttractRadius: 60,
		MineAttractRate:   4,

		HomingConeRadians: math.Pi / 4,
		HomingLerpBase:    2.5,

		AircraftDropRange: 100,
		AntiAircraftScale: 1.0,
		AntiAircraftRange: 150,

		KillRewardBase:     10,
		KillRewardShareDiv: 4,
		ScoreHalveCap:      80,

		LootPerMeter: 1.0 / 30.0,

		MaxAccelerationMPS2: 6,
		AltitudeRate:        0.25,
		TurretTurnRate:      math.Pi / 4,

		TerrainDamagePerSecond:  8,
		ObstacleDamagePerSecond: 6,
		ObstaclePushMPS:         5,
		DredgePerSecond:         40,
	}
}

// Load читает YAML с балансом; пустой путь означает дефолты.
func Load(path string) (*Rules, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	r := Default()
	if err := yaml.Unmarshal(data, r); err != nil {
		return nil, err
	}

	return r, nil
}

// SpawnGrace возвращает множитель урона для сущности с указанным временем
// жизни. Монотонно растёт от floor до 1 за SpawnGraceSeconds.
func (r *Rules) SpawnGrace(lifespanSeconds float64) float64 {
	if lifespanSeconds >= r.SpawnGraceSeconds {
		return 1
	}
	t := lifespanSeconds / r.SpawnGraceSeconds
	return r.SpawnGraceFloor + (1-r.SpawnGraceFloor)*t
}

// ProximityMultiplier возвращает множитель урона по квадрату расстояния
// от носовой точки цели. Монотонно не возрастает по distSq и ограничен
// диапазоном [ProximityMin, ProximityMax].
func (r *Rules) ProximityMultiplier(distSq, referenceSq float64) float64 {
	if referenceSq < 1 {
		referenceSq = 1 // защита от деления на ~0
	}
	m := r.ProximityMax - distSq/referenceSq
	if m < r.ProximityMin {
		return r.ProximityMin
	}
	if m > r.ProximityMax {
		return r.ProximityMax
	}
	return m
}

// KillReward возвращает очки за убийство жертвы с указанным счётом.
func (r *Rules) KillReward(victimScore int) int {
	return r.KillRewardBase + victimScore/r.KillRewardShareDiv
}

// DeathScore возвращает счёт жертвы после смерти: половина, но не выше капа,
// чтобы респавн не возвращался сразу в верхний тир.
func (r *Rules) DeathScore(score int) int {
	half := score / 2
	if half > r.ScoreHalveCap {
		return r.ScoreHalveCap
	}
	return half
}
