package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config корневая структура конфигурации симуляционного сервера.

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	World   WorldConfig   `yaml:"world"`
	Terrain TerrainConfig `yaml:"terrain"`
	Paths   PathsConfig   `yaml:"paths"`
}

type ServerConfig struct {
	OpsPort      int  `yaml:"ops_port"`      // gin: /health, /metrics, /debug/*
	EnableOTLP   bool `yaml:"enable_otlp"`   // экспорт трасс в OTLP-коллектор
	TickRate     int  `yaml:"tick_rate"`     // тиков в секунду
	PhaseWorkers int  `yaml:"phase_workers"` // воркеры фазы A (0 = NumCPU)
}

type WorldConfig struct {
	BorderRadius float64 `yaml:"border_radius"` // радиус игровой зоны в метрах
	SectorSize   float64 `yaml:"sector_size"`   // сторона ячейки секторной сетки в метрах
	BotBoats     int     `yaml:"bot_boats"`     // начальное число ботов для headless-прогона
	Obstacles    int     `yaml:"obstacles"`     // начальное число статических препятствий
}

type TerrainConfig struct {
	Seed         int64 `yaml:"seed"`
	RegenMinutes int   `yaml:"regen_minutes"` // период частичной регенерации чанка
}

type PathsConfig struct {
	Rules string `yaml:"rules"` // YAML с балансными константами
	Types string `yaml:"types"` // YAML с таблицей типов сущностей
}

// GetOpsPort возвращает порт ops-сервера с приоритетом: config -> env -> default
func (s *ServerConfig) GetOpsPort() int {
	return getPortWithEnvFallback(s.OpsPort, "NAVAL_OPS_PORT", 8088)
}

// GetTickRate возвращает частоту тиков, по умолчанию 10 Гц
func (s *ServerConfig) GetTickRate() int {
	if s.TickRate > 0 {
		return s.TickRate
	}
	return 10
}

// getPortWithEnvFallback возвращает порт с приоритетом: config -> env -> default
func getPortWithEnvFallback(configPort int, envVar string, defaultPort int) int {
	if configPort > 0 {
		return configPort
	}

	if envVal := os.Getenv(envVar); envVal != "" {
		if port, err := strconv.Atoi(envVal); err == nil && port > 0 {
			return port
		}
	}

	return defaultPort
}

// Default возвращает конфигурацию по умолчанию
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			TickRate:     10,
			PhaseWorkers: 0,
		},
		World: WorldConfig{
			BorderRadius: 10000,
			SectorSize:   250,
			BotBoats:     8,
			Obstacles:    4,
		},
		Terrain: TerrainConfig{
			Seed:         56,
			RegenMinutes: 30,
		},
	}
}

// Load читает YAML файл конфигурации.
// Если path == "", пытается прочитать из ENV NAVAL_CONFIG или возвращает дефолты.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("NAVAL_CONFIG")
		if path == "" {
			return Default(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
