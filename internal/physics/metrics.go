package physics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics инкапсулирует Prometheus-метрики резолвера. Регистратор
// передаётся снаружи, чтобы тесты могли держать изолированные реестры.
type Metrics struct {
	phaseDuration *prometheus.HistogramVec
	entities      prometheus.Gauge
	collisions    prometheus.Counter
	deaths        prometheus.Counter
	lootSpawned   prometheus.Counter
	shotsFired    prometheus.Counter
}

// NewMetrics создаёт и регистрирует метрики резолвера
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		phaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "physics",
			Name:      "phase_duration_seconds",
			Help:      "Длительность фаз тика симуляции.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}, []string{"phase"}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "physics",
			Name:      "entities",
			Help:      "Число сущностей в мире после тика.",
		}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "collisions_total",
			Help:      "Общее число разрешённых контактных столкновений.",
		}),
		deaths: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "deaths_total",
			Help:      "Общее число погибших сущностей.",
		}),
		lootSpawned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "loot_spawned_total",
			Help:      "Общее число предметов, выпавших из погибших лодок.",
		}),
		shotsFired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "physics",
			Name:      "shots_fired_total",
			Help:      "Общее число выстрелов, произведённых лодками.",
		}),
	}

	reg.MustRegister(m.phaseDuration, m.entities, m.collisions, m.deaths, m.lootSpawned, m.shotsFired)
	return m
}
