package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/annel0/naval-game/internal/api"
	"github.com/annel0/naval-game/internal/config"
	"github.com/annel0/naval-game/internal/eventbus"
	"github.com/annel0/naval-game/internal/logging"
	"github.com/annel0/naval-game/internal/observability"
	"github.com/annel0/naval-game/internal/physics"
	"github.com/annel0/naval-game/internal/rules"
	"github.com/annel0/naval-game/internal/terrain"
	"github.com/annel0/naval-game/internal/vec"
	"github.com/annel0/naval-game/internal/world"
)

func main() {
	configPath := flag.String("config", "", "путь к YAML конфигурации (или ENV NAVAL_CONFIG)")
	flag.Parse()

	// Инициализируем систему логирования
	if err := logging.InitDefaultLogger("server"); err != nil {
		log.Fatalf("❌ Ошибка инициализации логирования: %v", err)
	}
	defer logging.CloseDefaultLogger()

	logging.Info("⚓ Запуск сервера морской симуляции...")

	// === КОНФИГУРАЦИЯ ===
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Error("❌ Ошибка чтения конфигурации: %v", err)
		log.Fatalf("❌ Ошибка чтения конфигурации: %v", err)
	}

	balance, err := rules.Load(cfg.Paths.Rules)
	if err != nil {
		log.Fatalf("❌ Ошибка чтения баланса: %v", err)
	}

	table := world.DefaultTypeTable()
	if cfg.Paths.Types != "" {
		table, err = world.LoadTypeTable(cfg.Paths.Types)
		if err != nil {
			log.Fatalf("❌ Ошибка чтения таблицы типов: %v", err)
		}
	}

	tickRate := cfg.Server.GetTickRate()
	logging.Info("📡 Конфигурация: граница %.0f м, сектор %.0f м, тик %d Гц",
		cfg.World.BorderRadius, cfg.World.SectorSize, tickRate)

	// === ТЕЛЕМЕТРИЯ ===
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Server.EnableOTLP {
		shutdown, err := observability.InitTelemetry(ctx, "naval-game-server")
		if err != nil {
			logging.Warn("OTLP недоступен, продолжаем без трассировки: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logging.Warn("Ошибка завершения телеметрии: %v", err)
				}
			}()
		}
	}

	// === КОМПОНЕНТЫ СИМУЛЯЦИИ ===
	source := terrain.NewPerlinSource(cfg.Terrain.Seed)
	store := terrain.NewStore(source, time.Duration(cfg.Terrain.RegenMinutes)*time.Minute)

	w := world.NewWorld(cfg.World.BorderRadius, cfg.World.SectorSize, table)

	bus := eventbus.NewMemoryBus(1024)
	if err := eventbus.StartLoggingListener(bus); err != nil {
		logging.Warn("Логирующий слушатель шины не запущен: %v", err)
	}

	sim := physics.NewPhysics(w, store, balance, bus, cfg.Server.PhaseWorkers, prometheus.DefaultRegisterer)

	// Начальная сцена: препятствия и боты, чтобы headless-прогон
	// упражнял резолвер целиком
	spawnScene(w, cfg, table)

	// === СЕРВИСНЫЙ REST ===
	rest := api.NewRestServer(api.Config{
		Port:    fmt.Sprintf(":%d", cfg.Server.GetOpsPort()),
		World:   w,
		Terrain: store,
		Bus:     bus,
	})
	rest.Start()

	// === ЦИКЛ ТИКОВ ===
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	dt := 1.0 / float64(tickRate)
	ticker := time.NewTicker(time.Duration(float64(time.Second) * dt))
	defer ticker.Stop()

	repairTicker := time.NewTicker(time.Minute)
	defer repairTicker.Stop()

	logging.Info("🌊 Симуляция запущена: %d сущностей, %d владельцев", w.Count(), w.Players().Count())

	var tick uint64
	for {
		select {
		case <-ticker.C:
			tick++
			_, span := observability.StartTickSpan(ctx, tick)
			sim.Update(dt)
			driveBots(sim, w, tick)
			span.End()

		case <-repairTicker.C:
			store.Repair()
			store.Debug()

		case sig := <-stop:
			logging.Info("🛑 Получен сигнал %v, останавливаемся...", sig)

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			if err := rest.Stop(shutdownCtx); err != nil {
				logging.Warn("Ошибка остановки REST: %v", err)
			}
			shutdownCancel()

			logging.Info("⚓ Сервер остановлен. Сущностей на момент остановки: %d", w.Count())
			return
		}
	}
}

// spawnScene наполняет пустой мир: нефтяные платформы по кругу и лодки
// ботов на свободной воде.
func spawnScene(w *world.World, cfg *config.Config, table *world.EntityTypeTable) {
	rng := rand.New(rand.NewSource(cfg.Terrain.Seed))

	for i := 0; i < cfg.World.Obstacles; i++ {
		angle := float64(i) / float64(cfg.World.Obstacles) * 2 * math.Pi
		dist := cfg.World.BorderRadius * (0.3 + 0.4*rng.Float64())
		pos := vec.FromAngle(angle).Mul(dist)
		w.Spawn(world.TypePlatform, world.PlayerIDInvalid, pos, 0)
	}

	hulls := []world.EntityType{world.TypeSkiff, world.TypeCorvette, world.TypeSubmarine, world.TypeRamship}
	for i := 0; i < cfg.World.BotBoats; i++ {
		bot := w.Players().Add(fmt.Sprintf("bot-%02d", i+1), true)

		pos := vec.Vec2Float{
			X: (rng.Float64()*2 - 1) * cfg.World.BorderRadius * 0.8,
			Y: (rng.Float64()*2 - 1) * cfg.World.BorderRadius * 0.8,
		}
		boat := w.Spawn(hulls[i%len(hulls)], bot.ID, pos, rng.Float64()*2*math.Pi)
		if err := w.Players().BindBoat(bot.ID, boat.ID); err != nil {
			logging.Warn("Лодка бота не привязана: %v", err)
		}

		bot.Input.VelocityTarget = boat.Data().Speed * 0.6
		bot.Input.DirectionTarget = boat.Direction
	}
}

// driveBots примитивный автопилот ботов: периодическая смена курса и
// редкие выстрелы, чтобы в headless-прогоне жили все ветки резолвера.
func driveBots(sim *physics.Physics, w *world.World, tick uint64) {
	if tick%50 != 0 {
		return
	}

	rng := rand.New(rand.NewSource(int64(tick)))

	// Арена держит RLock внутри ForEach: собираем ботов, действуем после
	var bots []*world.Player
	w.Players().ForEach(func(p *world.Player) {
		if p.Bot {
			bots = append(bots, p)
		}
	})

	for _, p := range bots {
		// Погибший бот возвращается в игру на начальном корпусе
		if p.BoatID == 0 {
			pos := vec.Vec2Float{
				X: (rng.Float64()*2 - 1) * w.BorderRadius() * 0.8,
				Y: (rng.Float64()*2 - 1) * w.BorderRadius() * 0.8,
			}
			boat := w.Spawn(world.TypeSkiff, p.ID, pos, rng.Float64()*2*math.Pi)
			if err := w.Players().BindBoat(p.ID, boat.ID); err != nil {
				logging.Warn("Респавн бота не привязан: %v", err)
			}
		}

		boat, ok := w.Get(p.BoatID)
		if !ok {
			continue
		}

		p.Input.DirectionTarget = rng.Float64() * 2 * math.Pi
		p.Input.TurretTarget = boat.Position.AddScaled(vec.FromAngle(p.Input.DirectionTarget), 400)

		if rng.Intn(4) == 0 && len(boat.Data().Armaments) > 0 {
			_ = sim.Fire(p.ID, rng.Intn(len(boat.Data().Armaments)))
		}
	}
}
