package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/naval-game/internal/eventbus"
	"github.com/annel0/naval-game/internal/logging"
	"github.com/annel0/naval-game/internal/world"
)

// TerrainDebugger отдаёт отладочное состояние рельефа
type TerrainDebugger interface {
	DebugString() string
	Generated() int64
}

// RestServer сервисный REST-слой: health, метрики и отладочные срезы
// состояния симуляции. Игрового транспорта здесь нет.
type RestServer struct {
	router  *gin.Engine
	world   *world.World
	terrain TerrainDebugger
	bus     eventbus.EventBus
	metrics *ServerMetrics
	port    string
	srv     *http.Server
	log     *logging.Logger
}

// Config содержит конфигурацию REST сервера
type Config struct {
	Port    string // адрес вида ":8088"
	World   *world.World
	Terrain TerrainDebugger
	Bus     eventbus.EventBus
}

// NewRestServer создает сервисный REST сервер
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New() // без стандартного logger/recovery
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("naval_ops_api"))

	server := &RestServer{
		router:  router,
		world:   config.World,
		terrain: config.Terrain,
		bus:     config.Bus,
		metrics: NewServerMetrics(),
		port:    config.Port,
		log:     logging.GetServerLogger(),
	}

	server.setupRoutes()
	return server
}

// setupRoutes настраивает сервисные маршруты
func (rs *RestServer) setupRoutes() {
	rs.router.GET("/health", rs.handleHealth)
	rs.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	debug := rs.router.Group("/debug")
	{
		debug.GET("/terrain", rs.handleTerrain)
		debug.GET("/stats", rs.handleStats)
		debug.GET("/players", rs.handlePlayers)
	}
}

// Start запускает HTTP-сервер в отдельной горутине
func (rs *RestServer) Start() {
	rs.srv = &http.Server{
		Addr:              rs.port,
		Handler:           rs.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		rs.log.Info("сервисный REST слушает %s", rs.port)
		if err := rs.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			rs.log.Error("ошибка REST сервера: %v", err)
		}
	}()
}

// Stop останавливает HTTP-сервер с дедлайном
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.srv == nil {
		return nil
	}
	return rs.srv.Shutdown(ctx)
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": rs.metrics.Uptime().String(),
	})
}

func (rs *RestServer) handleTerrain(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"generated_chunks": rs.terrain.Generated(),
		"occupancy":        rs.terrain.DebugString(),
	})
}

func (rs *RestServer) handleStats(c *gin.Context) {
	cpuPercent, _ := rs.metrics.CPUUsage()

	stats := gin.H{
		"uptime":    rs.metrics.Uptime().String(),
		"entities":  rs.world.Count(),
		"players":   rs.world.Players().Count(),
		"cpu_pct":   cpuPercent,
		"memory_mb": rs.metrics.MemoryUsageMB(),
		"runtime":   rs.metrics.MemoryStats(),
	}
	if rs.bus != nil {
		stats["eventbus"] = rs.bus.Metrics()
	}

	c.JSON(http.StatusOK, stats)
}

func (rs *RestServer) handlePlayers(c *gin.Context) {
	type playerView struct {
		ID    world.PlayerID `json:"id"`
		Name  string         `json:"name"`
		Score int            `json:"score"`
		Bot   bool           `json:"bot"`
		Boat  world.EntityID `json:"boat,omitempty"`
	}

	var players []playerView
	rs.world.Players().ForEach(func(p *world.Player) {
		players = append(players, playerView{
			ID: p.ID, Name: p.Name, Score: p.Score, Bot: p.Bot, Boat: p.BoatID,
		})
	})

	c.JSON(http.StatusOK, gin.H{"players": players})
}
