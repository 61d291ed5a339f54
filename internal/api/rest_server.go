package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/annel0/dungeon-gen/internal/dungeon"
	"github.com/annel0/dungeon-gen/internal/grid"
	"github.com/annel0/dungeon-gen/internal/logging"
	"github.com/annel0/dungeon-gen/internal/metrics"
	"github.com/annel0/dungeon-gen/internal/middleware"
	"github.com/annel0/dungeon-gen/internal/storage"
	"github.com/annel0/dungeon-gen/internal/vec"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// Version версия API
const Version = "v0.1.0"

// RestServer REST API генератора подземелий
type RestServer struct {
	router     *gin.Engine
	httpServer *http.Server
	port       string
	log        *logging.Logger
	metrics    *ServerMetrics

	defaults      dungeon.Config
	catalog       dungeon.Catalog
	store         storage.LayoutStore
	replicator    dungeon.Replicator
	genMetrics    *metrics.Generation
	defaultBudget int
	maxBudget     int
}

// Config зависимости REST сервера
type Config struct {
	Port          string
	Dungeon       dungeon.Config
	Catalog       dungeon.Catalog
	Store         storage.LayoutStore // по умолчанию хранилище в памяти
	Replicator    dungeon.Replicator  // может быть nil
	Metrics       *metrics.Generation // может быть nil
	Registry      *prometheus.Registry
	DefaultBudget int
	MaxBudget     int
}

// NewRestServer создаёт сервер и настраивает маршруты
func NewRestServer(config Config) *RestServer {
	if config.Port == "" {
		config.Port = ":8088"
	}
	if config.Store == nil {
		config.Store = storage.NewMemoryStore()
	}
	if config.DefaultBudget <= 0 {
		config.DefaultBudget = 30
	}
	if config.MaxBudget <= 0 {
		config.MaxBudget = 500
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())

	// === Observability middleware ===
	router.Use(otelgin.Middleware("dungeon_api"))
	router.Use(middleware.NewRequestLogger().Handler())

	promMw := middleware.NewPrometheusMiddleware("dungeon_api", config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	rs := &RestServer{
		router:        router,
		port:          config.Port,
		log:           logging.GetServerLogger(),
		metrics:       NewServerMetrics(),
		defaults:      config.Dungeon,
		catalog:       config.Catalog,
		store:         config.Store,
		replicator:    config.Replicator,
		genMetrics:    config.Metrics,
		defaultBudget: config.DefaultBudget,
		maxBudget:     config.MaxBudget,
	}
	rs.setupRoutes()
	return rs
}

// Router gin-роутер (для тестов и встраивания)
func (rs *RestServer) Router() *gin.Engine { return rs.router }

func (rs *RestServer) setupRoutes() {
	rs.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := rs.router.Group("/api")
	{
		api.GET("/server", rs.handleServerInfo)

		dungeons := api.Group("/dungeons")
		dungeons.POST("", rs.handleGenerate)
		dungeons.GET("", rs.handleList)
		dungeons.GET("/:id", rs.handleGet)
		dungeons.DELETE("/:id", rs.handleDelete)
		dungeons.GET("/:id/floor", rs.handleFloor)
		dungeons.GET("/:id/random-room", rs.handleRandomRoom)
		dungeons.GET("/:id/cells", rs.handleCells)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// GenericResponse общий ответ API
type GenericResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, GenericResponse{Success: false, Message: msg})
}

// GenerateRequest параметры генерации. Пустые поля берутся из конфигурации.
type GenerateRequest struct {
	Seed            int64          `json:"seed"`
	Budget          int            `json:"budget" binding:"omitempty,min=1"`
	Origin          *vec.Vec3Float `json:"origin"`
	FloorBased      *bool          `json:"floor_based"`
	Courtyard       *bool          `json:"courtyard"`
	BuildingShell   *bool          `json:"building_shell"`
	ProceduralRooms *bool          `json:"procedural_rooms"`
}

// Summary краткое описание результата генерации
type Summary struct {
	ID            uuid.UUID          `json:"id"`
	Seed          int64              `json:"seed"`
	Rooms         int                `json:"rooms"`
	Hallways      int                `json:"hallways"`
	Staircases    int                `json:"staircases"`
	Doors         int                `json:"doors"`
	Structures    int                `json:"structures"`
	RoomLocations []vec.Vec3         `json:"room_locations"`
	Floor         dungeon.FloorState `json:"floor"`
	DurationMs    int64              `json:"duration_ms"`
}

func summarize(res *dungeon.Result) Summary {
	return Summary{
		ID:            res.ID,
		Seed:          res.Seed,
		Rooms:         len(res.Rooms),
		Hallways:      len(res.Hallways),
		Staircases:    len(res.Staircases),
		Doors:         len(res.Doors),
		Structures:    len(res.Structures),
		RoomLocations: res.RoomLocations,
		Floor:         res.Floor,
		DurationMs:    res.Duration.Milliseconds(),
	}
}

func (rs *RestServer) configFor(req GenerateRequest) dungeon.Config {
	cfg := rs.defaults
	if req.Seed != 0 {
		cfg.Seed = req.Seed
	}
	if req.FloorBased != nil {
		cfg.FloorBased = *req.FloorBased
	}
	if req.Courtyard != nil {
		cfg.GroundFloorCourtyard = *req.Courtyard
	}
	if req.BuildingShell != nil {
		cfg.BuildingShell = *req.BuildingShell
	}
	if req.ProceduralRooms != nil {
		cfg.ProceduralRooms = *req.ProceduralRooms
	}
	return cfg
}

func (rs *RestServer) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, "Неверный формат запроса: "+err.Error())
			return
		}
	}

	budget := req.Budget
	if budget == 0 {
		budget = rs.defaultBudget
	}
	if budget > rs.maxBudget {
		fail(c, http.StatusBadRequest, fmt.Sprintf("budget больше допустимого (%d)", rs.maxBudget))
		return
	}

	origin := vec.Vec3Float{X: 10, Y: 10, Z: 10}
	if req.Origin != nil {
		origin = *req.Origin
	}

	opts := []dungeon.Option{dungeon.WithMetrics(rs.genMetrics)}
	if rs.replicator != nil {
		opts = append(opts, dungeon.WithReplicator(rs.replicator))
	}
	gen, err := dungeon.NewGenerator(rs.configFor(req), rs.catalog, opts...)
	if err != nil {
		if errors.Is(err, dungeon.ErrInvalidConfig) || errors.Is(err, dungeon.ErrNoTemplates) {
			fail(c, http.StatusBadRequest, err.Error())
			return
		}
		rs.log.Error("Не удалось создать генератор: %v", err)
		fail(c, http.StatusInternalServerError, "Внутренняя ошибка сервера")
		return
	}

	res, err := gen.GenerateDungeon(c.Request.Context(), origin, budget)
	if err != nil {
		rs.log.Error("Ошибка генерации: %v", err)
		fail(c, http.StatusInternalServerError, "Ошибка генерации")
		return
	}

	if err := rs.store.Save(c.Request.Context(), res); err != nil {
		rs.log.Error("Не удалось сохранить подземелье %s: %v", res.ID, err)
		fail(c, http.StatusInternalServerError, "Не удалось сохранить подземелье")
		return
	}

	c.JSON(http.StatusCreated, GenericResponse{
		Success: true,
		Message: "Подземелье сгенерировано",
		Data:    summarize(res),
	})
}

func (rs *RestServer) handleList(c *gin.Context) {
	ids, err := rs.store.List(c.Request.Context())
	if err != nil {
		rs.log.Error("Не удалось получить список подземелий: %v", err)
		fail(c, http.StatusInternalServerError, "Ошибка хранилища")
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Подземелья", Data: ids})
}

// load разбирает :id и загружает результат; при ошибке отвечает сам
func (rs *RestServer) load(c *gin.Context) (*dungeon.Result, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "Некорректный id")
		return nil, false
	}

	res, err := rs.store.Load(c.Request.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		fail(c, http.StatusNotFound, "Подземелье не найдено")
		return nil, false
	}
	if err != nil {
		rs.log.Error("Не удалось загрузить подземелье %s: %v", id, err)
		fail(c, http.StatusInternalServerError, "Ошибка хранилища")
		return nil, false
	}
	return res, true
}

func (rs *RestServer) handleGet(c *gin.Context) {
	res, ok := rs.load(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Подземелье", Data: res})
}

func (rs *RestServer) handleDelete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "Некорректный id")
		return
	}
	if err := rs.store.Delete(c.Request.Context(), id); err != nil {
		rs.log.Error("Не удалось удалить подземелье %s: %v", id, err)
		fail(c, http.StatusInternalServerError, "Ошибка хранилища")
		return
	}
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Подземелье удалено"})
}

func queryFloat(c *gin.Context, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, fmt.Errorf("параметр %s обязателен", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("параметр %s: %w", name, err)
	}
	return v, nil
}

func (rs *RestServer) handleFloor(c *gin.Context) {
	res, ok := rs.load(c)
	if !ok {
		return
	}

	var loc vec.Vec3Float
	var err error
	if loc.X, err = queryFloat(c, "x"); err == nil {
		if loc.Y, err = queryFloat(c, "y"); err == nil {
			loc.Z, err = queryFloat(c, "z")
		}
	}
	if err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, GenericResponse{
		Success: true,
		Message: "Номер этажа",
		Data:    gin.H{"floor": res.FloorNumber(loc), "location": loc},
	})
}

func (rs *RestServer) handleRandomRoom(c *gin.Context) {
	res, ok := rs.load(c)
	if !ok {
		return
	}
	if len(res.RoomLocations) == 0 {
		fail(c, http.StatusNotFound, "В подземелье нет комнат")
		return
	}

	rng := dungeon.NewRand(0)
	loc := res.RoomLocations[rng.Intn(len(res.RoomLocations))]
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Случайная комната", Data: loc})
}

// CellView непустая ячейка сетки
type CellView struct {
	Position vec.Vec3 `json:"position"`
	State    string   `json:"state"`
}

func (rs *RestServer) handleCells(c *gin.Context) {
	res, ok := rs.load(c)
	if !ok {
		return
	}
	if res.Grid == nil {
		fail(c, http.StatusNotFound, "Сетка не сохранена")
		return
	}

	filterZ := c.Query("z") != ""
	z, err := strconv.Atoi(c.DefaultQuery("z", "0"))
	if err != nil {
		fail(c, http.StatusBadRequest, "параметр z: "+err.Error())
		return
	}

	cells := []CellView{}
	res.Grid.ForEach(func(pos vec.Vec3, st grid.CellState) {
		if st == grid.Empty || (filterZ && pos.Z != z) {
			return
		}
		cells = append(cells, CellView{Position: pos, State: st.String()})
	})
	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Ячейки", Data: cells})
}

func (rs *RestServer) handleServerInfo(c *gin.Context) {
	cpuPercent, _ := rs.metrics.GetCPUUsage()
	rssMB, _ := rs.metrics.GetRSS()

	info := map[string]interface{}{
		"version":     Version,
		"name":        "Dungeon Generator",
		"status":      "running",
		"uptime":      rs.metrics.GetUptime(),
		"rss_mb":      fmt.Sprintf("%.1f", rssMB),
		"cpu_percent": fmt.Sprintf("%.1f", cpuPercent),
		"runtime":     rs.metrics.GetDetailedMemoryStats(),
	}

	c.JSON(http.StatusOK, GenericResponse{Success: true, Message: "Информация о сервере", Data: info})
}

func (rs *RestServer) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// Start запускает HTTP сервер; блокирует до остановки
func (rs *RestServer) Start() error {
	rs.httpServer = &http.Server{
		Addr:              rs.port,
		Handler:           rs.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	rs.log.Info("🌐 REST API запущен на %s", rs.port)
	if err := rs.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop корректно останавливает сервер
func (rs *RestServer) Stop(ctx context.Context) error {
	if rs.httpServer == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return rs.httpServer.Shutdown(ctx)
}
