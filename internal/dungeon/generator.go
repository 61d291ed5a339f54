package dungeon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/annel0/dungeon-gen/internal/graph"
	"github.com/annel0/dungeon-gen/internal/grid"
	"github.com/annel0/dungeon-gen/internal/logging"
	"github.com/annel0/dungeon-gen/internal/metrics"
	"github.com/annel0/dungeon-gen/internal/observability"
	"github.com/annel0/dungeon-gen/internal/pathfinding"
	"github.com/annel0/dungeon-gen/internal/physics"
	"github.com/annel0/dungeon-gen/internal/spawn"
	"github.com/annel0/dungeon-gen/internal/util"
	"github.com/annel0/dungeon-gen/internal/vec"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// Spawner сервис размещения структур
type Spawner interface {
	TrySpawn(t spawn.Transform, templateID string, checkCollision bool) (*spawn.Handle, error)
	Destroy(h *spawn.Handle) bool
	Records() []spawn.Record
	Reset()
}

// Replicator канал репликации списка комнат удалённым наблюдателям.
// Генератор только пишет в него.
type Replicator interface {
	Replicate(ctx context.Context, dungeonID uuid.UUID, roomLocations []vec.Vec3, generated bool) error
}

// DebugSink отладочный вывод: классификация ячеек и ломаные путей
type DebugSink interface {
	Cells(g *grid.Grid)
	Path(path []vec.Vec3)
}

// Option настройка генератора
type Option func(*Generator)

// WithSpawner подменяет сервис размещения
func WithSpawner(s Spawner) Option {
	return func(g *Generator) { g.spawner = s }
}

// WithReplicator подключает канал репликации
func WithReplicator(r Replicator) Option {
	return func(g *Generator) { g.replicator = r }
}

// WithDebugSink подключает отладочный вывод
func WithDebugSink(d DebugSink) Option {
	return func(g *Generator) { g.debug = d }
}

// WithMetrics подключает Prometheus-метрики
func WithMetrics(m *metrics.Generation) Option {
	return func(g *Generator) { g.metrics = m }
}

// Generator оркестратор генерации подземелья.
// Полный прогон GenerateDungeon и отдельные фазы сериализуются мьютексом.
type Generator struct {
	mu sync.Mutex

	cfg     Config
	catalog Catalog
	log     *logging.Logger

	spawner    Spawner
	replicator Replicator
	debug      DebugSink
	metrics    *metrics.Generation

	rng   *Rand
	noise *util.Noise
	pf    *pathfinding.Pathfinder

	// состояние одного прогона
	grid          *grid.Grid
	groups        []*Group
	roomAt        map[vec.Vec3]*Room
	premadeBounds []Bounds
	replicated    []vec.Vec3
	floor         FloorState
	nextRoomID    int

	vertices      []vec.Vec3
	floorVertices map[int][]vec.Vec3
	selected      []graph.Edge
	floorEdges    map[int][]graph.Edge

	hallways   []vec.Vec3
	hallwaySet map[vec.Vec3]struct{}
	doors      []Door
	doorSet    map[vec.Vec3Float]struct{}
	stairs     []Staircase
	generated  bool
}

// NewGenerator создаёт генератор. Ошибка возвращается только для
// некорректной конфигурации или пустого каталога.
func NewGenerator(cfg Config, catalog Catalog, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := catalog.Validate(cfg.ProceduralRooms); err != nil {
		return nil, err
	}

	pf, err := pathfinding.New(cfg.Size, cfg.Unit, cfg.StairRunUp)
	if err != nil {
		return nil, fmt.Errorf("dungeon: pathfinder: %w", err)
	}

	g := &Generator{
		cfg:     cfg,
		catalog: catalog,
		log:     logging.GetDungeonLogger(),
		rng:     NewRand(cfg.Seed),
		pf:      pf,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.spawner == nil {
		g.spawner = spawn.NewService(physics.NewWorld(), catalog.SpawnTemplates(cfg.Unit)...)
	}
	if cfg.TemplateSelection == SelectNoise {
		g.noise = util.NewNoise(g.rng.Seed(), cfg.NoiseScale)
	}

	if err := g.reset(); err != nil {
		return nil, err
	}
	return g, nil
}

// Config конфигурация генератора
func (g *Generator) Config() Config { return g.cfg }

// Seed фактическое зерно генератора случайных чисел
func (g *Generator) Seed() int64 { return g.rng.Seed() }

// Grid сетка текущего прогона
func (g *Generator) Grid() *grid.Grid {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.grid
}

// Reset пересоздаёт сетку и очищает состояние прогона
func (g *Generator) Reset() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.reset()
}

func (g *Generator) reset() error {
	gr, err := grid.New(g.cfg.Size, g.cfg.Unit, g.cfg.Unit)
	if err != nil {
		return err
	}

	g.grid = gr
	g.groups = nil
	g.roomAt = make(map[vec.Vec3]*Room)
	g.premadeBounds = nil
	g.replicated = nil
	g.floor = NewFloorState()
	g.nextRoomID = 0
	g.vertices = nil
	g.floorVertices = make(map[int][]vec.Vec3)
	g.selected = nil
	g.floorEdges = make(map[int][]graph.Edge)
	g.hallways = nil
	g.hallwaySet = make(map[vec.Vec3]struct{})
	g.doors = nil
	g.doorSet = make(map[vec.Vec3Float]struct{})
	g.stairs = nil
	g.generated = false
	g.spawner.Reset()
	return nil
}

// GenerateDungeon выполняет полный прогон: комнаты, граф, коридоры, очистка,
// двор, потолки, стены. origin: положение входа, budget: число шагов
// размещения комнат (включая вход).
func (g *Generator) GenerateDungeon(ctx context.Context, origin vec.Vec3Float, budget int) (*Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ctx, span := observability.Tracer().Start(ctx, "dungeon.Generate")
	defer span.End()
	span.SetAttributes(
		attribute.Int("dungeon.budget", budget),
		attribute.Int64("dungeon.seed", g.rng.Seed()),
	)

	started := time.Now()
	if err := g.reset(); err != nil {
		return nil, err
	}

	g.phase(ctx, "rooms", func() { g.generateRooms(origin, budget) })
	g.phase(ctx, "triangulate", g.triangulate)
	g.phase(ctx, "graph", g.findPossibleHallways)
	g.phase(ctx, "hallways", g.generateHallways)
	g.phase(ctx, "cleanup", g.cleanUpDungeon)
	g.phase(ctx, "courtyard", g.generateCourtyard)
	g.phase(ctx, "ceilings", g.generateCeilings)
	g.phase(ctx, "walls", g.generateWalls)
	g.generated = true

	if g.cfg.DebugMode && g.debug != nil {
		g.debug.Cells(g.grid)
	}

	id := uuid.New()
	res := g.result(id, time.Since(started))
	span.SetAttributes(
		attribute.String("dungeon.id", id.String()),
		attribute.Int("dungeon.rooms", len(res.Rooms)),
		attribute.Int("dungeon.stairs", len(res.Staircases)),
	)

	if g.replicator != nil {
		if err := g.replicator.Replicate(ctx, id, res.RoomLocations, true); err != nil {
			g.log.Warn("Не удалось реплицировать подземелье %s: %v", id, err)
		}
	}

	g.metrics.ObserveRun(res.Duration, len(res.Rooms))
	counts := make(map[string]int)
	for st, n := range g.grid.Count() {
		counts[st.String()] = n
	}
	g.metrics.SetCells(counts)

	g.log.Info("🏰 Подземелье %s: комнат=%d, коридоров=%d, лестниц=%d, дверей=%d, seed=%d (%v)",
		id, len(res.Rooms), len(res.Hallways), len(res.Staircases), len(res.Doors), res.Seed, res.Duration)
	return res, nil
}

func (g *Generator) phase(ctx context.Context, name string, fn func()) {
	_, span := observability.Tracer().Start(ctx, "dungeon."+name)
	started := time.Now()
	fn()
	g.metrics.ObservePhase(name, time.Since(started))
	span.End()
}

// GenerateRooms размещает вход и комнаты
func (g *Generator) GenerateRooms(origin vec.Vec3Float, budget int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generateRooms(origin, budget)
}

// Triangulate собирает вершины графа из размещённых комнат
func (g *Generator) Triangulate() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.triangulate()
}

// FindPossibleHallways строит граф соединений
func (g *Generator) FindPossibleHallways() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.findPossibleHallways()
}

// GenerateHallways прокладывает коридоры по выбранным рёбрам
func (g *Generator) GenerateHallways() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generateHallways()
}

// CleanUpDungeon удаляет несоединённые комнаты
func (g *Generator) CleanUpDungeon() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cleanUpDungeon()
}

// GenerateCourtyard заполняет пустые ячейки первого этажа комнатами двора
func (g *Generator) GenerateCourtyard() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generateCourtyard()
}

// GenerateCeilings заполняет пустые ячейки верхних этажей потолками
func (g *Generator) GenerateCeilings() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generateCeilings()
}

// GenerateWalls расставляет стены и двери по итоговой классификации ячеек
func (g *Generator) GenerateWalls() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.generateWalls()
}

// Result текущее состояние прогона
func (g *Generator) Result() *Result {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result(uuid.New(), 0)
}

// CurrentFloorNumber номер этажа для мировой позиции
func (g *Generator) CurrentFloorNumber(location vec.Vec3Float) int {
	return g.pf.Layout().FloorOf(location)
}

// RandomRoomLocation случайная точка из реплицируемого списка комнат.
// При пустом списке возвращает нулевой вектор.
func (g *Generator) RandomRoomLocation() vec.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.replicated) == 0 {
		g.log.Error("Список комнат пуст")
		return vec.Zero
	}
	return g.replicated[g.rng.Intn(len(g.replicated))]
}

// RoomLocations реплицируемый список точек комнат
func (g *Generator) RoomLocations() []vec.Vec3 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]vec.Vec3(nil), g.replicated...)
}

// Floor состояние прогрессии этажей
func (g *Generator) Floor() FloorState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.floor
}

func (g *Generator) renderModels() bool {
	return !g.cfg.DebugMode || g.cfg.DebugWithModels
}

// spawnStructure размещает структуру; ошибка логируется и учитывается в метриках
func (g *Generator) spawnStructure(loc vec.Vec3Float, yaw float64, templateID string, kind spawn.Kind, check bool) *spawn.Handle {
	h, err := g.spawner.TrySpawn(spawn.NewTransform(loc, yaw), templateID, check)
	if err != nil {
		g.metrics.SpawnFailed(string(kind))
		if errors.Is(err, spawn.ErrOccupied) {
			g.log.Debug("Место %v занято, %s %q пропущен", loc, kind, templateID)
		} else {
			g.log.Error("Не удалось разместить %s %q в %v: %v", kind, templateID, loc, err)
		}
		return nil
	}
	return h
}
