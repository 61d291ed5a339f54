package spawn

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/annel0/dungeon-gen/internal/physics"
	"github.com/annel0/dungeon-gen/internal/vec"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

var (
	// ErrUnknownTemplate шаблон не зарегистрирован
	ErrUnknownTemplate = errors.New("spawn: unknown template")
	// ErrOccupied место занято другой структурой
	ErrOccupied = errors.New("spawn: location is occupied")
)

// Kind тип размещаемой структуры
type Kind string

const (
	KindEntrance Kind = "entrance"
	KindRoom     Kind = "room"
	KindPremade  Kind = "premade"
	KindPathTile Kind = "path_tile"
	KindDoor     Kind = "door"
	KindWall     Kind = "wall"
	KindStairs   Kind = "stairs"
	KindHallway  Kind = "hallway"
	KindCeiling  Kind = "ceiling"
)

// probeExtent размер пробной коробки при проверке занятости
var probeExtent = mgl64.Vec3{1, 1, 1}

// Transform положение, поворот и масштаб структуры
type Transform struct {
	Location mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// NewTransform создаёт трансформ с поворотом вокруг вертикальной оси (градусы)
func NewTransform(location vec.Vec3Float, yawDeg float64) Transform {
	return Transform{
		Location: mgl64.Vec3{location.X, location.Y, location.Z},
		Rotation: mgl64.QuatRotate(mgl64.DegToRad(yawDeg), mgl64.Vec3{0, 0, 1}),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// Position положение в координатах подземелья
func (t Transform) Position() vec.Vec3Float {
	return vec.Vec3Float{X: t.Location[0], Y: t.Location[1], Z: t.Location[2]}
}

// Yaw угол поворота вокруг Z в градусах, нормализованный в (-180, 180]
func (t Transform) Yaw() float64 {
	yaw := mgl64.RadToDeg(2 * math.Atan2(t.Rotation.V[2], t.Rotation.W))
	for yaw > 180 {
		yaw -= 360
	}
	for yaw <= -180 {
		yaw += 360
	}
	return yaw
}

// Template описание шаблона структуры
type Template struct {
	ID     string
	Kind   Kind
	Extent vec.Vec3Float // полуразмеры коллайдера
}

// Handle размещённая структура
type Handle struct {
	ID         uuid.UUID
	TemplateID string
	Kind       Kind
	Transform  Transform
}

// Record сериализуемое описание размещённой структуры
type Record struct {
	ID       string        `json:"id"`
	Template string        `json:"template"`
	Kind     Kind          `json:"kind"`
	Location vec.Vec3Float `json:"location"`
	Yaw      float64       `json:"yaw"`
}

// Record возвращает сериализуемое описание
func (h *Handle) Record() Record {
	return Record{
		ID:       h.ID.String(),
		Template: h.TemplateID,
		Kind:     h.Kind,
		Location: h.Transform.Position(),
		Yaw:      h.Transform.Yaw(),
	}
}

// Service размещает структуры и ведёт их реестр.
// Каждая структура получает коллайдер в мире коллизий.
type Service struct {
	mu        sync.Mutex
	world     *physics.World
	templates map[string]Template
	handles   map[uuid.UUID]*Handle
	order     []uuid.UUID
}

// NewService создаёт сервис размещения
func NewService(world *physics.World, templates ...Template) *Service {
	if world == nil {
		world = physics.NewWorld()
	}
	s := &Service{
		world:     world,
		templates: make(map[string]Template),
		handles:   make(map[uuid.UUID]*Handle),
	}
	for _, t := range templates {
		s.Register(t)
	}
	return s
}

// Register добавляет или заменяет шаблон
func (s *Service) Register(t Template) {
	s.mu.Lock()
	s.templates[t.ID] = t
	s.mu.Unlock()
}

// World мир коллизий сервиса
func (s *Service) World() *physics.World { return s.world }

// TrySpawn размещает структуру по шаблону. При checkCollision сначала
// выполняется запрос занятости в точке размещения.
func (s *Service) TrySpawn(t Transform, templateID string, checkCollision bool) (*Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tmpl, ok := s.templates[templateID]
	if !ok || templateID == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTemplate, templateID)
	}

	if checkCollision && s.world.IsOccupied(t.Location, t.Rotation, probeExtent) {
		return nil, ErrOccupied
	}

	h := &Handle{
		ID:         uuid.New(),
		TemplateID: templateID,
		Kind:       tmpl.Kind,
		Transform:  t,
	}

	ext := mgl64.Vec3{tmpl.Extent.X, tmpl.Extent.Y, tmpl.Extent.Z}
	s.world.Add(physics.BoxCollider{
		ID:  h.ID.String(),
		Box: physics.OrientedAABB(t.Location, t.Rotation, ext),
	})

	s.handles[h.ID] = h
	s.order = append(s.order, h.ID)
	return h, nil
}

// Destroy удаляет структуру и её коллайдер
func (s *Service) Destroy(h *Handle) bool {
	if h == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.handles[h.ID]; !ok {
		return false
	}
	delete(s.handles, h.ID)
	s.world.Remove(h.ID.String())
	return true
}

// Records возвращает живые структуры в порядке размещения
func (s *Service) Records() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Record, 0, len(s.handles))
	alive := s.order[:0]
	for _, id := range s.order {
		h, ok := s.handles[id]
		if !ok {
			continue
		}
		alive = append(alive, id)
		out = append(out, h.Record())
	}
	s.order = alive
	return out
}

// Count количество живых структур данного типа
func (s *Service) Count(kind Kind) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, h := range s.handles {
		if h.Kind == kind {
			n++
		}
	}
	return n
}

// Reset удаляет все структуры, шаблоны сохраняются
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.handles = make(map[uuid.UUID]*Handle)
	s.order = nil
	s.world.Clear()
}
