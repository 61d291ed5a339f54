package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/annel0/dungeon-gen/internal/vec"
	"github.com/google/uuid"
)

// ErrClosed публикация в закрытую шину
var ErrClosed = errors.New("eventbus: closed")

// DungeonGenerated полезная нагрузка события о готовом подземелье.
// Наблюдатели получают только список точек комнат.
type DungeonGenerated struct {
	DungeonID     uuid.UUID  `json:"dungeon_id"`
	RoomLocations []vec.Vec3 `json:"room_locations"`
	Generated     bool       `json:"generated"`
}

// Replicator публикует список комнат в шину
type Replicator struct {
	bus    EventBus
	source string
}

// NewReplicator создаёт публикатор. source: имя экземпляра генератора.
func NewReplicator(bus EventBus, source string) *Replicator {
	if source == "" {
		source = "dungeon-gen"
	}
	return &Replicator{bus: bus, source: source}
}

// Replicate публикует событие DungeonGenerated
func (r *Replicator) Replicate(ctx context.Context, dungeonID uuid.UUID, roomLocations []vec.Vec3, generated bool) error {
	payload, err := json.Marshal(DungeonGenerated{
		DungeonID:     dungeonID,
		RoomLocations: roomLocations,
		Generated:     generated,
	})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	return r.bus.Publish(ctx, &Envelope{
		ID:            uuid.NewString(),
		Timestamp:     time.Now().UTC(),
		Source:        r.source,
		EventType:     TypeDungeonGenerated,
		Version:       1,
		CorrelationID: dungeonID.String(),
		Priority:      5,
		Payload:       payload,
	})
}

// DecodeDungeonGenerated разбирает полезную нагрузку события
func DecodeDungeonGenerated(ev *Envelope) (DungeonGenerated, error) {
	var out DungeonGenerated
	if ev.EventType != TypeDungeonGenerated {
		return out, fmt.Errorf("unexpected event type %q", ev.EventType)
	}
	if err := json.Unmarshal(ev.Payload, &out); err != nil {
		return out, fmt.Errorf("decode payload: %w", err)
	}
	return out, nil
}
