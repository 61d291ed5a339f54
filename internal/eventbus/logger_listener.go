package eventbus

import (
	"context"

	"github.com/annel0/dungeon-gen/internal/logging"
)

// StartLoggingListener подписывается на все события и пишет их в лог.
// Неблокирующая.
func StartLoggingListener(ctx context.Context, bus EventBus) (Subscription, error) {
	sub, err := bus.Subscribe(ctx, Filter{}, func(ctx context.Context, ev *Envelope) {
		if ev.EventType == TypeDungeonGenerated {
			if dg, err := DecodeDungeonGenerated(ev); err == nil {
				logging.Debug("[EventBus] %s подземелье %s, комнат=%d", ev.ID, dg.DungeonID, len(dg.RoomLocations))
				return
			}
		}
		logging.Debug("[EventBus] %s %s src=%s prio=%d size=%dB", ev.ID, ev.EventType, ev.Source, ev.Priority, len(ev.Payload))
	})
	if err != nil {
		return nil, err
	}
	logging.Info("🪵 LoggingListener: подписка на все события активирована")
	return sub, nil
}
