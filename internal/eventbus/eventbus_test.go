package eventbus

import (
	"context"
	"testing"
	"time"

	"github.com/annel0/dungeon-gen/internal/vec"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplicator_PublishesDungeonGenerated(t *testing.T) {
	bus := NewMemoryBus(8)
	defer bus.Close()

	got := make(chan *Envelope, 1)
	_, err := bus.Subscribe(context.Background(), Filter{Types: []string{TypeDungeonGenerated}}, func(_ context.Context, ev *Envelope) {
		got <- ev
	})
	require.NoError(t, err)

	id := uuid.New()
	locs := []vec.Vec3{{X: 20, Y: 20, Z: 5}, {X: 35, Y: 20, Z: 5}}
	require.NoError(t, NewReplicator(bus, "test").Replicate(context.Background(), id, locs, true))

	select {
	case ev := <-got:
		assert.Equal(t, "test", ev.Source)
		assert.Equal(t, id.String(), ev.CorrelationID)
		dg, err := DecodeDungeonGenerated(ev)
		require.NoError(t, err)
		assert.Equal(t, id, dg.DungeonID)
		assert.Equal(t, locs, dg.RoomLocations)
		assert.True(t, dg.Generated)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}

func TestMemoryBus_FilterAndUnsubscribe(t *testing.T) {
	bus := NewMemoryBus(8)
	defer bus.Close()

	got := make(chan string, 4)
	sub, err := bus.Subscribe(context.Background(), Filter{Types: []string{TypeDungeonDeleted}}, func(_ context.Context, ev *Envelope) {
		got <- ev.ID
	})
	require.NoError(t, err)

	require.NoError(t, bus.Publish(context.Background(), &Envelope{ID: "a", EventType: TypeDungeonGenerated}))
	require.NoError(t, bus.Publish(context.Background(), &Envelope{ID: "b", EventType: TypeDungeonDeleted}))

	select {
	case id := <-got:
		assert.Equal(t, "b", id)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}

	sub.Unsubscribe()
	require.NoError(t, bus.Publish(context.Background(), &Envelope{ID: "c", EventType: TypeDungeonDeleted}))
	select {
	case id := <-got:
		t.Fatalf("unexpected delivery %s after unsubscribe", id)
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, uint64(3), bus.Metrics().Published)
}

func TestMemoryBus_PublishAfterClose(t *testing.T) {
	bus := NewMemoryBus(1)
	require.NoError(t, bus.Close())
	assert.ErrorIs(t, bus.Publish(context.Background(), &Envelope{ID: "x"}), ErrClosed)
}

func TestDecodeDungeonGenerated_WrongType(t *testing.T) {
	_, err := DecodeDungeonGenerated(&Envelope{EventType: TypeDungeonDeleted})
	assert.Error(t, err)
}

type fixedStats struct {
	EventBus
	stats Stats
}

func (f *fixedStats) Metrics() Stats { return f.stats }

func TestMetricsExporter_CollectAddsDelta(t *testing.T) {
	bus := &fixedStats{stats: Stats{Published: 5, Dropped: 1, InFlight: 2}}
	m := NewMetricsExporter(bus, prometheus.NewRegistry())

	prev := m.collect(Stats{})
	bus.stats.Published = 8
	m.collect(prev)

	assert.Equal(t, 8.0, testutil.ToFloat64(m.published))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dropped))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.inflight))
}
