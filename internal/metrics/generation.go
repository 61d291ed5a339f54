package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Generation Prometheus-метрики генерации подземелий.
// Все методы безопасны для nil-получателя: генератор можно собрать без метрик.
type Generation struct {
	runs        prometheus.Counter
	duration    prometheus.Histogram
	phases      *prometheus.HistogramVec
	paths       *prometheus.CounterVec
	rooms       prometheus.Gauge
	removed     prometheus.Counter
	rejected    *prometheus.CounterVec
	cells       *prometheus.GaugeVec
	spawnErrors *prometheus.CounterVec
}

// NewGeneration создаёт метрики и регистрирует их в reg.
// nil означает глобальный регистр Prometheus.
func NewGeneration(reg prometheus.Registerer) *Generation {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	g := &Generation{
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dungeon",
			Name:      "generations_total",
			Help:      "Количество завершённых генераций.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dungeon",
			Name:      "generation_duration_seconds",
			Help:      "Длительность полной генерации.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 16),
		}),
		phases: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dungeon",
			Name:      "phase_duration_seconds",
			Help:      "Длительность отдельных фаз генерации.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 16),
		}, []string{"phase"}),
		paths: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dungeon",
			Name:      "paths_total",
			Help:      "Результаты поиска путей коридоров.",
		}, []string{"result"}),
		rooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dungeon",
			Name:      "rooms",
			Help:      "Количество комнат в последней генерации.",
		}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dungeon",
			Name:      "rooms_removed_total",
			Help:      "Комнаты, удалённые как несвязанные.",
		}),
		rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dungeon",
			Name:      "placements_rejected_total",
			Help:      "Отклонённые попытки размещения комнат.",
		}, []string{"reason"}),
		cells: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "dungeon",
			Name:      "cells",
			Help:      "Количество ячеек по состояниям в последней генерации.",
		}, []string{"state"}),
		spawnErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dungeon",
			Name:      "spawn_errors_total",
			Help:      "Неудачные размещения структур.",
		}, []string{"kind"}),
	}

	reg.MustRegister(g.runs, g.duration, g.phases, g.paths, g.rooms, g.removed, g.rejected, g.cells, g.spawnErrors)
	return g
}

// ObserveRun фиксирует завершённую генерацию
func (g *Generation) ObserveRun(d time.Duration, rooms int) {
	if g == nil {
		return
	}
	g.runs.Inc()
	g.duration.Observe(d.Seconds())
	g.rooms.Set(float64(rooms))
}

// ObservePhase фиксирует длительность фазы
func (g *Generation) ObservePhase(phase string, d time.Duration) {
	if g == nil {
		return
	}
	g.phases.WithLabelValues(phase).Observe(d.Seconds())
}

// PathResult учитывает найденный или ненайденный путь
func (g *Generation) PathResult(found bool) {
	if g == nil {
		return
	}
	if found {
		g.paths.WithLabelValues("found").Inc()
	} else {
		g.paths.WithLabelValues("not_found").Inc()
	}
}

// RoomsRemoved учитывает удалённые комнаты
func (g *Generation) RoomsRemoved(n int) {
	if g == nil || n <= 0 {
		return
	}
	g.removed.Add(float64(n))
}

// PlacementRejected учитывает отклонённое размещение
func (g *Generation) PlacementRejected(reason string) {
	if g == nil {
		return
	}
	g.rejected.WithLabelValues(reason).Inc()
}

// SpawnFailed учитывает неудачное размещение структуры
func (g *Generation) SpawnFailed(kind string) {
	if g == nil {
		return
	}
	g.spawnErrors.WithLabelValues(kind).Inc()
}

// SetCells выставляет распределение ячеек по состояниям
func (g *Generation) SetCells(counts map[string]int) {
	if g == nil {
		return
	}
	g.cells.Reset()
	for state, n := range counts {
		g.cells.WithLabelValues(state).Set(float64(n))
	}
}
