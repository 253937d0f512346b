// Package metrics holds the Prometheus collectors shared by every game session.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campfire_events_published_total",
		Help: "Total number of events published on session buses",
	}, []string{"event"})

	EventHandlerPanicsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campfire_event_handler_panics_total",
		Help: "Total number of recovered panics raised by event handlers",
	}, []string{"event"})

	EventsDroppedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campfire_events_dropped_total",
		Help: "Total number of events dropped before dispatch, by reason",
	}, []string{"event", "reason"})

	EquipOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campfire_equip_operations_total",
		Help: "Total number of equip coordinator operations by outcome",
	}, []string{"op", "result"})

	MonstersSpawnedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campfire_monsters_spawned_total",
		Help: "Total number of monsters spawned by monster id",
	}, []string{"monster"})

	SessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "campfire_sessions_active",
		Help: "Number of game sessions currently running",
	})

	TableReloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "campfire_table_reloads_total",
		Help: "Total number of data table reload attempts by outcome",
	}, []string{"result"})
)

// IncEquip records one equip coordinator operation.
func IncEquip(op, result string) {
	if result == "" {
		result = "unknown"
	}
	EquipOperationsTotal.WithLabelValues(op, result).Inc()
}

// IncDropped records an event dropped before any handler saw it.
func IncDropped(event, reason string) {
	if event == "" {
		event = "unknown"
	}
	if reason == "" {
		reason = "unknown"
	}
	EventsDroppedTotal.WithLabelValues(event, reason).Inc()
}
