// Package metrics exposes Prometheus counters for the channel components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	EpisodesAdvancedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pseudotv_episodes_advanced_total",
		Help: "Episodes handed out by the progression engine",
	})

	SeriesWrapsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pseudotv_series_wraps_total",
		Help: "Times a show ran past its last episode and restarted",
	})

	CursorRecoveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pseudotv_cursor_recoveries_total",
		Help: "Stored cursors that resolved to no episode and were reset",
	})

	SelectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pseudotv_selections_total",
		Help: "Random picks by category and outcome",
	}, []string{"category", "result"})

	ScheduleRebuildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pseudotv_schedule_rebuilds_total",
		Help: "Daily schedule rebuilds by outcome",
	}, []string{"result"})

	ScheduleEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pseudotv_schedule_entries",
		Help: "Entries in the current daily schedule",
	})

	ImportedItemsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pseudotv_imported_items_total",
		Help: "Catalog rows written by library imports, by kind",
	}, []string{"kind"})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pseudotv_http_requests_total",
		Help: "HTTP API requests by route and status code",
	}, []string{"route", "code"})
)

// RecordSelection counts one random pick.
func RecordSelection(category string, found bool) {
	if category == "" {
		category = "unknown"
	}
	result := "hit"
	if !found {
		result = "miss"
	}
	SelectionsTotal.WithLabelValues(category, result).Inc()
}

// RecordRebuild counts one schedule rebuild and, on success, sets the entry gauge.
func RecordRebuild(entries int, err error) {
	if err != nil {
		ScheduleRebuildsTotal.WithLabelValues("error").Inc()
		return
	}
	ScheduleRebuildsTotal.WithLabelValues("ok").Inc()
	ScheduleEntries.Set(float64(entries))
}

// RecordImport adds n imported rows of the given kind.
func RecordImport(kind string, n int) {
	if n <= 0 {
		return
	}
	ImportedItemsTotal.WithLabelValues(kind).Add(float64(n))
}
