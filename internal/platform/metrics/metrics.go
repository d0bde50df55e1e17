// Package metrics defines the Prometheus instruments for the reconciliation
// service. Construct once at startup; service helpers are nil-receiver safe
// so unit tests can skip registration entirely.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	SearchesTotal           *prometheus.CounterVec
	SearchDuration          prometheus.Histogram
	RecordsFetched          prometheus.Counter
	DuplicateGroupsDetected prometheus.Counter
	ResolutionsRecorded     *prometheus.CounterVec
	StatusUpdates           *prometheus.CounterVec
	RecordsDeleted          prometheus.Counter
	ExportsTotal            prometheus.Counter
	ExportRows              prometheus.Counter
	AuditEventsDropped      prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		SearchesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "customspay_searches_total",
			Help: "Search sessions started, by search mode.",
		}, []string{"mode"}),
		SearchDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "customspay_search_duration_seconds",
			Help:    "End-to-end search latency: plan, fetch, normalize, dedupe.",
			Buckets: prometheus.DefBuckets,
		}),
		RecordsFetched: promauto.NewCounter(prometheus.CounterOpts{
			Name: "customspay_records_fetched_total",
			Help: "Records returned by store queries before filtering.",
		}),
		DuplicateGroupsDetected: promauto.NewCounter(prometheus.CounterOpts{
			Name: "customspay_duplicate_groups_detected_total",
			Help: "Duplicate groups found during searches.",
		}),
		ResolutionsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "customspay_resolutions_recorded_total",
			Help: "Duplicate alert resolutions, by outcome.",
		}, []string{"outcome"}),
		StatusUpdates: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "customspay_status_updates_total",
			Help: "Record status mutations, by field.",
		}, []string{"field"}),
		RecordsDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "customspay_records_deleted_total",
			Help: "Records removed by administrators.",
		}),
		ExportsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "customspay_exports_total",
			Help: "Workbook exports served.",
		}),
		ExportRows: promauto.NewCounter(prometheus.CounterOpts{
			Name: "customspay_export_rows_total",
			Help: "Rows written across all workbook exports.",
		}),
		AuditEventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "customspay_audit_events_dropped_total",
			Help: "Audit events dropped because the inbox was full.",
		}),
	}
}

func (m *Metrics) ObserveSearch(mode string, dur time.Duration, fetched, groups int) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(mode).Inc()
	m.SearchDuration.Observe(dur.Seconds())
	m.RecordsFetched.Add(float64(fetched))
	m.DuplicateGroupsDetected.Add(float64(groups))
}

func (m *Metrics) IncResolution(outcome string) {
	if m == nil {
		return
	}
	m.ResolutionsRecorded.WithLabelValues(outcome).Inc()
}

func (m *Metrics) IncStatusUpdate(field string) {
	if m == nil {
		return
	}
	m.StatusUpdates.WithLabelValues(field).Inc()
}

func (m *Metrics) IncRecordDeleted() {
	if m == nil {
		return
	}
	m.RecordsDeleted.Inc()
}

func (m *Metrics) ObserveExport(rows int) {
	if m == nil {
		return
	}
	m.ExportsTotal.Inc()
	m.ExportRows.Add(float64(rows))
}

func (m *Metrics) IncAuditDropped() {
	if m == nil {
		return
	}
	m.AuditEventsDropped.Inc()
}
