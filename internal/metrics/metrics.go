// Package metrics holds the Prometheus collectors for route regeneration and
// relationship guard outcomes. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "labelgraph"

// Metrics is the collector set used by the graph service.
type Metrics struct {
	// Regenerations counts committed route regenerations.
	Regenerations prometheus.Counter
	// RegenerationSeconds measures path enumeration plus diff-apply.
	RegenerationSeconds prometheus.Histogram
	// RoutesChanged counts routes written by regeneration.
	// Labels: op (inserted, deleted)
	RoutesChanged *prometheus.CounterVec
	// Rejections counts mutations refused by the guard.
	// Labels: reason (self_reference, cycle, routes_in_use, invalid_route)
	Rejections *prometheus.CounterVec
	// Deletions counts committed relationship and label deletions.
	// Labels: kind (relationship, label), mode (safe, cascade, replace, force)
	Deletions *prometheus.CounterVec
	// AttachmentsChanged counts attachments removed or re-pointed by deletions.
	// Labels: op (deleted, moved)
	AttachmentsChanged *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Regenerations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "regenerations_total",
			Help:      "Committed route regenerations",
		}),
		RegenerationSeconds: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "regeneration_duration_seconds",
			Help:      "Time to enumerate paths and apply the route diff",
			Buckets:   []float64{0.0001, 0.001, 0.01, 0.1, 1, 10},
		}),
		RoutesChanged: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "routes_changed_total",
			Help:      "Routes inserted or deleted by regeneration",
		}, []string{"op"}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_rejections_total",
			Help:      "Mutations rejected by the relationship guard",
		}, []string{"reason"}),
		Deletions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "deletions_total",
			Help:      "Committed deletions by kind and mode",
		}, []string{"kind", "mode"}),
		AttachmentsChanged: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "attachments_changed_total",
			Help:      "Attachments deleted or moved while deleting graph structure",
		}, []string{"op"}),
	}
}

// ObserveRegeneration records one committed regeneration.
func (m *Metrics) ObserveRegeneration(inserted, deleted int, took time.Duration) {
	if m == nil {
		return
	}
	m.Regenerations.Inc()
	m.RegenerationSeconds.Observe(took.Seconds())
	m.RoutesChanged.WithLabelValues("inserted").Add(float64(inserted))
	m.RoutesChanged.WithLabelValues("deleted").Add(float64(deleted))
}

// Rejected records a guard rejection.
func (m *Metrics) Rejected(reason string) {
	if m == nil {
		return
	}
	m.Rejections.WithLabelValues(reason).Inc()
}

// Deleted records a committed deletion and the attachments it touched.
func (m *Metrics) Deleted(kind, mode string, attachmentsDeleted, attachmentsMoved int) {
	if m == nil {
		return
	}
	m.Deletions.WithLabelValues(kind, mode).Inc()
	m.AttachmentsChanged.WithLabelValues("deleted").Add(float64(attachmentsDeleted))
	m.AttachmentsChanged.WithLabelValues("moved").Add(float64(attachmentsMoved))
}
