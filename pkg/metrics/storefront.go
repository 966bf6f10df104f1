package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Autosave outcomes.
const (
	AutosaveSaved   = "saved"
	AutosaveFailed  = "failed"
	AutosaveSkipped = "skipped"
)

// StorefrontMetrics counts business outcomes of the storefront.
type StorefrontMetrics struct {
	ordersPlaced     *prometheus.CounterVec
	orderFailures    *prometheus.CounterVec
	freeGifts        *prometheus.CounterVec
	autosave         *prometheus.CounterVec
	telemetryDropped *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	m := &StorefrontMetrics{
		ordersPlaced: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orders_placed_total",
			Help: "Orders successfully placed.",
		}, []string{"brand"}),
		orderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "order_placement_failures_total",
			Help: "Rejected order placements by error code.",
		}, []string{"code"}),
		freeGifts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "free_gifts_granted_total",
			Help: "Orders that qualified for the free gift.",
		}, []string{"brand"}),
		autosave: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hamper_autosave_total",
			Help: "Hamper draft autosave attempts by outcome.",
		}, []string{"outcome"}),
		telemetryDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telemetry_dropped_total",
			Help: "Product tracking events that failed to record.",
		}, []string{"event"}),
	}
	reg.MustRegister(m.ordersPlaced, m.orderFailures, m.freeGifts, m.autosave, m.telemetryDropped)
	return m
}

func (m *StorefrontMetrics) IncOrderPlaced(brand string, freeGift bool) {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	brand = normalizeLabel(brand)
	m.ordersPlaced.WithLabelValues(brand).Inc()
	if freeGift {
		m.freeGifts.WithLabelValues(brand).Inc()
	}
}

func (m *StorefrontMetrics) IncOrderFailure(code string) {
	if m == nil || m.orderFailures == nil {
		return
	}
	m.orderFailures.WithLabelValues(normalizeLabel(code)).Inc()
}

func (m *StorefrontMetrics) IncAutosave(outcome string) {
	if m == nil || m.autosave == nil {
		return
	}
	m.autosave.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func (m *StorefrontMetrics) IncTelemetryDropped(event string) {
	if m == nil || m.telemetryDropped == nil {
		return
	}
	m.telemetryDropped.WithLabelValues(normalizeLabel(event)).Inc()
}
