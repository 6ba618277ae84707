package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics records catalog, cart and auth activity.
type StorefrontMetrics struct {
	catalogDuration *prometheus.HistogramVec
	catalogFailures *prometheus.CounterVec
	cartOps         *prometheus.CounterVec
	authAttempts    *prometheus.CounterVec
	ordersPlaced    prometheus.Counter
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	catalogDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_request_duration_seconds",
		Help:    "Duration of catalog API requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})
	catalogFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_request_failures",
		Help: "Failed catalog API requests.",
	}, []string{"endpoint"})
	cartOps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_operations",
		Help: "Cart engine mutations by operation.",
	}, []string{"op"})
	authAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_attempts",
		Help: "Login and register attempts by outcome.",
	}, []string{"kind", "outcome"})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed",
		Help: "Orders recorded by the session engine.",
	})
	reg.MustRegister(catalogDuration, catalogFailures, cartOps, authAttempts, ordersPlaced)
	return &StorefrontMetrics{
		catalogDuration: catalogDuration,
		catalogFailures: catalogFailures,
		cartOps:         cartOps,
		authAttempts:    authAttempts,
		ordersPlaced:    ordersPlaced,
	}
}

// ObserveCatalogRequest records the duration for the named endpoint.
func (m *StorefrontMetrics) ObserveCatalogRequest(endpoint string, duration time.Duration) {
	if m == nil || m.catalogDuration == nil {
		return
	}
	m.catalogDuration.WithLabelValues(normalizeLabel(endpoint)).Observe(duration.Seconds())
}

// IncCatalogFailure increments the failure counter for the named endpoint.
func (m *StorefrontMetrics) IncCatalogFailure(endpoint string) {
	if m == nil || m.catalogFailures == nil {
		return
	}
	m.catalogFailures.WithLabelValues(normalizeLabel(endpoint)).Inc()
}

// IncCartOp increments the cart mutation counter for the named operation.
func (m *StorefrontMetrics) IncCartOp(op string) {
	if m == nil || m.cartOps == nil {
		return
	}
	m.cartOps.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncAuthAttempt records a login or register outcome.
func (m *StorefrontMetrics) IncAuthAttempt(kind, outcome string) {
	if m == nil || m.authAttempts == nil {
		return
	}
	m.authAttempts.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
}

// IncOrderPlaced counts a recorded order.
func (m *StorefrontMetrics) IncOrderPlaced() {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
