package metrics

import (
	"net/http"

	"github.com/nikolayk812/checkout-demo/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "checkout"

type ServerMetrics struct {
	Requests  *prometheus.CounterVec
	LatencyMS *prometheus.HistogramVec
}

func NewServerMetrics(reg prometheus.Registerer) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})

	reg.MustRegister(requests, latency)
	return &ServerMetrics{Requests: requests, LatencyMS: latency}
}

// CheckoutMetrics counts order transitions and payment provider trouble.
type CheckoutMetrics struct {
	transitions       *prometheus.CounterVec
	webhookDuplicates prometheus.Counter
	gatewayFailures   *prometheus.CounterVec
}

func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "transitions_total",
		Help:      "Order status changes by target status and payment method.",
	}, []string{"status", "payment_method"})
	duplicates := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "webhook",
		Name:      "duplicates_total",
		Help:      "Payment confirmations ignored as duplicates.",
	})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "gateway",
		Name:      "failures_total",
		Help:      "Failed payment provider calls by operation.",
	}, []string{"operation"})

	reg.MustRegister(transitions, duplicates, failures)
	return &CheckoutMetrics{
		transitions:       transitions,
		webhookDuplicates: duplicates,
		gatewayFailures:   failures,
	}
}

func (m *CheckoutMetrics) OrderStatusChanged(status domain.OrderStatus, method domain.PaymentMethod) {
	m.transitions.WithLabelValues(string(status), string(method)).Inc()
}

func (m *CheckoutMetrics) WebhookDuplicate() {
	m.webhookDuplicates.Inc()
}

func (m *CheckoutMetrics) GatewayFailure(operation string) {
	m.gatewayFailures.WithLabelValues(operation).Inc()
}

func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
