package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "order_desk"

// Metrics counts storefront activity per surface ("bot", "web"). A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry      *prometheus.Registry
	cartEvents    *prometheus.CounterVec
	checkoutLinks *prometheus.CounterVec
	checkoutItems prometheus.Histogram
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		registry: reg,
		cartEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_events_total",
			Help:      "Cart and draft mutations by surface and action.",
		}, []string{"surface", "action"}),
		checkoutLinks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_links_total",
			Help:      "WhatsApp checkout links handed out, by surface and whether the cart was empty.",
		}, []string{"surface", "cart"}),
		checkoutItems: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "checkout_items",
			Help:      "Total item count of carts at checkout.",
			Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250},
		}),
	}
	reg.MustRegister(m.cartEvents, m.checkoutLinks, m.checkoutItems)
	return m
}

// RegisterSessionGauge exposes the live session count reported by fn.
func (m *Metrics) RegisterSessionGauge(fn func() int) {
	if m == nil || fn == nil {
		return
	}
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "sessions",
		Help:      "Storefront sessions currently held in memory.",
	}, func() float64 { return float64(fn()) }))
}

func (m *Metrics) CartEvent(surface, action string) {
	if m == nil {
		return
	}
	m.cartEvents.WithLabelValues(surface, action).Inc()
}

func (m *Metrics) Checkout(surface string, totalItems int) {
	if m == nil {
		return
	}
	cart := "filled"
	if totalItems == 0 {
		cart = "empty"
	} else {
		m.checkoutItems.Observe(float64(totalItems))
	}
	m.checkoutLinks.WithLabelValues(surface, cart).Inc()
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
