// Package metrics holds the Prometheus collectors for the shop service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "shop"

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	CouponDecisions     *prometheus.CounterVec
	OrdersPlaced        prometheus.Counter
	OrderRejections     *prometheus.CounterVec
}

// New builds the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		CouponDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_decisions_total",
			Help:      "Coupon evaluations by outcome",
		}, []string{"result"}),
		OrdersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "orders_placed_total",
			Help:      "Orders committed",
		}),
		OrderRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "order_rejections_total",
			Help:      "Order placements rejected by reason",
		}, []string{"reason"}),
	}
	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CouponDecisions,
		m.OrdersPlaced,
		m.OrderRejections,
	)
	return m
}

func (m *Metrics) ObserveDecision(valid bool) {
	if valid {
		m.CouponDecisions.WithLabelValues("valid").Inc()
		return
	}
	m.CouponDecisions.WithLabelValues("invalid").Inc()
}
