package router

import (
	"github.com/holiman/uint256"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yourorg/settlement-switch/internal/fixedpoint"
)

// routerMetrics holds Prometheus metrics for the router
type routerMetrics struct {
	quotesRequested *prometheus.CounterVec
	quotesSkipped   *prometheus.CounterVec
	routesSelected  *prometheus.CounterVec
	transfers       *prometheus.CounterVec
	volumeUSD       prometheus.Gauge
	adapterCount    prometheus.Gauge
}

// registerMetrics sets up Prometheus metrics collection on reg. A nil reg
// keeps the collectors unregistered.
func registerMetrics(reg prometheus.Registerer) *routerMetrics {
	m := &routerMetrics{
		quotesRequested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_quotes_requested_total",
				Help: "Total number of provider quotes requested",
			},
			[]string{"provider"},
		),
		quotesSkipped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_quotes_skipped_total",
				Help: "Total number of provider quotes skipped during route discovery",
			},
			[]string{"provider", "reason"},
		),
		routesSelected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_routes_selected_total",
				Help: "Total number of times a provider won route discovery",
			},
			[]string{"provider"},
		),
		transfers: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "settlement_transfers_total",
				Help: "Total number of transfer executions",
			},
			[]string{"status"},
		),
		volumeUSD: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "settlement_volume_usd",
				Help: "Cumulative USD volume of executed transfers",
			},
		),
		adapterCount: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "settlement_adapter_count",
				Help: "Number of admitted bridge providers",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.quotesRequested,
			m.quotesSkipped,
			m.routesSelected,
			m.transfers,
			m.volumeUSD,
			m.adapterCount,
		)
	}
	return m
}

func (m *routerMetrics) setVolume(v *uint256.Int) {
	m.volumeUSD.Set(fixedpoint.ToFloat(v, fixedpoint.USDDecimals))
}
