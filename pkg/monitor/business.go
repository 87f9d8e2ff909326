package monitor

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// 上游来源标签
const (
	SourceNode      = "node"
	SourceGasOracle = "gas_oracle"
)

// BusinessMetrics 定义业务监控指标
type BusinessMetrics struct {
	TxPreparedTotal     *prometheus.CounterVec
	TxSentTotal         *prometheus.CounterVec
	UpstreamErrorsTotal *prometheus.CounterVec
	UpstreamDuration    *prometheus.HistogramVec
	GasPriceGwei        *prometheus.GaugeVec
}

// Business 全局业务指标; 未注册到 Registry 时也可以安全调用 (测试场景)
var Business = newBusinessMetrics()

func newBusinessMetrics() *BusinessMetrics {
	return &BusinessMetrics{
		TxPreparedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_tx_prepared_total",
			Help: "Transactions prepared, by gas price tier and result",
		}, []string{"tier", "result"}),
		TxSentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_tx_sent_total",
			Help: "Transactions submitted to the node, by final status",
		}, []string{"status"}),
		UpstreamErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gateway_upstream_errors_total",
			Help: "Failed calls to the node or the gas oracle",
		}, []string{"source", "method"}),
		UpstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gateway_upstream_duration_seconds",
			Help:    "Latency of calls to the node or the gas oracle",
			Buckets: prometheus.DefBuckets,
		}, []string{"source", "method"}),
		GasPriceGwei: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "gateway_gas_price_gwei",
			Help: "Last gas price quote from the oracle",
		}, []string{"tier"}),
	}
}

func (m *BusinessMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.TxPreparedTotal,
		m.TxSentTotal,
		m.UpstreamErrorsTotal,
		m.UpstreamDuration,
		m.GasPriceGwei,
	}
}

// ObserveUpstream 记录一次上游调用的耗时, err 非空时同时计入错误数
func (m *BusinessMetrics) ObserveUpstream(source, method string, start time.Time, err error) {
	m.UpstreamDuration.WithLabelValues(source, method).Observe(time.Since(start).Seconds())
	if err != nil {
		m.UpstreamErrorsTotal.WithLabelValues(source, method).Inc()
	}
}
