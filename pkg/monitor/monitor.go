package monitor

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsPath = "/metrics"

var (
	// HTTPRequestsTotal 按路由模板和状态码统计请求数
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gateway_http_requests_total",
			Help: "HTTP requests served, by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "gateway_http_request_duration_seconds",
			Help: "HTTP request latency by route.",
			// 发送交易会等待回执, 上限放宽到 60s
			Buckets: []float64{0.05, 0.1, 0.3, 0.5, 1, 2, 5, 15, 30, 60},
		},
		[]string{"method", "path"},
	)

	// HTTPInFlight 正在处理的请求数
	HTTPInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "gateway_http_in_flight_requests",
		Help: "Requests currently being served.",
	})

	initOnce sync.Once
)

// Init 注册全部指标到默认 Registry, 重复调用无副作用
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal, HTTPRequestDuration, HTTPInFlight)
		prometheus.MustRegister(Business.collectors()...)
	})
}

// Handler 暴露 /metrics
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

// PrometheusMiddleware 记录每个已匹配路由的请求数与耗时; /metrics 自身和 404 不计
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.FullPath() // 路由模板, 如 /api/v1/blocks/:number
		if path == "" || path == metricsPath {
			c.Next()
			return
		}

		HTTPInFlight.Inc()
		defer HTTPInFlight.Dec()

		start := time.Now()
		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
