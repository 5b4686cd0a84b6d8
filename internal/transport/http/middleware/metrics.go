package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "usuarios"

var (
	httpReqTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method and status",
		},
		[]string{"route", "method", "status"},
	)
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP latency by route; writes include the image host round trip",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"route", "method"},
	)
	httpInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "http_in_flight_requests",
		Help:      "Requests currently being served",
	})
	// 写请求体基本就是照片大小
	httpWriteBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_write_body_bytes",
			Help:      "Declared body size of POST/PUT requests",
			Buckets:   prometheus.ExponentialBuckets(1<<10, 4, 8),
		}, []string{"route"},
	)
)

func init() {
	prometheus.MustRegister(httpReqTotal, httpLatency, httpInFlight, httpWriteBytes)
}

func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		// 未匹配的路径不作为 label，避免基数爆炸
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m := c.Request.Method
		httpReqTotal.WithLabelValues(route, m, strconv.Itoa(c.Writer.Status())).Inc()
		httpLatency.WithLabelValues(route, m).Observe(time.Since(start).Seconds())
		if (m == http.MethodPost || m == http.MethodPut) && c.Request.ContentLength > 0 {
			httpWriteBytes.WithLabelValues(route).Observe(float64(c.Request.ContentLength))
		}
	}
}
