// Package metrics — prometheus-метрики магазина на отдельном реестре.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "storefront"

// Исходы добавления в корзину
const (
	AddFull     = "full"
	AddPartial  = "partial"
	AddRejected = "rejected"
)

type Metrics struct {
	reg *prometheus.Registry

	RequestDuration *prometheus.HistogramVec
	RequestTotal    *prometheus.CounterVec
	CartAdds        *prometheus.CounterVec
	Uploads         *prometheus.CounterVec
}

// New создаёт и регистрирует все коллекторы
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		RequestTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		CartAdds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "adds_total",
			Help:      "Add-to-cart attempts by outcome.",
		}, []string{"outcome"}),
		Uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upload",
			Name:      "images_total",
			Help:      "Product image uploads by result.",
		}, []string{"result"}),
	}
	m.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.RequestDuration, m.RequestTotal, m.CartAdds, m.Uploads,
	)
	return m
}

// ObserveCartAdd классифицирует результат добавления по запрошенному и добавленному количеству
func (m *Metrics) ObserveCartAdd(requested, added int) {
	outcome := AddFull
	switch {
	case added == 0:
		outcome = AddRejected
	case added < requested:
		outcome = AddPartial
	}
	m.CartAdds.WithLabelValues(outcome).Inc()
}

// ObserveUpload: result = "ok" | "rejected" | "error"
func (m *Metrics) ObserveUpload(result string) {
	m.Uploads.WithLabelValues(result).Inc()
}

// Middleware меряет запросы по шаблону маршрута, а не по сырому пути
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.RequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.RequestTotal.WithLabelValues(c.Request.Method, route, status).Inc()
	}
}

// Handler отдаёт /metrics
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
