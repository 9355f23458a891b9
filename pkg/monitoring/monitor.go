package monitoring

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	QuizRunsStarted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_runs_started_total",
			Help: "Quiz runs started, by belt",
		},
		[]string{"belt"},
	)

	QuizRunsFinished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_runs_finished_total",
			Help: "Quiz runs reaching a terminal state, by belt and reason",
		},
		[]string{"belt", "reason"},
	)

	PracticeInterventions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_practice_interventions_total",
			Help: "Remedial practice detours triggered, by cause",
		},
		[]string{"cause"},
	)
)

func Init() {
	prometheus.MustRegister(RequestCounter)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(QuizRunsStarted)
	prometheus.MustRegister(QuizRunsFinished)
	prometheus.MustRegister(PracticeInterventions)
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
