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
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	// SubmissionsTotal 按结果分类的提交次数
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lms_submissions_total",
			Help: "Test submissions by outcome",
		},
		[]string{"outcome"},
	)

	// SubmissionScoreRatio 得分 / 题目数
	SubmissionScoreRatio = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lms_submission_score_ratio",
			Help:    "Score of scored submissions divided by question count",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		},
	)

	SubmissionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "lms_submission_duration_seconds",
			Help:    "Time spent loading, scoring and recording one submission",
			Buckets: prometheus.DefBuckets,
		},
	)
)

const (
	OutcomeScored       = "scored"
	OutcomeUnauthorized = "unauthorized"
	OutcomeForbidden    = "forbidden"
	OutcomeInvalid      = "invalid"
	OutcomeNotFound     = "not_found"
	OutcomeStoreError   = "store_error"
)

// Init 注册到 reg，传 nil 使用默认注册表
func Init(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(RequestCounter, RequestDuration, SubmissionsTotal, SubmissionScoreRatio, SubmissionDuration)
}

func ObserveSubmission(outcome string, score, questions int, elapsed time.Duration) {
	SubmissionsTotal.WithLabelValues(outcome).Inc()
	SubmissionDuration.Observe(elapsed.Seconds())
	if outcome == OutcomeScored && questions > 0 {
		SubmissionScoreRatio.Observe(float64(score) / float64(questions))
	}
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}

		RequestCounter.WithLabelValues(
			c.Request.Method,
			endpoint,
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			endpoint,
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
