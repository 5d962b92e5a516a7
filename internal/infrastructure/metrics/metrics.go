// Package metrics 网关的 Prometheus 指标
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "trainer_gateway"

var (
	// UpstreamRequestsTotal 后端调用次数
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Total number of backend calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// UpstreamDuration 后端调用耗时
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_duration_seconds",
			Help:      "Duration of backend calls in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// FallbacksTotal 失败放行次数
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallbacks_total",
			Help:      "Total number of responses served from a fallback path",
		},
		[]string{"operation"},
	)

	// FeedbackSubmissionsTotal 反馈提交次数
	FeedbackSubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_submissions_total",
			Help:      "Total number of feedback submissions by type and repeat flag",
		},
		[]string{"feedback_type", "repeat"},
	)

	// ActiveWorkspaces 当前工作区数量
	ActiveWorkspaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_workspaces",
			Help:      "Number of live trainer workspaces",
		},
	)

	// RerankedChunks 每次重排输出的片段数
	RerankedChunks = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reranked_chunks",
			Help:      "Distribution of chunk counts returned by rerank",
			Buckets:   []float64{0, 1, 3, 5, 10, 20, 50},
		},
		[]string{"method"},
	)
)

// Outcome 取值
const (
	OutcomeSuccess  = "success"
	OutcomeTimeout  = "timeout"
	OutcomeUpstream = "upstream_error"
	OutcomeError    = "error"
)

// RecordUpstream 记录一次后端调用
func RecordUpstream(operation, outcome string, elapsed time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(operation, outcome).Inc()
	UpstreamDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordFallback 记录一次失败放行
func RecordFallback(operation string) {
	FallbacksTotal.WithLabelValues(operation).Inc()
}

// RecordFeedback 记录一次反馈提交
func RecordFeedback(feedbackType string, repeat bool) {
	r := "false"
	if repeat {
		r = "true"
	}
	FeedbackSubmissionsTotal.WithLabelValues(feedbackType, r).Inc()
}

// RecordRerank 记录重排结果规模
func RecordRerank(method string, n int) {
	RerankedChunks.WithLabelValues(method).Observe(float64(n))
}

// WorkspaceOpened 工作区创建
func WorkspaceOpened() { ActiveWorkspaces.Inc() }

// WorkspaceClosed 工作区关闭
func WorkspaceClosed() { ActiveWorkspaces.Dec() }
