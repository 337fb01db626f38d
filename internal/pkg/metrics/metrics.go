package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 优化流水线指标
var (
	JobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockopt_jobs_total",
			Help: "Total optimization jobs finished, labeled by terminal status",
		},
		[]string{"status"},
	)

	BatchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockopt_batches_total",
			Help: "Total optimizer batches attempted, labeled by outcome",
		},
		[]string{"outcome"},
	)

	ResultRowsSaved = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "stockopt_result_rows_saved_total",
			Help: "Total result rows persisted across all jobs",
		},
	)

	JobDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "stockopt_job_duration_seconds",
			Help:    "Wall time from claim to terminal status per job",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		},
	)
)

func init() {
	prometheus.MustRegister(JobsTotal)
	prometheus.MustRegister(BatchesTotal)
	prometheus.MustRegister(ResultRowsSaved)
	prometheus.MustRegister(JobDuration)
}

// RegisterQueueDepth 注册队列深度指标，f 在每次抓取时被调用
func RegisterQueueDepth(f func() float64) {
	prometheus.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "stockopt_queue_depth",
			Help: "Current number of pending messages in the job queue",
		},
		f,
	))
}

// Handler 返回 /metrics 暴露端点
func Handler() http.Handler {
	return promhttp.Handler()
}
