package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP/gRPC 请求指标
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of requests",
		},
		[]string{"service", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"service", "method"},
	)

	// 消息队列指标
	KafkaMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kafka_messages_total",
			Help: "Total number of Kafka messages",
		},
		[]string{"service", "topic", "status"},
	)

	// 业务指标
	// opened on login, closed on a logout that removed a live session;
	// sessions that simply expire are not counted as closed
	SessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_total",
			Help: "Sessions opened by login and closed by logout",
		},
		[]string{"event"},
	)

	ResourceActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resource_actions_total",
			Help: "Resource uploads, downloads, views and deletions",
		},
		[]string{"action", "status"},
	)

	ListingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "listing_cache_requests_total",
			Help: "Listing cache lookups by result",
		},
		[]string{"result"},
	)
)

func init() {
	// 注册所有指标
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		KafkaMessagesTotal,
		SessionsTotal,
		ResourceActionsTotal,
		ListingCacheTotal,
	)
}

// NewMetricsServer 创建独立的 metrics HTTP 服务器，由调用方负责启动和关闭
func NewMetricsServer(port string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// RecordRequest 记录请求指标的助手函数
func RecordRequest(service, method, status string, duration time.Duration) {
	RequestsTotal.WithLabelValues(service, method, status).Inc()
	RequestDuration.WithLabelValues(service, method).Observe(duration.Seconds())
}

// RecordAction counts one resource action; ok=false is recorded as "failed".
func RecordAction(action string, ok bool) {
	status := "success"
	if !ok {
		status = "failed"
	}
	ResourceActionsTotal.WithLabelValues(action, status).Inc()
}
