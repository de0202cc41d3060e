// Package metrics объявляет метрики Prometheus, которые отдаются на /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal число обработанных запросов по маршруту и коду ответа.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPRequestDuration время обработки запроса.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "yamdb_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	// RateLimitHits число отклонённых ограничителем запросов.
	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "yamdb_rate_limit_hits_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)

	// UserCacheLookups обращения к кешу пользователей, result = hit|miss|error.
	UserCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_user_cache_lookups_total",
			Help: "User cache lookups by result",
		},
		[]string{"result"},
	)

	// ConfirmationMessages отправленные коды подтверждения по транспорту и результату.
	ConfirmationMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "yamdb_confirmation_messages_total",
			Help: "Confirmation codes handed to a mail transport",
		},
		[]string{"transport", "result"},
	)
)
