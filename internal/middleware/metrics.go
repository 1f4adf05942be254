package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "samplepedia_redis_errors_total",
		Help: "Total number of Redis errors by command",
	}, []string{"command"})

	// ActiveWebSockets is the gauge of open notification stream connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "samplepedia_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// WebSocketDrops counts notification messages dropped on slow or closed
	// websocket clients.
	WebSocketDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "samplepedia_websocket_dropped_messages_total",
		Help: "Total websocket messages dropped due to backpressure",
	}, []string{"reason"})

	// WebhookDeliveries counts Discord webhook delivery attempts by outcome.
	WebhookDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "samplepedia_webhook_deliveries_total",
		Help: "Total Discord webhook delivery attempts by outcome",
	}, []string{"outcome"})

	// RateLimitRejections counts requests refused by the Redis rate limiter.
	RateLimitRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "samplepedia_rate_limit_rejections_total",
		Help: "Total requests rejected by the rate limiter by resource",
	}, []string{"resource"})

	// TaskSubmissions counts sample submissions by result.
	TaskSubmissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "samplepedia_task_submissions_total",
		Help: "Total training sample submissions by result",
	}, []string{"result"})
)

// InitMetrics creates the fiberprometheus middleware for HTTP request metrics.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus handler as a Fiber middleware.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
