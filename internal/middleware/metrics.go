package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts failed Redis commands by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "breakroom_redis_errors_total",
	Help: "Total number of Redis command errors",
}, []string{"command"})

// ActiveWebSockets tracks currently open feed event connections.
var ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "breakroom_active_websockets",
	Help: "Number of active websocket connections",
})

// SnapshotPublishes counts content store snapshot publications by collection.
var SnapshotPublishes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "breakroom_snapshot_publishes_total",
	Help: "Total number of content snapshots published to subscribers",
}, []string{"collection"})

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request instrumentation handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
