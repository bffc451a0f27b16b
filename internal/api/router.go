package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/akylbek/payment-system/payment-core/internal/handlers"
	"github.com/akylbek/payment-system/payment-core/internal/middleware"
	"github.com/akylbek/payment-system/payment-core/internal/telemetry"
)

const serviceName = "payment-core"

func NewRouter(handler *handlers.PaymentCoreHandler, redisClient *redis.Client) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(telemetry.TracingMiddleware())

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": serviceName})
	})

	payments := r.Group("/internal/payments/:id")
	{
		payments.POST("/response", handler.PaymentsResponse)
		payments.POST("/session", handler.SessionResponse)
		payments.POST("/verify", handler.VerifyResponse)
		payments.POST("/summary", handler.Summary)
		payments.POST("/router-data", middleware.IdempotencyMiddleware(redisClient), handler.RouterData)
		payments.POST("/captures/sync", middleware.IdempotencyMiddleware(redisClient), handler.SyncCaptures)
	}

	return r
}
