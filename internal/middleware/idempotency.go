package middleware

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/akylbek/payment-system/payment-core/internal/telemetry"
)

const (
	IdempotencyHeader  = "Idempotency-Key"
	idempotencyTTL     = 24 * time.Hour
	idempotencyLockTTL = 30 * time.Second
)

// idempotencyKey scopes a client key to the concrete request path and the
// merchant that sent it.
func idempotencyKey(merchantID, path, key string) string {
	return fmt.Sprintf("idempotency:%s:%s:%s", merchantID, path, key)
}

func idempotencyLockKey(cacheKey string) string {
	return cacheKey + ":lock"
}

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// merchantID peeks at the merchant_id of a JSON body and puts the body back
// for the handler.
func merchantID(c *gin.Context) string {
	if c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var req struct {
		MerchantID string `json:"merchant_id"`
	}
	_ = json.Unmarshal(body, &req)
	return req.MerchantID
}

// IdempotencyMiddleware replays the stored 200 reply of a request carrying an
// Idempotency-Key already seen for the same merchant and path. A request whose
// key is still being processed gets 409. Requests without the header pass
// through.
func IdempotencyMiddleware(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		cacheKey := idempotencyKey(merchantID(c), c.Request.URL.Path, key)

		cached, err := redisClient.Get(ctx, cacheKey).Bytes()
		if err == nil {
			c.Header("Idempotent-Replayed", "true")
			c.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			c.Abort()
			return
		}

		lockKey := idempotencyLockKey(cacheKey)
		locked, err := redisClient.SetNX(ctx, lockKey, "1", idempotencyLockTTL).Result()
		if err != nil {
			telemetry.Logger.Error("Failed to acquire idempotency lock",
				zap.String("idempotency_key", key),
				zap.Error(err),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal_server_error"})
			return
		}
		if !locked {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "request with this Idempotency-Key is in progress"})
			return
		}
		defer redisClient.Del(ctx, lockKey)

		recorder := &bodyRecorder{ResponseWriter: c.Writer}
		c.Writer = recorder
		c.Next()

		if recorder.Status() != http.StatusOK {
			return
		}
		if err := redisClient.Set(ctx, cacheKey, recorder.body.Bytes(), idempotencyTTL).Err(); err != nil {
			telemetry.Logger.Warn("Failed to store idempotent reply",
				zap.String("idempotency_key", key),
				zap.Error(err),
			)
		}
	}
}
