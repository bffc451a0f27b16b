package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdempotencyKeyIsScopedByMerchantAndPath(t *testing.T) {
	assert.Equal(t, "idempotency:m_1:/internal/payments/pay_A/router-data:k1",
		idempotencyKey("m_1", "/internal/payments/pay_A/router-data", "k1"))
	assert.NotEqual(t,
		idempotencyKey("m_1", "/internal/payments/pay_A/router-data", "k1"),
		idempotencyKey("m_1", "/internal/payments/pay_B/router-data", "k1"))
	assert.NotEqual(t,
		idempotencyKey("m_1", "/internal/payments/pay_A/router-data", "k1"),
		idempotencyKey("m_2", "/internal/payments/pay_A/router-data", "k1"))
}

func newIdempotentRouter(t *testing.T) (*gin.Engine, *miniredis.Miniredis, *int) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	calls := 0
	r := gin.New()
	r.POST("/internal/payments/:id/router-data", IdempotencyMiddleware(client), func(c *gin.Context) {
		calls++
		var req struct {
			MerchantID string `json:"merchant_id"`
		}
		require.NoError(t, c.ShouldBindJSON(&req))
		c.JSON(http.StatusOK, gin.H{"payment_id": c.Param("id"), "merchant_id": req.MerchantID})
	})
	return r, mr, &calls
}

func postWithKey(r *gin.Engine, paymentID, merchantID, key string) *httptest.ResponseRecorder {
	body := strings.NewReader(`{"merchant_id":"` + merchantID + `"}`)
	req := httptest.NewRequest(http.MethodPost, "/internal/payments/"+paymentID+"/router-data", body)
	req.Header.Set(IdempotencyHeader, key)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestIdempotencyReplay(t *testing.T) {
	r, _, calls := newIdempotentRouter(t)

	first := postWithKey(r, "pay_A", "m_1", "k1")
	require.Equal(t, http.StatusOK, first.Code)
	assert.Empty(t, first.Header().Get("Idempotent-Replayed"))

	again := postWithKey(r, "pay_A", "m_1", "k1")
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, "true", again.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), again.Body.String())
	assert.Equal(t, 1, *calls)
}

func TestIdempotencyDoesNotReplayAcrossPayments(t *testing.T) {
	r, _, calls := newIdempotentRouter(t)

	a := postWithKey(r, "pay_A", "m_1", "k1")
	b := postWithKey(r, "pay_B", "m_1", "k1")
	other := postWithKey(r, "pay_A", "m_2", "k1")

	require.Equal(t, http.StatusOK, b.Code)
	assert.JSONEq(t, `{"payment_id":"pay_A","merchant_id":"m_1"}`, a.Body.String())
	assert.JSONEq(t, `{"payment_id":"pay_B","merchant_id":"m_1"}`, b.Body.String())
	assert.JSONEq(t, `{"payment_id":"pay_A","merchant_id":"m_2"}`, other.Body.String())
	assert.Empty(t, b.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, 3, *calls)
}

func TestIdempotencyInFlightConflict(t *testing.T) {
	r, mr, calls := newIdempotentRouter(t)
	lockKey := idempotencyLockKey(idempotencyKey("m_1", "/internal/payments/pay_A/router-data", "k1"))
	require.NoError(t, mr.Set(lockKey, "1"))

	w := postWithKey(r, "pay_A", "m_1", "k1")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, *calls)

	mr.Del(lockKey)
	w = postWithKey(r, "pay_A", "m_1", "k1")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *calls)
	assert.False(t, mr.Exists(lockKey), "lock is released after the handler returns")
}

func TestIdempotencySkipsFailedReplies(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	calls := 0
	r := gin.New()
	r.POST("/internal/payments/:id/router-data", IdempotencyMiddleware(client), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid"})
	})

	for i := 0; i < 2; i++ {
		w := postWithKey(r, "pay_A", "m_1", "k1")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	assert.Equal(t, 2, calls)
}

func TestRequestsWithoutKeyPassThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	calls := 0
	// A nil client is never touched without the header.
	r.POST("/x", IdempotencyMiddleware(nil), func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{"n": calls})
	})

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, 2, calls)
}

func TestBodyRecorderCopiesWrites(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	rec := &bodyRecorder{ResponseWriter: c.Writer}

	_, err := rec.Write([]byte(`{"ok":true}`))
	assert.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, rec.body.String())
	assert.Equal(t, `{"ok":true}`, w.Body.String())
}
