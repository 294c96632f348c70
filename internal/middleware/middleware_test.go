package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	r := newEngine(RateLimiter(3, time.Minute))
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/ok").Code)
	}
	rec := get(r, "/ok")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "RATE_LIMITED", body["error"])
}

func TestRateLimiter_InstancesAreIndependent(t *testing.T) {
	a := newEngine(RateLimiter(1, time.Minute))
	b := newEngine(RateLimiter(1, time.Minute))
	assert.Equal(t, http.StatusOK, get(a, "/ok").Code)
	assert.Equal(t, http.StatusOK, get(b, "/ok").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(a, "/ok").Code)
}

func TestRateLimiter_DisabledWhenNonPositive(t *testing.T) {
	r := newEngine(RateLimiter(0, time.Minute))
	for i := 0; i < 10; i++ {
		assert.Equal(t, http.StatusOK, get(r, "/ok").Code)
	}
}

func TestRecovery_ReturnsInternalError(t *testing.T) {
	r := newEngine(RequestID(), Recovery())
	rec := get(r, "/panic")
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body["error"])
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestRequestID_GeneratedWhenMissing(t *testing.T) {
	r := newEngine(RequestID())
	rec := get(r, "/ok")
	assert.Len(t, rec.Header().Get(RequestIDKey), 36)
}

func TestCORS_AllowsConfiguredOrigin(t *testing.T) {
	r := newEngine(CORS([]string{"http://localhost:5173"}))
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
