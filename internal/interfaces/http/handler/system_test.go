package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func health(t *testing.T, h *SystemHandler) (int, HealthResponse) {
	t.Helper()
	engine := gin.New()
	h.RegisterRoutes(engine)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w.Code, resp
}

func TestSystemHandler_Health(t *testing.T) {
	t.Run("no checks", func(t *testing.T) {
		code, resp := health(t, NewSystemHandler("1.2.0"))

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "healthy", resp.Status)
		assert.Equal(t, "1.2.0", resp.Version)
		assert.Empty(t, resp.Checks)
	})

	t.Run("all passing", func(t *testing.T) {
		h := NewSystemHandler("dev",
			WithHealthCheck("database", func(context.Context) error { return nil }),
			WithHealthCheck("storage", func(context.Context) error { return nil }),
		)
		code, resp := health(t, h)

		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, map[string]string{"database": "ok", "storage": "ok"}, resp.Checks)
	})

	t.Run("failing check", func(t *testing.T) {
		h := NewSystemHandler("dev",
			WithHealthCheck("database", func(context.Context) error { return nil }),
			WithHealthCheck("redis", func(context.Context) error { return errors.New("connection refused") }),
		)
		code, resp := health(t, h)

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", resp.Status)
		assert.Equal(t, "connection refused", resp.Checks["redis"])
		assert.Equal(t, "ok", resp.Checks["database"])
	})

	t.Run("check bounded by timeout", func(t *testing.T) {
		h := NewSystemHandler("dev",
			WithHealthTimeout(20*time.Millisecond),
			WithHealthCheck("slow", func(ctx context.Context) error {
				<-ctx.Done()
				return ctx.Err()
			}),
		)
		code, resp := health(t, h)

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, context.DeadlineExceeded.Error(), resp.Checks["slow"])
	})
}
