package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// HealthCheck checks one dependency
type HealthCheck func(ctx context.Context) error

// SystemHandler serves operational endpoints
type SystemHandler struct {
	BaseHandler
	version string
	checks  map[string]HealthCheck
	timeout time.Duration
	docs    bool
}

// SystemOption configures a SystemHandler
type SystemOption func(*SystemHandler)

// WithHealthCheck adds a named dependency check
func WithHealthCheck(name string, check HealthCheck) SystemOption {
	return func(h *SystemHandler) {
		h.checks[name] = check
	}
}

// WithHealthTimeout bounds the time spent on all checks
func WithHealthTimeout(d time.Duration) SystemOption {
	return func(h *SystemHandler) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithAPIDocs serves the generated API documentation under /swagger. The
// docs package must be linked into the binary for it to find a document.
func WithAPIDocs(enabled bool) SystemOption {
	return func(h *SystemHandler) {
		h.docs = enabled
	}
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(version string, opts ...SystemOption) *SystemHandler {
	h := &SystemHandler{
		version: version,
		checks:  make(map[string]HealthCheck),
		timeout: 3 * time.Second,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// HealthResponse reports service and dependency health
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// Health answers 200 when every health check passes and 503 otherwise
//
// @ID           getHealth
// @Summary      Health check
// @Description  Checks the database and object storage and reports each result
// @Tags         system
// @Produce      json
// @Success      200 {object} HealthResponse
// @Failure      503 {object} HealthResponse
// @Router       /health [get]
func (h *SystemHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	resp := HealthResponse{Status: "healthy", Version: h.version}
	if len(h.checks) > 0 {
		resp.Checks = make(map[string]string, len(h.checks))
	}
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "unhealthy"
			continue
		}
		resp.Checks[name] = "ok"
	}

	status := http.StatusOK
	if resp.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, resp)
}

// RegisterRoutes mounts the unversioned operational routes
func (h *SystemHandler) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/health", h.Health)
	if h.docs {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}
