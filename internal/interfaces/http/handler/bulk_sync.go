package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/nemean-dev/cdl-admin/internal/domain/bulk"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
	"github.com/nemean-dev/cdl-admin/internal/interfaces/http/dto"
	"github.com/nemean-dev/cdl-admin/internal/interfaces/http/router"
)

// BulkSyncService is the part of the bulk sync service the API calls
type BulkSyncService interface {
	Trigger(ctx context.Context) (*bulk.SyncJob, error)
	Get(ctx context.Context, id uuid.UUID) (*bulk.SyncJob, error)
	List(ctx context.Context, filter shared.Filter) ([]*bulk.SyncJob, int64, error)
}

// BulkSyncHandler starts and reports bulk catalog syncs
type BulkSyncHandler struct {
	BaseHandler
	service BulkSyncService
}

// NewBulkSyncHandler creates a new BulkSyncHandler
func NewBulkSyncHandler(service BulkSyncService) *BulkSyncHandler {
	return &BulkSyncHandler{service: service}
}

// Routes returns the bulk sync route group
func (h *BulkSyncHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("/bulk-syncs").
		POST("", h.Trigger).
		GET("", h.List).
		GET("/:id", h.Get)
}

// Trigger starts a catalog export. The job is polled in the background; the
// response carries it in its started state.
//
// @ID           triggerBulkSync
// @Summary      Trigger a catalog export
// @Description  Starts a bulk product export and returns the job before the export finishes
// @Tags         bulk-syncs
// @Produce      json
// @Success      202 {object} APIResponse[dto.SyncJobResponse]
// @Failure      409 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/bulk-syncs [post]
func (h *BulkSyncHandler) Trigger(c *gin.Context) {
	job, err := h.service.Trigger(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Accepted(c, dto.NewSyncJobResponse(job))
}

// Get returns one job
//
// @ID           getBulkSync
// @Summary      Get a bulk sync job
// @Description  Returns a bulk sync job with its remote status and, once completed, its summary
// @Tags         bulk-syncs
// @Produce      json
// @Param        id path string true "Job ID" format(uuid)
// @Success      200 {object} APIResponse[dto.SyncJobResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/bulk-syncs/{id} [get]
func (h *BulkSyncHandler) Get(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BindError(c, err)
		return
	}

	job, err := h.service.Get(c.Request.Context(), uuid.MustParse(req.ID))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewSyncJobResponse(job))
}

// List returns jobs, newest first unless asked otherwise
//
// @ID           listBulkSyncs
// @Summary      List bulk sync jobs
// @Description  Returns a page of bulk sync jobs ordered by start time
// @Tags         bulk-syncs
// @Produce      json
// @Param        page query int false "Page number" minimum(1) default(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100) default(20)
// @Param        order_by query string false "Sort field" default(started_at)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc) default(desc)
// @Success      200 {object} APIResponse[[]dto.SyncJobResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/bulk-syncs [get]
func (h *BulkSyncHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	filter := req.Filter("started_at", "desc")
	jobs, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.NewSyncJobResponses(jobs), total, filter.Page, filter.PageSize)
}
