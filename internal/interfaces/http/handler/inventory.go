package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/nemean-dev/cdl-admin/internal/application/inventory"
	"github.com/nemean-dev/cdl-admin/internal/interfaces/http/dto"
	"github.com/nemean-dev/cdl-admin/internal/interfaces/http/router"
)

// InventoryService is the batch inventory service the API calls
type InventoryService interface {
	UpdatePrices(ctx context.Context, updates []inventory.PriceUpdate) (*inventory.BatchResult, error)
	UpdateCosts(ctx context.Context, updates []inventory.CostUpdate) (*inventory.BatchResult, error)
	AdjustQuantities(ctx context.Context, updates []inventory.QuantityUpdate) (*inventory.BatchResult, error)
	UpdateMetafields(ctx context.Context, updates []inventory.MetafieldUpdate) (*inventory.BatchResult, error)
	LoadIntakeRows(ctx context.Context, key string) ([]inventory.IntakeRow, error)
	ValidateIntake(ctx context.Context, rows []inventory.IntakeRow) (*inventory.IntakeValidation, error)
	ApplyIntake(ctx context.Context, rows []inventory.IntakeRow) (*inventory.IntakeValidation, *inventory.BatchResult, error)
}

var _ InventoryService = (*inventory.Service)(nil)

// InventoryHandler runs batch catalog updates and the intake workflow
type InventoryHandler struct {
	BaseHandler
	service InventoryService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(service InventoryService) *InventoryHandler {
	return &InventoryHandler{service: service}
}

// Routes returns the inventory route group
func (h *InventoryHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("/inventory").
		POST("/prices", h.UpdatePrices).
		POST("/costs", h.UpdateCosts).
		POST("/quantities", h.AdjustQuantities).
		POST("/metafields", h.UpdateMetafields).
		POST("/intake/validate", h.ValidateIntake).
		POST("/intake/apply", h.ApplyIntake)
}

// UpdatePrices sets variant prices. Per-item failures are reported in the
// result, not as an error status.
//
// @ID           updateInventoryPrices
// @Summary      Update variant prices
// @Description  Sets the price of every listed variant. Per-item failures are reported in the result
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body dto.PriceBatchRequest true "Batch items"
// @Success      200 {object} APIResponse[inventory.BatchResult]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/inventory/prices [post]
func (h *InventoryHandler) UpdatePrices(c *gin.Context) {
	var req dto.PriceBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.batch(c)(h.service.UpdatePrices(c.Request.Context(), req.Items))
}

// UpdateCosts sets inventory item unit costs
//
// @ID           updateInventoryCosts
// @Summary      Update unit costs
// @Description  Sets the unit cost of every listed inventory item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body dto.CostBatchRequest true "Batch items"
// @Success      200 {object} APIResponse[inventory.BatchResult]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/inventory/costs [post]
func (h *InventoryHandler) UpdateCosts(c *gin.Context) {
	var req dto.CostBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.batch(c)(h.service.UpdateCosts(c.Request.Context(), req.Items))
}

// AdjustQuantities adds received units at the configured location
//
// @ID           adjustInventoryQuantities
// @Summary      Receive units
// @Description  Adds received units to the available quantity at the configured location
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body dto.QuantityBatchRequest true "Batch items"
// @Success      200 {object} APIResponse[inventory.BatchResult]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/inventory/quantities [post]
func (h *InventoryHandler) AdjustQuantities(c *gin.Context) {
	var req dto.QuantityBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.batch(c)(h.service.AdjustQuantities(c.Request.Context(), req.Items))
}

// UpdateMetafields sets metafields, optionally guarded by compare digests
//
// @ID           updateInventoryMetafields
// @Summary      Set metafields
// @Description  Sets metafields in batches of 25, each optionally guarded by a compare digest
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body dto.MetafieldBatchRequest true "Batch items"
// @Success      200 {object} APIResponse[inventory.BatchResult]
// @Failure      400 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/inventory/metafields [post]
func (h *InventoryHandler) UpdateMetafields(c *gin.Context) {
	var req dto.MetafieldBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	h.batch(c)(h.service.UpdateMetafields(c.Request.Context(), req.Items))
}

func (h *InventoryHandler) batch(c *gin.Context) func(*inventory.BatchResult, error) {
	return func(result *inventory.BatchResult, err error) {
		if err != nil {
			h.HandleError(c, err)
			return
		}
		h.Success(c, result)
	}
}

// ValidateIntake checks an intake sheet against the store without writing
//
// @ID           validateInventoryIntake
// @Summary      Validate an intake sheet
// @Description  Checks every row against the store without writing anything
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body dto.IntakeRequest true "Inline rows or a stored sheet key"
// @Success      200 {object} APIResponse[dto.IntakeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/inventory/intake/validate [post]
func (h *InventoryHandler) ValidateIntake(c *gin.Context) {
	rows, ok := h.intakeRows(c)
	if !ok {
		return
	}

	validation, err := h.service.ValidateIntake(c.Request.Context(), rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.IntakeResponse{Validation: validation})
}

// ApplyIntake validates an intake sheet and writes every valid row
//
// @ID           applyInventoryIntake
// @Summary      Apply an intake sheet
// @Description  Validates the sheet, then sets price, cost, quantity and cost history for every valid row
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body dto.IntakeRequest true "Inline rows or a stored sheet key"
// @Success      200 {object} APIResponse[dto.IntakeResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Failure      503 {object} ErrorResponse
// @Failure      502 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/inventory/intake/apply [post]
func (h *InventoryHandler) ApplyIntake(c *gin.Context) {
	rows, ok := h.intakeRows(c)
	if !ok {
		return
	}

	validation, result, err := h.service.ApplyIntake(c.Request.Context(), rows)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.IntakeResponse{Validation: validation, Result: result})
}

// intakeRows reads inline rows or loads the stored sheet. Inline rows win
// when both are given.
func (h *InventoryHandler) intakeRows(c *gin.Context) ([]inventory.IntakeRow, bool) {
	var req dto.IntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return nil, false
	}
	if len(req.Rows) > 0 {
		return req.Rows, true
	}

	rows, err := h.service.LoadIntakeRows(c.Request.Context(), req.StorageKey)
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return rows, true
}
