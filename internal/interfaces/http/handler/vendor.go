package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/nemean-dev/cdl-admin/internal/domain/catalog"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
	"github.com/nemean-dev/cdl-admin/internal/interfaces/http/dto"
	"github.com/nemean-dev/cdl-admin/internal/interfaces/http/router"
)

// VendorLister reads the reconciled vendor registry
type VendorLister interface {
	FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Vendor, int64, error)
}

// VendorHandler exposes the vendor registry
type VendorHandler struct {
	BaseHandler
	vendors VendorLister
}

// NewVendorHandler creates a new VendorHandler
func NewVendorHandler(vendors VendorLister) *VendorHandler {
	return &VendorHandler{vendors: vendors}
}

// Routes returns the vendor route group
func (h *VendorHandler) Routes() *router.DomainGroup {
	return router.NewDomainGroup("/vendors").
		GET("", h.List)
}

// List returns vendors ordered by display name. Search matches the display
// name and the normalized key.
//
// @ID           listVendors
// @Summary      List canonical vendors
// @Description  Returns a page of reconciled vendors with their product counts and source spellings
// @Tags         vendors
// @Produce      json
// @Param        page query int false "Page number" minimum(1) default(1)
// @Param        page_size query int false "Page size" minimum(1) maximum(100) default(20)
// @Param        order_by query string false "Sort field" default(display_name)
// @Param        order_dir query string false "Sort direction" Enums(asc, desc) default(asc)
// @Param        search query string false "Matches display name or normalized key"
// @Success      200 {object} APIResponse[[]dto.VendorResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      500 {object} ErrorResponse
// @Router       /api/v1/vendors [get]
func (h *VendorHandler) List(c *gin.Context) {
	var req dto.ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindError(c, err)
		return
	}

	filter := req.Filter("display_name", "asc")
	vendors, total, err := h.vendors.FindAll(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, dto.NewVendorResponses(vendors), total, filter.Page, filter.PageSize)
}
