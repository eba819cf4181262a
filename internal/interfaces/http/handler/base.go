// Package handler implements the admin API endpoints.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nemean-dev/cdl-admin/internal/application/inventory"
	"github.com/nemean-dev/cdl-admin/internal/domain/integration"
	"github.com/nemean-dev/cdl-admin/internal/domain/shared"
	csvimport "github.com/nemean-dev/cdl-admin/internal/infrastructure/import"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/logger"
	"github.com/nemean-dev/cdl-admin/internal/infrastructure/storage"
	"github.com/nemean-dev/cdl-admin/internal/interfaces/http/dto"
	"github.com/nemean-dev/cdl-admin/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Accepted sends a 202 response for work continuing in the background
func (h *BaseHandler) Accepted(c *gin.Context, data any) {
	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindError answers a failed ShouldBind call: field details for validation
// failures, a plain 400 for undecodable bodies
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	if details := middleware.ValidationDetails(err); details != nil {
		c.JSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed",
			middleware.GetRequestID(c),
			details,
		))
		return
	}
	h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
}

// HandleError maps service errors to responses. Unexpected errors are logged
// with the request context and answered without internals.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var userErrs *integration.UserErrorsError
	if errors.As(err, &userErrs) {
		c.JSON(http.StatusUnprocessableEntity, dto.Response{
			Success: false,
			Data:    gin.H{"user_errors": userErrs.Errors},
			Error: &dto.ErrorInfo{
				Code:      dto.ErrCodeUserErrors,
				Message:   userErrs.Error(),
				RequestID: middleware.GetRequestID(c),
			},
		})
		return
	}

	if code, message, ok := classify(err); ok {
		status, _ := dto.HTTPStatus(code)
		h.Error(c, status, code, message)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		code := dto.APICode(domainErr.Code)
		status, known := dto.HTTPStatus(code)
		if !known {
			status = http.StatusUnprocessableEntity
		}
		h.Error(c, status, code, domainErr.Message)
		return
	}

	logger.L(c.Request.Context()).Error("Unhandled request error", zap.Error(err))
	h.InternalError(c, "An unexpected error occurred")
}

// classify matches the sentinel errors that have a fixed API code
func classify(err error) (code, message string, ok bool) {
	switch {
	case errors.Is(err, integration.ErrReconciliationInProgress):
		return dto.ErrCodeSyncInProgress, "A reconciliation pass is already running", true
	case errors.Is(err, integration.ErrRateLimited):
		return dto.ErrCodeRateLimited, "The store is throttling requests, try again later", true
	case errors.Is(err, integration.ErrTransientNetwork),
		errors.Is(err, integration.ErrRemoteServer),
		errors.Is(err, integration.ErrClientRequest),
		errors.Is(err, integration.ErrMalformedQuery),
		errors.Is(err, integration.ErrInvalidPayload),
		errors.Is(err, integration.ErrMissingMutationField):
		return dto.ErrCodeUpstream, "The store request failed", true
	case errors.Is(err, inventory.ErrNoSheetSource):
		return dto.ErrCodeStorageUnavailable, "Object storage is not configured", true
	case errors.Is(err, storage.ErrObjectNotFound):
		return dto.ErrCodeNotFound, "Stored sheet not found", true
	case errors.Is(err, csvimport.ErrMissingHeader),
		errors.Is(err, csvimport.ErrEmptyFile),
		errors.Is(err, csvimport.ErrInvalidEncoding):
		return dto.ErrCodeInvalidInput, err.Error(), true
	case errors.Is(err, context.DeadlineExceeded):
		return dto.ErrCodeUpstream, "The store did not answer in time", true
	}
	return "", "", false
}
