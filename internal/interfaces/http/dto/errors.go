package dto

import "net/http"

// API error codes, ERR_<CATEGORY>[_<DETAIL>]
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation      = "ERR_VALIDATION"
	ErrCodeBadRequest      = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput    = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON     = "ERR_INVALID_JSON"
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeSyncInProgress means another reconciliation pass holds the lock
	ErrCodeSyncInProgress = "ERR_SYNC_IN_PROGRESS"

	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeUserErrors carries the store's userErrors for a rejected mutation
	ErrCodeUserErrors = "ERR_USER_ERRORS"

	// ErrCodeRateLimited means the store kept throttling after every retry
	ErrCodeRateLimited        = "ERR_RATE_LIMITED"
	ErrCodeUpstream           = "ERR_UPSTREAM"
	ErrCodeStorageUnavailable = "ERR_STORAGE_UNAVAILABLE"
)

var statusByCode = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeSyncInProgress:      http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeUserErrors:   http.StatusUnprocessableEntity,

	ErrCodeRateLimited:        http.StatusTooManyRequests,
	ErrCodeUpstream:           http.StatusBadGateway,
	ErrCodeStorageUnavailable: http.StatusServiceUnavailable,
}

// HTTPStatus returns the status for an API code. Unknown codes report false.
func HTTPStatus(code string) (int, bool) {
	status, ok := statusByCode[code]
	return status, ok
}

// domain error code -> API error code
var apiCodeByDomainCode = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"LOCK_HELD":            ErrCodeSyncInProgress,
	"INVALID_VENDOR_NAME":  ErrCodeValidation,
}

// APICode translates a domain error code. Codes without a translation, such
// as INVALID_MAX_DURATION, pass through unchanged.
func APICode(domainCode string) string {
	if code, ok := apiCodeByDomainCode[domainCode]; ok {
		return code
	}
	return domainCode
}
