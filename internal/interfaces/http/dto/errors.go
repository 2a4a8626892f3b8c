package dto

import (
	"errors"
	"net/http"

	"github.com/printshop/backoffice/internal/application/invoicing"
	"github.com/printshop/backoffice/internal/application/notification"
	"github.com/printshop/backoffice/internal/domain/billing"
	"github.com/printshop/backoffice/internal/domain/shared"
)

// statusByCode maps stable error categories to HTTP status codes.
// Validation problems are the caller's fault; a missing company record
// is absence, not fault; everything else is an operator-actionable
// server-side failure.
var statusByCode = map[string]int{
	notification.ErrCodeValidation:             http.StatusBadRequest,
	billing.ErrCodeInvalidJobData:              http.StatusBadRequest,
	invoicing.ErrCodeCompanyNotConfigured:      http.StatusNotFound,
	invoicing.ErrCodeNotConfigured:             http.StatusInternalServerError,
	notification.ErrCodeTransportNotConfigured: http.StatusInternalServerError,
	invoicing.ErrCodeAllocationConflict:        http.StatusInternalServerError,
	invoicing.ErrCodeRenderFailed:              http.StatusInternalServerError,
	invoicing.ErrCodeStorageFailure:            http.StatusInternalServerError,
	notification.ErrCodeTransportFailure:       http.StatusInternalServerError,
}

// StatusForCode returns the HTTP status for a stable error category,
// defaulting to 500 for unknown categories.
func StatusForCode(code string) int {
	if status, ok := statusByCode[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// FromError converts any pipeline error into its HTTP status and wire
// payload. The error field carries the stable machine-checkable
// category; details carries the human-readable summary.
func FromError(err error) (int, ErrorResponse) {
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		return StatusForCode(domainErr.Code), ErrorResponse{
			Error:   domainErr.Code,
			Details: domainErr.Message,
		}
	}
	return http.StatusInternalServerError, ErrorResponse{
		Error:   "INTERNAL_ERROR",
		Details: "an unexpected error occurred",
	}
}
