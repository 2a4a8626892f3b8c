package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/printshop/backoffice/internal/application/invoicing"
	"github.com/printshop/backoffice/internal/domain/shared"
	"github.com/printshop/backoffice/internal/interfaces/http/dto"
)

// InvoiceHandler handles invoice issuance endpoints.
type InvoiceHandler struct {
	BaseHandler
	service *invoicing.Service
	timeout time.Duration
}

// NewInvoiceHandler creates an InvoiceHandler. A nil service marks the
// pipeline as unconfigured; requests then fail with a clear
// configuration error instead of a crash.
func NewInvoiceHandler(service *invoicing.Service, timeout time.Duration) *InvoiceHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &InvoiceHandler{service: service, timeout: timeout}
}

// RegisterRoutes registers the invoice routes.
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/invoices", h.Issue)
}

// Issue runs the issuance pipeline for one job/customer pair.
func (h *InvoiceHandler) Issue(c *gin.Context) {
	if h.service == nil {
		h.HandleError(c, shared.NewDomainError(invoicing.ErrCodeNotConfigured,
			"invoice pipeline is not configured, missing backing store credentials"))
		return
	}

	var req dto.IssueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid invoice request: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	result, err := h.service.Issue(ctx, invoicing.IssueRequest{
		Job:      req.Job.ToDomain(),
		Customer: req.Customer.ToDomain(),
		OwnerID:  req.UserID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.OK(c, dto.InvoiceIssuedResponse{
		Success:       true,
		InvoiceNumber: result.InvoiceNumber,
		DownloadURL:   result.DownloadURL,
		StoragePath:   result.StorageKey,
		PDFBase64:     result.PDFBase64,
		FileName:      result.FileName,
	})
}
