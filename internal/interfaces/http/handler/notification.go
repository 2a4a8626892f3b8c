package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/printshop/backoffice/internal/application/notification"
	"github.com/printshop/backoffice/internal/domain/billing"
	"github.com/printshop/backoffice/internal/interfaces/http/dto"
)

// NotificationHandler handles the customer notification endpoints.
type NotificationHandler struct {
	BaseHandler
	dispatcher *notification.Dispatcher
	timeout    time.Duration
}

// NewNotificationHandler creates a NotificationHandler.
func NewNotificationHandler(dispatcher *notification.Dispatcher, timeout time.Duration) *NotificationHandler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &NotificationHandler{dispatcher: dispatcher, timeout: timeout}
}

// RegisterRoutes registers the notification routes.
func (h *NotificationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	notifications := rg.Group("/notifications")
	notifications.POST("/pickup-or-shipment", h.PickupOrShipment)
	notifications.POST("/invoice", h.Invoice)
}

// PickupOrShipment sends a pickup-ready or shipped notice. The toShip
// flag selects the variant; shipment notices require a tracking number.
func (h *NotificationHandler) PickupOrShipment(c *gin.Context) {
	var req dto.PickupOrShipmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid notification request: "+err.Error())
		return
	}

	var (
		msg notification.Message
		err error
	)
	if req.ToShip {
		msg, err = notification.NewShipped(notification.ShippedInput{
			RecipientEmail: req.CustomerEmail,
			FirstName:      req.CustomerFirstName,
			LastName:       req.CustomerLastName,
			JobName:        req.JobName,
			TrackingRef:    req.TrackingNumber,
		})
	} else {
		msg, err = notification.NewPickupReady(notification.PickupReadyInput{
			RecipientEmail: req.CustomerEmail,
			FirstName:      req.CustomerFirstName,
			LastName:       req.CustomerLastName,
			JobName:        req.JobName,
		})
	}
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.dispatch(c, msg)
}

// Invoice sends an invoice email with the rendered PDF attached.
func (h *NotificationHandler) Invoice(c *gin.Context) {
	var req dto.InvoiceNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "invalid notification request: "+err.Error())
		return
	}

	rate := req.VATRate
	if rate.IsZero() {
		rate = billing.DefaultVATRate
	}

	msg, err := notification.NewInvoiceDelivery(notification.InvoiceDeliveryInput{
		RecipientEmail: req.CustomerEmail,
		RecipientName:  req.CustomerName,
		JobName:        req.JobName,
		InvoiceNumber:  req.InvoiceNumber,
		Amount:         req.Amount,
		VATRate:        rate,
		PDFBase64:      req.PDFBase64,
		FileName:       req.FileName,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.dispatch(c, msg)
}

func (h *NotificationHandler) dispatch(c *gin.Context, msg notification.Message) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	messageID, err := h.dispatcher.Dispatch(ctx, msg)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.OK(c, dto.NotificationSentResponse{
		Success:   true,
		MessageID: messageID,
	})
}
