// Package handler implements the HTTP endpoints of the invoicing and
// notification API.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/printshop/backoffice/internal/infrastructure/logger"
	"github.com/printshop/backoffice/internal/interfaces/http/dto"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func requestLogger(c *gin.Context) *zap.Logger {
	return logger.FromGin(c)
}

// OK sends a 200 response with the given payload.
func (h *BaseHandler) OK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// BadRequest sends a 400 validation failure.
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{
		Error:   "ERR_VALIDATION",
		Details: message,
	})
}

// HandleError maps a pipeline error onto its HTTP status and payload.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	status, body := dto.FromError(err)
	if status >= http.StatusInternalServerError {
		requestLogger(c).Error("request failed", zap.Error(err))
	}
	c.JSON(status, body)
}
