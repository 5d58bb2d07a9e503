package handlers

import (
	"errors"
	"net/http"

	"campuspay/models"
	"campuspay/services/payment"
	"campuspay/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WebhookHandler receives asynchronous provider confirmations.
type WebhookHandler struct {
	Service payment.PaymentService
	Logger  *zap.Logger
}

func NewWebhookHandler(service payment.PaymentService, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{Service: service, Logger: logger}
}

// HandleProviderWebhook verifies and applies a provider callback. Unknown
// transactions and already-terminal states are acknowledged with 200 so the
// provider does not retry forever; only signature failures are rejected.
func (h *WebhookHandler) HandleProviderWebhook(c *gin.Context) {
	provider := models.Provider(c.Param("provider"))

	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload", "details": err.Error()})
		return
	}

	if err := h.Service.HandleWebhook(c.Request.Context(), provider, payload); err != nil {
		var unauthorized payment.UnauthorizedError
		if errors.As(err, &unauthorized) {
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}
		h.Logger.Error("webhook processing failed",
			zap.String("provider", string(provider)),
			zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "internal error", "webhook processing failed")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
