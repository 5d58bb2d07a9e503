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

// PaymentHandler exposes the payment session and transaction endpoints.
type PaymentHandler struct {
	Service payment.PaymentService
	Logger  *zap.Logger
}

func NewPaymentHandler(service payment.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Service: service, Logger: logger}
}

// respondPaymentError maps the service error taxonomy to HTTP statuses.
func respondPaymentError(c *gin.Context, err error) {
	var (
		notFound     payment.NotFoundError
		forbidden    payment.ForbiddenError
		invalidState payment.InvalidStateError
		expired      payment.ExpiredError
		unauthorized payment.UnauthorizedError
		invalidArg   payment.InvalidArgumentError
		providerErr  payment.ProviderError
	)

	switch {
	case errors.As(err, &notFound):
		utils.JSONError(c, http.StatusNotFound, "not found", err.Error())
	case errors.As(err, &forbidden):
		utils.JSONError(c, http.StatusForbidden, "forbidden", err.Error())
	case errors.As(err, &invalidState):
		utils.JSONError(c, http.StatusConflict, "invalid state", err.Error())
	case errors.As(err, &expired):
		utils.JSONError(c, http.StatusGone, "session expired", err.Error())
	case errors.As(err, &unauthorized):
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", err.Error())
	case errors.As(err, &invalidArg):
		utils.JSONError(c, http.StatusBadRequest, "invalid request", err.Error())
	case errors.As(err, &providerErr):
		utils.JSONError(c, http.StatusBadGateway, "payment provider unavailable", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "internal error", err.Error())
	}
}

// CreateSessionHandler creates a payment session for the authenticated student.
func (h *PaymentHandler) CreateSessionHandler(c *gin.Context) {
	var input struct {
		StudentID string  `json:"studentId"`
		Amount    float64 `json:"amount"`
		Currency  string  `json:"currency"`
		InvoiceID string  `json:"invoiceId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if studentID := c.GetString("studentID"); studentID != "" {
		input.StudentID = studentID
	}

	session, err := h.Service.CreateSession(c.Request.Context(), input.StudentID, input.Amount, input.Currency, input.InvoiceID)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

// GetSessionHandler returns a session with its transactions, newest first.
func (h *PaymentHandler) GetSessionHandler(c *gin.Context) {
	detail, err := h.Service.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CancelSessionHandler cancels a session and its open transactions.
func (h *PaymentHandler) CancelSessionHandler(c *gin.Context) {
	session, err := h.Service.CancelSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

// InitiatePaymentHandler starts a payment attempt via any enabled method.
func (h *PaymentHandler) InitiatePaymentHandler(c *gin.Context) {
	var req models.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if studentID := c.GetString("studentID"); studentID != "" {
		req.StudentID = studentID
	}

	result, err := h.Service.InitiatePayment(c.Request.Context(), req)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	if !result.Accepted {
		// Structured failure: the provider rejected the charge synchronously.
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

// MobileMoneyHandler is the phone-first initiation endpoint used by the
// mobile apps.
func (h *PaymentHandler) MobileMoneyHandler(c *gin.Context) {
	var input struct {
		Phone     string          `json:"phone"`
		Amount    float64         `json:"amount"`
		Method    models.Provider `json:"method"`
		InvoiceID string          `json:"invoiceId"`
		SessionID string          `json:"sessionId"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	req := models.InitiatePaymentRequest{
		SessionID: input.SessionID,
		StudentID: c.GetString("studentID"),
		InvoiceID: input.InvoiceID,
		Amount:    input.Amount,
		Method:    input.Method,
		Phone:     input.Phone,
	}

	result, err := h.Service.InitiatePayment(c.Request.Context(), req)
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	if !result.Accepted {
		c.JSON(http.StatusOK, result)
		return
	}
	c.JSON(http.StatusAccepted, result)
}

// PaymentStatusHandler polls the best-known status of a transaction.
func (h *PaymentHandler) PaymentStatusHandler(c *gin.Context) {
	txn, err := h.Service.CheckPaymentStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondPaymentError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transaction": txn})
}

// PaymentMethodsHandler lists the providers enabled by configuration.
func (h *PaymentHandler) PaymentMethodsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": h.Service.EnabledMethods()})
}
