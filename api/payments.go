package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/journeyverse/backend/internal/domain"
	"github.com/journeyverse/backend/internal/gateway/cashfree"
	"github.com/journeyverse/backend/internal/service/payment"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	service       payment.PaymentUseCase
	webhookSecret string
	maxSkew       time.Duration
	logger        *zap.Logger
}

func NewPaymentHandler(service payment.PaymentUseCase, webhookSecret string, maxSkew time.Duration, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{
		service:       service,
		webhookSecret: webhookSecret,
		maxSkew:       maxSkew,
		logger:        logger,
	}
}

// Register mounts the authenticated initiation route. The webhook route is
// mounted separately because the gateway calls it without a user session.
func (h *PaymentHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.initiate)
}

func (h *PaymentHandler) RegisterWebhook(router *gin.RouterGroup) {
	router.POST("/webhook", h.webhook)
}

func (h *PaymentHandler) initiate(c *gin.Context) {
	var input payment.InitiatePaymentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.InitiatePayment(c.Request.Context(), sessionFrom(c), input)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// webhookBody is the gateway's notification shape. Newer payloads nest the
// fields under data, older ones carry them at the top level.
type webhookBody struct {
	Data *webhookFields `json:"data"`
	webhookFields
}

type webhookFields struct {
	OrderID       string      `json:"order_id"`
	PaymentStatus string      `json:"payment_status"`
	CfPaymentID   json.Number `json:"cf_payment_id"`
	OrderAmount   float64     `json:"order_amount"`
}

func (h *PaymentHandler) webhook(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	timestamp := c.GetHeader("x-webhook-timestamp")
	signature := c.GetHeader("x-webhook-signature")
	if err := cashfree.VerifyWebhookSignature(h.webhookSecret, timestamp, raw, signature, h.maxSkew); err != nil {
		h.logger.Warn("webhook rejected", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var body webhookBody
	if err := json.Unmarshal(raw, &body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	fields := body.webhookFields
	if body.Data != nil {
		fields = *body.Data
	}
	if fields.OrderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "order_id is required"})
		return
	}

	err = h.service.ProcessWebhook(c.Request.Context(), payment.WebhookNotification{
		OrderID:          fields.OrderID,
		PaymentStatus:    fields.PaymentStatus,
		GatewayPaymentID: fields.CfPaymentID.String(),
		OrderAmount:      fields.OrderAmount,
		Raw:              raw,
	})

	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	case errors.Is(err, domain.ErrPaymentNotFound):
		// No matching order. Acknowledge so the gateway stops retrying a
		// notification we can never apply.
		h.logger.Warn("webhook for unknown order acknowledged",
			zap.String("order_id", fields.OrderID))
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	case errors.Is(err, domain.ErrPaymentConflict):
		h.logger.Error("webhook conflicts with finalized payment",
			zap.String("order_id", fields.OrderID),
			zap.String("gateway_status", fields.PaymentStatus))
		c.JSON(http.StatusOK, gin.H{"status": "conflict"})
	case errors.Is(err, domain.ErrReconciliationNeeded):
		// The payment row is final; only the booking row lagged. Retrying
		// the webhook would not help, so it is acknowledged.
		c.JSON(http.StatusOK, gin.H{"status": "accepted"})
	default:
		// Transient store failure before anything was applied. A 500 makes
		// the gateway redeliver, which is safe here.
		writeError(c, err)
	}
}
