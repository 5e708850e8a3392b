// Package cashfree is a typed client for the Cashfree Payments order API.
package cashfree

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/journeyverse/backend/config"
	"github.com/journeyverse/backend/internal/domain"
)

const apiVersion = "2023-08-01"

type Client struct {
	apiURL    string
	appID     string
	secretKey string
	notifyURL string
	client    *http.Client
}

func NewClient(cfg config.CashfreeConfig) *Client {
	return &Client{
		apiURL:    cfg.APIURL,
		appID:     cfg.AppID,
		secretKey: cfg.SecretKey,
		notifyURL: cfg.NotifyURL,
		client: &http.Client{
			Timeout: cfg.Timeout(),
		},
	}
}

type CustomerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type orderMeta struct {
	ReturnURL string `json:"return_url"`
	NotifyURL string `json:"notify_url"`
}

type createOrderPayload struct {
	OrderID         string          `json:"order_id"`
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	CustomerDetails CustomerDetails `json:"customer_details"`
	OrderMeta       orderMeta       `json:"order_meta"`
	OrderNote       string          `json:"order_note,omitempty"`
}

// OrderRequest describes the gateway order to open for a booking.
type OrderRequest struct {
	OrderID   string
	Amount    float64
	Currency  string
	Customer  CustomerDetails
	ReturnURL string
	Note      string
}

// OrderResult carries the fields the initiator needs plus the raw response
// body, which is persisted for audit.
type OrderResult struct {
	PaymentSessionID string
	PaymentURL       string
	Raw              json.RawMessage
}

type createOrderResponse struct {
	PaymentSessionID string `json:"payment_session_id"`
	PaymentLinks     struct {
		Web string `json:"web"`
	} `json:"payment_links"`
	Message string `json:"message"`
}

// CreateOrder opens a payment order with the gateway. A non-2xx response is a
// GatewayError carrying the gateway's own message where one was returned.
func (c *Client) CreateOrder(ctx context.Context, order OrderRequest) (*OrderResult, error) {
	payload := createOrderPayload{
		OrderID:       order.OrderID,
		OrderAmount:   order.Amount,
		OrderCurrency: order.Currency,
		CustomerDetails: order.Customer,
		OrderMeta: orderMeta{
			ReturnURL: order.ReturnURL,
			NotifyURL: c.notifyURL,
		},
		OrderNote: order.Note,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-version", apiVersion)
	req.Header.Set("x-client-id", c.appID)
	req.Header.Set("x-client-secret", c.secretKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.GatewayError{Message: "order creation request failed", Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.GatewayError{StatusCode: resp.StatusCode, Message: "failed to read order response", Err: err}
	}

	var parsed createOrderResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, &domain.GatewayError{StatusCode: resp.StatusCode, Message: "malformed order response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &domain.GatewayError{StatusCode: resp.StatusCode, Message: parsed.Message}
	}

	return &OrderResult{
		PaymentSessionID: parsed.PaymentSessionID,
		PaymentURL:       parsed.PaymentLinks.Web,
		Raw:              json.RawMessage(raw),
	}, nil
}
