// Package payment creates checkout sessions with the Cashfree payment gateway.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/junaidrashid-git/swiftcart-api/config"
	"go.uber.org/zap"
)

var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// Request is the checkout payload sent by the storefront.
type Request struct {
	Amount  float64 `json:"amount"`
	OrderID string  `json:"orderId"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Phone   string  `json:"phone,omitempty"`
}

// Result never carries an error: every failure is reported as Success false.
type Result struct {
	Success   bool   `json:"success"`
	SessionID string `json:"payment_session_id,omitempty"`
	Message   string `json:"message,omitempty"`
}

type createOrderRequest struct {
	OrderAmount     float64         `json:"order_amount"`
	OrderCurrency   string          `json:"order_currency"`
	OrderID         string          `json:"order_id"`
	CustomerDetails customerDetails `json:"customer_details"`
	OrderMeta       orderMeta       `json:"order_meta"`
}

type customerDetails struct {
	CustomerID    string `json:"customer_id"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
	CustomerName  string `json:"customer_name,omitempty"`
}

type orderMeta struct {
	ReturnURL string `json:"return_url"`
}

type createOrderResponse struct {
	CFOrderID        string `json:"cf_order_id"`
	OrderID          string `json:"order_id"`
	PaymentSessionID string `json:"payment_session_id"`
	Message          string `json:"message"`
}

type Gateway struct {
	cfg    config.PaymentConfig
	client *http.Client
	log    *zap.Logger
}

func NewGateway(cfg config.PaymentConfig, log *zap.Logger) *Gateway {
	return &Gateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With(zap.String("gateway", "cashfree")),
	}
}

// InitiatePayment creates a gateway order and returns its payment session id.
func (g *Gateway) InitiatePayment(ctx context.Context, req Request) Result {
	if req.Amount <= 0 || strings.TrimSpace(req.OrderID) == "" || strings.TrimSpace(req.Email) == "" {
		return Result{Message: "amount, orderId and email are required"}
	}
	if !g.cfg.Configured() {
		g.log.Error("payment gateway credentials missing")
		return Result{Message: "Payment initiation failed"}
	}

	sessionID, err := g.createOrder(ctx, req)
	if err != nil {
		g.log.Error("payment initiation failed", zap.String("order_id", req.OrderID), zap.Error(err))
		return Result{Message: "Payment initiation failed"}
	}
	g.log.Info("payment session created", zap.String("order_id", req.OrderID))
	return Result{Success: true, SessionID: sessionID}
}

func (g *Gateway) createOrder(ctx context.Context, req Request) (string, error) {
	phone := req.Phone
	if !phonePattern.MatchString(phone) {
		phone = g.cfg.FallbackPhone
	}

	payload, err := json.Marshal(createOrderRequest{
		OrderAmount:   req.Amount,
		OrderCurrency: g.cfg.Currency,
		OrderID:       req.OrderID,
		CustomerDetails: customerDetails{
			CustomerID:    "customer_" + uuid.NewString(),
			CustomerEmail: req.Email,
			CustomerPhone: phone,
			CustomerName:  req.Name,
		},
		OrderMeta: orderMeta{ReturnURL: strings.ReplaceAll(g.cfg.ReturnURL, "{order_id}", req.OrderID)},
	})
	if err != nil {
		return "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.Endpoint()+"/orders", bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("x-api-version", g.cfg.APIVersion)
	httpReq.Header.Set("x-client-id", g.cfg.ClientID)
	httpReq.Header.Set("x-client-secret", g.cfg.ClientSecret)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to reach cashfree: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", err
	}
	var out createOrderResponse
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = json.Unmarshal(body, &out)
		return "", fmt.Errorf("cashfree API error (%d): %s", resp.StatusCode, out.Message)
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to parse cashfree response: %w", err)
	}
	if out.PaymentSessionID == "" {
		return "", fmt.Errorf("cashfree returned empty payment session")
	}
	return out.PaymentSessionID, nil
}
