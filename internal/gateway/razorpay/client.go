// internal/gateway/razorpay/client.go
package razorpay

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	xerrors "settings-service/internal/pkg/errors"

	"go.uber.org/zap"
)

const defaultBaseURL = "https://api.razorpay.com"

type Config struct {
	KeyID        string
	KeySecret    string
	BaseURL      string
	MerchantName string
	ThemeColor   string
}

// Gateway talks to the Razorpay Orders API and verifies payment
// signatures. The underlying HTTP handle is a process-lifetime shared
// resource initialized lazily: Acquire is safe to call from any number of
// call sites and never initializes twice. A failed acquisition may be
// retried; a successful one is sticky.
type Gateway struct {
	cfg    Config
	logger *zap.Logger

	mu     sync.Mutex
	client *http.Client
}

func NewGateway(cfg Config, logger *zap.Logger) *Gateway {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Gateway{cfg: cfg, logger: logger}
}

// Acquire readies the shared gateway handle. Idempotent.
func (g *Gateway) Acquire(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.client != nil {
		return nil
	}
	if g.cfg.KeyID == "" || g.cfg.KeySecret == "" {
		return fmt.Errorf("%w: missing key credentials", xerrors.ErrGatewayUnavailable)
	}

	g.client = &http.Client{Timeout: 30 * time.Second}
	g.logger.Info("payment gateway ready", zap.String("key_id", g.cfg.KeyID))
	return nil
}

// KeyID exposes the public key for checkout option construction.
func (g *Gateway) KeyID() string { return g.cfg.KeyID }

type OrderRequest struct {
	AmountPaise int64
	Currency    string
	Receipt     string
	Notes       map[string]string
}

type OrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type apiError struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder creates one gateway order. Amounts are in the smallest
// currency unit (paise for INR).
func (g *Gateway) CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	if err := g.Acquire(ctx); err != nil {
		return nil, err
	}

	payload := map[string]interface{}{
		"amount":          req.AmountPaise,
		"currency":        req.Currency,
		"receipt":         req.Receipt,
		"payment_capture": 1,
	}
	if len(req.Notes) > 0 {
		payload["notes"] = req.Notes
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode order payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build order request: %w", err)
	}
	httpReq.SetBasicAuth(g.cfg.KeyID, g.cfg.KeySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("order request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read order response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Surface the gateway's structured description when present.
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("gateway rejected order: %s", apiErr.Error.Description)
		}
		return nil, fmt.Errorf("gateway rejected order: status %d", resp.StatusCode)
	}

	var order OrderResponse
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("failed to decode order response: %w", err)
	}

	g.logger.Info("gateway order created",
		zap.String("order_id", order.ID),
		zap.Int64("amount", order.Amount),
		zap.String("currency", order.Currency),
	)
	return &order, nil
}

// VerifySignature checks the HMAC-SHA256 the gateway computes over
// "order_id|payment_id" with the key secret.
func (g *Gateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(g.cfg.KeySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Prefill is the best-effort actor info shown in the checkout form.
type Prefill struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Contact string `json:"contact"`
}

// CheckoutOptions mirror the constructor options of the gateway's
// browser-side checkout.
type CheckoutOptions struct {
	Key         string            `json:"key"`
	OrderID     string            `json:"order_id"`
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Notes       map[string]string `json:"notes,omitempty"`
	Prefill     Prefill           `json:"prefill"`
	Theme       struct {
		Color string `json:"color"`
	} `json:"theme"`
}

// BuildCheckoutOptions assembles the options the client hands to the
// gateway's checkout surface.
func (g *Gateway) BuildCheckoutOptions(order *OrderResponse, description string, notes map[string]string, prefill Prefill) *CheckoutOptions {
	opts := &CheckoutOptions{
		Key:         g.cfg.KeyID,
		OrderID:     order.ID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Name:        g.cfg.MerchantName,
		Description: description,
		Notes:       notes,
		Prefill:     prefill,
	}
	opts.Theme.Color = g.cfg.ThemeColor
	return opts
}
