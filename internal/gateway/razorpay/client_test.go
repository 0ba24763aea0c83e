package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	xerrors "settings-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testGateway(t *testing.T, baseURL string) *Gateway {
	t.Helper()
	return NewGateway(Config{
		KeyID:        "rzp_test_key",
		KeySecret:    "secret",
		BaseURL:      baseURL,
		MerchantName: "PropertyHub",
		ThemeColor:   "#2d6cdf",
	}, zap.NewNop())
}

func TestAcquireIdempotent(t *testing.T) {
	g := testGateway(t, "")
	require.NoError(t, g.Acquire(context.Background()))

	first := g.client
	require.NoError(t, g.Acquire(context.Background()))
	assert.Same(t, first, g.client)
}

func TestAcquireMissingCredentials(t *testing.T) {
	g := NewGateway(Config{}, zap.NewNop())
	err := g.Acquire(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, xerrors.ErrGatewayUnavailable)
}

func TestCreateOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/orders", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "rzp_test_key", user)
		assert.Equal(t, "secret", pass)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.EqualValues(t, 118000, payload["amount"])
		assert.Equal(t, "INR", payload["currency"])

		json.NewEncoder(w).Encode(OrderResponse{
			ID:       "order_abc123",
			Amount:   118000,
			Currency: "INR",
			Receipt:  payload["receipt"].(string),
			Status:   "created",
		})
	}))
	defer srv.Close()

	g := testGateway(t, srv.URL)
	order, err := g.CreateOrder(context.Background(), &OrderRequest{
		AmountPaise: 118000,
		Currency:    "INR",
		Receipt:     "rcpt-01",
		Notes:       map[string]string{"plan_slug": "pro"},
	})
	require.NoError(t, err)
	assert.Equal(t, "order_abc123", order.ID)
	assert.EqualValues(t, 118000, order.Amount)
}

func TestCreateOrderStructuredError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"code":"BAD_REQUEST_ERROR","description":"amount exceeds maximum"}}`))
	}))
	defer srv.Close()

	g := testGateway(t, srv.URL)
	_, err := g.CreateOrder(context.Background(), &OrderRequest{AmountPaise: 1, Currency: "INR"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "amount exceeds maximum")
}

func TestVerifySignature(t *testing.T) {
	g := testGateway(t, "")

	mac := hmac.New(sha256.New, []byte("secret"))
	mac.Write([]byte("order_abc123|pay_xyz789"))
	valid := hex.EncodeToString(mac.Sum(nil))

	assert.True(t, g.VerifySignature("order_abc123", "pay_xyz789", valid))
	assert.False(t, g.VerifySignature("order_abc123", "pay_xyz789", "tampered"))
	assert.False(t, g.VerifySignature("order_other", "pay_xyz789", valid))
}

func TestBuildCheckoutOptions(t *testing.T) {
	g := testGateway(t, "")
	order := &OrderResponse{ID: "order_abc123", Amount: 118000, Currency: "INR"}

	opts := g.BuildCheckoutOptions(order, "Pro plan (3m)", map[string]string{"plan_slug": "pro"}, Prefill{
		Name:  "Asha Rao",
		Email: "asha@example.com",
	})

	assert.Equal(t, "rzp_test_key", opts.Key)
	assert.Equal(t, "order_abc123", opts.OrderID)
	assert.EqualValues(t, 118000, opts.Amount)
	assert.Equal(t, "PropertyHub", opts.Name)
	assert.Equal(t, "Asha Rao", opts.Prefill.Name)
	assert.Equal(t, "", opts.Prefill.Contact)
	assert.Equal(t, "#2d6cdf", opts.Theme.Color)
}
