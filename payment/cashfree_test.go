package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/junaidrashid-git/swiftcart-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(baseURL string) config.PaymentConfig {
	return config.PaymentConfig{
		ClientID:      "cf_id",
		ClientSecret:  "cf_secret",
		BaseURL:       baseURL,
		APIVersion:    "2023-08-01",
		Currency:      "INR",
		ReturnURL:     "https://shop.example.com/order-success/{order_id}",
		FallbackPhone: "9999999999",
		Timeout:       2 * time.Second,
	}
}

func TestInitiatePaymentSendsOrder(t *testing.T) {
	var got createOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/orders", r.URL.Path)
		assert.Equal(t, "2023-08-01", r.Header.Get("x-api-version"))
		assert.Equal(t, "cf_id", r.Header.Get("x-client-id"))
		assert.Equal(t, "cf_secret", r.Header.Get("x-client-secret"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"cf_order_id":"1","order_id":"OD1","payment_session_id":"session_abc"}`))
	}))
	defer srv.Close()

	g := NewGateway(testConfig(srv.URL), zap.NewNop())
	res := g.InitiatePayment(context.Background(), Request{Amount: 74999, OrderID: "OD1", Email: "a@b.co", Name: "Asha", Phone: "7891906445"})

	assert.Equal(t, Result{Success: true, SessionID: "session_abc"}, res)
	assert.Equal(t, 74999.0, got.OrderAmount)
	assert.Equal(t, "INR", got.OrderCurrency)
	assert.Equal(t, "7891906445", got.CustomerDetails.CustomerPhone)
	assert.Regexp(t, `^customer_[0-9a-f-]{36}$`, got.CustomerDetails.CustomerID)
	assert.Equal(t, "https://shop.example.com/order-success/OD1", got.OrderMeta.ReturnURL)
}

func TestInitiatePaymentFallsBackPhone(t *testing.T) {
	var got createOrderRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"payment_session_id":"s"}`))
	}))
	defer srv.Close()

	g := NewGateway(testConfig(srv.URL), zap.NewNop())
	res := g.InitiatePayment(context.Background(), Request{Amount: 1, OrderID: "OD2", Email: "a@b.co", Phone: "12345"})
	require.True(t, res.Success)
	assert.Equal(t, "9999999999", got.CustomerDetails.CustomerPhone)
}

func TestInitiatePaymentFailures(t *testing.T) {
	rejecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"order_id already exists"}`))
	}))
	defer rejecting.Close()

	empty := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer empty.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closed.Close()

	valid := Request{Amount: 10, OrderID: "OD1", Email: "a@b.co"}
	unconfigured := testConfig(empty.URL)
	unconfigured.ClientSecret = ""

	tests := map[string]struct {
		cfg config.PaymentConfig
		req Request
	}{
		"gateway rejects":  {testConfig(rejecting.URL), valid},
		"no session id":    {testConfig(empty.URL), valid},
		"transport error":  {testConfig(closed.URL), valid},
		"not configured":   {unconfigured, valid},
		"non-positive":     {testConfig(empty.URL), Request{Amount: 0, OrderID: "OD1", Email: "a@b.co"}},
		"missing order id": {testConfig(empty.URL), Request{Amount: 10, Email: "a@b.co"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			res := NewGateway(tt.cfg, zap.NewNop()).InitiatePayment(context.Background(), tt.req)
			assert.False(t, res.Success)
			assert.Empty(t, res.SessionID)
			assert.NotEmpty(t, res.Message)
		})
	}
}
