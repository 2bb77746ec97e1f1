package gateway

import (
	"context"
	"fmt"
	"time"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/vivekyarra/moviesbyvivek/internal/config"
	"github.com/vivekyarra/moviesbyvivek/internal/model"
)

// orderAPI is the slice of the SDK's order resource this client needs.
type orderAPI interface {
	Create(data map[string]interface{}, extraHeaders map[string]string) (map[string]interface{}, error)
}

// RazorpayClient creates orders through the Razorpay Orders API.
type RazorpayClient struct {
	orders  orderAPI
	timeout time.Duration
}

func NewRazorpayClient(cfg config.PaymentConfig) *RazorpayClient {
	sdk := razorpay.NewClient(cfg.KeyID, cfg.KeySecret)
	return newRazorpayClient(sdk.Order, cfg.Timeout)
}

func newRazorpayClient(orders orderAPI, timeout time.Duration) *RazorpayClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RazorpayClient{orders: orders, timeout: timeout}
}

type createResult struct {
	body map[string]interface{}
	err  error
}

// CreateOrder opens an order.  Every provider failure wraps
// model.ErrGatewayUnavailable; the SDK call is not context aware, so a
// cancelled ctx or the configured timeout abandons it.
func (c *RazorpayClient) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	done := make(chan createResult, 1)
	go func() {
		body, err := c.orders.Create(map[string]interface{}{
			"amount":   req.Amount,
			"currency": req.Currency,
			"receipt":  req.Receipt,
		}, nil)
		done <- createResult{body: body, err: err}
	}()

	var res createResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", model.ErrGatewayUnavailable, ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("%w: razorpay create order: %v", model.ErrGatewayUnavailable, res.err)
	}
	out := orderFromBody(res.body)
	if out.ID == "" {
		return nil, fmt.Errorf("%w: razorpay create order: empty order id", model.ErrGatewayUnavailable)
	}
	return out, nil
}

// orderFromBody reads the SDK's decoded JSON, where numbers arrive as
// float64.
func orderFromBody(body map[string]interface{}) *Order {
	str := func(k string) string {
		s, _ := body[k].(string)
		return s
	}
	o := &Order{
		ID:       str("id"),
		Currency: str("currency"),
		Receipt:  str("receipt"),
		Status:   str("status"),
	}
	switch v := body["amount"].(type) {
	case float64:
		o.Amount = int64(v)
	case int64:
		o.Amount = v
	case int:
		o.Amount = int64(v)
	}
	return o
}
