package gateway

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

// SandboxClient fabricates orders locally.  It lets the full booking
// flow run without provider credentials; pair it with Signer to produce
// the signature a real checkout would return.
type SandboxClient struct{}

func (SandboxClient) CreateOrder(_ context.Context, req OrderRequest) (*Order, error) {
	return &Order{
		ID:       "order_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:14],
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
		Status:   "created",
	}, nil
}
