package booking

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// OrderClient creates a provider-side payment order before the customer is
// sent to checkout. The real gateway client lives outside the core; this
// interface is what the booking flow needs from it.
type OrderClient interface {
	CreateOrder(ctx context.Context, amountSubunits int64, currency, receipt string) (orderID string, err error)
}

// SandboxOrderClient synthesizes order references without calling a gateway,
// for development and tests.
type SandboxOrderClient struct{}

func (c *SandboxOrderClient) CreateOrder(ctx context.Context, amountSubunits int64, currency, receipt string) (string, error) {
	if amountSubunits <= 0 {
		return "", fmt.Errorf("order amount must be positive, got %d", amountSubunits)
	}
	return "order_" + uuid.New().String(), nil
}
