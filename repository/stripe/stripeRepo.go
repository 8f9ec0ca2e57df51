package striperepo

import (
	"context"

	"github.com/shopspring/decimal"
)

type CreateSessionReq struct {
	ProductName string
	Amount      decimal.Decimal // major units, 2 decimals
	SuccessURL  string
	CancelURL   string
}

type Session struct {
	ID  string
	URL string
}

// Provider opens checkout sessions with the external payment provider.
// One production implementation (Stripe over HTTP) and one fake for tests.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, req CreateSessionReq) (*Session, error)
}
