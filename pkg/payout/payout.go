package payout

import "context"

type PaymentIntentRequest struct {
	UserID      uint
	AmountCents int64
	Currency    string
	Description string
}

type PaymentIntent struct {
	ID           string
	ClientSecret string
}

type TransferRequest struct {
	AmountCents          int64
	Currency             string
	DestinationAccountID string
	IdempotencyKey       string // withdrawal order id; makes retried dispatches safe
	Description          string
}

type Transfer struct {
	ID string
}

// Provider abstracts the payment processor so the payout pipeline can be
// exercised against a stub in tests.
type Provider interface {
	CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error)
	CreateExpressAccount(ctx context.Context, email string) (accountID string, err error)
	CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (url string, err error)
	Transfer(ctx context.Context, req TransferRequest) (*Transfer, error)
	ReverseTransfer(ctx context.Context, transferID string) error
}
