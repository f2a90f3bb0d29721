package payout

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
)

// StubProvider is a no-op provider for development and tests. It remembers
// transfer idempotency keys so retried dispatches return the same transfer.
type StubProvider struct {
	mu        sync.Mutex
	transfers map[string]string // idempotency key -> transfer id
}

func NewStubProvider() *StubProvider {
	return &StubProvider{transfers: make(map[string]string)}
}

func (s *StubProvider) CreatePaymentIntent(ctx context.Context, req PaymentIntentRequest) (*PaymentIntent, error) {
	id := fmt.Sprintf("pi_stub_%d_%d", time.Now().UnixNano(), req.UserID)
	return &PaymentIntent{ID: id, ClientSecret: id + "_secret"}, nil
}

func (s *StubProvider) CreateExpressAccount(ctx context.Context, email string) (string, error) {
	return fmt.Sprintf("acct_stub_%d", time.Now().UnixNano()), nil
}

func (s *StubProvider) CreateOnboardingLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	return "https://connect.stub/onboard/" + accountID, nil
}

func (s *StubProvider) Transfer(ctx context.Context, req TransferRequest) (*Transfer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if req.IdempotencyKey != "" {
		if id, ok := s.transfers[req.IdempotencyKey]; ok {
			return &Transfer{ID: id}, nil
		}
	}
	id := fmt.Sprintf("tr_stub_%d", time.Now().UnixNano())
	if req.IdempotencyKey != "" {
		s.transfers[req.IdempotencyKey] = id
	}
	return &Transfer{ID: id}, nil
}

func (s *StubProvider) ReverseTransfer(ctx context.Context, transferID string) error {
	if !strings.HasPrefix(transferID, "tr_stub_") {
		return fmt.Errorf("unknown transfer %s", transferID)
	}
	return nil
}
