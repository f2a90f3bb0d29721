package handler_test

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"klipz/config"
	"klipz/internal/handler"
	"klipz/internal/repository"
	"klipz/internal/service"
	"klipz/internal/testutil"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stretchr/testify/require"
)

const webhookSecret = "whsec_test_secret"

func newWebhookRouter(t *testing.T) (*gin.Engine, *service.LedgerService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewTestDB(t)
	ledger := service.NewLedgerService(db, repository.NewWalletRepository(db))
	depositSvc := service.NewDepositService(db, repository.NewWebhookEventRepository(db), repository.NewDepositRepository(db), ledger)
	cfg := &config.Config{Stripe: config.StripeConfig{WebhookSecret: webhookSecret}}
	h := handler.NewStripeWebhookHandler(cfg, depositSvc, nil, repository.NewAuditLogRepository(db))

	r := gin.New()
	r.POST("/webhooks/stripe", h.Handle)
	return r, ledger
}

// signPayload builds a Stripe-Signature header the same way Stripe does:
// HMAC-SHA256 of "<timestamp>.<payload>" with the endpoint secret.
func signPayload(payload []byte, secret string) string {
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func paymentSucceededPayload(eventID, intentID string, userID uint, amountCents int64) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"api_version": %q,
		"type": "payment_intent.succeeded",
		"data": {
			"object": {
				"id": %q,
				"object": "payment_intent",
				"amount_received": %d,
				"metadata": {"user_id": "%d", "amount_cents": "%d"}
			}
		}
	}`, eventID, stripe.APIVersion, intentID, amountCents, userID, amountCents))
}

func postWebhook(r *gin.Engine, payload []byte, signature string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", bytes.NewReader(payload))
	if signature != "" {
		req.Header.Set("Stripe-Signature", signature)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestWebhookMissingSignature(t *testing.T) {
	r, _ := newWebhookRouter(t)
	payload := paymentSucceededPayload("evt_1", "pi_1", 1, 5000)

	rec := postWebhook(r, payload, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestWebhookInvalidSignature(t *testing.T) {
	r, ledger := newWebhookRouter(t)
	payload := paymentSucceededPayload("evt_1", "pi_1", 1, 5000)

	rec := postWebhook(r, payload, signPayload(payload, "whsec_wrong_secret"))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	wallet, err := ledger.Balance(1)
	require.NoError(t, err)
	require.Equal(t, int64(0), wallet.BalanceCents)
}

func TestWebhookTamperedPayload(t *testing.T) {
	r, ledger := newWebhookRouter(t)
	payload := paymentSucceededPayload("evt_1", "pi_1", 1, 5000)
	sig := signPayload(payload, webhookSecret)
	tampered := bytes.Replace(payload, []byte(`"5000"`), []byte(`"9999"`), 1)

	rec := postWebhook(r, tampered, sig)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	wallet, err := ledger.Balance(1)
	require.NoError(t, err)
	require.Equal(t, int64(0), wallet.BalanceCents)
}

func TestWebhookCreditsWallet(t *testing.T) {
	r, ledger := newWebhookRouter(t)
	payload := paymentSucceededPayload("evt_1", "pi_1", 1, 5000)

	rec := postWebhook(r, payload, signPayload(payload, webhookSecret))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "evt_1")

	wallet, err := ledger.Balance(1)
	require.NoError(t, err)
	require.Equal(t, int64(5000), wallet.BalanceCents)
}

func TestWebhookDuplicateDeliveryCreditsOnce(t *testing.T) {
	r, ledger := newWebhookRouter(t)
	payload := paymentSucceededPayload("evt_1", "pi_1", 1, 5000)

	rec := postWebhook(r, payload, signPayload(payload, webhookSecret))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postWebhook(r, payload, signPayload(payload, webhookSecret))
	require.Equal(t, http.StatusOK, rec.Code, "replays are acknowledged, not errored")

	wallet, err := ledger.Balance(1)
	require.NoError(t, err)
	require.Equal(t, int64(5000), wallet.BalanceCents, "duplicate event id must not credit twice")
}

func TestWebhookMissingMetadataSkips(t *testing.T) {
	r, ledger := newWebhookRouter(t)
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"api_version": %q,
		"type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_1", "object": "payment_intent", "amount_received": 5000, "metadata": {}}}
	}`, stripe.APIVersion))

	rec := postWebhook(r, payload, signPayload(payload, webhookSecret))
	require.Equal(t, http.StatusOK, rec.Code)

	wallet, err := ledger.Balance(1)
	require.NoError(t, err)
	require.Equal(t, int64(0), wallet.BalanceCents)
}

func TestWebhookIgnoresUnknownEventType(t *testing.T) {
	r, _ := newWebhookRouter(t)
	payload := []byte(fmt.Sprintf(`{
		"id": "evt_1",
		"api_version": %q,
		"type": "customer.created",
		"data": {"object": {"id": "cus_1", "object": "customer"}}
	}`, stripe.APIVersion))

	rec := postWebhook(r, payload, signPayload(payload, webhookSecret))
	require.Equal(t, http.StatusOK, rec.Code)
}
