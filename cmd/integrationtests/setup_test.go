package integrationtests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	auction "live-auction-api/internal/auctionService"
	auth "live-auction-api/internal/authService"
	model "live-auction-api/internal/models"
	notification "live-auction-api/internal/notificationService"
	payment "live-auction-api/internal/paymentService"
	"live-auction-api/internal/repository"
	"live-auction-api/internal/server"
	"live-auction-api/utils"
)

// fakeGateway answers like a payment provider whose intents always succeed
// on retrieval. Webhook payloads are raw JSON of a WebhookEvent.
type fakeGateway struct{}

func (fakeGateway) CreateIntent(_ context.Context, amountCents int64, _, _ string, _ map[string]string) (*payment.Intent, error) {
	return &payment.Intent{
		ID:           "pi_" + utils.GenerateID(),
		ClientSecret: "secret_" + utils.GenerateID(),
		Status:       model.PaymentStatusRequiresMethod,
		Amount:       amountCents,
	}, nil
}

func (fakeGateway) RetrieveIntent(_ context.Context, intentID string) (*payment.Intent, error) {
	return &payment.Intent{ID: intentID, Status: model.PaymentStatusSucceeded, Amount: 10000}, nil
}

func (fakeGateway) VerifyWebhook(payload []byte, signature string) (*payment.WebhookEvent, error) {
	var event payment.WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// fakePusher accepts every push and fabricates a message ID
type fakePusher struct{}

func (fakePusher) Send(_ context.Context, token, _, _ string, _ map[string]string) (string, error) {
	return "msg-" + token, nil
}

type testEnv struct {
	repo   *repository.MemoryRepo
	tokens *auth.JWTManager
	router *gin.Engine
}

// newTestEnv wires the full router onto the in-memory store with fake
// gateway and pusher backends.
func newTestEnv() *testEnv {
	gin.SetMode(gin.TestMode)

	repo := repository.NewMemoryRepo()
	tokens := auth.NewJWTManager("integration-test-secret", time.Hour)

	router := server.SetupRouter(server.Services{
		Auction:      auction.NewAuctionService(repo, 50),
		Payment:      payment.NewPaymentService(repo, fakeGateway{}),
		Notification: notification.NewNotificationService(repo, fakePusher{}),
		Auth:         auth.NewAuthService(repo, tokens),
		Verifier:     tokens,
	})

	return &testEnv{repo: repo, tokens: tokens, router: router}
}

// seedUser creates a user document directly in the store and returns a
// bearer token for it. Hosting rights and balances cannot be granted through
// the public API, so lifecycle tests seed them here.
func (e *testEnv) seedUser(t *testing.T, userID string, balance float64, canHost bool, fcmToken string) string {
	t.Helper()

	now := time.Now().UTC()
	require.NoError(t, e.repo.CreateUser(context.Background(), &model.User{
		UserID:        userID,
		Email:         userID + "@example.com",
		DisplayName:   userID + " display",
		Role:          "user",
		CanHost:       canHost,
		WalletBalance: balance,
		FCMToken:      fcmToken,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))

	token, err := e.tokens.Issue(userID, userID+"@example.com", "user")
	require.NoError(t, err)
	return token
}

// ExecuteRequestAndParse runs an HTTP request against the router and parses
// the JSON response. An empty token leaves the request anonymous.
func (e *testEnv) ExecuteRequestAndParse(t *testing.T, method, url, token string, body any) (map[string]any, *httptest.ResponseRecorder) {
	t.Helper()

	var reqBody []byte
	switch v := body.(type) {
	case nil:
	case []byte:
		reqBody = v
	default:
		var err error
		reqBody, err = json.Marshal(v)
		require.NoError(t, err)
	}

	req := httptest.NewRequest(method, url, bytes.NewReader(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	// Error paths may answer with plain text; leave resp nil for those.
	var resp map[string]any
	if len(w.Body.Bytes()) > 0 {
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
	}
	return resp, w
}

// data unwraps the data envelope of a success response
func data(t *testing.T, resp map[string]any) map[string]any {
	t.Helper()
	d, ok := resp["data"].(map[string]any)
	require.True(t, ok, "response has no data object: %v", resp)
	return d
}
