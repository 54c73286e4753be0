package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	checkoutapi "mimo-api/internal/api/checkout"
	creatorsapi "mimo-api/internal/api/creators"
	"mimo-api/internal/api/functions"
	mediaapi "mimo-api/internal/api/media"
	packagesapi "mimo-api/internal/api/packages"
	rewardsapi "mimo-api/internal/api/rewards"
	stripewebhooks "mimo-api/internal/api/stripewebhook"
	withdrawalsapi "mimo-api/internal/api/withdrawals"
	"mimo-api/internal/app/http/middleware"
	"mimo-api/internal/app/rewards"
	"mimo-api/internal/domain/catalog"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type verifyFunc func(ctx context.Context, s, t string) (rewards.Result, error)

func (f verifyFunc) Verify(ctx context.Context, s, t string) (rewards.Result, error) { return f(ctx, s, t) }

type noCreators struct{}

func (noCreators) FindCreator(context.Context, string) (*catalog.Creator, error) {
	return nil, catalog.ErrNotFound
}

func engine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(CORS("https://app.mimo.example"))
	verify := verifyFunc(func(context.Context, string, string) (rewards.Result, error) {
		return rewards.Result{Success: false, Status: "unpaid"}, nil
	})
	RegisterRoutes(r, Handlers{
		Verifier:    middleware.NewHMACVerifier("secret"),
		Creators:    noCreators{},
		Packages:    packagesapi.NewHandler(nil),
		Profiles:    creatorsapi.NewHandler(nil),
		Checkout:    checkoutapi.NewHandler(nil),
		Rewards:     rewardsapi.NewHandler(nil),
		Functions:   functions.NewHandler(verify),
		Webhook:     stripewebhooks.NewHandler("", nil, nil),
		Withdrawals: withdrawalsapi.NewHandler(nil),
		Media:       mediaapi.NewHandler(nil),
	})
	return r
}

func TestVerifyPaymentPreflightFromAnyOrigin(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/verify-payment", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	req.Header.Set("Access-Control-Request-Headers", "authorization, x-client-info, apikey, content-type")
	w := httptest.NewRecorder()
	engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	allowed := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
	for _, h := range []string{"authorization", "x-client-info", "apikey", "content-type"} {
		assert.Contains(t, allowed, h)
	}
}

func TestVerifyPaymentCarriesCORSHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/functions/v1/verify-payment",
		strings.NewReader(`{"session_id":"sess_x","transaction_id":"tx_1"}`))
	req.Header.Set("Origin", "https://anywhere.example")
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.JSONEq(t, `{"success":false,"status":"unpaid"}`, w.Body.String())
}

func TestAPIRejectsForeignOrigins(t *testing.T) {
	req := httptest.NewRequest(http.MethodOptions, "/packages", nil)
	req.Header.Set("Origin", "https://app.mimo.example")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	w := httptest.NewRecorder()
	engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://app.mimo.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	engine().ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAuthenticatedRoutesRequireToken(t *testing.T) {
	for _, path := range []string{"/packages", "/profile", "/balance", "/withdrawals"} {
		w := httptest.NewRecorder()
		engine().ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}
