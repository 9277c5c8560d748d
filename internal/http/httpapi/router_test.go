package httpapi

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"blockpay/internal/adapter/repo"
	"blockpay/internal/http/handlers"
	"blockpay/internal/infra"
	"blockpay/internal/ledger"
	"blockpay/internal/middleware"
	"blockpay/internal/pricefeed"
	"blockpay/internal/registry"
)

const testSecret = "router-test-secret"

type okTransferrer struct{}

func (okTransferrer) Transfer(context.Context, string, *big.Int) error { return nil }

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := &infra.Config{
		JWTSecret:       testSecret,
		RateLimitPerMin: 1000,
	}
	reg := registry.New(repo.NewPlanStoreMem(), zerolog.Nop())
	led := ledger.New(reg, repo.NewLedgerStoreMem(), pricefeed.NewStatic(big.NewInt(100_000_000), 8), okTransferrer{}, nil, zerolog.Nop())
	app := handlers.NewApp(reg, led, zerolog.Nop())
	return NewRouter(app, cfg, zerolog.Nop())
}

func bearer(t *testing.T, address string) string {
	t.Helper()
	token, err := middleware.SignJWT(testSecret, middleware.TokenClaims{
		Sub: address,
		Exp: time.Now().Add(time.Hour).Unix(),
	})
	if err != nil {
		t.Fatalf("SignJWT returned error: %v", err)
	}
	return "Bearer " + token
}

func do(t *testing.T, h http.Handler, method, path, auth, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return payload
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	payload := decode(t, rr)
	errObj, ok := payload["error"].(map[string]any)
	if !ok {
		t.Fatalf("missing error object in %v", payload)
	}
	code, _ := errObj["code"].(string)
	return code
}

// amount9800 is 9800 USD in 18-decimal fixed point, which at the parity test
// price is also the required native amount.
const amount9800 = "9800000000000000000000"

func TestPlanLifecycleOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	creator := bearer(t, "0xcreatorA")
	payer := bearer(t, "0xpayerB")

	// Mint the plan.
	rr := do(t, srv, http.MethodPost, "/v1/plans", creator,
		`{"id":"1020193913e1-19nr1jrif10","name":"Lagos Dev Event Ticket","amount_usd":"`+amount9800+`"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create plan: status %d body %s", rr.Code, rr.Body)
	}

	// Anyone can look it up.
	rr = do(t, srv, http.MethodGet, "/v1/plans/1020193913e1-19nr1jrif10", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get plan: status %d", rr.Code)
	}
	plan := decode(t, rr)
	if plan["id"] != "1020193913e1-19nr1jrif10" || plan["creator"] != "0xcreatorA" || plan["amount_usd"] != amount9800 {
		t.Fatalf("plan payload mismatch: %v", plan)
	}

	// Duplicate identifier is rejected, whoever tries.
	rr = do(t, srv, http.MethodPost, "/v1/plans", payer,
		`{"id":"1020193913e1-19nr1jrif10","name":"again","amount_usd":"1"}`)
	if rr.Code != http.StatusConflict {
		t.Fatalf("duplicate plan: status %d", rr.Code)
	}
	if code := errorCode(t, rr); code != "duplicate_plan_id" {
		t.Fatalf("duplicate plan: error code %q", code)
	}

	// Quote the required native amount, then pay exactly that.
	rr = do(t, srv, http.MethodGet, "/v1/quote?amount_usd="+amount9800, "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("quote: status %d", rr.Code)
	}
	required, _ := decode(t, rr)["required_amount"].(string)
	if required != amount9800 {
		t.Fatalf("quote at parity price: got %q", required)
	}

	rr = do(t, srv, http.MethodPost, "/v1/plans/1020193913e1-19nr1jrif10/payments", payer,
		`{"first_name":"Knowledge","last_name":"Okhakumhe","email":"megamind@example.com","sent_amount":"`+required+`"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("fulfil: status %d body %s", rr.Code, rr.Body)
	}
	payment := decode(t, rr)
	if payment["payer_address"] != "0xpayerB" || payment["amount_paid"] != required {
		t.Fatalf("payment payload mismatch: %v", payment)
	}

	// History is public, by plan and by payer.
	rr = do(t, srv, http.MethodGet, "/v1/plans/1020193913e1-19nr1jrif10/payments?payer=0xpayerB", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list payments: status %d", rr.Code)
	}
	items, _ := decode(t, rr)["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 payment, got %d", len(items))
	}

	// The creator sees and withdraws the credited balance.
	rr = do(t, srv, http.MethodGet, "/v1/balance", creator, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("balance: status %d", rr.Code)
	}
	if got, _ := decode(t, rr)["balance"].(string); got != required {
		t.Fatalf("balance mismatch: %q", got)
	}

	rr = do(t, srv, http.MethodPost, "/v1/withdrawals", creator, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("withdraw: status %d body %s", rr.Code, rr.Body)
	}
	if got, _ := decode(t, rr)["amount"].(string); got != required {
		t.Fatalf("withdrawn amount mismatch: %q", got)
	}

	// The second withdrawal succeeds and moves nothing.
	rr = do(t, srv, http.MethodPost, "/v1/withdrawals", creator, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("second withdraw: status %d", rr.Code)
	}
	if got, _ := decode(t, rr)["amount"].(string); got != "0" {
		t.Fatalf("second withdrawal moved funds: %q", got)
	}
}

func TestInsufficientPaymentOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	creator := bearer(t, "0xcreatorA")
	payer := bearer(t, "0xpayerB")

	rr := do(t, srv, http.MethodPost, "/v1/plans", creator,
		`{"id":"plan-1","name":"ticket","amount_usd":"`+amount9800+`"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create plan: status %d", rr.Code)
	}

	rr = do(t, srv, http.MethodPost, "/v1/plans/plan-1/payments", payer,
		`{"first_name":"a","last_name":"b","email":"c","sent_amount":"99000000000000000000"}`)
	if rr.Code != http.StatusPaymentRequired {
		t.Fatalf("underpayment: status %d", rr.Code)
	}
	if code := errorCode(t, rr); code != "insufficient_payment" {
		t.Fatalf("underpayment: error code %q", code)
	}

	rr = do(t, srv, http.MethodGet, "/v1/plans/plan-1/payments", "", "")
	items, _ := decode(t, rr)["items"].([]any)
	if len(items) != 0 {
		t.Fatalf("rejected payment was recorded: %v", items)
	}
}

func TestAuthRequiredOverHTTP(t *testing.T) {
	srv := newTestServer(t)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/v1/plans"},
		{http.MethodGet, "/v1/plans"},
		{http.MethodPost, "/v1/plans/x/payments"},
		{http.MethodPost, "/v1/withdrawals"},
		{http.MethodGet, "/v1/balance"},
	} {
		rr := do(t, srv, tc.method, tc.path, "", "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: status %d, want 401", tc.method, tc.path, rr.Code)
		}
	}
}

func TestUnknownPlanOverHTTP(t *testing.T) {
	srv := newTestServer(t)
	payer := bearer(t, "0xpayerB")

	rr := do(t, srv, http.MethodGet, "/v1/plans/missing", "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get plan: status %d", rr.Code)
	}
	if code := errorCode(t, rr); code != "plan_not_found" {
		t.Fatalf("get plan: error code %q", code)
	}

	rr = do(t, srv, http.MethodPost, "/v1/plans/missing/payments", payer,
		`{"first_name":"a","last_name":"b","email":"c","sent_amount":"1"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("fulfil unknown plan: status %d", rr.Code)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	rr := do(t, srv, http.MethodGet, "/v1/healthz", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz: status %d", rr.Code)
	}
}
