package handlers

import (
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"blockpay/internal/adapter/repo"
	"blockpay/internal/ledger"
	"blockpay/internal/middleware"
	"blockpay/internal/pricefeed"
	"blockpay/internal/registry"
)

type noopTransferrer struct{}

func (noopTransferrer) Transfer(context.Context, string, *big.Int) error { return nil }

func newTestApp() *App {
	reg := registry.New(repo.NewPlanStoreMem(), zerolog.Nop())
	led := ledger.New(reg, repo.NewLedgerStoreMem(), pricefeed.NewStatic(big.NewInt(100_000_000), 8), noopTransferrer{}, nil, zerolog.Nop())
	return NewApp(reg, led, zerolog.Nop())
}

func asCaller(r *http.Request, address string) *http.Request {
	return r.WithContext(middleware.ContextWithCaller(r.Context(), address))
}

func TestPlansCreateRejectsMalformedBody(t *testing.T) {
	app := newTestApp()

	req := asCaller(httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader("{not json")), "0xabc")
	rr := httptest.NewRecorder()
	app.PlansCreate(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}

func TestPlansCreateRejectsBadAmount(t *testing.T) {
	app := newTestApp()

	for _, amount := range []string{"", "abc", "1.5", "-3"} {
		body := `{"id":"p1","name":"x","amount_usd":"` + amount + `"}`
		req := asCaller(httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader(body)), "0xabc")
		rr := httptest.NewRecorder()
		app.PlansCreate(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Fatalf("amount %q: status = %d, want 400", amount, rr.Code)
		}
	}
}

func TestPlansCreateWithoutCallerIsUnauthorized(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodPost, "/v1/plans", strings.NewReader(`{"id":"p1","name":"x","amount_usd":"1"}`))
	rr := httptest.NewRecorder()
	app.PlansCreate(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rr.Code)
	}
}

func TestQuoteGetRejectsMissingAmount(t *testing.T) {
	app := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/v1/quote", nil)
	rr := httptest.NewRecorder()
	app.QuoteGet(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rr.Code)
	}
}
