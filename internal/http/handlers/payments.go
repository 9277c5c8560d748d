package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"blockpay/internal/domain"
	"blockpay/internal/middleware"
)

type paymentCreateRequest struct {
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	SentAmount string `json:"sent_amount"`
}

// PaymentsCreate fulfils a plan on behalf of the authenticated payer. The
// sent amount must cover the plan's USD amount at the current oracle price.
func (a *App) PaymentsCreate(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "caller identity required")
		return
	}

	var req paymentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	sent, err := domain.ParseAmount(req.SentAmount)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	payment, err := a.Ledger.Fulfil(r.Context(), caller, chi.URLParam(r, "id"), req.FirstName, req.LastName, req.Email, sent)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, paymentPayload(payment))
}

// PaymentsList returns a plan's payment history, optionally narrowed to one
// payer via ?payer=. Unknown plans and payers yield empty lists.
func (a *App) PaymentsList(w http.ResponseWriter, r *http.Request) {
	planID := chi.URLParam(r, "id")

	var (
		payments []domain.Payment
		err      error
	)
	if payer := r.URL.Query().Get("payer"); payer != "" {
		payments, err = a.Ledger.PaymentsByPayer(r.Context(), planID, payer)
	} else {
		payments, err = a.Ledger.PaymentsByPlan(r.Context(), planID)
	}
	if err != nil {
		a.domainError(w, err)
		return
	}

	items := make([]map[string]any, 0, len(payments))
	for i := range payments {
		items = append(items, paymentPayload(&payments[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
