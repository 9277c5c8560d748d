package handlers

import (
	"net/http"

	"blockpay/internal/domain"
	"blockpay/internal/middleware"
)

// WithdrawalsCreate flushes the caller's accumulated balance out to them.
// Funds only ever go to the calling account; there is no recipient parameter.
func (a *App) WithdrawalsCreate(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "caller identity required")
		return
	}

	amount, err := a.Ledger.Withdraw(r.Context(), caller)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"address": caller,
		"amount":  domain.FormatAmount(amount),
	})
}

// BalanceGet reports the caller's current withdrawable balance.
func (a *App) BalanceGet(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "caller identity required")
		return
	}

	balance, err := a.Ledger.Balance(r.Context(), caller)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"address": caller,
		"balance": domain.FormatAmount(balance),
	})
}
