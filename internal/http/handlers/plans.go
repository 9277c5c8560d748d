package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"blockpay/internal/domain"
	"blockpay/internal/middleware"
)

type planCreateRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	AmountUSD string `json:"amount_usd"`
}

// PlansCreate mints a new payment plan owned by the authenticated caller.
func (a *App) PlansCreate(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "caller identity required")
		return
	}

	var req planCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	amount, err := domain.ParseAmount(req.AmountUSD)
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	plan, err := a.Registry.CreatePlan(r.Context(), caller, req.ID, req.Name, amount)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusCreated, planPayload(plan))
}

// PlansGet returns a plan by its shareable identifier. Public: anyone holding
// the identifier may inspect the plan before paying it.
func (a *App) PlansGet(w http.ResponseWriter, r *http.Request) {
	plan, err := a.Registry.GetPlan(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, planPayload(plan))
}

// PlansListMine lists the plans the authenticated caller has created.
func (a *App) PlansListMine(w http.ResponseWriter, r *http.Request) {
	caller := middleware.CallerFromContext(r.Context())
	if caller == "" {
		a.error(w, http.StatusUnauthorized, "unauthorized", "caller identity required")
		return
	}

	plans, err := a.Registry.PlansByCreator(r.Context(), caller)
	if err != nil {
		a.domainError(w, err)
		return
	}
	items := make([]map[string]any, 0, len(plans))
	for i := range plans {
		items = append(items, planPayload(&plans[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}
