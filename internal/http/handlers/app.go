package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"blockpay/internal/domain"
	"blockpay/internal/ledger"
	"blockpay/internal/registry"
)

// App bundles the core components the handlers operate on.
type App struct {
	Registry *registry.Registry
	Ledger   *ledger.Ledger
	Logger   zerolog.Logger
}

func NewApp(reg *registry.Registry, led *ledger.Ledger, logger zerolog.Logger) *App {
	return &App{Registry: reg, Ledger: led, Logger: logger}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

// domainError maps the ledger's failure kinds onto stable HTTP codes that
// callers can match on.
func (a *App) domainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidPlan):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrDuplicatePlanID):
		a.error(w, http.StatusConflict, "duplicate_plan_id", domain.ErrDuplicatePlanID.Error())
	case errors.Is(err, domain.ErrPlanNotFound):
		a.error(w, http.StatusNotFound, "plan_not_found", domain.ErrPlanNotFound.Error())
	case errors.Is(err, domain.ErrInsufficientPayment):
		a.error(w, http.StatusPaymentRequired, "insufficient_payment", domain.ErrInsufficientPayment.Error())
	case errors.Is(err, domain.ErrOraclePrice):
		a.error(w, http.StatusBadGateway, "oracle_error", domain.ErrOraclePrice.Error())
	case errors.Is(err, domain.ErrTransferFailed):
		a.error(w, http.StatusBadGateway, "transfer_failed", domain.ErrTransferFailed.Error())
	default:
		a.Logger.Error().Err(err).Msg("unhandled operation error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func planPayload(plan *domain.PaymentPlan) map[string]any {
	return map[string]any{
		"id":         plan.ID,
		"name":       plan.Name,
		"amount_usd": domain.FormatAmount(plan.AmountUSD),
		"creator":    plan.Creator,
		"created_at": plan.CreatedAt,
	}
}

func paymentPayload(payment *domain.Payment) map[string]any {
	return map[string]any{
		"id":            payment.ID,
		"plan_id":       payment.PlanID,
		"payer_address": payment.PayerAddress,
		"first_name":    payment.PayerFirstName,
		"last_name":     payment.PayerLastName,
		"email":         payment.PayerEmail,
		"amount_paid":   domain.FormatAmount(payment.AmountPaid),
		"created_at":    payment.CreatedAt,
	}
}
