package handlers

import (
	"net/http"

	"blockpay/internal/domain"
)

// QuoteGet converts a USD amount into the native-asset amount currently
// required to cover it. The oracle is queried fresh on every call, so two
// quotes for the same amount may differ.
func (a *App) QuoteGet(w http.ResponseWriter, r *http.Request) {
	amount, err := domain.ParseAmount(r.URL.Query().Get("amount_usd"))
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	required, price, err := a.Ledger.Quote(r.Context(), amount)
	if err != nil {
		a.domainError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"amount_usd":      domain.FormatAmount(amount),
		"required_amount": domain.FormatAmount(required),
		"price":           price.Value.String(),
		"price_decimals":  price.Decimals,
	})
}
