// Package registry owns the payment-plan records and enforces identifier
// uniqueness.
package registry

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"blockpay/internal/domain"
)

// Registry is the authority for plan creation and lookup. The store is the
// single owner of plan records; check-then-insert is atomic inside it.
type Registry struct {
	store  domain.PlanStore
	logger zerolog.Logger
}

func New(store domain.PlanStore, logger zerolog.Logger) *Registry {
	return &Registry{store: store, logger: logger}
}

// CreatePlan registers a new plan owned by caller. The identifier must be
// unused for the lifetime of the registry.
func (r *Registry) CreatePlan(ctx context.Context, caller, id, name string, amountUSD *big.Int) (*domain.PaymentPlan, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("plan id is required: %w", domain.ErrInvalidPlan)
	}
	if amountUSD == nil || amountUSD.Sign() <= 0 {
		return nil, fmt.Errorf("usd amount must be positive: %w", domain.ErrInvalidPlan)
	}
	if caller == "" {
		return nil, fmt.Errorf("creator is required: %w", domain.ErrInvalidPlan)
	}

	plan := &domain.PaymentPlan{
		ID:        id,
		Name:      name,
		AmountUSD: new(big.Int).Set(amountUSD),
		Creator:   caller,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.store.Create(ctx, plan); err != nil {
		return nil, err
	}

	r.logger.Info().
		Str("plan_id", plan.ID).
		Str("creator", plan.Creator).
		Str("amount_usd", plan.AmountUSD.String()).
		Msg("payment plan created")
	return plan, nil
}

// GetPlan returns the plan registered under id.
func (r *Registry) GetPlan(ctx context.Context, id string) (*domain.PaymentPlan, error) {
	return r.store.Get(ctx, id)
}

// PlansByCreator lists every plan the given address has created.
func (r *Registry) PlansByCreator(ctx context.Context, creator string) ([]domain.PaymentPlan, error) {
	return r.store.ListByCreator(ctx, creator)
}
