package domain

import (
	"context"
	"math/big"
)

// PlanStore persists payment plans keyed by their external identifier.
// Create must reject a duplicate identifier atomically with the existence
// check and return ErrDuplicatePlanID.
type PlanStore interface {
	Create(ctx context.Context, plan *PaymentPlan) error
	Get(ctx context.Context, id string) (*PaymentPlan, error)
	ListByCreator(ctx context.Context, creator string) ([]PaymentPlan, error)
}

// LedgerStore persists payments and the per-creator withdrawable balances.
//
// RecordPayment appends the payment and credits the plan creator's balance as
// one atomic unit. FlushBalance atomically swaps the balance to zero and
// returns what it held; RestoreBalance credits an amount back after a failed
// outward transfer. Balances never go negative.
type LedgerStore interface {
	RecordPayment(ctx context.Context, payment *Payment, creator string) error
	PaymentsByPlan(ctx context.Context, planID string) ([]Payment, error)
	PaymentsByPayer(ctx context.Context, planID, payer string) ([]Payment, error)
	Balance(ctx context.Context, address string) (*big.Int, error)
	FlushBalance(ctx context.Context, address string) (*big.Int, error)
	RestoreBalance(ctx context.Context, address string, amount *big.Int) error
}
