// Package ledger records plan fulfilments, accumulates each creator's
// withdrawable balance, and settles withdrawals through the treasury.
package ledger

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"blockpay/internal/domain"
	"blockpay/internal/events"
	"blockpay/internal/pricefeed"
	"blockpay/internal/registry"
	"blockpay/pkg/metrics"
)

type Ledger struct {
	registry   *registry.Registry
	store      domain.LedgerStore
	feed       pricefeed.Feed
	transferer treasuryTransferrer
	events     *events.Publisher
	logger     zerolog.Logger
}

type treasuryTransferrer interface {
	Transfer(ctx context.Context, to string, amount *big.Int) error
}

func New(reg *registry.Registry, store domain.LedgerStore, feed pricefeed.Feed, transferer treasuryTransferrer, publisher *events.Publisher, logger zerolog.Logger) *Ledger {
	return &Ledger{
		registry:   reg,
		store:      store,
		feed:       feed,
		transferer: transferer,
		events:     publisher,
		logger:     logger,
	}
}

// Quote returns the native-asset amount currently required to cover amountUSD,
// along with the oracle price used. The oracle is queried fresh on every call.
func (l *Ledger) Quote(ctx context.Context, amountUSD *big.Int) (*big.Int, pricefeed.Price, error) {
	price, err := l.feed.LatestPrice(ctx)
	if err != nil {
		return nil, pricefeed.Price{}, err
	}
	required, err := pricefeed.Convert(amountUSD, price.Value, price.Decimals)
	if err != nil {
		return nil, pricefeed.Price{}, err
	}
	return required, price, nil
}

// Fulfil records a payment of sentAmount by caller against planID. The sent
// amount must cover the plan's USD amount at the current oracle price; any
// overpayment is kept and credited to the creator in full, not refunded.
func (l *Ledger) Fulfil(ctx context.Context, caller, planID, firstName, lastName, email string, sentAmount *big.Int) (*domain.Payment, error) {
	if sentAmount == nil || sentAmount.Sign() < 0 {
		return nil, fmt.Errorf("sent amount must not be negative: %w", domain.ErrInsufficientPayment)
	}

	plan, err := l.registry.GetPlan(ctx, planID)
	if err != nil {
		return nil, err
	}

	required, price, err := l.Quote(ctx, plan.AmountUSD)
	if err != nil {
		return nil, err
	}
	if sentAmount.Cmp(required) < 0 {
		metrics.IncOperation("fulfil", "rejected")
		return nil, fmt.Errorf("sent %s, required %s: %w", sentAmount, required, domain.ErrInsufficientPayment)
	}

	payment := &domain.Payment{
		ID:             uuid.NewString(),
		PlanID:         plan.ID,
		PayerAddress:   caller,
		PayerFirstName: firstName,
		PayerLastName:  lastName,
		PayerEmail:     email,
		AmountPaid:     new(big.Int).Set(sentAmount),
		CreatedAt:      time.Now().UTC(),
	}
	if err := l.store.RecordPayment(ctx, payment, plan.Creator); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	l.logger.Info().
		Str("plan_id", plan.ID).
		Str("payer", caller).
		Str("amount_paid", payment.AmountPaid.String()).
		Str("oracle_price", price.Value.String()).
		Msg("payment recorded")
	metrics.IncOperation("fulfil", "success")
	l.events.PaymentReceived(ctx, payment, plan.Creator)
	return payment, nil
}

// Withdraw flushes the caller's accumulated balance to zero and transfers it
// out. The balance is zeroed before the transfer is attempted, so a reentrant
// call during settlement observes nothing to withdraw; if the transfer fails
// the amount is credited back and the operation reports ErrTransferFailed.
//
// A zero balance is not an error: the call succeeds and transfers nothing.
func (l *Ledger) Withdraw(ctx context.Context, caller string) (*big.Int, error) {
	amount, err := l.store.FlushBalance(ctx, caller)
	if err != nil {
		return nil, fmt.Errorf("flush balance: %w", err)
	}
	if amount.Sign() == 0 {
		return big.NewInt(0), nil
	}

	if err := l.transferer.Transfer(ctx, caller, amount); err != nil {
		if rerr := l.store.RestoreBalance(ctx, caller, amount); rerr != nil {
			// The transfer moved nothing and the credit-back failed; this is
			// the one state that needs operator attention.
			l.logger.Error().Err(rerr).
				Str("address", caller).
				Str("amount", amount.String()).
				Msg("failed to restore balance after failed transfer")
		}
		metrics.IncOperation("withdraw", "failed")
		return nil, fmt.Errorf("transfer %s to %s: %v: %w", amount, caller, err, domain.ErrTransferFailed)
	}

	l.logger.Info().
		Str("address", caller).
		Str("amount", amount.String()).
		Msg("withdrawal settled")
	metrics.IncOperation("withdraw", "success")
	l.events.WithdrawalCompleted(ctx, caller, amount)
	return amount, nil
}

// Balance reports the caller's current withdrawable balance.
func (l *Ledger) Balance(ctx context.Context, caller string) (*big.Int, error) {
	return l.store.Balance(ctx, caller)
}

// PaymentsByPlan lists every recorded fulfilment of a plan, oldest first.
// An unknown plan yields an empty list, not an error.
func (l *Ledger) PaymentsByPlan(ctx context.Context, planID string) ([]domain.Payment, error) {
	return l.store.PaymentsByPlan(ctx, planID)
}

// PaymentsByPayer lists a plan's fulfilments made by one payer address.
func (l *Ledger) PaymentsByPayer(ctx context.Context, planID, payer string) ([]domain.Payment, error) {
	return l.store.PaymentsByPayer(ctx, planID, payer)
}
