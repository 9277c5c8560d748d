package repo

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blockpay/internal/domain"
)

// LedgerRepositoryPG implements domain.LedgerStore backed by PostgreSQL.
// Amounts are NUMERIC(78,0) and cross the driver boundary as text, since they
// exceed int64.
type LedgerRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewLedgerRepository creates a new LedgerRepositoryPG.
func NewLedgerRepository(pool *pgxpool.Pool) *LedgerRepositoryPG {
	return &LedgerRepositoryPG{pool: pool}
}

// RecordPayment appends the payment and credits the creator's balance in one
// transaction.
func (r *LedgerRepositoryPG) RecordPayment(ctx context.Context, payment *domain.Payment, creator string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
INSERT INTO payments (id, plan_id, payer_address, payer_first_name, payer_last_name, payer_email, amount_paid, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`, payment.ID, payment.PlanID, payment.PayerAddress, payment.PayerFirstName, payment.PayerLastName, payment.PayerEmail, payment.AmountPaid.String(), payment.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
INSERT INTO creator_balances (address, amount)
VALUES ($1, $2::numeric)
ON CONFLICT (address) DO UPDATE
SET amount = creator_balances.amount + EXCLUDED.amount;
`, creator, payment.AmountPaid.String())
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// PaymentsByPlan returns every fulfilment of a plan, oldest first.
func (r *LedgerRepositoryPG) PaymentsByPlan(ctx context.Context, planID string) ([]domain.Payment, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, plan_id, payer_address, payer_first_name, payer_last_name, payer_email, amount_paid::text, created_at
FROM payments
WHERE plan_id = $1
ORDER BY created_at;
`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

// PaymentsByPayer returns one payer's fulfilments of a plan, oldest first.
func (r *LedgerRepositoryPG) PaymentsByPayer(ctx context.Context, planID, payer string) ([]domain.Payment, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, plan_id, payer_address, payer_first_name, payer_last_name, payer_email, amount_paid::text, created_at
FROM payments
WHERE plan_id = $1 AND payer_address = $2
ORDER BY created_at;
`, planID, payer)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPayments(rows)
}

// Balance reads the address's withdrawable balance; an unknown address holds
// zero.
func (r *LedgerRepositoryPG) Balance(ctx context.Context, address string) (*big.Int, error) {
	row := r.pool.QueryRow(ctx, `
SELECT amount::text
FROM creator_balances
WHERE address = $1;
`, address)

	var amount string
	if err := row.Scan(&amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return big.NewInt(0), nil
		}
		return nil, err
	}
	return parseAmount(amount)
}

// FlushBalance swaps the address's balance to zero and returns what it held.
// The row lock makes the swap atomic against concurrent credits.
func (r *LedgerRepositoryPG) FlushBalance(ctx context.Context, address string) (*big.Int, error) {
	row := r.pool.QueryRow(ctx, `
UPDATE creator_balances AS b
SET amount = 0
FROM (
	SELECT address, amount
	FROM creator_balances
	WHERE address = $1
	FOR UPDATE
) prior
WHERE b.address = prior.address
RETURNING prior.amount::text;
`, address)

	var amount string
	if err := row.Scan(&amount); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return big.NewInt(0), nil
		}
		return nil, err
	}
	return parseAmount(amount)
}

// RestoreBalance credits an amount back after a failed outward transfer.
func (r *LedgerRepositoryPG) RestoreBalance(ctx context.Context, address string, amount *big.Int) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO creator_balances (address, amount)
VALUES ($1, $2::numeric)
ON CONFLICT (address) DO UPDATE
SET amount = creator_balances.amount + EXCLUDED.amount;
`, address, amount.String())
	return err
}

func collectPayments(rows pgx.Rows) ([]domain.Payment, error) {
	var items []domain.Payment
	for rows.Next() {
		var payment domain.Payment
		var amount string
		if err := rows.Scan(
			&payment.ID,
			&payment.PlanID,
			&payment.PayerAddress,
			&payment.PayerFirstName,
			&payment.PayerLastName,
			&payment.PayerEmail,
			&amount,
			&payment.CreatedAt,
		); err != nil {
			return nil, err
		}
		value, err := parseAmount(amount)
		if err != nil {
			return nil, err
		}
		payment.AmountPaid = value
		items = append(items, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func parseAmount(s string) (*big.Int, error) {
	value, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("malformed stored amount %q", s)
	}
	return value, nil
}
