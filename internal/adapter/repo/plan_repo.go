package repo

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"blockpay/internal/domain"
)

const pgUniqueViolation = "23505"

// PlanRepositoryPG implements domain.PlanStore backed by PostgreSQL. The
// primary key on payment_plans.id makes check-then-insert atomic for
// concurrent creators.
type PlanRepositoryPG struct {
	pool *pgxpool.Pool
}

// NewPlanRepository creates a new PlanRepositoryPG.
func NewPlanRepository(pool *pgxpool.Pool) *PlanRepositoryPG {
	return &PlanRepositoryPG{pool: pool}
}

// Create inserts a new plan. A colliding identifier surfaces as
// domain.ErrDuplicatePlanID.
func (r *PlanRepositoryPG) Create(ctx context.Context, plan *domain.PaymentPlan) error {
	_, err := r.pool.Exec(ctx, `
INSERT INTO payment_plans (id, name, amount_usd, creator, created_at)
VALUES ($1, $2, $3, $4, $5);
`, plan.ID, plan.Name, plan.AmountUSD.String(), plan.Creator, plan.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicatePlanID
		}
		return err
	}
	return nil
}

// Get fetches a plan by its external identifier.
func (r *PlanRepositoryPG) Get(ctx context.Context, id string) (*domain.PaymentPlan, error) {
	row := r.pool.QueryRow(ctx, `
SELECT id, name, amount_usd::text, creator, created_at
FROM payment_plans
WHERE id = $1;
`, id)
	plan, err := scanPlan(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPlanNotFound
		}
		return nil, err
	}
	return plan, nil
}

// ListByCreator returns the creator's plans, oldest first.
func (r *PlanRepositoryPG) ListByCreator(ctx context.Context, creator string) ([]domain.PaymentPlan, error) {
	rows, err := r.pool.Query(ctx, `
SELECT id, name, amount_usd::text, creator, created_at
FROM payment_plans
WHERE creator = $1
ORDER BY created_at;
`, creator)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.PaymentPlan
	for rows.Next() {
		plan, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *plan)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func scanPlan(row pgx.Row) (*domain.PaymentPlan, error) {
	var plan domain.PaymentPlan
	var amount string
	if err := row.Scan(&plan.ID, &plan.Name, &amount, &plan.Creator, &plan.CreatedAt); err != nil {
		return nil, err
	}
	value, ok := new(big.Int).SetString(amount, 10)
	if !ok {
		return nil, fmt.Errorf("malformed amount_usd %q for plan %s", amount, plan.ID)
	}
	plan.AmountUSD = value
	return &plan, nil
}
