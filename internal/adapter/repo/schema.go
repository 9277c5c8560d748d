package repo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the ledger tables if they do not exist. Records are
// append-only, so there are no destructive migrations to run.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS payment_plans (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	amount_usd NUMERIC(78,0) NOT NULL CHECK (amount_usd > 0),
	creator    TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS payment_plans_creator_idx ON payment_plans (creator);

CREATE TABLE IF NOT EXISTS payments (
	id               UUID PRIMARY KEY,
	plan_id          TEXT NOT NULL REFERENCES payment_plans (id),
	payer_address    TEXT NOT NULL,
	payer_first_name TEXT NOT NULL DEFAULT '',
	payer_last_name  TEXT NOT NULL DEFAULT '',
	payer_email      TEXT NOT NULL DEFAULT '',
	amount_paid      NUMERIC(78,0) NOT NULL CHECK (amount_paid >= 0),
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS payments_plan_idx ON payments (plan_id);
CREATE INDEX IF NOT EXISTS payments_plan_payer_idx ON payments (plan_id, payer_address);

CREATE TABLE IF NOT EXISTS creator_balances (
	address TEXT PRIMARY KEY,
	amount  NUMERIC(78,0) NOT NULL DEFAULT 0 CHECK (amount >= 0)
);
`)
	return err
}
