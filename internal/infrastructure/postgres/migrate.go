package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema es idempotente; se aplica al arrancar si DB_AUTO_MIGRATE está activo.
const schema = `
CREATE TABLE IF NOT EXISTS products (
	workspace_id   TEXT        NOT NULL,
	id             TEXT        NOT NULL,
	product_number TEXT        NOT NULL,
	name           TEXT        NOT NULL,
	category       TEXT        NOT NULL DEFAULT '',
	unit_price     NUMERIC(18,4) NOT NULL DEFAULT 0 CHECK (unit_price >= 0),
	stock          BIGINT      NOT NULL DEFAULT 0 CHECK (stock >= 0),
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (workspace_id, id)
);

CREATE INDEX IF NOT EXISTS idx_products_workspace_name ON products (workspace_id, name);

CREATE TABLE IF NOT EXISTS movements (
	workspace_id     TEXT        NOT NULL,
	id               TEXT        NOT NULL,
	type             TEXT        NOT NULL CHECK (type IN ('LC', 'OT')),
	reference_number TEXT        NOT NULL,
	date             TIMESTAMPTZ NOT NULL,
	items            JSONB       NOT NULL,
	total_amount     NUMERIC(18,4) NOT NULL,
	created_by       TEXT        NOT NULL,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	surgeon_id       TEXT        NOT NULL DEFAULT '',
	surgeon_name     TEXT        NOT NULL DEFAULT '',
	amount_paid      NUMERIC(18,4) NOT NULL DEFAULT 0 CHECK (amount_paid >= 0),
	payment_status   TEXT        CHECK (payment_status IN ('unpaid', 'paid')),
	PRIMARY KEY (workspace_id, id),
	UNIQUE (workspace_id, type, reference_number)
);

CREATE INDEX IF NOT EXISTS idx_movements_workspace_date ON movements (workspace_id, date DESC, created_at DESC);
`

// Migrate crea las tablas del libro si no existen.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
