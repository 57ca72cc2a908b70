package repository

import "fmt"

var migrations = []string{
	`CREATE SCHEMA IF NOT EXISTS boutique`,
	`CREATE TABLE IF NOT EXISTS boutique.users (
		id BIGSERIAL PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS boutique.products (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES boutique.users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		color TEXT NOT NULL DEFAULT '',
		price DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (price >= 0),
		quantity BIGINT NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		image TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS boutique.sales (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES boutique.users(id) ON DELETE CASCADE,
		product_id BIGINT REFERENCES boutique.products(id) ON DELETE SET NULL,
		quantity BIGINT NOT NULL,
		total DOUBLE PRECISION NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS boutique.expenses (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES boutique.users(id) ON DELETE CASCADE,
		motif TEXT NOT NULL,
		amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		due_date DATE,
		is_paid BOOLEAN NOT NULL DEFAULT FALSE,
		image TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_products_user ON boutique.products(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_sales_user ON boutique.sales(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_user ON boutique.expenses(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_expenses_due ON boutique.expenses(due_date) WHERE NOT is_paid`,
}

// Migrate creates the schema and tables if they do not exist.
func (r *Repository) Migrate() error {
	for _, m := range migrations {
		if _, err := r.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
