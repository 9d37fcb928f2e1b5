package testutil

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema is the full inventory schema, mirroring migrations/.
// Kept inline so integration tests can bootstrap a container database
// without running the migrate binary.
const Schema = `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username VARCHAR(100) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		full_name VARCHAR(255) NOT NULL DEFAULT '',
		role VARCHAR(50) NOT NULL DEFAULT 'operator',
		is_active BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT users_username_key UNIQUE (username)
	);

	CREATE TABLE IF NOT EXISTS categories (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT categories_name_key UNIQUE (name)
	);

	CREATE TABLE IF NOT EXISTS suppliers (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		rut VARCHAR(20) NOT NULL,
		contact_name VARCHAR(255) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL DEFAULT '',
		phone VARCHAR(50) NOT NULL DEFAULT '',
		address TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT suppliers_rut_key UNIQUE (rut)
	);

	CREATE TABLE IF NOT EXISTS projects (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		status VARCHAR(50) NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		sku VARCHAR(100) NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category_id UUID REFERENCES categories(id),
		supplier_id UUID REFERENCES suppliers(id),
		location VARCHAR(255) NOT NULL DEFAULT '',
		unit VARCHAR(50) NOT NULL DEFAULT 'unit',
		unit_price NUMERIC(12,2) NOT NULL DEFAULT 0,
		brand VARCHAR(255) NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0,
		min_stock INTEGER NOT NULL DEFAULT 0,
		max_stock INTEGER,
		is_active BOOLEAN NOT NULL DEFAULT true,
		expiry_control BOOLEAN NOT NULL DEFAULT true,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT products_sku_key UNIQUE (sku)
	);

	CREATE TABLE IF NOT EXISTS batches (
		id UUID PRIMARY KEY,
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		lot_number VARCHAR(100) NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 0,
		expiry_date DATE,
		is_expired BOOLEAN NOT NULL DEFAULT false,
		received_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
	CREATE INDEX IF NOT EXISTS batches_product_idx ON batches(product_id);
	CREATE INDEX IF NOT EXISTS batches_expiry_idx ON batches(expiry_date);

	CREATE TABLE IF NOT EXISTS movements (
		id UUID PRIMARY KEY,
		product_id UUID NOT NULL REFERENCES products(id),
		batch_id UUID REFERENCES batches(id),
		type VARCHAR(20) NOT NULL,
		quantity INTEGER NOT NULL,
		previous_quantity INTEGER NOT NULL,
		new_quantity INTEGER NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		reference_number VARCHAR(100) NOT NULL DEFAULT '',
		project_id UUID REFERENCES projects(id),
		performed_by UUID REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT movements_movement_type_valid CHECK (type IN ('IN', 'OUT', 'ADJUSTMENT')),
		CONSTRAINT movements_quantity_positive CHECK (quantity > 0)
	);
	CREATE INDEX IF NOT EXISTS movements_product_idx ON movements(product_id);
	CREATE INDEX IF NOT EXISTS movements_created_idx ON movements(created_at);

	CREATE TABLE IF NOT EXISTS alerts (
		id UUID PRIMARY KEY,
		type VARCHAR(20) NOT NULL,
		priority VARCHAR(20) NOT NULL,
		message TEXT NOT NULL,
		product_id UUID REFERENCES products(id),
		batch_id UUID REFERENCES batches(id),
		is_read BOOLEAN NOT NULL DEFAULT false,
		assigned_to UUID REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		read_at TIMESTAMPTZ,
		CONSTRAINT alerts_alert_type_valid CHECK (type IN ('LOW_STOCK', 'EXPIRING_SOON', 'EXPIRED', 'CUSTOM')),
		CONSTRAINT alerts_priority_valid CHECK (priority IN ('low', 'medium', 'high', 'critical'))
	);
	CREATE UNIQUE INDEX IF NOT EXISTS alerts_unread_product_type_key
		ON alerts(type, product_id) WHERE is_read = false AND product_id IS NOT NULL AND batch_id IS NULL;
	CREATE UNIQUE INDEX IF NOT EXISTS alerts_unread_batch_type_key
		ON alerts(type, batch_id) WHERE is_read = false AND batch_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS kits (
		id UUID PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT kits_name_key UNIQUE (name)
	);

	CREATE TABLE IF NOT EXISTS kit_components (
		kit_id UUID NOT NULL REFERENCES kits(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		quantity INTEGER NOT NULL,
		PRIMARY KEY (kit_id, product_id)
	);

	CREATE TABLE IF NOT EXISTS purchase_orders (
		id UUID PRIMARY KEY,
		supplier_id UUID NOT NULL REFERENCES suppliers(id),
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		notes TEXT NOT NULL DEFAULT '',
		order_date DATE NOT NULL DEFAULT CURRENT_DATE,
		expected_delivery DATE,
		received_at TIMESTAMPTZ,
		created_by UUID REFERENCES users(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CONSTRAINT purchase_orders_po_status_valid CHECK (status IN ('pending', 'ordered', 'received', 'cancelled'))
	);

	CREATE TABLE IF NOT EXISTS purchase_order_items (
		id UUID PRIMARY KEY,
		order_id UUID NOT NULL REFERENCES purchase_orders(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL,
		unit_price NUMERIC(12,2) NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS system_config (
		key VARCHAR(100) PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

// allTables lists every table in dependency order for truncation.
var allTables = []string{
	"purchase_order_items",
	"purchase_orders",
	"kit_components",
	"kits",
	"alerts",
	"movements",
	"batches",
	"products",
	"projects",
	"suppliers",
	"categories",
	"users",
	"system_config",
}

// ApplySchema creates the full inventory schema on the given database
func ApplySchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// TruncateAll empties every table, giving each test a clean database
func TruncateAll(ctx context.Context, db *sqlx.DB) error {
	for _, table := range allTables {
		if _, err := db.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
	}
	return nil
}
