package infra

import (
	"fmt"

	"github.com/T0MGL/0rdefy-sub002/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase establishes a GORM connection with a bounded pool. Schema
// setup is a separate step; see RunMigrations.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations creates/updates the schema. Also used by integration tests.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Store{},
		&model.Product{},
		&model.ProductVariant{},
		&model.Customer{},
		&model.Order{},
		&model.OrderLineItem{},
		&model.InventoryMovement{},
		&model.PickingSession{},
		&model.PickingSessionOrder{},
		&model.Settlement{},
		&model.SettlementOrder{},
		&model.ReferenceSequence{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent DDL that AutoMigrate cannot fully
// handle (partial indexes, check constraints on legacy rows). Each
// statement is guarded so re-running on a patched schema is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []string{
		// stock never goes negative
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_products_stock_nonneg') THEN
		    ALTER TABLE products ADD CONSTRAINT chk_products_stock_nonneg CHECK (stock >= 0);
		  END IF;
		END $$`,
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_variants_stock_nonneg') THEN
		    ALTER TABLE product_variants ADD CONSTRAINT chk_variants_stock_nonneg CHECK (stock >= 0);
		  END IF;
		END $$`,
		// shared-stock flag must agree with the variant type
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_variants_shared_stock_type') THEN
		    ALTER TABLE product_variants ADD CONSTRAINT chk_variants_shared_stock_type
		      CHECK (uses_shared_stock = (variant_type = 'bundle'));
		  END IF;
		END $$`,
		// ledger rows must balance
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_movements_balance') THEN
		    ALTER TABLE inventory_movements ADD CONSTRAINT chk_movements_balance
		      CHECK (stock_after = stock_before + quantity_change);
		  END IF;
		END $$`,
		// reconciliation scans the ledger per product in time order
		`DO $$ BEGIN
		  IF NOT EXISTS (SELECT 1 FROM pg_indexes WHERE indexname = 'idx_movements_product_created') THEN
		    CREATE INDEX idx_movements_product_created
		        ON inventory_movements (product_id, created_at);
		  END IF;
		END $$`,
	}

	for _, sql := range patches {
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", sql[:min(len(sql), 60)], err)
		}
	}
	return nil
}
