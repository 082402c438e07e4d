package repository

import (
	"context"

	"github.com/T0MGL/0rdefy-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementFilter defines filters for listing ledger entries.
type MovementFilter struct {
	StoreID      uuid.UUID
	ProductID    *uuid.UUID
	OrderID      *uuid.UUID
	MovementType string
	Page         int
	Limit        int
}

// MovementRepository is the append-only stock ledger. There is no Update
// or Delete on purpose.
type MovementRepository interface {
	Create(ctx context.Context, m *model.InventoryMovement) error
	CreateTx(tx *gorm.DB, m *model.InventoryMovement) error
	List(ctx context.Context, filter MovementFilter) ([]model.InventoryMovement, int64, error)

	// SumProductPools replays the ledger per product pool: every movement
	// without a variant plus bundle movements (which hit the parent pool).
	SumProductPools(ctx context.Context, storeID uuid.UUID) (map[uuid.UUID]int, error)
	// SumVariationPools replays the ledger per independent variant pool.
	SumVariationPools(ctx context.Context, storeID uuid.UUID) (map[uuid.UUID]int, error)
}

type movementRepo struct{ db *gorm.DB }

func NewMovementRepository(db *gorm.DB) MovementRepository {
	return &movementRepo{db: db}
}

func (r *movementRepo) Create(ctx context.Context, m *model.InventoryMovement) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *movementRepo) CreateTx(tx *gorm.DB, m *model.InventoryMovement) error {
	return tx.Create(m).Error
}

func (r *movementRepo) List(ctx context.Context, filter MovementFilter) ([]model.InventoryMovement, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.InventoryMovement{}).
		Where("store_id = ?", filter.StoreID)
	if filter.ProductID != nil {
		q = q.Where("product_id = ?", *filter.ProductID)
	}
	if filter.OrderID != nil {
		q = q.Where("order_id = ?", *filter.OrderID)
	}
	if filter.MovementType != "" {
		q = q.Where("movement_type = ?", filter.MovementType)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 100
	}

	var movements []model.InventoryMovement
	err := q.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&movements).Error
	return movements, total, err
}

type poolSum struct {
	PoolID uuid.UUID
	Total  int
}

func (r *movementRepo) SumProductPools(ctx context.Context, storeID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []poolSum
	err := r.db.WithContext(ctx).
		Table("inventory_movements m").
		Select("m.product_id AS pool_id, COALESCE(SUM(m.quantity_change), 0) AS total").
		Joins("LEFT JOIN product_variants v ON v.id = m.variant_id").
		Where("m.store_id = ?", storeID).
		Where("m.variant_id IS NULL OR v.uses_shared_stock = true").
		Group("m.product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		sums[row.PoolID] = row.Total
	}
	return sums, nil
}

func (r *movementRepo) SumVariationPools(ctx context.Context, storeID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []poolSum
	err := r.db.WithContext(ctx).
		Table("inventory_movements m").
		Select("m.variant_id AS pool_id, COALESCE(SUM(m.quantity_change), 0) AS total").
		Joins("JOIN product_variants v ON v.id = m.variant_id").
		Where("m.store_id = ?", storeID).
		Where("v.uses_shared_stock = false").
		Group("m.variant_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		sums[row.PoolID] = row.Total
	}
	return sums, nil
}
