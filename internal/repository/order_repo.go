package repository

import (
	"context"
	"errors"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrVersionConflict is returned when an optimistic-lock status update
// carries a version that no longer matches the row.
var ErrVersionConflict = errors.New("order was modified concurrently, retry with current version")

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error)

	// Tx variants — callers must pass the live transaction.
	FindByIDForUpdateTx(tx *gorm.DB, storeID, id uuid.UUID) (*model.Order, error)
	UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.OrderStatus, expectedVersion int) error
	UpdateLineItemTx(tx *gorm.DB, item *model.OrderLineItem) error
	ReplaceLineItemsTx(tx *gorm.DB, orderID uuid.UUID, items []model.OrderLineItem) error
	HardDeleteTx(tx *gorm.DB, id uuid.UUID) error

	// ListUnmappedLineItems returns line items lacking a product mapping —
	// these never participated in deduction and represent catalog gaps.
	ListUnmappedLineItems(ctx context.Context, storeID uuid.UUID) ([]model.OrderLineItem, error)

	DB() *gorm.DB
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return tx.WithContext(ctx).Create(o).Error
}

func (r *orderRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("store_id = ?", storeID).
		First(&o, "id = ?", id).Error
	return &o, err
}

func (r *orderRepo) List(ctx context.Context, filter dto.OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Order{}).Where("store_id = ?", filter.StoreID)
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("sleeves_status = ?", filter.Status)
	}
	if filter.CarrierID != "" {
		q = q.Where("carrier_id = ?", filter.CarrierID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := filter.Page, filter.Limit
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 50
	}
	err := q.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error
	return orders, total, err
}

// FindByIDForUpdateTx locks the order row for the duration of the
// transaction. Items are loaded with a separate query because FOR UPDATE
// cannot be combined with the outer-joined preload.
func (r *orderRepo) FindByIDForUpdateTx(tx *gorm.DB, storeID, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("store_id = ?", storeID).
		First(&o, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := tx.Where("order_id = ?", o.ID).Find(&o.Items).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) UpdateStatusTx(tx *gorm.DB, id uuid.UUID, status model.OrderStatus, expectedVersion int) error {
	res := tx.Model(&model.Order{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"sleeves_status": status,
			"version":        gorm.Expr("version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

func (r *orderRepo) UpdateLineItemTx(tx *gorm.DB, item *model.OrderLineItem) error {
	return tx.Model(&model.OrderLineItem{}).Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"stock_deducted":    item.StockDeducted,
			"stock_deducted_at": item.StockDeductedAt,
			"units_per_pack":    item.UnitsPerPack,
		}).Error
}

func (r *orderRepo) ReplaceLineItemsTx(tx *gorm.DB, orderID uuid.UUID, items []model.OrderLineItem) error {
	if err := tx.Where("order_id = ?", orderID).Delete(&model.OrderLineItem{}).Error; err != nil {
		return err
	}
	for i := range items {
		items[i].OrderID = orderID
	}
	return tx.Create(&items).Error
}

func (r *orderRepo) HardDeleteTx(tx *gorm.DB, id uuid.UUID) error {
	if err := tx.Where("order_id = ?", id).Delete(&model.OrderLineItem{}).Error; err != nil {
		return err
	}
	return tx.Unscoped().Delete(&model.Order{}, "id = ?", id).Error
}

func (r *orderRepo) ListUnmappedLineItems(ctx context.Context, storeID uuid.UUID) ([]model.OrderLineItem, error) {
	var items []model.OrderLineItem
	err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = order_line_items.order_id").
		Where("orders.store_id = ? AND orders.deleted_at IS NULL", storeID).
		Where("order_line_items.product_id IS NULL").
		Find(&items).Error
	return items, err
}
