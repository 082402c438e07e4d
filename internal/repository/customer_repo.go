package repository

import (
	"context"

	"github.com/T0MGL/0rdefy-sub002/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CustomerAggregate is the recomputed truth for one customer's lifetime
// totals, derived by summing non-cancelled, non-deleted orders.
type CustomerAggregate struct {
	CustomerID  uuid.UUID
	TotalOrders int
	TotalSpent  decimal.Decimal
}

type CustomerRepository interface {
	Create(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*model.Customer, error)
	List(ctx context.Context, storeID uuid.UUID) ([]model.Customer, error)

	// BumpAggregatesTx applies an incremental delta inside a transaction.
	BumpAggregatesTx(tx *gorm.DB, id uuid.UUID, orderDelta int, spentDelta decimal.Decimal) error
	// ComputeAggregates derives the authoritative totals from orders.
	ComputeAggregates(ctx context.Context, storeID uuid.UUID) ([]CustomerAggregate, error)
	SetAggregates(ctx context.Context, id uuid.UUID, totalOrders int, totalSpent decimal.Decimal) error
}

type customerRepo struct{ db *gorm.DB }

func NewCustomerRepository(db *gorm.DB) CustomerRepository { return &customerRepo{db: db} }

func (r *customerRepo) Create(ctx context.Context, c *model.Customer) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *customerRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*model.Customer, error) {
	var c model.Customer
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).First(&c, "id = ?", id).Error
	return &c, err
}

func (r *customerRepo) List(ctx context.Context, storeID uuid.UUID) ([]model.Customer, error) {
	var customers []model.Customer
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Order("name ASC").Find(&customers).Error
	return customers, err
}

func (r *customerRepo) BumpAggregatesTx(tx *gorm.DB, id uuid.UUID, orderDelta int, spentDelta decimal.Decimal) error {
	return tx.Model(&model.Customer{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_orders": gorm.Expr("total_orders + ?", orderDelta),
			"total_spent":  gorm.Expr("total_spent + ?", spentDelta),
		}).Error
}

func (r *customerRepo) ComputeAggregates(ctx context.Context, storeID uuid.UUID) ([]CustomerAggregate, error) {
	var rows []CustomerAggregate
	err := r.db.WithContext(ctx).
		Table("orders").
		Select("customer_id, COUNT(*) AS total_orders, COALESCE(SUM(total_amount), 0) AS total_spent").
		Where("store_id = ? AND customer_id IS NOT NULL", storeID).
		Where("deleted_at IS NULL").
		Where("sleeves_status NOT IN ?", []model.OrderStatus{model.StatusCancelled, model.StatusRejected}).
		Group("customer_id").
		Scan(&rows).Error
	return rows, err
}

func (r *customerRepo) SetAggregates(ctx context.Context, id uuid.UUID, totalOrders int, totalSpent decimal.Decimal) error {
	return r.db.WithContext(ctx).Model(&model.Customer{}).Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_orders": totalOrders,
			"total_spent":  totalSpent,
		}).Error
}
