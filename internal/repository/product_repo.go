package repository

import (
	"context"

	"github.com/T0MGL/0rdefy-sub002/internal/dto"
	"github.com/T0MGL/0rdefy-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProductRepository defines the data access contract for the catalog.
// Services depend on this interface, not on the concrete GORM
// implementation, enabling unit testing via in-memory stubs.
type ProductRepository interface {
	Create(ctx context.Context, p *model.Product) error
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*model.Product, error)
	FindByExternalRef(ctx context.Context, storeID uuid.UUID, ref string) (*model.Product, error)
	List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error)
	// ListAll loads every product of the store with variants preloaded —
	// used by reconciliation, which replays the whole ledger anyway.
	ListAll(ctx context.Context, storeID uuid.UUID) ([]model.Product, error)
	Update(ctx context.Context, p *model.Product) error
	Deactivate(ctx context.Context, storeID, id uuid.UUID) error

	// Variants
	CreateVariant(ctx context.Context, v *model.ProductVariant) error
	FindVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error)
	FindVariantByExternalRef(ctx context.Context, storeID uuid.UUID, ref string) (*model.ProductVariant, error)
	ListVariants(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error)

	// ReferencedByOpenOrder reports whether any line item of a
	// non-terminal order still points at the product (delete guard).
	ReferencedByOpenOrder(ctx context.Context, id uuid.UUID) (bool, error)

	// Used inside transactions — callers must pass the tx instance.
	// The ForUpdate variants take a row lock before reading stock so that
	// concurrent transitions on the same product serialize.
	FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error)
	FindVariantByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ProductVariant, error)
	UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error
	UpdateVariantStockTx(tx *gorm.DB, id uuid.UUID, delta int) error
	SetStockTx(tx *gorm.DB, id uuid.UUID, stock int) error
	SetVariantStockTx(tx *gorm.DB, id uuid.UUID, stock int) error

	// DB exposes the underlying *gorm.DB so services can open transactions.
	DB() *gorm.DB
}

type productRepo struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository { return &productRepo{db: db} }

func (r *productRepo) DB() *gorm.DB { return r.db }

func (r *productRepo) Create(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *productRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindBySKU(ctx context.Context, storeID uuid.UUID, sku string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND sku = ? AND active = true", storeID, sku).
		First(&p).Error
	return &p, err
}

func (r *productRepo) FindByExternalRef(ctx context.Context, storeID uuid.UUID, ref string) (*model.Product, error) {
	var p model.Product
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND external_ref = ? AND active = true", storeID, ref).
		First(&p).Error
	return &p, err
}

func (r *productRepo) List(ctx context.Context, filter dto.ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	q := r.db.WithContext(ctx).Model(&model.Product{}).Where("store_id = ?", filter.StoreID)

	switch filter.Active {
	case "false":
		q = q.Where("active = false")
	case "all":
		// no filter
	default:
		q = q.Where("active = true")
	}
	if filter.Name != "" {
		q = q.Where("name ILIKE ?", "%"+filter.Name+"%")
	}
	if filter.SKU != "" {
		q = q.Where("sku = ?", filter.SKU)
	}
	if filter.LowStockBelow > 0 {
		q = q.Where("stock < ?", filter.LowStockBelow)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := q.Order("name ASC").Limit(filter.Limit).Offset(offset).Find(&products).Error
	return products, total, err
}

func (r *productRepo) ListAll(ctx context.Context, storeID uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	err := r.db.WithContext(ctx).Preload("Variants").
		Where("store_id = ?", storeID).Find(&products).Error
	return products, err
}

func (r *productRepo) Update(ctx context.Context, p *model.Product) error {
	return r.db.WithContext(ctx).Save(p).Error
}

func (r *productRepo) Deactivate(ctx context.Context, storeID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND store_id = ?", id, storeID).
		Update("active", false).Error
}

func (r *productRepo) CreateVariant(ctx context.Context, v *model.ProductVariant) error {
	return r.db.WithContext(ctx).Create(v).Error
}

func (r *productRepo) FindVariantByID(ctx context.Context, id uuid.UUID) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).First(&v, "id = ?", id).Error
	return &v, err
}

func (r *productRepo) FindVariantByExternalRef(ctx context.Context, storeID uuid.UUID, ref string) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := r.db.WithContext(ctx).
		Joins("JOIN products ON products.id = product_variants.product_id").
		Where("products.store_id = ? AND product_variants.external_ref = ?", storeID, ref).
		First(&v).Error
	return &v, err
}

func (r *productRepo) ListVariants(ctx context.Context, productID uuid.UUID) ([]model.ProductVariant, error) {
	var variants []model.ProductVariant
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).Find(&variants).Error
	return variants, err
}

func (r *productRepo) ReferencedByOpenOrder(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.OrderLineItem{}).
		Joins("JOIN orders ON orders.id = order_line_items.order_id").
		Where("order_line_items.product_id = ?", id).
		Where("orders.deleted_at IS NULL").
		Where("orders.sleeves_status NOT IN ?", []model.OrderStatus{
			model.StatusDelivered, model.StatusCancelled, model.StatusRejected, model.StatusReturned,
		}).
		Count(&count).Error
	return count > 0, err
}

func (r *productRepo) FindByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&p, "id = ?", id).Error
	return &p, err
}

func (r *productRepo) FindVariantByIDForUpdateTx(tx *gorm.DB, id uuid.UUID) (*model.ProductVariant, error) {
	var v model.ProductVariant
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&v, "id = ?", id).Error
	return &v, err
}

func (r *productRepo) UpdateStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}

func (r *productRepo) UpdateVariantStockTx(tx *gorm.DB, id uuid.UUID, delta int) error {
	return tx.Model(&model.ProductVariant{}).Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", delta)).Error
}

func (r *productRepo) SetStockTx(tx *gorm.DB, id uuid.UUID, stock int) error {
	return tx.Model(&model.Product{}).Where("id = ?", id).Update("stock", stock).Error
}

func (r *productRepo) SetVariantStockTx(tx *gorm.DB, id uuid.UUID, stock int) error {
	return tx.Model(&model.ProductVariant{}).Where("id = ?", id).Update("stock", stock).Error
}
