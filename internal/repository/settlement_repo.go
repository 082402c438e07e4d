package repository

import (
	"context"

	"github.com/T0MGL/0rdefy-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SettlementRepository interface {
	CreateTx(tx *gorm.DB, s *model.Settlement) error
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*model.Settlement, error)
	List(ctx context.Context, storeID uuid.UUID) ([]model.Settlement, error)
}

type settlementRepo struct{ db *gorm.DB }

func NewSettlementRepository(db *gorm.DB) SettlementRepository {
	return &settlementRepo{db: db}
}

func (r *settlementRepo) CreateTx(tx *gorm.DB, s *model.Settlement) error {
	return tx.Create(s).Error
}

func (r *settlementRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*model.Settlement, error) {
	var s model.Settlement
	err := r.db.WithContext(ctx).Preload("Orders").
		Where("store_id = ?", storeID).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *settlementRepo) List(ctx context.Context, storeID uuid.UUID) ([]model.Settlement, error) {
	var settlements []model.Settlement
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).
		Order("created_at DESC").Find(&settlements).Error
	return settlements, err
}
