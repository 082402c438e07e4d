package repository

import (
	"context"

	"github.com/T0MGL/0rdefy-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionRepository interface {
	CreateTx(tx *gorm.DB, s *model.PickingSession) error
	FindByID(ctx context.Context, storeID, id uuid.UUID) (*model.PickingSession, error)
	List(ctx context.Context, storeID uuid.UUID) ([]model.PickingSession, error)
	Close(ctx context.Context, storeID, id uuid.UUID) error
}

type sessionRepo struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &sessionRepo{db: db} }

func (r *sessionRepo) CreateTx(tx *gorm.DB, s *model.PickingSession) error {
	return tx.Create(s).Error
}

func (r *sessionRepo) FindByID(ctx context.Context, storeID, id uuid.UUID) (*model.PickingSession, error) {
	var s model.PickingSession
	err := r.db.WithContext(ctx).Preload("Orders").
		Where("store_id = ?", storeID).First(&s, "id = ?", id).Error
	return &s, err
}

func (r *sessionRepo) List(ctx context.Context, storeID uuid.UUID) ([]model.PickingSession, error) {
	var sessions []model.PickingSession
	err := r.db.WithContext(ctx).Where("store_id = ?", storeID).
		Order("created_at DESC").Find(&sessions).Error
	return sessions, err
}

func (r *sessionRepo) Close(ctx context.Context, storeID, id uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.PickingSession{}).
		Where("id = ? AND store_id = ?", id, storeID).
		Update("status", "closed").Error
}
