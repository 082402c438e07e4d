package model

import (
	"time"

	"github.com/google/uuid"
)

// Store is the tenant root. Every catalog and order row is scoped to
// exactly one store; cross-store queries are never allowed.
type Store struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"not null"`
	Active    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
