package repository

import (
	"gorm.io/gorm"
)

// SequenceRepository advances the per-(scope, day) reference counter.
// NextTx must run inside the caller's transaction so a rolled-back batch
// does not burn a code that another caller already observed as taken.
type SequenceRepository interface {
	NextTx(tx *gorm.DB, scope, day string) (int, error)
}

type sequenceRepo struct{ db *gorm.DB }

func NewSequenceRepository(db *gorm.DB) SequenceRepository { return &sequenceRepo{db: db} }

// NextTx upserts the (scope, day) row and reads back the incremented
// value in one statement, so two transactions can never observe the same
// value. Callers additionally serialize per key through the refcode
// service's keyed mutex to keep conflicting upserts from deadlocking.
func (r *sequenceRepo) NextTx(tx *gorm.DB, scope, day string) (int, error) {
	var next int
	err := tx.Raw(`
		INSERT INTO reference_sequences (scope, day, last_value)
		VALUES (?, ?, 1)
		ON CONFLICT (scope, day)
		DO UPDATE SET last_value = reference_sequences.last_value + 1
		RETURNING last_value`, scope, day).Scan(&next).Error
	return next, err
}
