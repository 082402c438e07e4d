package model

// ReferenceSequence backs daily reference-code generation. One row per
// (scope, day); LastValue is advanced with an upsert-and-read-back inside
// the caller's transaction, serialized per key by the refcode service.
type ReferenceSequence struct {
	Scope     string `gorm:"primaryKey"`
	Day       string `gorm:"primaryKey"` // YYYYMMDD
	LastValue int    `gorm:"not null;default:0"`
}
