package service

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/T0MGL/0rdefy-sub002/internal/repository"

	"gorm.io/gorm"
)

// refLockStripes bounds the keyed-lock table. Two distinct scope+day keys
// may share a stripe; that only costs extra serialization, never
// correctness.
const refLockStripes = 64

// ReferenceGenerator issues daily incrementing reference codes
// (PICK-20260828-001 style) that are unique per scope+day under
// concurrent callers. Callers for the same scope+day serialize on a
// keyed mutex; the sequence row itself is advanced with an atomic
// upsert-and-read-back inside the caller's transaction.
type ReferenceGenerator struct {
	sequences repository.SequenceRepository
	cap       int
	locks     [refLockStripes]sync.Mutex
}

func NewReferenceGenerator(sequences repository.SequenceRepository, cap int) *ReferenceGenerator {
	if cap <= 0 {
		cap = 999
	}
	return &ReferenceGenerator{sequences: sequences, cap: cap}
}

func (g *ReferenceGenerator) stripe(scope, day string) *sync.Mutex {
	h := fnv.New64a()
	h.Write([]byte(scope))
	h.Write([]byte{0})
	h.Write([]byte(day))
	return &g.locks[h.Sum64()%refLockStripes]
}

// NextCodeTx returns the next reference code for scope on the given day.
// Must run inside the caller's transaction so a rolled-back batch never
// publishes a code.
func (g *ReferenceGenerator) NextCodeTx(tx *gorm.DB, scope string, day time.Time) (string, error) {
	dayStr := day.Format("20060102")

	mu := g.stripe(scope, dayStr)
	mu.Lock()
	defer mu.Unlock()

	n, err := g.sequences.NextTx(tx, scope, dayStr)
	if err != nil {
		return "", err
	}
	if n > g.cap {
		return "", fmt.Errorf("%w: scope %s day %s at %d", ErrReferenceCapacity, scope, dayStr, n)
	}
	return fmt.Sprintf("%s-%s-%03d", strings.ToUpper(scope), dayStr, n), nil
}
