package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

const referencePrefix = "GLZ"

// FormatReferenceNumber renders PREFIX-YEAR-LEVEL-SEQ. The sequence is
// zero-padded to four digits and widens past 9999 instead of truncating.
func FormatReferenceNumber(year int, level string, count int) string {
	return fmt.Sprintf("%s-%d-%s-%04d", referencePrefix, year, level, count)
}

// ReferenceAllocator returns the next reference number for the current year
// and the given level. Allocations for the same (year, level) pair never
// repeat, even under concurrent callers.
type ReferenceAllocator interface {
	Allocate(level string) (string, error)
}

// CounterAllocator increments the shared reference_counters row with a single
// atomic upsert. A read-then-write sequence would let two concurrent callers
// observe the same pre-increment count.
type CounterAllocator struct {
	DB *gorm.DB

	// Now is overridable for tests; defaults to time.Now.
	Now func() time.Time
}

func NewCounterAllocator(db *gorm.DB) *CounterAllocator {
	return &CounterAllocator{DB: db}
}

func (a *CounterAllocator) Allocate(level string) (string, error) {
	now := time.Now
	if a.Now != nil {
		now = a.Now
	}
	year := now().Year()

	var count int
	err := a.DB.Raw(`
		INSERT INTO reference_counters (year, level, count) VALUES (?, ?, 1)
		ON CONFLICT (year, level)
		DO UPDATE SET count = reference_counters.count + 1
		RETURNING count`, year, level).Scan(&count).Error
	if err != nil {
		return "", err
	}

	return FormatReferenceNumber(year, level, count), nil
}
