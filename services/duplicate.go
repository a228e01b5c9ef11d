package services

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vialy/glonetzBackend/models"
	"gorm.io/gorm"
)

// NormalizeName lowercases, trims and collapses internal whitespace so
// "jane   doe" and " Jane Doe" compare equal.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// PeriodsOverlap reports whether two inclusive course periods share at least
// one day. Touching endpoints count as overlap.
func PeriodsOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !aEnd.Before(bStart)
}

// ConflictQuery identifies a candidate certificate for duplicate detection.
// ExcludeID is set during updates so the record being edited does not
// conflict with itself.
type ConflictQuery struct {
	FullName        string
	DateOfBirth     time.Time
	ReferenceLevel  string
	CourseStartDate time.Time
	CourseEndDate   time.Time
	ExcludeID       uuid.UUID
}

// ConflictFinder searches persisted certificates for one that conflicts with
// the candidate: same normalized name, same birth date, same level, and an
// overlapping course period. A nil result means no conflict.
type ConflictFinder interface {
	FindConflict(q ConflictQuery) (*models.Certificate, error)
}

// CertificateCreator persists one validated certificate.
type CertificateCreator interface {
	Create(cert *models.Certificate) error
}

// CertificateStore is the Postgres-backed certificate repository. The name
// normalization of the duplicate predicate is pushed into SQL so it matches
// records however they were spelled at insert time.
type CertificateStore struct {
	DB *gorm.DB
}

func NewCertificateStore(db *gorm.DB) *CertificateStore {
	return &CertificateStore{DB: db}
}

func (s *CertificateStore) FindConflict(q ConflictQuery) (*models.Certificate, error) {
	tx := s.DB.
		Where(`regexp_replace(lower(trim(full_name)), '\s+', ' ', 'g') = ?`, NormalizeName(q.FullName)).
		Where("date_of_birth = ?", q.DateOfBirth).
		Where("reference_level = ?", q.ReferenceLevel).
		Where("course_start_date <= ? AND course_end_date >= ?", q.CourseEndDate, q.CourseStartDate)
	if q.ExcludeID != uuid.Nil {
		tx = tx.Where("id <> ?", q.ExcludeID)
	}

	var cert models.Certificate
	if err := tx.First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &cert, nil
}

func (s *CertificateStore) Create(cert *models.Certificate) error {
	return s.DB.Create(cert).Error
}
