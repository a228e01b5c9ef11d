package models

import (
	"time"

	"github.com/google/uuid"
)

var ReferenceLevels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

const (
	EvaluationOutstanding  = "Outstanding"
	EvaluationGood         = "Good"
	EvaluationSatisfactory = "Satisfactory"
	EvaluationParticipant  = "Participant"
)

const (
	CourseInfoComplete        = "Complete level"
	CourseInfoPartial         = "Partially completed level"
	CourseInfoDroppedOut      = "Course dropped out"
	CourseInfoNoParticipation = "No participation"
)

type Certificate struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ReferenceNumber string    `gorm:"size:30;not null;unique" json:"referenceNumber"`
	FullName        string    `gorm:"size:255;not null" json:"fullName"`
	DateOfBirth     time.Time `gorm:"type:date;not null" json:"dateOfBirth"`
	PlaceOfBirth    string    `gorm:"size:255;not null" json:"placeOfBirth"`
	ReferenceLevel  string    `gorm:"size:2;not null" json:"referenceLevel"`
	CourseStartDate time.Time `gorm:"type:date;not null" json:"courseStartDate"`
	CourseEndDate   time.Time `gorm:"type:date;not null" json:"courseEndDate"`
	LessonUnits     int       `gorm:"not null" json:"lessonUnits"`
	LessonsAttended int       `gorm:"not null" json:"lessonsAttended"`
	Evaluation      string    `gorm:"size:30;not null" json:"evaluation"`
	CourseInfo      string    `gorm:"size:50;not null" json:"courseInfo"`
	Comments        string    `gorm:"type:text" json:"comments"`
	GroupCode       string    `gorm:"size:160;not null;index" json:"groupCode"`

	UserID    uuid.UUID `gorm:"type:uuid;not null" json:"userId"`
	CreatedBy uuid.UUID `gorm:"type:uuid;not null" json:"createdBy"`

	// Append-only log of PDF exports. Entries are never rewritten.
	GenerationHistory []GenerationRecord `gorm:"foreignKey:CertificateID" json:"generationHistory,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GenerationRecord struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CertificateID uuid.UUID `gorm:"type:uuid;not null;index" json:"certificateId"`
	GeneratedBy   uuid.UUID `gorm:"type:uuid;not null" json:"generatedBy"`
	GeneratedAt   time.Time `gorm:"not null" json:"generatedAt"`
}

// ReferenceCounter backs sequential reference numbers. One row per
// (year, level) pair, created lazily, incremented atomically, never deleted.
type ReferenceCounter struct {
	ID    uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Year  int       `gorm:"not null;uniqueIndex:idx_reference_counters_year_level"`
	Level string    `gorm:"size:2;not null;uniqueIndex:idx_reference_counters_year_level"`
	Count int       `gorm:"not null;default:0"`
}
