package services

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Column labels expected in an import file. They match the spreadsheet
// template handed out to course managers.
const (
	colFullName        = "Nom complet"
	colDateOfBirth     = "Date de naissance"
	colPlaceOfBirth    = "Lieu de naissance"
	colReferenceLevel  = "Niveau de référence"
	colCourseStartDate = "Date de début"
	colCourseEndDate   = "Date de fin"
	colLessonUnits     = "Nombre de leçons"
	colLessonsAttended = "Leçons suivies"
	colComments        = "Commentaires"
	colEvaluation      = "Évaluation"
	colCourseInfo      = "Info cours"
)

// ImportRow maps a column label to the raw cell value: string, float64
// (numeric cell, possibly a spreadsheet date serial) or nil.
type ImportRow map[string]any

// ToImportRows adapts parsed spreadsheet rows to the importer's row type.
func ToImportRows(rows []map[string]any) []ImportRow {
	out := make([]ImportRow, len(rows))
	for i, row := range rows {
		out[i] = ImportRow(row)
	}
	return out
}

type RowResult struct {
	FullName string `json:"fullName"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`
}

type ImportSummary struct {
	Success int         `json:"success"`
	Total   int         `json:"total"`
	Results []RowResult `json:"results"`
}

// Importer feeds each raw row through the validator and persists the rows
// that pass. Rows are processed sequentially so duplicate checks see rows
// committed earlier in the same batch; one row's rejection never stops the
// rest.
type Importer struct {
	Validator *Validator
	Store     CertificateCreator
}

func NewImporter(db *gorm.DB) *Importer {
	return &Importer{
		Validator: NewValidator(db),
		Store:     NewCertificateStore(db),
	}
}

// Run imports all rows against one target group. Only a store fault aborts
// the batch; validation rejections become per-row results.
func (im *Importer) Run(rows []ImportRow, groupCode string, actorID uuid.UUID) (ImportSummary, error) {
	summary := ImportSummary{Total: len(rows), Results: make([]RowResult, 0, len(rows))}

	for _, row := range rows {
		in := mapRow(row, groupCode)

		name := strings.TrimSpace(in.FullName)
		if name == "" {
			name = "Unknown"
		}

		cert, err := im.Validator.ValidateCreate(in)
		if err != nil {
			var verr *ValidationError
			if !errors.As(err, &verr) {
				return summary, err
			}
			summary.Results = append(summary.Results, RowResult{
				FullName: name,
				Success:  false,
				Message:  verr.Message,
			})
			continue
		}

		cert.UserID = actorID
		cert.CreatedBy = actorID
		if err := im.Store.Create(cert); err != nil {
			summary.Results = append(summary.Results, RowResult{
				FullName: name,
				Success:  false,
				Message:  fmt.Sprintf("could not save certificate: %v", err),
			})
			continue
		}

		summary.Success++
		summary.Results = append(summary.Results, RowResult{
			FullName: name,
			Success:  true,
			Message:  "certificate created",
		})
	}

	return summary, nil
}

func mapRow(row ImportRow, groupCode string) CertificateInput {
	return CertificateInput{
		FullName:        stringCell(row[colFullName]),
		DateOfBirth:     DateFromAny(row[colDateOfBirth]),
		PlaceOfBirth:    stringCell(row[colPlaceOfBirth]),
		ReferenceLevel:  strings.ToUpper(stringCell(row[colReferenceLevel])),
		CourseStartDate: DateFromAny(row[colCourseStartDate]),
		CourseEndDate:   DateFromAny(row[colCourseEndDate]),
		LessonUnits:     intCell(row[colLessonUnits]),
		LessonsAttended: intCell(row[colLessonsAttended]),
		Evaluation:      stringCell(row[colEvaluation]),
		CourseInfo:      stringCell(row[colCourseInfo]),
		Comments:        stringCell(row[colComments]),
		GroupCode:       groupCode,
	}
}

func stringCell(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case time.Time:
		return s.Format("2006-01-02")
	default:
		return strings.TrimSpace(fmt.Sprint(s))
	}
}

func intCell(v any) *int {
	switch n := v.(type) {
	case nil:
		return nil
	case float64:
		i := int(n)
		return &i
	case int:
		return &n
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return nil
		}
		i, err := strconv.Atoi(trimmed)
		if err != nil {
			return nil
		}
		return &i
	default:
		return nil
	}
}
