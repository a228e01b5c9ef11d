package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/vialy/glonetzBackend/models"
	"gorm.io/gorm"
)

// CertificateInput is one candidate record, as submitted by a create/update
// request body or mapped from a spreadsheet row. Dates keep their raw shape
// until the validator normalizes them; nil lesson counts mean "absent".
type CertificateInput struct {
	FullName        string
	DateOfBirth     DateInput
	PlaceOfBirth    string
	ReferenceLevel  string
	CourseStartDate DateInput
	CourseEndDate   DateInput
	LessonUnits     *int
	LessonsAttended *int
	Evaluation      string
	CourseInfo      string
	Comments        string
	GroupCode       string
}

// Validator runs the full acceptance pipeline for one candidate certificate:
// required fields, date normalization, lesson bound, enum normalization,
// group consistency, duplicate detection, and (on create) reference number
// allocation. Any failure short-circuits the remaining steps.
type Validator struct {
	Groups       GroupStore
	Certificates ConflictFinder
	Refs         ReferenceAllocator
}

func NewValidator(db *gorm.DB) *Validator {
	return &Validator{
		Groups:       NewGroupRepository(db),
		Certificates: NewCertificateStore(db),
		Refs:         NewCounterAllocator(db),
	}
}

// ValidateCreate validates a new candidate and, once every check has passed,
// allocates its reference number. The returned error is a *ValidationError
// for user-facing rejections; any other error is a store fault.
func (v *Validator) ValidateCreate(in CertificateInput) (*models.Certificate, error) {
	cert, err := v.validate(in, uuid.Nil)
	if err != nil {
		return nil, err
	}

	ref, err := v.Refs.Allocate(cert.ReferenceLevel)
	if err != nil {
		return nil, &ValidationError{
			Kind:    ErrAllocationFailure,
			Field:   "referenceNumber",
			Message: fmt.Sprintf("could not allocate a reference number: %v", err),
		}
	}
	cert.ReferenceNumber = ref
	return cert, nil
}

// ValidateUpdate re-runs every check for an edited certificate, excluding the
// record itself from duplicate detection. The existing reference number is
// kept; updates never consume a new sequence number.
func (v *Validator) ValidateUpdate(in CertificateInput, existing *models.Certificate) (*models.Certificate, error) {
	cert, err := v.validate(in, existing.ID)
	if err != nil {
		return nil, err
	}

	cert.ID = existing.ID
	cert.ReferenceNumber = existing.ReferenceNumber
	cert.UserID = existing.UserID
	cert.CreatedBy = existing.CreatedBy
	cert.CreatedAt = existing.CreatedAt
	return cert, nil
}

func (v *Validator) validate(in CertificateInput, excludeID uuid.UUID) (*models.Certificate, error) {
	fullName := strings.TrimSpace(in.FullName)
	if fullName == "" {
		return nil, validationErr(ErrMissingField, "fullName", "full name is required")
	}
	if strings.TrimSpace(in.PlaceOfBirth) == "" {
		return nil, validationErr(ErrMissingField, "placeOfBirth", "place of birth is required")
	}
	if in.ReferenceLevel == "" {
		return nil, validationErr(ErrMissingField, "referenceLevel", "reference level is required")
	}
	if !IsReferenceLevel(in.ReferenceLevel) {
		return nil, validationErr(ErrInvalidEnumValue, "referenceLevel",
			fmt.Sprintf("invalid reference level: %s. Accepted values are: %s",
				in.ReferenceLevel, strings.Join(models.ReferenceLevels, ", ")))
	}
	if in.GroupCode == "" {
		return nil, validationErr(ErrMissingField, "groupCode", "group code is required")
	}
	if in.DateOfBirth.IsZero() {
		return nil, validationErr(ErrMissingField, "dateOfBirth", "date of birth is required")
	}
	if in.CourseStartDate.IsZero() {
		return nil, validationErr(ErrMissingField, "courseStartDate", "course start date is required")
	}
	if in.CourseEndDate.IsZero() {
		return nil, validationErr(ErrMissingField, "courseEndDate", "course end date is required")
	}

	dateOfBirth, ok := in.DateOfBirth.Normalize()
	if !ok {
		return nil, validationErr(ErrInvalidDate, "dateOfBirth", "date of birth is not a valid date")
	}
	courseStart, ok := in.CourseStartDate.Normalize()
	if !ok {
		return nil, validationErr(ErrInvalidDate, "courseStartDate", "course start date is not a valid date")
	}
	courseEnd, ok := in.CourseEndDate.Normalize()
	if !ok {
		return nil, validationErr(ErrInvalidDate, "courseEndDate", "course end date is not a valid date")
	}

	lessonUnits := 0
	if in.LessonUnits != nil {
		lessonUnits = *in.LessonUnits
	}
	lessonsAttended := lessonUnits
	if in.LessonsAttended != nil {
		lessonsAttended = *in.LessonsAttended
	}
	if lessonsAttended > lessonUnits {
		return nil, validationErr(ErrLessonCountExceeded, "lessonsAttended",
			fmt.Sprintf("the number of lessons attended (%d) cannot exceed the total number of lessons (%d)",
				lessonsAttended, lessonUnits))
	}

	if strings.TrimSpace(in.Evaluation) == "" {
		return nil, validationErr(ErrMissingField, "evaluation", "evaluation is required")
	}
	evaluation, ok := NormalizeEvaluation(in.Evaluation)
	if !ok {
		return nil, validationErr(ErrInvalidEnumValue, "evaluation",
			fmt.Sprintf("invalid evaluation value: %s. Accepted values are: %s",
				in.Evaluation, strings.Join(AcceptedEvaluations(), ", ")))
	}

	courseInfo := models.CourseInfoComplete
	if strings.TrimSpace(in.CourseInfo) != "" {
		courseInfo, ok = NormalizeCourseInfo(in.CourseInfo)
		if !ok {
			return nil, validationErr(ErrInvalidEnumValue, "courseInfo",
				fmt.Sprintf("invalid course info value: %s. Accepted values are: %s",
					in.CourseInfo, strings.Join(AcceptedCourseInfos(), ", ")))
		}
	}

	group, err := v.Groups.GroupByCode(in.GroupCode)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, validationErr(ErrGroupNotFound, "groupCode",
			fmt.Sprintf("group not found: %s", in.GroupCode))
	}
	if verr := checkGroupConsistency(group, in.ReferenceLevel, courseStart); verr != nil {
		return nil, verr
	}

	conflict, err := v.Certificates.FindConflict(ConflictQuery{
		FullName:        fullName,
		DateOfBirth:     dateOfBirth,
		ReferenceLevel:  in.ReferenceLevel,
		CourseStartDate: courseStart,
		CourseEndDate:   courseEnd,
		ExcludeID:       excludeID,
	})
	if err != nil {
		return nil, err
	}
	if conflict != nil {
		return nil, &ValidationError{
			Kind:     ErrDuplicateCertificate,
			Field:    "fullName",
			Conflict: conflict,
			Message: fmt.Sprintf(
				"a certificate already exists for this student: same name (%s), same date of birth (%s), same level (%s), overlapping course period (existing: %s to %s, requested: %s to %s)",
				conflict.FullName,
				dateOfBirth.Format("02.01.2006"),
				in.ReferenceLevel,
				conflict.CourseStartDate.Format("02.01.2006"),
				conflict.CourseEndDate.Format("02.01.2006"),
				courseStart.Format("02.01.2006"),
				courseEnd.Format("02.01.2006")),
		}
	}

	return &models.Certificate{
		FullName:        fullName,
		DateOfBirth:     dateOfBirth,
		PlaceOfBirth:    strings.TrimSpace(in.PlaceOfBirth),
		ReferenceLevel:  in.ReferenceLevel,
		CourseStartDate: courseStart,
		CourseEndDate:   courseEnd,
		LessonUnits:     lessonUnits,
		LessonsAttended: lessonsAttended,
		Evaluation:      evaluation,
		CourseInfo:      courseInfo,
		Comments:        in.Comments,
		GroupCode:       in.GroupCode,
	}, nil
}
