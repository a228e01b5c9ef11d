package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/vialy/glonetzBackend/models"
)

type fakeGroupStore struct {
	groups map[string]models.Group
}

func (f *fakeGroupStore) GroupByCode(code string) (*models.Group, error) {
	g, ok := f.groups[code]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

// fakeCertStore keeps certificates in memory and answers conflict queries
// with the same predicate the SQL implementation uses.
type fakeCertStore struct {
	certs []models.Certificate
}

func (f *fakeCertStore) FindConflict(q ConflictQuery) (*models.Certificate, error) {
	for i := range f.certs {
		cert := f.certs[i]
		if q.ExcludeID != uuid.Nil && cert.ID == q.ExcludeID {
			continue
		}
		if NormalizeName(cert.FullName) != NormalizeName(q.FullName) {
			continue
		}
		if !cert.DateOfBirth.Equal(q.DateOfBirth) || cert.ReferenceLevel != q.ReferenceLevel {
			continue
		}
		if PeriodsOverlap(cert.CourseStartDate, cert.CourseEndDate, q.CourseStartDate, q.CourseEndDate) {
			return &cert, nil
		}
	}
	return nil, nil
}

func (f *fakeCertStore) Create(cert *models.Certificate) error {
	if cert.ID == uuid.Nil {
		cert.ID = uuid.New()
	}
	f.certs = append(f.certs, *cert)
	return nil
}

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func intPtr(n int) *int { return &n }

func testGroup() models.Group {
	start := date("2024-01-01")
	return models.Group{
		ID:        uuid.New(),
		Level:     "B2",
		StartDate: start,
		TimeSlot:  "MO",
		Name:      "Alpha",
		GroupCode: models.ComputeGroupCode("B2", start, "MO", "Alpha"),
	}
}

func newTestValidator(groups ...models.Group) (*Validator, *fakeCertStore) {
	byCode := make(map[string]models.Group)
	for _, g := range groups {
		byCode[g.GroupCode] = g
	}
	store := &fakeCertStore{}
	v := &Validator{
		Groups:       &fakeGroupStore{groups: byCode},
		Certificates: store,
		Refs:         newMemoryAllocator(2024),
	}
	return v, store
}

func validInput(groupCode string) CertificateInput {
	return CertificateInput{
		FullName:        "Jane Doe",
		DateOfBirth:     DateFromString("01.06.1995"),
		PlaceOfBirth:    "Lyon",
		ReferenceLevel:  "B2",
		CourseStartDate: DateFromString("01.01.2024"),
		CourseEndDate:   DateFromString("01.03.2024"),
		LessonUnits:     intPtr(80),
		LessonsAttended: intPtr(76),
		Evaluation:      "good",
		CourseInfo:      "complete",
		GroupCode:       groupCode,
	}
}

func kindOf(t *testing.T, err error) ErrorKind {
	t.Helper()
	verr, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T: %v", err, err)
	}
	return verr.Kind
}

func TestValidateCreateAcceptsValidCandidate(t *testing.T) {
	group := testGroup()
	v, _ := newTestValidator(group)

	cert, err := v.ValidateCreate(validInput(group.GroupCode))
	assert.NoError(t, err)
	assert.Equal(t, "GLZ-2024-B2-0001", cert.ReferenceNumber)
	assert.Equal(t, "Jane Doe", cert.FullName)
	assert.Equal(t, date("1995-06-01"), cert.DateOfBirth)
	assert.Equal(t, models.EvaluationGood, cert.Evaluation)
	assert.Equal(t, models.CourseInfoComplete, cert.CourseInfo)
	assert.Equal(t, 80, cert.LessonUnits)
	assert.Equal(t, 76, cert.LessonsAttended)
}

func TestValidateCreateRequiredFields(t *testing.T) {
	group := testGroup()

	tests := []struct {
		name   string
		mutate func(*CertificateInput)
		field  string
	}{
		{name: "full name", mutate: func(in *CertificateInput) { in.FullName = "   " }, field: "fullName"},
		{name: "place of birth", mutate: func(in *CertificateInput) { in.PlaceOfBirth = "" }, field: "placeOfBirth"},
		{name: "reference level", mutate: func(in *CertificateInput) { in.ReferenceLevel = "" }, field: "referenceLevel"},
		{name: "group code", mutate: func(in *CertificateInput) { in.GroupCode = "" }, field: "groupCode"},
		{name: "date of birth", mutate: func(in *CertificateInput) { in.DateOfBirth = DateInput{} }, field: "dateOfBirth"},
		{name: "course start", mutate: func(in *CertificateInput) { in.CourseStartDate = DateInput{} }, field: "courseStartDate"},
		{name: "course end", mutate: func(in *CertificateInput) { in.CourseEndDate = DateInput{} }, field: "courseEndDate"},
		{name: "evaluation", mutate: func(in *CertificateInput) { in.Evaluation = "" }, field: "evaluation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, _ := newTestValidator(group)
			in := validInput(group.GroupCode)
			tt.mutate(&in)

			_, err := v.ValidateCreate(in)
			assert.Equal(t, ErrMissingField, kindOf(t, err))
			assert.Equal(t, tt.field, err.(*ValidationError).Field)
		})
	}
}

func TestValidateCreateInvalidDates(t *testing.T) {
	group := testGroup()
	v, _ := newTestValidator(group)

	in := validInput(group.GroupCode)
	in.DateOfBirth = DateFromString("not a date")

	_, err := v.ValidateCreate(in)
	assert.Equal(t, ErrInvalidDate, kindOf(t, err))
	assert.Equal(t, "dateOfBirth", err.(*ValidationError).Field)
}

func TestValidateCreateLessonBound(t *testing.T) {
	group := testGroup()

	t.Run("attended exceeds total", func(t *testing.T) {
		v, _ := newTestValidator(group)
		in := validInput(group.GroupCode)
		in.LessonUnits = intPtr(8)
		in.LessonsAttended = intPtr(10)

		_, err := v.ValidateCreate(in)
		assert.Equal(t, ErrLessonCountExceeded, kindOf(t, err))
		assert.Contains(t, err.Error(), "10")
		assert.Contains(t, err.Error(), "8")
	})

	t.Run("attended equals total", func(t *testing.T) {
		v, _ := newTestValidator(group)
		in := validInput(group.GroupCode)
		in.LessonUnits = intPtr(8)
		in.LessonsAttended = intPtr(8)

		cert, err := v.ValidateCreate(in)
		assert.NoError(t, err)
		assert.Equal(t, 8, cert.LessonsAttended)
	})

	t.Run("attended defaults to total", func(t *testing.T) {
		v, _ := newTestValidator(group)
		in := validInput(group.GroupCode)
		in.LessonUnits = intPtr(40)
		in.LessonsAttended = nil

		cert, err := v.ValidateCreate(in)
		assert.NoError(t, err)
		assert.Equal(t, 40, cert.LessonsAttended)
	})
}

func TestValidateCreateEnumNormalization(t *testing.T) {
	group := testGroup()

	t.Run("unknown evaluation", func(t *testing.T) {
		v, _ := newTestValidator(group)
		in := validInput(group.GroupCode)
		in.Evaluation = "meh"

		_, err := v.ValidateCreate(in)
		assert.Equal(t, ErrInvalidEnumValue, kindOf(t, err))
		assert.Contains(t, err.Error(), models.EvaluationOutstanding)
	})

	t.Run("unknown course info", func(t *testing.T) {
		v, _ := newTestValidator(group)
		in := validInput(group.GroupCode)
		in.CourseInfo = "mystery"

		_, err := v.ValidateCreate(in)
		assert.Equal(t, ErrInvalidEnumValue, kindOf(t, err))
	})

	t.Run("course info defaults to complete", func(t *testing.T) {
		v, _ := newTestValidator(group)
		in := validInput(group.GroupCode)
		in.CourseInfo = ""

		cert, err := v.ValidateCreate(in)
		assert.NoError(t, err)
		assert.Equal(t, models.CourseInfoComplete, cert.CourseInfo)
	})
}

func TestValidateCreateGroupConsistency(t *testing.T) {
	group := testGroup()

	t.Run("group not found", func(t *testing.T) {
		v, _ := newTestValidator(group)
		in := validInput("B2-01.01.2024-AB-Missing")

		_, err := v.ValidateCreate(in)
		assert.Equal(t, ErrGroupNotFound, kindOf(t, err))
	})

	t.Run("level mismatch", func(t *testing.T) {
		v, _ := newTestValidator(group)
		in := validInput(group.GroupCode)
		in.ReferenceLevel = "A1"

		_, err := v.ValidateCreate(in)
		assert.Equal(t, ErrLevelMismatch, kindOf(t, err))
	})

	t.Run("start date mismatch", func(t *testing.T) {
		v, _ := newTestValidator(group)
		in := validInput(group.GroupCode)
		in.CourseStartDate = DateFromString("02.01.2024")

		_, err := v.ValidateCreate(in)
		assert.Equal(t, ErrStartDateMismatch, kindOf(t, err))
	})
}

func TestValidateCreateDuplicateDetection(t *testing.T) {
	group := models.Group{
		ID:        uuid.New(),
		Level:     "B1",
		StartDate: date("2024-02-15"),
		TimeSlot:  "MO",
		Name:      "Beta",
	}
	group.GroupCode = models.ComputeGroupCode(group.Level, group.StartDate, group.TimeSlot, group.Name)

	existing := models.Certificate{
		ID:              uuid.New(),
		ReferenceNumber: "GLZ-2024-B1-0001",
		FullName:        "Jane Doe",
		DateOfBirth:     date("1995-06-01"),
		ReferenceLevel:  "B1",
		CourseStartDate: date("2024-01-01"),
		CourseEndDate:   date("2024-03-01"),
	}

	candidate := func() CertificateInput {
		return CertificateInput{
			FullName:        "jane   doe",
			DateOfBirth:     DateFromString("01.06.1995"),
			PlaceOfBirth:    "Lyon",
			ReferenceLevel:  "B1",
			CourseStartDate: DateFromString("15.02.2024"),
			CourseEndDate:   DateFromString("15.04.2024"),
			LessonUnits:     intPtr(60),
			Evaluation:      "good",
			GroupCode:       group.GroupCode,
		}
	}

	t.Run("overlapping period with irregular name", func(t *testing.T) {
		v, store := newTestValidator(group)
		store.certs = []models.Certificate{existing}

		_, err := v.ValidateCreate(candidate())
		assert.Equal(t, ErrDuplicateCertificate, kindOf(t, err))
		verr := err.(*ValidationError)
		assert.NotNil(t, verr.Conflict)
		assert.Equal(t, existing.ReferenceNumber, verr.Conflict.ReferenceNumber)
	})

	t.Run("adjacent period is accepted", func(t *testing.T) {
		adjacentGroup := models.Group{
			ID:        uuid.New(),
			Level:     "B1",
			StartDate: date("2024-03-02"),
			TimeSlot:  "MO",
			Name:      "Gamma",
		}
		adjacentGroup.GroupCode = models.ComputeGroupCode(adjacentGroup.Level, adjacentGroup.StartDate, adjacentGroup.TimeSlot, adjacentGroup.Name)

		v, store := newTestValidator(adjacentGroup)
		store.certs = []models.Certificate{existing}

		in := candidate()
		in.GroupCode = adjacentGroup.GroupCode
		in.CourseStartDate = DateFromString("02.03.2024")
		in.CourseEndDate = DateFromString("01.05.2024")

		cert, err := v.ValidateCreate(in)
		assert.NoError(t, err)
		assert.Equal(t, "GLZ-2024-B1-0001", cert.ReferenceNumber)
	})
}

func TestValidateUpdateExcludesSelfAndKeepsReference(t *testing.T) {
	group := testGroup()
	v, store := newTestValidator(group)

	existing := models.Certificate{
		ID:              uuid.New(),
		ReferenceNumber: "GLZ-2023-B2-0042",
		FullName:        "Jane Doe",
		DateOfBirth:     date("1995-06-01"),
		ReferenceLevel:  "B2",
		CourseStartDate: date("2024-01-01"),
		CourseEndDate:   date("2024-03-01"),
		UserID:          uuid.New(),
		CreatedBy:       uuid.New(),
	}
	store.certs = []models.Certificate{existing}

	in := validInput(group.GroupCode)
	in.Comments = "corrected spelling"

	cert, err := v.ValidateUpdate(in, &existing)
	assert.NoError(t, err)
	assert.Equal(t, existing.ID, cert.ID)
	assert.Equal(t, "GLZ-2023-B2-0042", cert.ReferenceNumber)
	assert.Equal(t, existing.UserID, cert.UserID)
	assert.Equal(t, "corrected spelling", cert.Comments)
}

func TestValidateUpdateStillDetectsOtherDuplicates(t *testing.T) {
	group := testGroup()
	v, store := newTestValidator(group)

	other := models.Certificate{
		ID:              uuid.New(),
		ReferenceNumber: "GLZ-2024-B2-0001",
		FullName:        "Jane Doe",
		DateOfBirth:     date("1995-06-01"),
		ReferenceLevel:  "B2",
		CourseStartDate: date("2024-01-01"),
		CourseEndDate:   date("2024-03-01"),
	}
	edited := models.Certificate{
		ID:              uuid.New(),
		ReferenceNumber: "GLZ-2024-B2-0002",
		FullName:        "Jane Doe",
		DateOfBirth:     date("1995-06-01"),
		ReferenceLevel:  "B2",
		CourseStartDate: date("2024-01-01"),
		CourseEndDate:   date("2024-02-01"),
	}
	store.certs = []models.Certificate{other, edited}

	_, err := v.ValidateUpdate(validInput(group.GroupCode), &edited)
	assert.Equal(t, ErrDuplicateCertificate, kindOf(t, err))
	assert.Equal(t, other.ID, err.(*ValidationError).Conflict.ID)
}
