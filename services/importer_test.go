package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/vialy/glonetzBackend/models"
)

func importGroup() models.Group {
	start := date("2024-01-08")
	return models.Group{
		ID:        uuid.New(),
		Level:     "A2",
		StartDate: start,
		TimeSlot:  "NM",
		Name:      "Delta",
		GroupCode: models.ComputeGroupCode("A2", start, "NM", "Delta"),
	}
}

func newTestImporter(groups ...models.Group) (*Importer, *fakeCertStore) {
	v, store := newTestValidator(groups...)
	return &Importer{Validator: v, Store: store}, store
}

func importRow(fullName string) ImportRow {
	return ImportRow{
		colFullName:        fullName,
		colDateOfBirth:     "12.05.1990",
		colPlaceOfBirth:    "Douala",
		colReferenceLevel:  "a2",
		colCourseStartDate: "08.01.2024",
		colCourseEndDate:   "29.03.2024",
		colLessonUnits:     float64(60),
		colLessonsAttended: float64(58),
		colEvaluation:      "bon",
		colCourseInfo:      "complet",
	}
}

func TestImportRunRejectedRowsDoNotStopTheBatch(t *testing.T) {
	group := importGroup()
	im, store := newTestImporter(group)

	rows := []ImportRow{
		importRow("Alice Martin"),
		importRow("Bruno Kamga"),
		importRow("Chantal Ngo"),
		importRow("David Fouda"),
		importRow("Esther Biya"),
	}
	rows[2][colDateOfBirth] = "31.02.1990"

	actor := uuid.New()
	summary, err := im.Run(rows, group.GroupCode, actor)
	assert.NoError(t, err)
	assert.Equal(t, 5, summary.Total)
	assert.Equal(t, 4, summary.Success)
	assert.Len(t, summary.Results, 5)

	assert.False(t, summary.Results[2].Success)
	assert.Equal(t, "Chantal Ngo", summary.Results[2].FullName)
	assert.Contains(t, summary.Results[2].Message, "date of birth")

	// The rows after the rejected one were still processed.
	assert.True(t, summary.Results[3].Success)
	assert.True(t, summary.Results[4].Success)

	assert.Len(t, store.certs, 4)
	for _, cert := range store.certs {
		assert.Equal(t, actor, cert.UserID)
		assert.Equal(t, actor, cert.CreatedBy)
		assert.Equal(t, "A2", cert.ReferenceLevel)
		assert.NotEmpty(t, cert.ReferenceNumber)
	}
}

func TestImportRunSerialDateCells(t *testing.T) {
	group := models.Group{
		ID:        uuid.New(),
		Level:     "B1",
		StartDate: date("2023-03-15"),
		TimeSlot:  "MO",
		Name:      "Serien",
	}
	group.GroupCode = models.ComputeGroupCode(group.Level, group.StartDate, group.TimeSlot, group.Name)

	im, store := newTestImporter(group)

	row := importRow("Frida Lobe")
	row[colReferenceLevel] = "B1"
	// Raw numeric cells from a spreadsheet: 45000 is 2023-03-15.
	row[colDateOfBirth] = float64(33000)
	row[colCourseStartDate] = float64(45000)
	row[colCourseEndDate] = float64(45080)

	summary, err := im.Run([]ImportRow{row}, group.GroupCode, uuid.New())
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Success)

	assert.Len(t, store.certs, 1)
	assert.Equal(t, date("2023-03-15"), store.certs[0].CourseStartDate)
	assert.Equal(t, date("2023-06-03"), store.certs[0].CourseEndDate)
}

func TestImportRunDetectsDuplicateWithinBatch(t *testing.T) {
	group := importGroup()
	im, store := newTestImporter(group)

	rows := []ImportRow{
		importRow("Alice Martin"),
		importRow("  alice   MARTIN "),
	}

	summary, err := im.Run(rows, group.GroupCode, uuid.New())
	assert.NoError(t, err)
	assert.Equal(t, 1, summary.Success)
	assert.False(t, summary.Results[1].Success)
	assert.Contains(t, summary.Results[1].Message, "already exists")
	assert.Len(t, store.certs, 1)
}

func TestImportRunUnknownNameInResult(t *testing.T) {
	group := importGroup()
	im, _ := newTestImporter(group)

	row := importRow("")

	summary, err := im.Run([]ImportRow{row}, group.GroupCode, uuid.New())
	assert.NoError(t, err)
	assert.Equal(t, 0, summary.Success)
	assert.Equal(t, "Unknown", summary.Results[0].FullName)
}
