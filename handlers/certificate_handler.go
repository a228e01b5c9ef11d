package handlers

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/vialy/glonetzBackend/database"
	"github.com/vialy/glonetzBackend/models"
	"github.com/vialy/glonetzBackend/services"
	"github.com/vialy/glonetzBackend/utils"
)

const uploadDir = "uploads"

type CertificateRequest struct {
	FullName        string `json:"fullName" validate:"required"`
	DateOfBirth     any    `json:"dateOfBirth" validate:"required"`
	PlaceOfBirth    string `json:"placeOfBirth" validate:"required"`
	ReferenceLevel  string `json:"referenceLevel" validate:"required"`
	CourseStartDate any    `json:"courseStartDate" validate:"required"`
	CourseEndDate   any    `json:"courseEndDate" validate:"required"`
	LessonUnits     *int   `json:"lessonUnits" validate:"omitempty,min=0"`
	LessonsAttended *int   `json:"lessonsAttended" validate:"omitempty,min=0"`
	Evaluation      string `json:"evaluation" validate:"required"`
	CourseInfo      string `json:"courseInfo"`
	Comments        string `json:"comments"`
	GroupCode       string `json:"groupCode" validate:"required"`
}

func (req CertificateRequest) toInput() services.CertificateInput {
	return services.CertificateInput{
		FullName:        req.FullName,
		DateOfBirth:     services.DateFromAny(req.DateOfBirth),
		PlaceOfBirth:    req.PlaceOfBirth,
		ReferenceLevel:  strings.ToUpper(strings.TrimSpace(req.ReferenceLevel)),
		CourseStartDate: services.DateFromAny(req.CourseStartDate),
		CourseEndDate:   services.DateFromAny(req.CourseEndDate),
		LessonUnits:     req.LessonUnits,
		LessonsAttended: req.LessonsAttended,
		Evaluation:      req.Evaluation,
		CourseInfo:      req.CourseInfo,
		Comments:        req.Comments,
		GroupCode:       req.GroupCode,
	}
}

func rejectCertificate(c *fiber.Ctx, verr *services.ValidationError) error {
	status := fiber.StatusBadRequest
	if verr.Kind == services.ErrAllocationFailure {
		status = fiber.StatusServiceUnavailable
	}

	body := fiber.Map{
		"error": verr.Message,
		"kind":  verr.Kind,
		"field": verr.Field,
	}
	if verr.Conflict != nil {
		body["conflict"] = fiber.Map{
			"id":              verr.Conflict.ID,
			"referenceNumber": verr.Conflict.ReferenceNumber,
			"courseStartDate": verr.Conflict.CourseStartDate,
			"courseEndDate":   verr.Conflict.CourseEndDate,
		}
	}
	return c.Status(status).JSON(body)
}

func CreateCertificate(c *fiber.Ctx) error {
	var req CertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	cert, err := services.NewValidator(database.DB).ValidateCreate(req.toInput())
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return rejectCertificate(c, verr)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create certificate"})
	}

	actorID := currentUserID(c)
	cert.UserID = actorID
	cert.CreatedBy = actorID

	if err := database.DB.Create(cert).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create certificate"})
	}
	return c.Status(fiber.StatusCreated).JSON(cert)
}

func UpdateCertificate(c *fiber.Ctx) error {
	certID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid certificate id"})
	}

	var req CertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var existing models.Certificate
	if err := database.DB.First(&existing, "id = ?", certID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Certificate not found"})
	}

	cert, err := services.NewValidator(database.DB).ValidateUpdate(req.toInput(), &existing)
	if err != nil {
		var verr *services.ValidationError
		if errors.As(err, &verr) {
			return rejectCertificate(c, verr)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update certificate"})
	}

	if err := database.DB.Save(cert).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update certificate"})
	}
	return c.JSON(cert)
}

func DeleteCertificate(c *fiber.Ctx) error {
	certID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid certificate id"})
	}

	result := database.DB.Delete(&models.Certificate{}, "id = ?", certID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete certificate"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Certificate not found"})
	}
	return c.JSON(fiber.Map{"message": "Certificate deleted successfully"})
}

func ListCertificates(c *fiber.Ctx) error {
	tx := database.DB.Preload("GenerationHistory").Order("created_at desc")
	if ref := c.Query("referenceNumber"); ref != "" {
		tx = tx.Where("reference_number ILIKE ?", "%"+ref+"%")
	}

	var certificates []models.Certificate
	if err := tx.Find(&certificates).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch certificates"})
	}
	return c.JSON(certificates)
}

func GetCertificate(c *fiber.Ctx) error {
	certID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid certificate id"})
	}

	var cert models.Certificate
	if err := database.DB.Preload("GenerationHistory").First(&cert, "id = ?", certID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Certificate not found"})
	}

	if currentUserRole(c) != models.RoleAdmin && cert.UserID != currentUserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Access denied"})
	}
	return c.JSON(cert)
}

type CheckDuplicateRequest struct {
	FullName        string `json:"fullName" validate:"required"`
	DateOfBirth     any    `json:"dateOfBirth" validate:"required"`
	ReferenceLevel  string `json:"referenceLevel" validate:"required"`
	CourseStartDate any    `json:"courseStartDate" validate:"required"`
	CourseEndDate   any    `json:"courseEndDate" validate:"required"`
}

// CheckDuplicate is an exact-tuple existence probe used by the frontend
// before submission. The create/update paths run the stricter overlap-based
// duplicate detection regardless of this probe's answer.
func CheckDuplicate(c *fiber.Ctx) error {
	var req CheckDuplicateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	dateOfBirth, okBirth := services.DateFromAny(req.DateOfBirth).Normalize()
	courseStart, okStart := services.DateFromAny(req.CourseStartDate).Normalize()
	courseEnd, okEnd := services.DateFromAny(req.CourseEndDate).Normalize()
	if !okBirth || !okStart || !okEnd {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "One or more dates are invalid"})
	}

	var cert models.Certificate
	err := database.DB.
		Where("full_name = ? AND date_of_birth = ? AND reference_level = ?", req.FullName, dateOfBirth, req.ReferenceLevel).
		Where("course_start_date = ? AND course_end_date = ?", courseStart, courseEnd).
		First(&cert).Error
	if err != nil {
		return c.JSON(fiber.Map{"exists": false, "certificate": nil})
	}

	return c.JSON(fiber.Map{
		"exists": true,
		"certificate": fiber.Map{
			"id":              cert.ID,
			"referenceNumber": cert.ReferenceNumber,
		},
	})
}

func GetGenerationHistory(c *fiber.Ctx) error {
	certID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid certificate id"})
	}

	var cert models.Certificate
	if err := database.DB.First(&cert, "id = ?", certID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Certificate not found"})
	}

	var history []models.GenerationRecord
	err = database.DB.
		Where("certificate_id = ?", certID).
		Order("generated_at asc").
		Find(&history).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch generation history"})
	}
	return c.JSON(history)
}

func ExportCertificatePDF(c *fiber.Ctx) error {
	certID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid certificate id"})
	}

	var cert models.Certificate
	if err := database.DB.First(&cert, "id = ?", certID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Certificate not found"})
	}

	group, err := services.NewGroupRepository(database.DB).GroupByCode(cert.GroupCode)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load group"})
	}

	pdfBytes, err := services.GenerateCertificatePDF(&cert, group)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to generate PDF"})
	}

	// Each export appends exactly one history entry; existing entries are
	// never touched.
	record := models.GenerationRecord{
		CertificateID: cert.ID,
		GeneratedBy:   currentUserID(c),
		GeneratedAt:   time.Now(),
	}
	if err := database.DB.Create(&record).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record PDF generation"})
	}

	go services.ArchiveCertificatePDF(pdfBytes, cert.ReferenceNumber)

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"certificate_%s.pdf\"", cert.ReferenceNumber))
	return c.Send(pdfBytes)
}

var allowedImportExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".csv":  true,
}

func ImportCertificates(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No file was uploaded"})
	}

	groupCode := c.FormValue("groupCode")
	if groupCode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Group code is required"})
	}

	group, err := services.NewGroupRepository(database.DB).GroupByCode(groupCode)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load group"})
	}
	if group == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Group not found"})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedImportExtensions[ext] {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported file format. Please upload an Excel (.xlsx) or CSV file.",
		})
	}

	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store uploaded file"})
	}

	// The upload is a transient input: consumed once, removed afterwards
	// whether the import succeeded or not.
	path := filepath.Join(uploadDir, uuid.New().String()+ext)
	if err := c.SaveFile(file, path); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to store uploaded file"})
	}
	defer os.Remove(path)

	rows, err := utils.ParseSpreadsheet(path)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Could not read the uploaded file"})
	}
	if len(rows) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "The file contains no data"})
	}

	summary, err := services.NewImporter(database.DB).Run(services.ToImportRows(rows), groupCode, currentUserID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to import certificates"})
	}
	return c.JSON(summary)
}
