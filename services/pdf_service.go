package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	config "github.com/vialy/glonetzBackend/configs"
	"github.com/vialy/glonetzBackend/models"
)

type certificateTemplateData struct {
	ReferenceNumber string
	FullName        string
	DateOfBirth     string
	PlaceOfBirth    string
	ReferenceLevel  string
	CourseStartDate string
	CourseEndDate   string
	LessonUnits     int
	LessonsAttended int
	Evaluation      string
	CourseInfo      string
	GroupName       string
	IssueDate       string
}

// GenerateCertificatePDF renders the certificate document for a fully
// validated, persisted record. Layout lives in templates/certificate.html.
func GenerateCertificatePDF(cert *models.Certificate, group *models.Group) ([]byte, error) {
	htmlData, err := renderCertificateHTML(cert, group)
	if err != nil {
		return nil, fmt.Errorf("failed to render certificate HTML: %w", err)
	}

	pdfBytes, err := printToPDF(htmlData)
	if err != nil {
		return nil, fmt.Errorf("failed to print certificate to PDF: %w", err)
	}
	return pdfBytes, nil
}

func renderCertificateHTML(cert *models.Certificate, group *models.Group) (string, error) {
	tmpl, err := template.ParseFiles("templates/certificate.html")
	if err != nil {
		return "", err
	}

	groupName := cert.GroupCode
	if group != nil {
		groupName = group.Name
	}

	data := certificateTemplateData{
		ReferenceNumber: cert.ReferenceNumber,
		FullName:        cert.FullName,
		DateOfBirth:     cert.DateOfBirth.Format("02.01.2006"),
		PlaceOfBirth:    cert.PlaceOfBirth,
		ReferenceLevel:  cert.ReferenceLevel,
		CourseStartDate: cert.CourseStartDate.Format("02.01.2006"),
		CourseEndDate:   cert.CourseEndDate.Format("02.01.2006"),
		LessonUnits:     cert.LessonUnits,
		LessonsAttended: cert.LessonsAttended,
		Evaluation:      cert.Evaluation,
		CourseInfo:      cert.CourseInfo,
		GroupName:       groupName,
		IssueDate:       time.Now().Format("02.01.2006"),
	}

	var rendered bytes.Buffer
	if err := tmpl.Execute(&rendered, data); err != nil {
		return "", err
	}
	return rendered.String(), nil
}

func printToPDF(htmlContent string) ([]byte, error) {
	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()

	var pdfBuffer []byte
	err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			frameTree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(frameTree.Frame.ID, htmlContent).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			pdf, _, err := page.PrintToPDF().WithPrintBackground(true).Do(ctx)
			if err != nil {
				return err
			}
			pdfBuffer = pdf
			return nil
		}),
	)
	if err != nil {
		return nil, err
	}
	return pdfBuffer, nil
}

// ArchiveCertificatePDF uploads a copy of the generated document when a
// Cloudinary URL is configured. Failures are logged, never surfaced: the
// archive is a convenience, not part of the export contract.
func ArchiveCertificatePDF(pdfBytes []byte, referenceNumber string) {
	cloudinaryURL := config.Config("CLOUDINARY_URL")
	if cloudinaryURL == "" {
		return
	}

	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		log.Printf("🔥 Failed to initialize Cloudinary: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err = cld.Upload.Upload(ctx, bytes.NewReader(pdfBytes), uploader.UploadParams{
		PublicID:     fmt.Sprintf("certificates/%s", referenceNumber),
		Folder:       "glonetz_certificates",
		ResourceType: "raw",
	})
	if err != nil {
		log.Printf("🔥 Failed to archive certificate %s to Cloudinary: %v", referenceNumber, err)
		return
	}

	log.Printf("✅ Archived certificate %s to Cloudinary.", referenceNumber)
}
