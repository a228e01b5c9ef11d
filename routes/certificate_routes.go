package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vialy/glonetzBackend/handlers"
	"github.com/vialy/glonetzBackend/middleware"
)

func CertificateRoutes(app *fiber.App) {
	certs := app.Group("/api/certificates", middleware.Protected())

	certs.Get("", handlers.ListCertificates)
	certs.Post("", middleware.AdminRequired(), handlers.CreateCertificate)
	certs.Post("/import", middleware.AdminRequired(), handlers.ImportCertificates)
	certs.Post("/check-duplicate", handlers.CheckDuplicate)
	certs.Get("/history/:id", middleware.AdminRequired(), handlers.GetGenerationHistory)

	certs.Get("/:id", handlers.GetCertificate)
	certs.Get("/:id/pdf", handlers.ExportCertificatePDF)
	certs.Put("/:id", middleware.ManagerOrAdminRequired(), handlers.UpdateCertificate)
	certs.Delete("/:id", middleware.AdminRequired(), handlers.DeleteCertificate)
}
