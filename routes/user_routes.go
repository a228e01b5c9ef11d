package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vialy/glonetzBackend/handlers"
	"github.com/vialy/glonetzBackend/middleware"
)

func UserRoutes(app *fiber.App) {
	users := app.Group("/api/users", middleware.Protected())

	users.Get("/profile", handlers.GetProfile)
	users.Put("/profile", handlers.UpdateProfile)

	users.Get("", middleware.AdminRequired(), handlers.GetAllUsers)
	users.Post("", middleware.AdminRequired(), handlers.RegisterUser)
	users.Get("/:userId", middleware.AdminRequired(), handlers.GetUser)
	users.Put("/:userId", middleware.AdminRequired(), handlers.UpdateUser)
	users.Delete("/:userId", middleware.AdminRequired(), handlers.DeleteUser)
}
