package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/vialy/glonetzBackend/handlers"
	"github.com/vialy/glonetzBackend/middleware"
)

func GroupRoutes(app *fiber.App) {
	groups := app.Group("/api/groups", middleware.Protected())

	groups.Get("", handlers.ListGroups)
	groups.Get("/:id", handlers.GetGroup)

	groups.Post("", middleware.AdminRequired(), handlers.CreateGroup)
	groups.Put("/:id", middleware.AdminRequired(), handlers.UpdateGroup)
	groups.Delete("/:id", middleware.AdminRequired(), handlers.DeleteGroup)
}
