package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/vialy/glonetzBackend/database"
	"github.com/vialy/glonetzBackend/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UpdateUserRequest struct {
	Username string  `json:"username" validate:"omitempty,min=3"`
	Password string  `json:"password" validate:"omitempty,min=6"`
	Role     string  `json:"role" validate:"omitempty,oneof=admin manager user"`
	Email    *string `json:"email" validate:"omitempty,email"`
}

func GetAllUsers(c *fiber.Ctx) error {
	var users []models.User
	if err := database.DB.Order("username asc").Find(&users).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch users"})
	}

	responses := make([]UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, userResponse(user))
	}
	return c.JSON(responses)
}

func GetUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(userResponse(user))
}

func GetProfile(c *fiber.Ctx) error {
	var user models.User
	if err := database.DB.First(&user, "id = ?", currentUserID(c)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(userResponse(user))
}

func UpdateProfile(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Role != "" {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You cannot change your own role"})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", currentUserID(c)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	applyUserUpdate(&user, req)
	if ok, resp := saveUser(c, &user); !ok {
		return resp
	}
	return c.JSON(userResponse(user))
}

func UpdateUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}

	var req UpdateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	// Admins cannot demote themselves.
	if userID == currentUserID(c) && req.Role != "" && req.Role != user.Role {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You cannot change your own role"})
	}

	if req.Role != "" && userID != currentUserID(c) {
		user.Role = req.Role
	}
	applyUserUpdate(&user, req)
	if ok, resp := saveUser(c, &user); !ok {
		return resp
	}
	return c.JSON(userResponse(user))
}

func DeleteUser(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("userId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid user id"})
	}
	if userID == currentUserID(c) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "You cannot delete your own account"})
	}

	result := database.DB.Delete(&models.User{}, "id = ?", userID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete user"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}

func applyUserUpdate(user *models.User, req UpdateUserRequest) {
	if req.Username != "" {
		user.Username = req.Username
	}
	if req.Email != nil {
		user.Email = req.Email
	}
	if req.Password != "" {
		if hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost); err == nil {
			user.Password = string(hashed)
		}
	}
}

func saveUser(c *fiber.Ctx, user *models.User) (ok bool, resp error) {
	if err := database.DB.Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Username already exists"})
		}
		return false, c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update user"})
	}
	return true, nil
}
