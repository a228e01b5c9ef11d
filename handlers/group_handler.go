package handlers

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/vialy/glonetzBackend/database"
	"github.com/vialy/glonetzBackend/models"
	"github.com/vialy/glonetzBackend/services"
	"gorm.io/gorm"
)

type GroupRequest struct {
	Level     string `json:"level" validate:"required,oneof=A1 A2 B1 B2 C1 C2"`
	StartDate any    `json:"startDate" validate:"required"`
	TimeSlot  string `json:"timeSlot" validate:"required,oneof=MO MI NM AB"`
	Name      string `json:"name" validate:"required"`
}

func CreateGroup(c *fiber.Ctx) error {
	var req GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	startDate, ok := services.DateFromAny(req.StartDate).Normalize()
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start date format"})
	}

	group := models.Group{
		Level:     req.Level,
		StartDate: startDate,
		TimeSlot:  req.TimeSlot,
		Name:      req.Name,
		CreatedBy: currentUserID(c),
	}

	if err := database.DB.Create(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A group with this code already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create group"})
	}

	return c.Status(fiber.StatusCreated).JSON(group)
}

func ListGroups(c *fiber.Ctx) error {
	var groups []models.Group
	err := database.DB.Order("start_date desc").Order("level asc").Find(&groups).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch groups"})
	}
	return c.JSON(groups)
}

func GetGroup(c *fiber.Ctx) error {
	groupID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	var group models.Group
	if err := database.DB.First(&group, "id = ?", groupID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Group not found"})
	}
	return c.JSON(group)
}

func UpdateGroup(c *fiber.Ctx) error {
	groupID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	var req GroupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	startDate, ok := services.DateFromAny(req.StartDate).Normalize()
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid start date format"})
	}

	var group models.Group
	if err := database.DB.First(&group, "id = ?", groupID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Group not found"})
	}

	// The start date freezes once certificates reference this group; the
	// edit is rejected, never silently dropped.
	if !startDate.Equal(services.DateOnly(group.StartDate)) {
		var certificateCount int64
		err := database.DB.Model(&models.Certificate{}).
			Where("group_code = ?", group.GroupCode).
			Count(&certificateCount).Error
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to check group certificates"})
		}
		if certificateCount > 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf(
					"cannot change the start date: %d certificate(s) reference this group. Create a new group instead.",
					certificateCount),
			})
		}
	}

	group.Level = req.Level
	group.StartDate = startDate
	group.TimeSlot = req.TimeSlot
	group.Name = req.Name

	if err := database.DB.Save(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "A group with this code already exists"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to update group"})
	}
	return c.JSON(group)
}

func DeleteGroup(c *fiber.Ctx) error {
	groupID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid group id"})
	}

	result := database.DB.Delete(&models.Group{}, "id = ?", groupID)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete group"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Group not found"})
	}
	return c.JSON(fiber.Map{"message": "Group deleted successfully"})
}
