package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/vialy/glonetzBackend/models"
	"gorm.io/gorm"
)

// GroupStore looks a group up by its derived code. A nil group with a nil
// error means the code is unknown.
type GroupStore interface {
	GroupByCode(code string) (*models.Group, error)
}

type GroupRepository struct {
	DB *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{DB: db}
}

func (r *GroupRepository) GroupByCode(code string) (*models.Group, error) {
	var group models.Group
	if err := r.DB.Where("group_code = ?", code).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &group, nil
}

// checkGroupConsistency enforces that a certificate agrees with its owning
// group: same level, same start date. These checks run before duplicate
// detection and allocation, so an invalid group reference never consumes a
// sequence number.
func checkGroupConsistency(group *models.Group, referenceLevel string, courseStartDate time.Time) *ValidationError {
	if group.Level != referenceLevel {
		return validationErr(ErrLevelMismatch, "referenceLevel",
			fmt.Sprintf("the certificate level (%s) must match the group level (%s)", referenceLevel, group.Level))
	}

	groupStart := DateOnly(group.StartDate)
	if !DateOnly(courseStartDate).Equal(groupStart) {
		return validationErr(ErrStartDateMismatch, "courseStartDate",
			fmt.Sprintf("the certificate start date (%s) must match the group start date (%s)",
				DateOnly(courseStartDate).Format("02.01.2006"), groupStart.Format("02.01.2006")))
	}
	return nil
}
