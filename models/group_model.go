package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course time slots: Morgen, Mittag, Nachmittag, Abend.
var TimeSlots = []string{"MO", "MI", "NM", "AB"}

type Group struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Level     string    `gorm:"size:2;not null" json:"level"`
	StartDate time.Time `gorm:"type:date;not null" json:"startDate"`
	TimeSlot  string    `gorm:"size:2;not null" json:"timeSlot"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	GroupCode string    `gorm:"size:160;not null;unique" json:"groupCode"`
	CreatedBy uuid.UUID `gorm:"type:uuid" json:"createdBy"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ComputeGroupCode derives the stable code certificates reference. It must be
// recomputed whenever level, start date, time slot or name changes.
func ComputeGroupCode(level string, startDate time.Time, timeSlot, name string) string {
	return fmt.Sprintf("%s-%s-%s-%s", level, startDate.Format("02.01.2006"), timeSlot, name)
}

func (g *Group) BeforeSave(tx *gorm.DB) error {
	g.GroupCode = ComputeGroupCode(g.Level, g.StartDate, g.TimeSlot, g.Name)
	return nil
}
