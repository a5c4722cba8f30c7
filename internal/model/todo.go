package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Todo represents a single task record.
type Todo struct {
	ID         string    `gorm:"primaryKey;size:36" json:"id"`
	Title      string    `gorm:"not null;check:chk_todos_title,title <> ''" json:"title"`
	Completed  bool      `gorm:"not null;default:false" json:"completed"`
	DueDate    *Date     `gorm:"type:date;index" json:"due_date"`
	CategoryID *string   `gorm:"size:36;index" json:"category_id"`
	CreatedAt  time.Time `json:"created_at"`

	// Categories is filled only when the row is read with its category joined.
	Categories *Category `gorm:"foreignKey:CategoryID" json:"categories"`
}

func (t *Todo) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// DueOn reports whether the todo is due on the given YYYY-MM-DD day.
func (t Todo) DueOn(day string) bool {
	return t.DueDate != nil && t.DueDate.String() == day
}
