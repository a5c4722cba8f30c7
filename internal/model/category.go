package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is a named, colored tag applicable to todos.
type Category struct {
	ID    string `gorm:"primaryKey;size:36" json:"id"`
	Name  string `gorm:"not null" json:"name"`
	Color string `gorm:"not null" json:"color"`
}

func (c *Category) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
