package models

import "time"

// Question is one entry of the predefined feedback catalog
type Question struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UUID        *string   `json:"uuid,omitempty" gorm:"size:36"`
	Description string    `json:"description" gorm:"size:500;uniqueIndex;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Question) TableName() string {
	return "questions"
}
