package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EmployeeType string

const (
	EmployeeTypeAdmin    EmployeeType = "admin"
	EmployeeTypeEmployee EmployeeType = "employee"
)

// Authorization roles derived from the employee type.
const (
	RoleAdmin    = "ROLE_ADMIN"
	RoleEmployee = "ROLE_EMPLOYEE"
)

type Employee struct {
	ID           uint         `json:"id" gorm:"primaryKey"`
	UUID         string       `json:"uuid" gorm:"size:36;uniqueIndex;not null"`
	Name         string       `json:"name" gorm:"size:255;not null"`
	Email        string       `json:"email" gorm:"size:255;uniqueIndex;not null"`
	Phone        string       `json:"phone" gorm:"size:20;uniqueIndex;not null"`
	PasswordHash string       `json:"-" gorm:"size:255;not null"` // Hidden from JSON
	Designation  string       `json:"designation" gorm:"size:100"`
	Type         EmployeeType `json:"type" gorm:"type:varchar(20);not null;default:'employee'"`
	CreatedAt    time.Time    `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}

// BeforeCreate is a GORM hook that fills the external uuid and default type
func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.UUID == "" {
		e.UUID = uuid.NewString()
	}
	if e.Type == "" {
		e.Type = EmployeeTypeEmployee
	}
	return nil
}

// Roles returns the authorization roles granted by the employee type.
func (e *Employee) Roles() []string {
	switch e.Type {
	case EmployeeTypeAdmin:
		return []string{RoleAdmin, RoleEmployee}
	case EmployeeTypeEmployee:
		return []string{RoleEmployee}
	default:
		return nil
	}
}

// HasRole checks whether the employee type grants role
func (e *Employee) HasRole(role string) bool {
	for _, r := range e.Roles() {
		if r == role {
			return true
		}
	}
	return false
}

func (e *Employee) IsAdmin() bool {
	return e.Type == EmployeeTypeAdmin
}
