package models

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// NoAnswerProvided is stored for catalog questions the employee left unanswered.
const NoAnswerProvided = "No answer provided"

var ErrBlankAnswer = errors.New("answer must not be blank")

// Feedback is a rating and comment about one device at one merchant.
// Employee, merchant and device references never change after creation.
type Feedback struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UUID       string    `json:"uuid" gorm:"size:36;uniqueIndex;not null"`
	EmployeeID uint      `json:"employee_id" gorm:"not null;index"`
	MerchantID uint      `json:"merchant_id" gorm:"not null;index"`
	DeviceID   uint      `json:"device_id" gorm:"not null;index"`
	Rating     float64   `json:"rating" gorm:"not null;index"`
	Comment    string    `json:"comment" gorm:"type:text"`
	ImageRef   string    `json:"image_ref" gorm:"size:500"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Employee  *Employee          `json:"employee,omitempty" gorm:"foreignKey:EmployeeID"`
	Merchant  *Merchant          `json:"merchant,omitempty" gorm:"foreignKey:MerchantID"`
	Device    *Device            `json:"device,omitempty" gorm:"foreignKey:DeviceID"`
	Questions []FeedbackQuestion `json:"questions,omitempty" gorm:"foreignKey:FeedbackID"`
}

func (Feedback) TableName() string { return "feedback" }

// FeedbackQuestion is one answered (or defaulted) catalog question of a feedback
type FeedbackQuestion struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FeedbackID uint      `json:"feedback_id" gorm:"not null;uniqueIndex:idx_feedback_question"`
	QuestionID uint      `json:"question_id" gorm:"not null;uniqueIndex:idx_feedback_question"`
	Answer     string    `json:"answer" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at" gorm:"autoCreateTime"`

	// Relationships
	Question *Question `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
}

func (FeedbackQuestion) TableName() string { return "feedback_questions" }

// ValidateAnswer is the blank-answer rule shared by every association write.
func ValidateAnswer(answer string) error {
	if strings.TrimSpace(answer) == "" {
		return ErrBlankAnswer
	}
	return nil
}

// BeforeCreate is a GORM hook that rejects blank answers
func (fq *FeedbackQuestion) BeforeCreate(tx *gorm.DB) error {
	return ValidateAnswer(fq.Answer)
}

// FeedbackFilter selects feedback by at most one field. When several fields
// are set, Narrow keeps the one with the highest priority.
type FeedbackFilter struct {
	MerchantID *uint
	EmployeeID *uint
	DeviceID   *uint
	Rating     *float64
}

// Narrow applies the priority merchant > employee > device > rating and
// returns a filter with at most one field set.
func (f FeedbackFilter) Narrow() FeedbackFilter {
	switch {
	case f.MerchantID != nil:
		return FeedbackFilter{MerchantID: f.MerchantID}
	case f.EmployeeID != nil:
		return FeedbackFilter{EmployeeID: f.EmployeeID}
	case f.DeviceID != nil:
		return FeedbackFilter{DeviceID: f.DeviceID}
	case f.Rating != nil:
		return FeedbackFilter{Rating: f.Rating}
	default:
		return FeedbackFilter{}
	}
}

// IsEmpty reports whether no field is set
func (f FeedbackFilter) IsEmpty() bool {
	return f.MerchantID == nil && f.EmployeeID == nil && f.DeviceID == nil && f.Rating == nil
}
