package services

import (
	"context"

	"device-feedback-server/models"
)

// Lookups return (nil, nil) when the entity does not exist.

type EmployeeStore interface {
	FindByID(ctx context.Context, id uint) (*models.Employee, error)
}

type MerchantStore interface {
	FindByID(ctx context.Context, id uint) (*models.Merchant, error)
}

type DeviceStore interface {
	FindByID(ctx context.Context, id uint) (*models.Device, error)
}

// LinkStore answers whether a device has been provisioned to a merchant
type LinkStore interface {
	Exists(ctx context.Context, merchantID, deviceID uint) (bool, error)
}

// QuestionCatalog lists all predefined questions
type QuestionCatalog interface {
	ListAll(ctx context.Context) ([]models.Question, error)
}

// FeedbackStore persists feedback records and their question associations
type FeedbackStore interface {
	Create(ctx context.Context, feedback *models.Feedback) error
	CreateQuestion(ctx context.Context, fq *models.FeedbackQuestion) error
}

// FeedbackReader is the read side used by reporting
type FeedbackReader interface {
	FindByID(ctx context.Context, id uint) (*models.Feedback, error)
	List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error)
	CountByEmployee(ctx context.Context) ([]models.EmployeeFeedbackCount, error)
	AverageRatingByDevice(ctx context.Context) ([]models.DeviceAverageRating, error)
	CountByDevice(ctx context.Context) ([]models.DeviceFeedbackCount, error)
}

// Notifier delivers a message. It never returns an error; false means the
// message was not delivered.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) bool
}
