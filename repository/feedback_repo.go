package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"device-feedback-server/models"
)

type FeedbackRepo struct {
	db *gorm.DB
}

func NewFeedbackRepo(db *gorm.DB) *FeedbackRepo {
	return &FeedbackRepo{db: db}
}

// Create inserts the feedback row only. Loaded relations are never upserted.
func (r *FeedbackRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(feedback).Error
}

// CreateQuestion inserts a single feedback-question association
func (r *FeedbackRepo) CreateQuestion(ctx context.Context, fq *models.FeedbackQuestion) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(fq).Error
}

// FindByID loads a feedback with its associations, or (nil, nil) when absent
func (r *FeedbackRepo) FindByID(ctx context.Context, id uint) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.db.WithContext(ctx).
		Preload("Questions.Question").
		First(&feedback, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &feedback, nil
}

// List applies every set field of filter. Callers narrow the filter first.
func (r *FeedbackRepo) List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error) {
	query := r.db.WithContext(ctx).Model(&models.Feedback{})

	if filter.MerchantID != nil {
		query = query.Where("merchant_id = ?", *filter.MerchantID)
	}
	if filter.EmployeeID != nil {
		query = query.Where("employee_id = ?", *filter.EmployeeID)
	}
	if filter.DeviceID != nil {
		query = query.Where("device_id = ?", *filter.DeviceID)
	}
	if filter.Rating != nil {
		query = query.Where("rating = ?", *filter.Rating)
	}

	var feedback []models.Feedback
	if err := query.Order("created_at DESC, id DESC").Find(&feedback).Error; err != nil {
		return nil, err
	}
	return feedback, nil
}

// CountByEmployee groups feedback per employee; employees without feedback are absent.
func (r *FeedbackRepo) CountByEmployee(ctx context.Context) ([]models.EmployeeFeedbackCount, error) {
	var rows []models.EmployeeFeedbackCount
	err := r.db.WithContext(ctx).Model(&models.Feedback{}).
		Select("feedback.employee_id AS employee_id, employees.email AS email, COUNT(feedback.id) AS feedback_count").
		Joins("JOIN employees ON employees.id = feedback.employee_id").
		Group("feedback.employee_id, employees.email").
		Order("feedback.employee_id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *FeedbackRepo) AverageRatingByDevice(ctx context.Context) ([]models.DeviceAverageRating, error) {
	var rows []models.DeviceAverageRating
	err := r.db.WithContext(ctx).Model(&models.Feedback{}).
		Select("device_id, AVG(rating) AS average_rating").
		Group("device_id").
		Order("device_id ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *FeedbackRepo) CountByDevice(ctx context.Context) ([]models.DeviceFeedbackCount, error) {
	var rows []models.DeviceFeedbackCount
	err := r.db.WithContext(ctx).Model(&models.Feedback{}).
		Select("device_id, COUNT(id) AS feedback_count").
		Group("device_id").
		Order("device_id ASC").
		Scan(&rows).Error
	return rows, err
}

// FindIncomplete lists feedback with fewer than expected associations
func (r *FeedbackRepo) FindIncomplete(ctx context.Context, expected int64) ([]models.IncompleteFeedback, error) {
	var rows []models.IncompleteFeedback
	err := r.db.WithContext(ctx).Model(&models.Feedback{}).
		Select("feedback.id AS feedback_id, COUNT(feedback_questions.id) AS association_count").
		Joins("LEFT JOIN feedback_questions ON feedback_questions.feedback_id = feedback.id").
		Group("feedback.id").
		Having("COUNT(feedback_questions.id) < ?", expected).
		Order("feedback.id ASC").
		Scan(&rows).Error
	return rows, err
}
