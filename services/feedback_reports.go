package services

import (
	"context"

	"device-feedback-server/models"
)

// ReportService serves feedback reads and aggregates. It does not check
// roles; callers gate access.
type ReportService struct {
	feedback FeedbackReader
}

func NewReportService(feedback FeedbackReader) *ReportService {
	return &ReportService{feedback: feedback}
}

// ListFeedback applies at most one filter, chosen by merchant, employee,
// device, rating priority. An empty filter lists everything.
func (s *ReportService) ListFeedback(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error) {
	list, err := s.feedback.List(ctx, filter.Narrow())
	if err != nil {
		return nil, &PersistenceError{Op: "list feedback", Err: err}
	}
	if list == nil {
		list = []models.Feedback{}
	}
	return list, nil
}

func (s *ReportService) GetFeedback(ctx context.Context, id uint) (*models.Feedback, error) {
	feedback, err := s.feedback.FindByID(ctx, id)
	if err != nil {
		return nil, &PersistenceError{Op: "find feedback", Err: err}
	}
	if feedback == nil {
		return nil, &NotFoundError{Kind: EntityFeedback, ID: id}
	}
	return feedback, nil
}

// FeedbackCountByEmployee omits employees with no feedback
func (s *ReportService) FeedbackCountByEmployee(ctx context.Context) ([]models.EmployeeFeedbackCount, error) {
	rows, err := s.feedback.CountByEmployee(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "count feedback by employee", Err: err}
	}
	if rows == nil {
		rows = []models.EmployeeFeedbackCount{}
	}
	return rows, nil
}

func (s *ReportService) AverageRatingByDevice(ctx context.Context) ([]models.DeviceAverageRating, error) {
	rows, err := s.feedback.AverageRatingByDevice(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "average rating by device", Err: err}
	}
	if rows == nil {
		rows = []models.DeviceAverageRating{}
	}
	return rows, nil
}

func (s *ReportService) FeedbackCountByDevice(ctx context.Context) ([]models.DeviceFeedbackCount, error) {
	rows, err := s.feedback.CountByDevice(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "count feedback by device", Err: err}
	}
	if rows == nil {
		rows = []models.DeviceFeedbackCount{}
	}
	return rows, nil
}
