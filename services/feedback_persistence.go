package services

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"

	"device-feedback-server/models"
)

// Answer is a caller-supplied answer to one catalog question
type Answer struct {
	QuestionID uint   `json:"question_id"`
	Text       string `json:"answer"`
}

// Submission is the payload persisted with a feedback record
type Submission struct {
	Rating   float64
	Comment  string
	ImageRef string
	Answers  []Answer
}

// PersistenceCoordinator creates a feedback record and one association per
// catalog question. Nothing is rolled back when a later write fails.
type PersistenceCoordinator struct {
	feedback FeedbackStore
	catalog  QuestionCatalog
	newUUID  func() string
}

func NewPersistenceCoordinator(feedback FeedbackStore, catalog QuestionCatalog) *PersistenceCoordinator {
	return &PersistenceCoordinator{
		feedback: feedback,
		catalog:  catalog,
		newUUID:  uuid.NewString,
	}
}

// CreateFeedback writes the feedback record. Timestamps come from the store.
func (c *PersistenceCoordinator) CreateFeedback(ctx context.Context, entities *ResolvedEntities, sub Submission) (*models.Feedback, error) {
	feedback := &models.Feedback{
		UUID:       c.newUUID(),
		EmployeeID: entities.Employee.ID,
		MerchantID: entities.Merchant.ID,
		DeviceID:   entities.Device.ID,
		Rating:     sub.Rating,
		Comment:    sub.Comment,
		ImageRef:   sub.ImageRef,
		Employee:   entities.Employee,
		Merchant:   entities.Merchant,
		Device:     entities.Device,
	}

	if err := c.feedback.Create(ctx, feedback); err != nil {
		return nil, &PersistenceError{Op: "create feedback", Err: err}
	}

	log.Printf("✅ Feedback %d (%s) created for employee %d", feedback.ID, feedback.UUID, feedback.EmployeeID)
	return feedback, nil
}

// Associate reads the current catalog and writes one association per
// question, substituting NoAnswerProvided for unanswered ones. Answers for
// question ids outside the catalog are ignored. Writes happen one at a time;
// on failure the associations written so far are returned with the error.
func (c *PersistenceCoordinator) Associate(ctx context.Context, feedback *models.Feedback, answers []Answer) ([]models.FeedbackQuestion, error) {
	questions, err := c.catalog.ListAll(ctx)
	if err != nil {
		return nil, &PersistenceError{Op: "list questions", Err: err}
	}

	supplied := make(map[uint]string, len(answers))
	for _, a := range answers {
		if _, seen := supplied[a.QuestionID]; !seen {
			supplied[a.QuestionID] = a.Text
		}
	}

	created := make([]models.FeedbackQuestion, 0, len(questions))
	for _, question := range questions {
		answer, ok := supplied[question.ID]
		if !ok {
			answer = models.NoAnswerProvided
		}

		fq, err := c.CreateAssociation(ctx, feedback.ID, question.ID, answer)
		if err != nil {
			log.Printf("❌ Feedback %d: association for question %d failed: %v", feedback.ID, question.ID, err)
			return created, err
		}
		created = append(created, *fq)
	}

	return created, nil
}

// CreateAssociation writes a single feedback-question association. Blank
// answers are rejected, never substituted.
func (c *PersistenceCoordinator) CreateAssociation(ctx context.Context, feedbackID, questionID uint, answer string) (*models.FeedbackQuestion, error) {
	if err := models.ValidateAnswer(answer); err != nil {
		return nil, &ValidationError{Field: "answer", Reason: err.Error()}
	}

	fq := &models.FeedbackQuestion{
		FeedbackID: feedbackID,
		QuestionID: questionID,
		Answer:     answer,
	}
	if err := c.feedback.CreateQuestion(ctx, fq); err != nil {
		if errors.Is(err, models.ErrBlankAnswer) {
			return nil, &ValidationError{Field: "answer", Reason: err.Error()}
		}
		return nil, &PersistenceError{Op: "create feedback question", QuestionID: questionID, Err: err}
	}
	return fq, nil
}
