package services

import (
	"context"
	"log"

	"device-feedback-server/models"
)

// State is a step of the submission workflow
type State string

const (
	StateStart            State = "START"
	StateValidating       State = "VALIDATING"
	StateValidationFailed State = "VALIDATION_FAILED"
	StatePersisting       State = "PERSISTING"
	StatePersistFailed    State = "PERSIST_FAILED"
	StateAssociating      State = "ASSOCIATING"
	StateAssocFailed      State = "ASSOC_FAILED"
	StateNotifyingSuccess State = "NOTIFYING_SUCCESS"
	StateNotifyFailed     State = "NOTIFY_FAILED"
	StateNotifyingFailure State = "NOTIFYING_FAILURE"
	StateFailed           State = "FAILED"
	StateDone             State = "DONE"
)

// Principal is the authenticated caller. Its email receives failure notices.
type Principal struct {
	EmployeeID uint
	Email      string
}

// SubmitRequest is one feedback submission
type SubmitRequest struct {
	EmployeeID uint
	MerchantID uint
	DeviceID   uint
	Submission
	Principal Principal
}

// Result describes how far a submission got. Feedback is set once the record
// was written, even if a later step failed.
type Result struct {
	Feedback     *models.Feedback
	Associations []models.FeedbackQuestion
	State        State
	Trace        []State
}

func (r *Result) OK() bool { return r.State == StateDone }

func (r *Result) enter(s State) {
	r.State = s
	r.Trace = append(r.Trace, s)
}

// FeedbackWorkflow runs validation, persistence and notification for a
// submission. Each stage receives the previous stage's output directly.
type FeedbackWorkflow struct {
	validator  *ValidationPipeline
	persister  *PersistenceCoordinator
	dispatcher *NotificationDispatcher
	observers  []func(*Result)
}

func NewFeedbackWorkflow(validator *ValidationPipeline, persister *PersistenceCoordinator, dispatcher *NotificationDispatcher) *FeedbackWorkflow {
	return &FeedbackWorkflow{
		validator:  validator,
		persister:  persister,
		dispatcher: dispatcher,
	}
}

// OnDone registers fn to run after a submission reaches DONE.
func (w *FeedbackWorkflow) OnDone(fn func(*Result)) {
	w.observers = append(w.observers, fn)
}

// Submit runs one submission to completion. The returned Result is never
// nil. On failure after PERSISTING the feedback row is left in place.
func (w *FeedbackWorkflow) Submit(ctx context.Context, req SubmitRequest) (*Result, error) {
	res := &Result{}
	res.enter(StateStart)

	res.enter(StateValidating)
	entities, err := w.validator.Validate(ctx, req.EmployeeID, req.MerchantID, req.DeviceID)
	if err != nil {
		return w.fail(ctx, res, StateValidationFailed, err, req)
	}

	res.enter(StatePersisting)
	feedback, err := w.persister.CreateFeedback(ctx, entities, req.Submission)
	if err != nil {
		return w.fail(ctx, res, StatePersistFailed, err, req)
	}
	res.Feedback = feedback

	res.enter(StateAssociating)
	associations, err := w.persister.Associate(ctx, feedback, req.Answers)
	res.Associations = associations
	if err != nil {
		return w.fail(ctx, res, StateAssocFailed, err, req)
	}
	feedback.Questions = associations

	res.enter(StateNotifyingSuccess)
	if err := w.dispatcher.NotifySuccess(ctx, feedback, entities); err != nil {
		res.enter(StateNotifyFailed)
		res.enter(StateFailed)
		log.Printf("❌ Feedback %d stored but success notice failed: %v", feedback.ID, err)
		return res, err
	}

	res.enter(StateDone)
	for _, fn := range w.observers {
		fn(res)
	}
	return res, nil
}

func (w *FeedbackWorkflow) fail(ctx context.Context, res *Result, state State, cause error, req SubmitRequest) (*Result, error) {
	res.enter(state)
	log.Printf("❌ Feedback submission %s: %v", state, cause)

	res.enter(StateNotifyingFailure)
	err := cause
	if noticeErr := w.dispatcher.NotifyFailure(ctx, req.Principal.Email, cause, req); noticeErr != nil {
		err = &FailureNoticeError{Cause: cause, Notice: noticeErr}
	}

	res.enter(StateFailed)
	return res, err
}
