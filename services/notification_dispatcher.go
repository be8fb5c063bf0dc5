package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"device-feedback-server/models"
)

const (
	SubjectFeedbackSubmitted = "Feedback submitted successfully"
	SubjectFeedbackFailed    = "Feedback submission failed"
)

// NotificationDispatcher renders and sends the workflow's outcome messages
type NotificationDispatcher struct {
	notifier Notifier
}

func NewNotificationDispatcher(notifier Notifier) *NotificationDispatcher {
	return &NotificationDispatcher{notifier: notifier}
}

// NotifySuccess tells the submitting employee that their feedback was stored.
func (d *NotificationDispatcher) NotifySuccess(ctx context.Context, feedback *models.Feedback, entities *ResolvedEntities) error {
	to := entities.Employee.Email
	body := renderSuccessBody(feedback, entities)
	if !d.notifier.Send(ctx, to, SubjectFeedbackSubmitted, body) {
		return &NotificationError{Recipient: to, Subject: SubjectFeedbackSubmitted}
	}
	log.Printf("📧 Success notification sent to %s for feedback %d", to, feedback.ID)
	return nil
}

// NotifyFailure reports cause to recipient along with the request that
// produced it. An empty recipient skips the send.
func (d *NotificationDispatcher) NotifyFailure(ctx context.Context, recipient string, cause error, req SubmitRequest) error {
	if recipient == "" {
		log.Printf("⚠️ No recipient for failure notice, skipping: %v", cause)
		return nil
	}
	body := renderFailureBody(cause, req)
	if !d.notifier.Send(ctx, recipient, SubjectFeedbackFailed, body) {
		return &NotificationError{Recipient: recipient, Subject: SubjectFeedbackFailed}
	}
	log.Printf("📧 Failure notification sent to %s", recipient)
	return nil
}

func renderSuccessBody(feedback *models.Feedback, entities *ResolvedEntities) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", entities.Employee.Name)
	b.WriteString("Your feedback has been recorded.\n\n")
	fmt.Fprintf(&b, "Feedback ID: %d\n", feedback.ID)
	fmt.Fprintf(&b, "Reference: %s\n", feedback.UUID)
	fmt.Fprintf(&b, "Merchant: %s\n", entities.Merchant.BusinessName)
	fmt.Fprintf(&b, "Device: %s (%s)\n", entities.Device.Model, entities.Device.Manufacturer)
	fmt.Fprintf(&b, "Rating: %.1f\n", feedback.Rating)
	if feedback.Comment != "" {
		fmt.Fprintf(&b, "Comment: %s\n", feedback.Comment)
	}
	if !feedback.CreatedAt.IsZero() {
		fmt.Fprintf(&b, "Submitted at: %s\n", feedback.CreatedAt.Format("2006-01-02 15:04:05 MST"))
	}
	return b.String()
}

func renderFailureBody(cause error, req SubmitRequest) string {
	var b strings.Builder
	b.WriteString("Your feedback could not be submitted.\n\n")
	fmt.Fprintf(&b, "Error type: %s\n", Classify(cause))
	fmt.Fprintf(&b, "Error: %v\n\n", cause)
	b.WriteString("Request:\n")
	fmt.Fprintf(&b, "  Employee ID: %d\n", req.EmployeeID)
	fmt.Fprintf(&b, "  Merchant ID: %d\n", req.MerchantID)
	fmt.Fprintf(&b, "  Device ID: %d\n", req.DeviceID)
	fmt.Fprintf(&b, "  Rating: %.1f\n", req.Rating)
	if req.Comment != "" {
		fmt.Fprintf(&b, "  Comment: %s\n", req.Comment)
	}
	if req.ImageRef != "" {
		fmt.Fprintf(&b, "  Image: %s\n", req.ImageRef)
	}
	fmt.Fprintf(&b, "  Answers supplied: %d\n", len(req.Answers))
	return b.String()
}
