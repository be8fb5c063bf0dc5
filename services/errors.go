package services

import (
	"errors"
	"fmt"
)

// EntityKind names the referenced entity in a NotFoundError
type EntityKind string

const (
	EntityEmployee EntityKind = "Employee"
	EntityMerchant EntityKind = "Merchant"
	EntityDevice   EntityKind = "Device"
	EntityFeedback EntityKind = "Feedback"
)

// BusinessRule names a rule that holds across several existing entities
type BusinessRule string

const RuleDeviceNotAssignedToMerchant BusinessRule = "DeviceNotAssignedToMerchant"

// ErrorClass is the coarse category a caller needs to pick a response status.
type ErrorClass int

const (
	ClassUnknown ErrorClass = iota
	ClassNotFound
	ClassBusinessRule
	ClassValidation
	ClassInfrastructure
)

func (c ErrorClass) String() string {
	switch c {
	case ClassNotFound:
		return "not_found"
	case ClassBusinessRule:
		return "business_rule"
	case ClassValidation:
		return "validation"
	case ClassInfrastructure:
		return "infrastructure"
	default:
		return "unknown"
	}
}

// NotFoundError means a referenced entity does not exist
type NotFoundError struct {
	Kind EntityKind
	ID   uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found with id %d", e.Kind, e.ID)
}

// BusinessRuleError means the entities exist but their combination is invalid
type BusinessRuleError struct {
	Rule       BusinessRule
	DeviceID   uint
	MerchantID uint
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("%s: device %d is not assigned to merchant %d", e.Rule, e.DeviceID, e.MerchantID)
}

// ValidationError reports malformed input to a lower-level create call
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// PersistenceError wraps a store failure. QuestionID is set when an
// association write failed.
type PersistenceError struct {
	Op         string
	QuestionID uint
	Err        error
}

func (e *PersistenceError) Error() string {
	if e.QuestionID != 0 {
		return fmt.Sprintf("%s (question %d): %v", e.Op, e.QuestionID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotificationError means the notifier reported a failed send. The feedback
// it concerns is already persisted.
type NotificationError struct {
	Recipient string
	Subject   string
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("failed to send %q notification to %s", e.Subject, e.Recipient)
}

// FailureNoticeError wraps the original workflow error when the failure
// notice about it could not be delivered. Unwrap yields the original error.
type FailureNoticeError struct {
	Cause  error
	Notice error
}

func (e *FailureNoticeError) Error() string {
	return fmt.Sprintf("%v (failure notice not delivered: %v)", e.Cause, e.Notice)
}

func (e *FailureNoticeError) Unwrap() error { return e.Cause }

// Classify maps a workflow error to its class.
func Classify(err error) ErrorClass {
	var (
		notFound     *NotFoundError
		rule         *BusinessRuleError
		validation   *ValidationError
		persistence  *PersistenceError
		notification *NotificationError
	)
	switch {
	case err == nil:
		return ClassUnknown
	case errors.As(err, &notFound):
		return ClassNotFound
	case errors.As(err, &rule):
		return ClassBusinessRule
	case errors.As(err, &validation):
		return ClassValidation
	case errors.As(err, &persistence), errors.As(err, &notification):
		return ClassInfrastructure
	default:
		return ClassUnknown
	}
}
