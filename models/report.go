package models

// EmployeeFeedbackCount is one row of the feedback-count-per-employee report
type EmployeeFeedbackCount struct {
	EmployeeID    uint   `json:"employee_id"`
	Email         string `json:"email"`
	FeedbackCount int64  `json:"feedback_count"`
}

// DeviceAverageRating is one row of the average-rating-per-device report
type DeviceAverageRating struct {
	DeviceID      uint    `json:"device_id"`
	AverageRating float64 `json:"average_rating"`
}

// DeviceFeedbackCount is one row of the feedback-count-per-device report
type DeviceFeedbackCount struct {
	DeviceID      uint  `json:"device_id"`
	FeedbackCount int64 `json:"feedback_count"`
}

// IncompleteFeedback is a feedback whose association set is smaller than the catalog
type IncompleteFeedback struct {
	FeedbackID       uint  `json:"feedback_id"`
	AssociationCount int64 `json:"association_count"`
}
