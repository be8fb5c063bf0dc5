package routes

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"device-feedback-server/middleware"
	"device-feedback-server/models"
	"device-feedback-server/services"
)

// AnswerCount is the number of answers a submission must carry
const AnswerCount = 10

type answerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer" binding:"required"`
}

type submitFeedbackRequest struct {
	EmployeeID uint            `json:"employee_id"`
	MerchantID uint            `json:"merchant_id" binding:"required"`
	DeviceID   uint            `json:"device_id" binding:"required"`
	Rating     float64         `json:"rating" binding:"required,min=1,max=5"`
	Comment    string          `json:"comment" binding:"max=2000"`
	ImageRef   string          `json:"image_ref" binding:"omitempty,url"`
	Answers    []answerRequest `json:"answers" binding:"required,len=10,dive"`
}

// RegisterFeedbackRoutes adds submission and read endpoints. The group must
// already be authenticated.
func RegisterFeedbackRoutes(router *gin.RouterGroup, deps Deps) {
	router.POST("", submitFeedback(deps))
	router.POST("/images", uploadFeedbackImage(deps))
	router.GET("", listFeedback(deps))
	router.GET("/:id", getFeedback(deps))
}

func submitFeedback(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, _ := middleware.CurrentEmployee(c)

		var req submitFeedbackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error":   "validation",
				"message": err.Error(),
			})
			return
		}

		if req.EmployeeID == 0 {
			req.EmployeeID = principal.ID
		}
		if req.EmployeeID != principal.ID && !principal.IsAdmin() {
			c.JSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "forbidden",
				"message": "Employees may only submit feedback for themselves",
			})
			return
		}

		answers := make([]services.Answer, len(req.Answers))
		for i, a := range req.Answers {
			answers[i] = services.Answer{QuestionID: a.QuestionID, Text: a.Answer}
		}

		res, err := deps.Workflow.Submit(c.Request.Context(), services.SubmitRequest{
			EmployeeID: req.EmployeeID,
			MerchantID: req.MerchantID,
			DeviceID:   req.DeviceID,
			Submission: services.Submission{
				Rating:   req.Rating,
				Comment:  req.Comment,
				ImageRef: req.ImageRef,
				Answers:  answers,
			},
			Principal: services.Principal{EmployeeID: principal.ID, Email: principal.Email},
		})
		if err != nil {
			extra := gin.H{"state": res.State}
			if res.Feedback != nil {
				extra["feedback_id"] = res.Feedback.ID
			}
			respondError(c, err, extra)
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Feedback submitted successfully",
			"data":    res.Feedback,
		})
	}
}

func uploadFeedbackImage(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		if deps.Uploader == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Image storage not configured"})
			return
		}
		principal, _ := middleware.CurrentEmployee(c)

		header, err := c.FormFile("image")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Missing image file"})
			return
		}
		if header.Size <= 0 || header.Size > services.MaxImageSize || !services.ValidImageName(header.Filename) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Image must be jpg, png or webp and at most 5MB"})
			return
		}

		file, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Could not read image"})
			return
		}
		defer file.Close()

		url, err := deps.Uploader.Upload(c.Request.Context(), file, header.Filename, principal.ID)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Image upload failed"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    gin.H{"image_ref": url},
		})
	}
}

func listFeedback(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		filter, err := parseFeedbackFilter(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation", "message": err.Error()})
			return
		}

		list, err := deps.Reports.ListFeedback(c.Request.Context(), filter)
		if err != nil {
			respondError(c, err, nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    list,
		})
	}
}

func getFeedback(deps Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "validation", "message": "Invalid feedback ID"})
			return
		}

		feedback, err := deps.Reports.GetFeedback(c.Request.Context(), uint(id))
		if err != nil {
			respondError(c, err, nil)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    feedback,
		})
	}
}

func parseFeedbackFilter(c *gin.Context) (models.FeedbackFilter, error) {
	var filter models.FeedbackFilter

	for _, p := range []struct {
		name string
		dst  **uint
	}{
		{"merchant_id", &filter.MerchantID},
		{"employee_id", &filter.EmployeeID},
		{"device_id", &filter.DeviceID},
	} {
		raw := c.Query(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid %s: %q", p.name, raw)
		}
		id := uint(v)
		*p.dst = &id
	}

	if raw := c.Query("rating"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return filter, fmt.Errorf("invalid rating: %q", raw)
		}
		filter.Rating = &v
	}

	return filter, nil
}
