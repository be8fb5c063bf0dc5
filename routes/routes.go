package routes

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"device-feedback-server/middleware"
	"device-feedback-server/models"
	"device-feedback-server/services"
	ws "device-feedback-server/websocket"
)

// EmployeeDirectory is what login and token checks need from employee storage
type EmployeeDirectory interface {
	FindByID(ctx context.Context, id uint) (*models.Employee, error)
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
}

// Deps are the collaborators the API is built from. Uploader may be nil when
// image storage is not configured.
type Deps struct {
	Workflow    *services.FeedbackWorkflow
	Reports     *services.ReportService
	Employees   EmployeeDirectory
	Uploader    services.ImageUploader
	Hub         *ws.Hub
	Upgrader    *gorillaws.Upgrader
	RateLimiter *middleware.RateLimiter
	JWTSecret   string
	TokenExpiry time.Duration
}

// RegisterRoutes mounts the health check and the /api/v1 tree
func RegisterRoutes(router *gin.Engine, deps Deps) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Device Feedback Server is running",
			"time":    time.Now().UTC(),
		})
	})

	api := router.Group("/api/v1")
	if deps.RateLimiter != nil {
		api.Use(middleware.RateLimitMiddleware(deps.RateLimiter))
	}

	RegisterAuthRoutes(api.Group("/auth"), deps)

	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware(deps.JWTSecret, deps.Employees))
	RegisterFeedbackRoutes(protected.Group("/feedback"), deps)

	reports := api.Group("/reports")
	reports.Use(middleware.AuthMiddleware(deps.JWTSecret, deps.Employees), middleware.RequireRole(models.RoleAdmin))
	RegisterReportRoutes(reports, deps)

	if deps.Hub != nil {
		if deps.Upgrader == nil {
			deps.Upgrader = ws.NewUpgrader(nil)
		}
		feed := api.Group("/ws")
		feed.Use(middleware.WebSocketAuthMiddleware(deps.JWTSecret, deps.Employees), middleware.RequireRole(models.RoleAdmin))
		RegisterFeedRoutes(feed, deps)
	}
}

// statusFor maps a workflow error class to an HTTP status
func statusFor(err error) int {
	switch services.Classify(err) {
	case services.ClassNotFound:
		return http.StatusNotFound
	case services.ClassBusinessRule:
		return http.StatusUnprocessableEntity
	case services.ClassValidation:
		return http.StatusBadRequest
	case services.ClassInfrastructure:
		var ne *services.NotificationError
		if errors.As(err, &ne) {
			return http.StatusBadGateway
		}
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes a typed error body
func respondError(c *gin.Context, err error, extra gin.H) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", c.Request.Method, c.FullPath(), err)
	}

	body := gin.H{
		"success": false,
		"error":   services.Classify(err).String(),
		"message": err.Error(),
	}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(status, body)
}
