package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"device-feedback-server/models"
	"device-feedback-server/utils"
)

// Context keys set by the auth middleware
const (
	ContextEmployee   = "employee"
	ContextEmployeeID = "employee_id"
)

// EmployeeLookup resolves the employee a token was issued to
type EmployeeLookup interface {
	FindByID(ctx context.Context, id uint) (*models.Employee, error)
}

// AuthMiddleware validates bearer tokens and sets the employee in context
func AuthMiddleware(secret string, employees EmployeeLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Authorization header required",
				"message": "Please provide a valid token",
			})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		if tokenString == authHeader {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid token format",
				"message": "Token must be in format: Bearer <token>",
			})
			c.Abort()
			return
		}

		authenticate(c, tokenString, secret, employees)
	}
}

// WebSocketAuthMiddleware reads the token from the query string since
// browsers cannot set headers on websocket upgrades
func WebSocketAuthMiddleware(secret string, employees EmployeeLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.Query("token")
		if tokenString == "" {
			log.Printf("🔌 WebSocketAuthMiddleware: No token in query parameters")
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Token required",
				"message": "Please provide a valid token in query parameters",
			})
			c.Abort()
			return
		}

		authenticate(c, tokenString, secret, employees)
	}
}

func authenticate(c *gin.Context, tokenString, secret string, employees EmployeeLookup) {
	claims, err := utils.VerifyToken(tokenString, secret)
	if err != nil {
		log.Printf("🔍 Auth: token rejected for %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Invalid token",
			"message": "Token is invalid or expired",
		})
		c.Abort()
		return
	}

	employee, err := employees.FindByID(c.Request.Context(), claims.EmployeeID)
	if err != nil {
		log.Printf("❌ Auth: employee lookup failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Authentication failed",
			"message": "Could not load employee",
		})
		c.Abort()
		return
	}
	if employee == nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "Employee not found",
			"message": "Employee associated with token not found",
		})
		c.Abort()
		return
	}

	c.Set(ContextEmployee, employee)
	c.Set(ContextEmployeeID, employee.ID)
	c.Next()
}

// RequireRole rejects employees whose type does not grant role. Must run
// after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		employee, ok := CurrentEmployee(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		if !employee.HasRole(role) {
			log.Printf("🚫 Employee %d lacks %s for %s", employee.ID, role, c.FullPath())
			c.JSON(http.StatusForbidden, gin.H{
				"error":   "Forbidden",
				"message": "Insufficient role",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentEmployee returns the authenticated employee
func CurrentEmployee(c *gin.Context) (*models.Employee, bool) {
	v, ok := c.Get(ContextEmployee)
	if !ok {
		return nil, false
	}
	employee, ok := v.(*models.Employee)
	return employee, ok && employee != nil
}
