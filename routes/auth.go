package routes

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"device-feedback-server/middleware"
	"device-feedback-server/utils"
)

// RegisterAuthRoutes adds login and current-employee endpoints
func RegisterAuthRoutes(router *gin.RouterGroup, deps Deps) {
	router.POST("/login", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email" binding:"required,email"`
			Password string `json:"password" binding:"required"`
		}

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Invalid request",
				"message": err.Error(),
			})
			return
		}

		email := strings.ToLower(strings.TrimSpace(req.Email))
		employee, err := deps.Employees.FindByEmail(c.Request.Context(), email)
		if err != nil {
			log.Printf("❌ Employee lookup failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": "Failed to look up employee",
			})
			return
		}
		if employee == nil || !utils.CheckPasswordHash(req.Password, employee.PasswordHash) {
			log.Printf("❌ Invalid credentials for %s", email)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Invalid credentials",
				"message": "Email or password is incorrect",
			})
			return
		}

		token, err := utils.GenerateToken(employee.ID, string(employee.Type), deps.JWTSecret, deps.TokenExpiry)
		if err != nil {
			log.Printf("❌ Token generation failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"message": "Failed to generate authentication token",
			})
			return
		}

		log.Printf("✅ Employee signed in: %d", employee.ID)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"employee":   employee,
				"token":      token,
				"expires_in": int(deps.TokenExpiry.Seconds()),
			},
		})
	})

	router.GET("/me", middleware.AuthMiddleware(deps.JWTSecret, deps.Employees), func(c *gin.Context) {
		employee, _ := middleware.CurrentEmployee(c)
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data": gin.H{
				"employee": employee,
				"roles":    employee.Roles(),
			},
		})
	})
}
