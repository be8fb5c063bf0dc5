package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterReportRoutes adds the aggregate reports. Callers gate the group to
// admins.
func RegisterReportRoutes(router *gin.RouterGroup, deps Deps) {
	router.GET("/feedback-count/employees", func(c *gin.Context) {
		rows, err := deps.Reports.FeedbackCountByEmployee(c.Request.Context())
		if err != nil {
			respondError(c, err, nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
	})

	router.GET("/average-rating/devices", func(c *gin.Context) {
		rows, err := deps.Reports.AverageRatingByDevice(c.Request.Context())
		if err != nil {
			respondError(c, err, nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
	})

	router.GET("/feedback-count/devices", func(c *gin.Context) {
		rows, err := deps.Reports.FeedbackCountByDevice(c.Request.Context())
		if err != nil {
			respondError(c, err, nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": rows})
	})
}
