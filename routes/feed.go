package routes

import (
	"github.com/gin-gonic/gin"

	"device-feedback-server/middleware"
	ws "device-feedback-server/websocket"
)

// RegisterFeedRoutes adds the live feedback websocket
func RegisterFeedRoutes(router *gin.RouterGroup, deps Deps) {
	router.GET("/feedback", func(c *gin.Context) {
		employee, _ := middleware.CurrentEmployee(c)
		ws.ServeWebSocket(deps.Hub, deps.Upgrader, c.Writer, c.Request, employee.ID)
	})
}
