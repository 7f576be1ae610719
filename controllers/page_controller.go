// file: controllers/page_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go-hackhub/logger"
	"go-hackhub/middleware"
	"go-hackhub/websocket"
)

// Health answers liveness probes.
func Health(c *gin.Context) {
	logger.Debug.Println("[Health] Health check requested")
	c.String(http.StatusOK, "OK")
}

// NotificationController upgrades authenticated requests to the relay.
type NotificationController struct {
	Hub *websocket.Hub
}

// NewNotificationController creates a NotificationController.
func NewNotificationController(hub *websocket.Hub) *NotificationController {
	return &NotificationController{Hub: hub}
}

// Connect upgrades the request and registers the caller with the hub.
func (nc *NotificationController) Connect(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	logger.Info.Printf("[NotificationController.Connect] %s opening relay connection", id.Username)
	nc.Hub.ServeWs(c.Writer, c.Request, websocket.Member{
		Username:     id.Username,
		Organization: id.IsOrganization(),
	})
}
