// file: controllers/attendant_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go-hackhub/middleware"
	"go-hackhub/services"
)

// AttendantController serves invites and attendant records.
type AttendantController struct {
	Attendants *services.AttendantService
}

// NewAttendantController creates an AttendantController.
func NewAttendantController(a *services.AttendantService) *AttendantController {
	return &AttendantController{Attendants: a}
}

// Invite sends an invite from the logged in client to :attendantId.
func (ac *AttendantController) Invite(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	a, err := ac.Attendants.Invite(c.Request.Context(), id, c.Param("attendantId"))
	if err != nil {
		respondError(c, "AttendantController.Invite", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// Respond answers :inviteId with ?status=accepted|declined|pending.
func (ac *AttendantController) Respond(c *gin.Context) {
	status := c.Query("status")
	if status == "" {
		badRequest(c, "status query parameter is required")
		return
	}

	id, _ := middleware.CurrentIdentity(c)
	a, err := ac.Attendants.Respond(c.Request.Context(), id, c.Param("inviteId"), status)
	if err != nil {
		respondError(c, "AttendantController.Respond", err)
		return
	}
	c.JSON(http.StatusOK, a)
}

// ListForUser returns the attendant records of :userId.
func (ac *AttendantController) ListForUser(c *gin.Context) {
	views, err := ac.Attendants.ListForUser(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, "AttendantController.ListForUser", err)
		return
	}
	c.JSON(http.StatusOK, views)
}
