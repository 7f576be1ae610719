// file: controllers/hackathon_controller.go
package controllers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go-hackhub/logger"
	"go-hackhub/middleware"
	"go-hackhub/models"
	"go-hackhub/services"
)

// defaultQRSize is the edge length in pixels of share codes.
const defaultQRSize = 256

// HackathonController serves the hackathon lifecycle.
type HackathonController struct {
	Hackathons *services.HackathonService
	Attendants *services.AttendantService
}

// NewHackathonController creates a HackathonController.
func NewHackathonController(h *services.HackathonService, a *services.AttendantService) *HackathonController {
	return &HackathonController{Hackathons: h, Attendants: a}
}

type hackathonRequest struct {
	Name                   string                        `json:"name" binding:"required"`
	Description            string                        `json:"description"`
	StartDate              time.Time                     `json:"startDate"`
	EndDate                time.Time                     `json:"endDate"`
	Location               models.Location               `json:"location"`
	Prize                  models.Prize                  `json:"prize"`
	AttendantsRequirements models.AttendantsRequirements `json:"attendantsRequirements"`
}

// hackathonResponse adds the capacity hint to a hackathon.
type hackathonResponse struct {
	*models.Hackathon
	Full bool `json:"full"`
}

func present(h *models.Hackathon) hackathonResponse {
	return hackathonResponse{Hackathon: h, Full: h.Full()}
}

// List returns hackathons filtered by city, country, name and status.
func (hc *HackathonController) List(c *gin.Context) {
	f := models.HackathonFilter{
		City:    c.Query("city"),
		Country: c.Query("country"),
		Name:    c.Query("name"),
	}
	if raw := c.Query("status"); raw != "" {
		st, ok := models.ParseStatus(raw)
		if !ok {
			badRequest(c, "unknown status "+strconv.Quote(raw))
			return
		}
		f.Status = st
	}

	list, err := hc.Hackathons.List(c.Request.Context(), f)
	if err != nil {
		respondError(c, "HackathonController.List", err)
		return
	}
	c.JSON(http.StatusOK, presentAll(list))
}

func presentAll(list []models.Hackathon) []hackathonResponse {
	out := make([]hackathonResponse, 0, len(list))
	for i := range list {
		out = append(out, present(&list[i]))
	}
	return out
}

// Get returns one hackathon with its attendants.
func (hc *HackathonController) Get(c *gin.Context) {
	h, err := hc.Hackathons.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "HackathonController.Get", err)
		return
	}
	c.JSON(http.StatusOK, present(h))
}

// QRCode renders a PNG share code of the hackathon page. ?size= overrides the edge length.
func (hc *HackathonController) QRCode(c *gin.Context) {
	size := defaultQRSize
	if raw := c.Query("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "size must be an integer")
			return
		}
		size = n
	}

	png, err := hc.Hackathons.ShareCode(c.Request.Context(), c.Param("id"), size)
	if err != nil {
		respondError(c, "HackathonController.QRCode", err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// ListAttendants lists the attendants of a hackathon with their public profiles.
func (hc *HackathonController) ListAttendants(c *gin.Context) {
	views, err := hc.Attendants.ListForHackathon(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, "HackathonController.ListAttendants", err)
		return
	}
	c.JSON(http.StatusOK, views)
}

// Create stores a new hackathon owned by the logged in organization.
func (hc *HackathonController) Create(c *gin.Context) {
	var req hackathonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid hackathon: "+err.Error())
		return
	}

	id, _ := middleware.CurrentIdentity(c)
	h, err := hc.Hackathons.Create(c.Request.Context(), id, services.HackathonInput{
		Name:                   req.Name,
		Description:            req.Description,
		StartDate:              req.StartDate,
		EndDate:                req.EndDate,
		Location:               req.Location,
		Prize:                  req.Prize,
		AttendantsRequirements: req.AttendantsRequirements,
	})
	if err != nil {
		respondError(c, "HackathonController.Create", err)
		return
	}
	c.JSON(http.StatusCreated, present(h))
}

// Subscribe adds the logged in client to the hackathon.
func (hc *HackathonController) Subscribe(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	h, err := hc.Hackathons.Subscribe(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, "HackathonController.Subscribe", err)
		return
	}
	c.JSON(http.StatusOK, present(h))
}

// Unsubscribe removes the logged in client from the hackathon.
func (hc *HackathonController) Unsubscribe(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	h, err := hc.Hackathons.Unsubscribe(c.Request.Context(), id, c.Param("id"))
	if err != nil {
		respondError(c, "HackathonController.Unsubscribe", err)
		return
	}
	c.JSON(http.StatusOK, present(h))
}

// UpdateStatus moves the hackathon to ?action=pending|started|finished.
func (hc *HackathonController) UpdateStatus(c *gin.Context) {
	action := strings.TrimSpace(c.Query("action"))
	if action == "" {
		badRequest(c, "action query parameter is required")
		return
	}

	id, _ := middleware.CurrentIdentity(c)
	h, err := hc.Hackathons.UpdateStatus(c.Request.Context(), id, c.Param("id"), action)
	if err != nil {
		respondError(c, "HackathonController.UpdateStatus", err)
		return
	}
	logger.Info.Printf("[HackathonController.UpdateStatus] Hackathon %s is now %s", h.ID, h.Status)
	c.JSON(http.StatusOK, present(h))
}

// ListByOrganization returns the hackathons owned by :username.
func (hc *HackathonController) ListByOrganization(c *gin.Context) {
	list, err := hc.Hackathons.ListByOrganization(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, "HackathonController.ListByOrganization", err)
		return
	}
	c.JSON(http.StatusOK, presentAll(list))
}
