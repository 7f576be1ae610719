// file: controllers/user_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go-hackhub/middleware"
	"go-hackhub/models"
	"go-hackhub/services"
)

// UserController serves profiles and the ranking.
type UserController struct {
	Users *services.UserService
}

// NewUserController creates a UserController.
func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

type profileRequest struct {
	Name        *string              `json:"name"`
	Surname     *string              `json:"surname"`
	Email       *string              `json:"email"`
	Avatar      *string              `json:"avatar"`
	Skills      *[]string            `json:"skills"`
	Experiences *[]models.Experience `json:"experiences"`
}

// Exists answers whether the username is taken. The match is case-sensitive.
func (uc *UserController) Exists(c *gin.Context) {
	username := c.Query("username")
	if username == "" {
		badRequest(c, "username query parameter is required")
		return
	}
	ok, err := uc.Users.Exists(c.Request.Context(), username)
	if err != nil {
		respondError(c, "UserController.Exists", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exists": ok})
}

// Me returns the profile of the logged in user.
func (uc *UserController) Me(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	u, err := uc.Users.GetByID(c.Request.Context(), id.UserID)
	if err != nil {
		respondError(c, "UserController.Me", err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

// UpdateMe edits the profile of the logged in user.
func (uc *UserController) UpdateMe(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid profile: "+err.Error())
		return
	}

	id, _ := middleware.CurrentIdentity(c)
	u, err := uc.Users.UpdateProfile(c.Request.Context(), id.UserID, services.ProfileUpdate{
		Name:        req.Name,
		Surname:     req.Surname,
		Email:       req.Email,
		Avatar:      req.Avatar,
		Skills:      req.Skills,
		Experiences: req.Experiences,
	})
	if err != nil {
		respondError(c, "UserController.UpdateMe", err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}

// Ranking lists CLIENT users by wins then participations.
func (uc *UserController) Ranking(c *gin.Context) {
	users, err := uc.Users.Ranking(c.Request.Context())
	if err != nil {
		respondError(c, "UserController.Ranking", err)
		return
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	c.JSON(http.StatusOK, out)
}

// Profile returns the public profile of :username.
func (uc *UserController) Profile(c *gin.Context) {
	u, err := uc.Users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, "UserController.Profile", err)
		return
	}
	c.JSON(http.StatusOK, u.Public())
}
