// file: controllers/auth_controller.go
package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go-hackhub/logger"
	"go-hackhub/middleware"
	"go-hackhub/models"
	"go-hackhub/services"
)

// AuthController handles signup, login and logout.
type AuthController struct {
	Users *services.UserService
}

// NewAuthController creates an AuthController.
func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{Users: users}
}

type signupRequest struct {
	Username string   `json:"username" binding:"required"`
	Password string   `json:"password" binding:"required"`
	Name     string   `json:"name"`
	Surname  string   `json:"surname"`
	Email    string   `json:"email"`
	Avatar   string   `json:"avatar"`
	Role     string   `json:"role" binding:"required"`
	Skills   []string `json:"skills"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup creates an account and logs it in.
func (ac *AuthController) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username, password and role are required")
		return
	}

	u, err := ac.Users.Signup(c.Request.Context(), services.SignupInput{
		Username: req.Username,
		Password: req.Password,
		Name:     req.Name,
		Surname:  req.Surname,
		Email:    req.Email,
		Avatar:   req.Avatar,
		Role:     models.Role(req.Role),
		Skills:   req.Skills,
	})
	if err != nil {
		respondError(c, "AuthController.Signup", err)
		return
	}

	if !ac.startSession(c, u) {
		return
	}
	c.JSON(http.StatusCreated, u.Public())
}

// Login authenticates the credentials and starts a session. A failed login
// leaves any existing session untouched.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "username and password are required")
		return
	}

	u, err := ac.Users.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respondError(c, "AuthController.Login", err)
		return
	}

	if !ac.startSession(c, u) {
		return
	}
	logger.Info.Printf("[AuthController.Login] User %s logged in", u.Username)
	c.JSON(http.StatusOK, u.Public())
}

// Logout clears the session.
func (ac *AuthController) Logout(c *gin.Context) {
	id, _ := middleware.CurrentIdentity(c)
	if err := middleware.EndSession(c); err != nil {
		respondError(c, "AuthController.Logout", err)
		return
	}
	logger.Info.Printf("[AuthController.Logout] User %s logged out", id.Username)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (ac *AuthController) startSession(c *gin.Context, u *models.User) bool {
	id := models.Identity{UserID: u.ID, Username: u.Username, Role: u.Role}
	if err := middleware.StartSession(c, id); err != nil {
		respondError(c, "AuthController.startSession", err)
		return false
	}
	return true
}
