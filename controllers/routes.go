// file: controllers/routes.go
package controllers

import (
	"github.com/gin-gonic/gin"
	"go-hackhub/middleware"
)

// Controllers groups every HTTP handler of the API.
type Controllers struct {
	Auth          *AuthController
	Users         *UserController
	Hackathons    *HackathonController
	Attendants    *AttendantController
	Notifications *NotificationController
}

// RegisterRoutes mounts the API on router. Session middleware must already be installed.
func RegisterRoutes(router gin.IRouter, ctl Controllers) {
	orgOnly := middleware.OrganizationRequired()
	clientOnly := middleware.ClientRequired()

	router.GET("/health", Health)

	// Public routes
	router.POST("/signup", ctl.Auth.Signup)
	router.POST("/login", ctl.Auth.Login)
	router.POST("/logout", middleware.AuthRequired, ctl.Auth.Logout)

	users := router.Group("/users")
	{
		users.GET("/exist", ctl.Users.Exists)
		users.GET("/ranking", ctl.Users.Ranking)
		users.GET("/me", middleware.AuthRequired, ctl.Users.Me)
		users.PUT("/me", middleware.AuthRequired, ctl.Users.UpdateMe)
		users.GET("/:username", ctl.Users.Profile)
	}

	hackathons := router.Group("/hackathons")
	{
		hackathons.GET("", ctl.Hackathons.List)
		hackathons.GET("/:id", ctl.Hackathons.Get)
		hackathons.GET("/:id/qrcode", ctl.Hackathons.QRCode)
		hackathons.GET("/:id/attendants", ctl.Hackathons.ListAttendants)
		hackathons.POST("", orgOnly, ctl.Hackathons.Create)
		hackathons.PUT("/:id/sub", clientOnly, ctl.Hackathons.Subscribe)
		hackathons.PUT("/:id/unsub", clientOnly, ctl.Hackathons.Unsubscribe)
		hackathons.PUT("/:id/status", orgOnly, ctl.Hackathons.UpdateStatus)
	}

	router.GET("/organizations/:username/hackathons", ctl.Hackathons.ListByOrganization)

	attendants := router.Group("/attendants")
	{
		attendants.POST("/:attendantId/invite", clientOnly, ctl.Attendants.Invite)
		attendants.PUT("/invites/:inviteId", clientOnly, ctl.Attendants.Respond)
		attendants.GET("/:userId", middleware.AuthRequired, ctl.Attendants.ListForUser)
	}

	if ctl.Notifications != nil {
		router.GET("/notifications", middleware.AuthRequired, ctl.Notifications.Connect)
	}
}
