package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"flash-backend/internal/shared/server/middleware"
	"flash-backend/internal/shared/server/respond"
)

type meResponse struct {
	UserID  string `json:"userId"`
	IsGuest bool   `json:"isGuest"`
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
}

// registerMeRoutes attaches the /me endpoint.
func registerMeRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", meHandler)
}

// meHandler echoes the identity flash sessions are keyed on.
func meHandler(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
		return
	}
	respond.OK(c, meResponse{
		UserID:  userID,
		IsGuest: middleware.IsGuest(c),
		Email:   middleware.UserEmailFromContext(c),
		Name:    middleware.UserNameFromContext(c),
	})
}
