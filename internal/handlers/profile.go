package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projektl/projekt-l-backend/internal/services"
)

type ProfileHandler struct {
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

func (ph *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	view, err := ph.profileService.GetView(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "profile_load_failed", err)
		return
	}
	RespondOK(c, view)
}
