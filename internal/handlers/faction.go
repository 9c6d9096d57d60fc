package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/projektl/projekt-l-backend/internal/repos"
)

type FactionHandler struct {
	factionRepo repos.FactionRepo
}

func NewFactionHandler(factionRepo repos.FactionRepo) *FactionHandler {
	return &FactionHandler{factionRepo: factionRepo}
}

// List returns the seeded faction catalog. Public; the onboarding UI needs
// it before the user is authenticated.
func (fh *FactionHandler) List(c *gin.Context) {
	factions, err := fh.factionRepo.GetAll(c.Request.Context(), nil)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "faction_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"factions": factions})
}
