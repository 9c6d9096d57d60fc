package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/projektl/projekt-l-backend/internal/requestdata"
	"github.com/projektl/projekt-l-backend/internal/services"
	"github.com/projektl/projekt-l-backend/internal/types"
)

type QuestHandler struct {
	questService    services.QuestService
	questGenService services.QuestGenService
}

func NewQuestHandler(questService services.QuestService, questGenService services.QuestGenService) *QuestHandler {
	return &QuestHandler{
		questService:    questService,
		questGenService: questGenService,
	}
}

func (qh *QuestHandler) List(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	quests, err := qh.questService.ListActive(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "quest_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"quests": quests})
}

func (qh *QuestHandler) Create(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	var input services.CreateQuestInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	quest, err := qh.questService.Create(c.Request.Context(), userID, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, quest)
}

// Generate asks the model for new quests. quest_type defaults to daily and
// count to the user's preference.
func (qh *QuestHandler) Generate(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	var req struct {
		QuestType string `json:"quest_type"`
		Count     int    `json:"count"`
	}
	// Empty body is fine; defaults cover it.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.QuestType == "" {
		req.QuestType = types.QuestTypeDaily
	}

	result, err := qh.questGenService.Generate(c.Request.Context(), userID, req.QuestType, req.Count)
	if err != nil {
		var pe *services.ParseError
		if errors.As(err, &pe) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "model returned an unusable response"})
			return
		}
		RespondError(c, http.StatusInternalServerError, "quest_generation_failed", err)
		return
	}
	RespondOK(c, gin.H{"success": true, "result": result})
}

func (qh *QuestHandler) Complete(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	questID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quest id"})
		return
	}
	result, err := qh.questService.Complete(c.Request.Context(), userID, questID)
	if err != nil {
		respondQuestError(c, err)
		return
	}
	RespondOK(c, result)
}

func (qh *QuestHandler) Delete(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	questID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid quest id"})
		return
	}
	if err := qh.questService.Delete(c.Request.Context(), userID, questID); err != nil {
		respondQuestError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (qh *QuestHandler) GetPreferences(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	prefs, err := qh.questService.GetPreferences(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "preferences_load_failed", err)
		return
	}
	RespondOK(c, prefs)
}

func (qh *QuestHandler) PutPreferences(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	var prefs types.QuestPreferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := qh.questService.PutPreferences(c.Request.Context(), userID, &prefs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	RespondOK(c, gin.H{"success": true})
}

func respondQuestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrQuestNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrQuestNotOwned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrQuestAlreadyClosed):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		RespondError(c, http.StatusInternalServerError, "quest_operation_failed", err)
	}
}

// authedUser pulls the user from request data; writes the 401 itself so
// handlers can early-return.
func authedUser(c *gin.Context) (uuid.UUID, bool) {
	userID := requestdata.UserID(c.Request.Context())
	if userID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", fmt.Errorf("not authenticated"))
		return uuid.Nil, false
	}
	return userID, true
}
