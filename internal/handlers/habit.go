package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/projektl/projekt-l-backend/internal/services"
)

type HabitHandler struct {
	habitService services.HabitService
}

func NewHabitHandler(habitService services.HabitService) *HabitHandler {
	return &HabitHandler{habitService: habitService}
}

func (hh *HabitHandler) List(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	habits, err := hh.habitService.List(c.Request.Context(), userID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "habit_list_failed", err)
		return
	}
	RespondOK(c, gin.H{"habits": habits})
}

func (hh *HabitHandler) Create(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	var input services.CreateHabitInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	habit, err := hh.habitService.Create(c.Request.Context(), userID, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, habit)
}

func (hh *HabitHandler) Complete(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}
	result, err := hh.habitService.Complete(c.Request.Context(), userID, habitID)
	if err != nil {
		respondHabitError(c, err)
		return
	}
	RespondOK(c, result)
}

func (hh *HabitHandler) Delete(c *gin.Context) {
	userID, ok := authedUser(c)
	if !ok {
		return
	}
	habitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid habit id"})
		return
	}
	if err := hh.habitService.Delete(c.Request.Context(), userID, habitID); err != nil {
		respondHabitError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func respondHabitError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, services.ErrHabitNotOwned):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		RespondError(c, http.StatusInternalServerError, "habit_operation_failed", err)
	}
}
