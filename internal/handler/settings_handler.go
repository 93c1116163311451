package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ms0ur/timeflow/internal/middleware"
	"github.com/ms0ur/timeflow/internal/service"
)

type SettingsHandler struct {
	settingsService *service.SettingsService
}

type updateSettingsRequest struct {
	WeekStartDay *int `json:"weekStartDay"`
	DayStartHour *int `json:"dayStartHour"`
}

func NewSettingsHandler(settingsService *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	userID := middleware.UserID(c)
	settings, apiErr := h.settingsService.Get(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	settings, apiErr := h.settingsService.Update(c.Request.Context(), userID, service.UpdateSettingsInput{
		WeekStartDay: req.WeekStartDay,
		DayStartHour: req.DayStartHour,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": settings})
}
