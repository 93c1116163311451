package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ms0ur/timeflow/internal/middleware"
	"github.com/ms0ur/timeflow/internal/model"
	"github.com/ms0ur/timeflow/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
	statsService   *service.StatsService
}

type switchRequest struct {
	ToActivityID string  `json:"toActivityId"`
	Timestamp    *int64  `json:"timestamp"`
	LocalID      *string `json:"localId"`
}

type stopRequest struct {
	Timestamp *int64  `json:"timestamp"`
	LocalID   *string `json:"localId"`
}

type syncRequest struct {
	Events []model.QueueEvent `json:"events"`
}

func NewSessionHandler(sessionService *service.SessionService, statsService *service.StatsService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService, statsService: statsService}
}

func (h *SessionHandler) Switch(c *gin.Context) {
	var req switchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	result, apiErr := h.sessionService.Switch(c.Request.Context(), userID, service.SwitchInput{
		ToActivityID: req.ToActivityID,
		Timestamp:    req.Timestamp,
		LocalID:      req.LocalID,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) Stop(c *gin.Context) {
	var req stopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	result, apiErr := h.sessionService.Stop(c.Request.Context(), userID, service.StopInput{
		Timestamp: req.Timestamp,
		LocalID:   req.LocalID,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) Sync(c *gin.Context) {
	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}
	if req.Events == nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": gin.H{"code": "missing_events", "message": "events array is required"},
		})
		return
	}

	userID := middleware.UserID(c)
	result, apiErr := h.sessionService.Sync(c.Request.Context(), userID, req.Events)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *SessionHandler) Current(c *gin.Context) {
	userID := middleware.UserID(c)
	view, apiErr := h.sessionService.Current(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	if view == nil {
		c.JSON(http.StatusOK, gin.H{"session": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": view})
}

func (h *SessionHandler) Stats(c *gin.Context) {
	userID := middleware.UserID(c)

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := now

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"code": "invalid_start", "message": "start must be RFC3339"},
			})
			return
		}
		start = parsed.UTC()
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": gin.H{"code": "invalid_end", "message": "end must be RFC3339"},
			})
			return
		}
		end = parsed.UTC()
	}

	maxDepth := 0
	if raw := c.Query("maxDepth"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			maxDepth = parsed
		}
	}

	result, apiErr := h.statsService.Stats(c.Request.Context(), userID, service.StatsInput{
		Start:    start,
		End:      end,
		MaxDepth: maxDepth,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, result)
}
