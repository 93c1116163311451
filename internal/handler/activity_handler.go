package handler

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ms0ur/timeflow/internal/middleware"
	"github.com/ms0ur/timeflow/internal/service"
)

type ActivityHandler struct {
	activityService *service.ActivityService
}

type createActivityRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
	Icon     string  `json:"icon"`
	Color    string  `json:"color"`
}

type updateActivityRequest struct {
	Name      *string `json:"name"`
	ParentID  *string `json:"parentId"`
	Icon      *string `json:"icon"`
	Color     *string `json:"color"`
	IsDefault *bool   `json:"isDefault"`
}

func NewActivityHandler(activityService *service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	activities, apiErr := h.activityService.List(c.Request.Context(), userID)
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

func (h *ActivityHandler) Create(c *gin.Context) {
	var req createActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c)
		return
	}

	userID := middleware.UserID(c)
	activity, apiErr := h.activityService.Create(c.Request.Context(), userID, service.CreateActivityInput{
		Name:     req.Name,
		ParentID: req.ParentID,
		Icon:     req.Icon,
		Color:    req.Color,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"activity": activity})
}

// Update distinguishes "parentId absent" from "parentId: null" (detach
// to root), so the raw body is inspected for key presence.
func (h *ActivityHandler) Update(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeInvalidJSON(c)
		return
	}

	var req updateActivityRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		writeInvalidJSON(c)
		return
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		writeInvalidJSON(c)
		return
	}
	_, parentPresent := keys["parentId"]

	userID := middleware.UserID(c)
	activity, apiErr := h.activityService.Update(c.Request.Context(), userID, c.Param("id"), service.UpdateActivityInput{
		Name:          req.Name,
		ParentID:      req.ParentID,
		ClearedParent: parentPresent && req.ParentID == nil,
		Icon:          req.Icon,
		Color:         req.Color,
		IsDefault:     req.IsDefault,
	})
	if apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activity": activity})
}

func (h *ActivityHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if apiErr := h.activityService.Delete(c.Request.Context(), userID, c.Param("id")); apiErr != nil {
		writeError(c, apiErr)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
