package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/group-study-api/internal/dto"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/services"
)

type FeedbackHandler struct {
	feedbackService *services.FeedbackService
}

func NewFeedbackHandler(feedbackService *services.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

type contentRequest struct {
	Content string `json:"content" binding:"required"`
}

func (h *FeedbackHandler) ListFeedback(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	feedback, err := h.feedbackService.List(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"feedback": dto.ToFeedbackDTOs(feedback),
	})
}

func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req contentRequest
	if !bindJSON(c, &req) {
		return
	}

	feedback, err := h.feedbackService.Create(c.Request.Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToFeedbackDTO(*feedback))
}

func (h *FeedbackHandler) UpdateFeedback(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req contentRequest
	if !bindJSON(c, &req) {
		return
	}

	feedback, err := h.feedbackService.Update(c.Request.Context(), c.Param("id"), userID, req.Content)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToFeedbackDTO(*feedback))
}

func (h *FeedbackHandler) DeleteFeedback(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.feedbackService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
