package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/group-study-api/internal/dto"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/middleware"
	"github.com/yukikurage/group-study-api/internal/services"
)

// SubmissionHandler serves submissions and their upvotes.
type SubmissionHandler struct {
	submissionService *services.SubmissionService
}

func NewSubmissionHandler(submissionService *services.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissionService: submissionService}
}

type documentRequest struct {
	Document string `json:"document" binding:"required,docurl"`
}

func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	submissions, err := h.submissionService.ListForTask(c.Request.Context(), middleware.GetTask(c), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"submissions": dto.ToSubmissionDTOs(submissions),
	})
}

func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req documentRequest
	if !bindJSON(c, &req) {
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), middleware.GetTask(c), userID, req.Document)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToSubmissionDTO(*submission))
}

func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSubmissionDTO(*submission))
}

func (h *SubmissionHandler) UpdateSubmission(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req documentRequest
	if !bindJSON(c, &req) {
		return
	}

	submission, err := h.submissionService.Update(c.Request.Context(), c.Param("id"), userID, req.Document)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSubmissionDTO(*submission))
}

func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.submissionService.Delete(c.Request.Context(), c.Param("id"), userID); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Upvote adds the caller's upvote. Voting twice is a no-op.
func (h *SubmissionHandler) Upvote(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.Upvote(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSubmissionDTO(*submission))
}

func (h *SubmissionHandler) RemoveUpvote(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.RemoveUpvote(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSubmissionDTO(*submission))
}
