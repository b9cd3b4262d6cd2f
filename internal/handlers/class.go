package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/group-study-api/internal/dto"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/middleware"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/services"
	"github.com/yukikurage/group-study-api/internal/utils"
)

// ClassHandler serves classes and their memberships.
type ClassHandler struct {
	classService *services.ClassService
}

func NewClassHandler(classService *services.ClassService) *ClassHandler {
	return &ClassHandler{classService: classService}
}

// ListClasses returns a page of all classes. Anyone may browse them.
func (h *ClassHandler) ListClasses(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	classes, total, err := h.classService.ListClasses(c.Request.Context(), params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	items := make([]dto.ClassDTO, len(classes))
	for i, class := range classes {
		items[i] = dto.ToClassDTO(class)
	}
	c.JSON(http.StatusOK, dto.ClassListResponse{
		Classes:    items,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalCount: total,
	})
}

// CreateClass creates a class with the caller as its admin
func (h *ClassHandler) CreateClass(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type CreateClassRequest struct {
		Name        string `json:"name" binding:"required,max=255"`
		Description string `json:"description"`
	}

	var req CreateClassRequest
	if !bindJSON(c, &req) {
		return
	}

	class, err := h.classService.CreateClass(c.Request.Context(), services.CreateClassInput{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   userID,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToClassDTO(*class))
}

// ListMyClasses returns the classes the caller holds a role in
func (h *ClassHandler) ListMyClasses(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	memberships, err := h.classService.ListClassesForUser(c.Request.Context(), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	classes := make([]dto.ClassWithRoleDTO, len(memberships))
	for i, m := range memberships {
		classes[i] = dto.ToClassWithRoleDTO(m)
	}
	c.JSON(http.StatusOK, gin.H{
		"classes": classes,
	})
}

// GetClass returns class details with its members. your_role is null for anonymous callers.
func (h *ClassHandler) GetClass(c *gin.Context) {
	class := middleware.GetClass(c)
	ctx := c.Request.Context()

	members, err := h.classService.Members(ctx, class)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	var yourRole *models.Role
	if userID, exists := middleware.GetUserID(c); exists {
		role, err := h.classService.RoleOf(ctx, userID, class)
		if err != nil {
			apierrors.Respond(c, err)
			return
		}
		yourRole = &role
	}

	c.JSON(http.StatusOK, dto.ToClassDetailDTO(*class, members, yourRole))
}

func (h *ClassHandler) UpdateClass(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type UpdateClassRequest struct {
		Name        *string `json:"name" binding:"omitempty,max=255"`
		Description *string `json:"description"`
	}

	var req UpdateClassRequest
	if !bindJSON(c, &req) {
		return
	}

	class, err := h.classService.UpdateClass(c.Request.Context(), middleware.GetClass(c), userID, services.UpdateClassInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToClassDTO(*class))
}

func (h *ClassHandler) DeleteClass(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.classService.DeleteClass(c.Request.Context(), middleware.GetClass(c), userID); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// JoinByCode joins the class whose code is given in the body
func (h *ClassHandler) JoinByCode(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type JoinRequest struct {
		ClassCode string `json:"class_code" binding:"required"`
	}

	var req JoinRequest
	if !bindJSON(c, &req) {
		return
	}

	class, err := h.classService.GetClassByCode(c.Request.Context(), req.ClassCode)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	h.join(c, class, userID)
}

// JoinClass joins the class named in the path
func (h *ClassHandler) JoinClass(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	h.join(c, middleware.GetClass(c), userID)
}

func (h *ClassHandler) join(c *gin.Context, class *models.Class, userID string) {
	if err := h.classService.Join(c.Request.Context(), class, userID); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"detail": "Joined class",
		"class":  dto.ToClassDTO(*class),
	})
}

func (h *ClassHandler) LeaveClass(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.classService.Leave(c.Request.Context(), middleware.GetClass(c), userID); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"detail": "Left class",
	})
}

// ChangeRole sets another member's role
func (h *ClassHandler) ChangeRole(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	type ChangeRoleRequest struct {
		UserID  string      `json:"user_id" binding:"required"`
		NewRole models.Role `json:"new_role" binding:"required"`
	}

	var req ChangeRoleRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.classService.ChangeRole(c.Request.Context(), middleware.GetClass(c), userID, req.UserID, req.NewRole); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"detail":   "Role updated",
		"user_id":  req.UserID,
		"new_role": req.NewRole,
	})
}

func (h *ClassHandler) RemoveMember(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.classService.RemoveMember(c.Request.Context(), middleware.GetClass(c), userID, c.Param("user_id")); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RegenerateCode replaces the class's join code
func (h *ClassHandler) RegenerateCode(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	class, err := h.classService.RegenerateCode(c.Request.Context(), middleware.GetClass(c), userID)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToClassDTO(*class))
}
