package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/group-study-api/internal/dto"
	apierrors "github.com/yukikurage/group-study-api/internal/errors"
	"github.com/yukikurage/group-study-api/internal/models"
	"github.com/yukikurage/group-study-api/internal/services"
	"github.com/yukikurage/group-study-api/internal/utils"
)

// UserHandler serves user profiles.
type UserHandler struct {
	userService *services.UserService
}

func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// ListUsers returns a page of users
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.userService.List(c.Request.Context(), params)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}

	items := make([]dto.UserDTO, len(users))
	for i, u := range users {
		items[i] = dto.ToUserDTO(u)
	}
	c.JSON(http.StatusOK, dto.UserListResponse{
		Users:      items,
		Page:       params.Page,
		Limit:      params.Limit,
		TotalCount: total,
	})
}

func (h *UserHandler) GetUser(c *gin.Context) {
	user, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateUser edits the caller's own profile
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	user, ok := h.lookup(c)
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		Username       *string `json:"username" binding:"omitempty,max=150"`
		ProfilePicture *string `json:"profile_picture"`
	}

	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.userService.Update(c.Request.Context(), userID, user, services.UpdateUserInput{
		Username:       req.Username,
		ProfilePicture: req.ProfilePicture,
	})
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToUserDTO(*updated))
}

// DeleteUser deactivates the caller's own account
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	user, ok := h.lookup(c)
	if !ok {
		return
	}

	if err := h.userService.Deactivate(c.Request.Context(), userID, user); err != nil {
		apierrors.Respond(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// lookup loads the user named by :id or :email
func (h *UserHandler) lookup(c *gin.Context) (*models.User, bool) {
	var (
		user *models.User
		err  error
	)
	if email := c.Param("email"); email != "" {
		user, err = h.userService.GetByEmail(c.Request.Context(), email)
	} else {
		user, err = h.userService.Get(c.Request.Context(), c.Param("id"))
	}
	if err != nil {
		apierrors.Respond(c, err)
		return nil, false
	}
	return user, true
}
