package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrewrbrady/motive-archive-manager-sub013/internal/application/services"
	"github.com/andrewrbrady/motive-archive-manager-sub013/pkg/errors"
)

type UserHandler struct {
	svcMgr *services.ServiceManager
}

func NewUserHandler(svcMgr *services.ServiceManager) *UserHandler {
	return &UserHandler{
		svcMgr: svcMgr,
	}
}

// RegisterRequest represents registration request
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// Register handles POST /api/auth/register
func (h *UserHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !BindJSON(c, &req) {
		return
	}

	user, err := h.svcMgr.Users.CreateUser(c.Request.Context(), services.CreateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		RespondError(c, errors.GetHTTPStatus(err), err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User created successfully",
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// GetUsers handles GET /api/auth/users
func (h *UserHandler) GetUsers(c *gin.Context) {
	HandleGetEnvelope(c, "users", func() (interface{}, error) {
		return h.svcMgr.Users.GetUsers(c.Request.Context())
	})
}

// GetUser handles GET /api/auth/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.Param("id")
	HandleGetEnvelope(c, "user", func() (interface{}, error) {
		return h.svcMgr.Users.GetUser(c.Request.Context(), userID)
	})
}

// UpdateUserRequest represents update user request
type UpdateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	IsActive *bool  `json:"is_active"`
}

// UpdateUser handles PUT /api/auth/users/:id
func (h *UserHandler) UpdateUser(c *gin.Context) {
	userID := c.Param("id")

	var req UpdateUserRequest
	if !BindJSON(c, &req) {
		return
	}

	if err := h.svcMgr.Users.UpdateUser(c.Request.Context(), userID, services.UpdateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
		IsActive: req.IsActive,
	}); err != nil {
		RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User updated successfully"})
}

// DeleteUser handles DELETE /api/auth/users/:id
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID := c.Param("id")
	HandleDeleteEnvelope(c, "User deleted successfully", func() error {
		return h.svcMgr.Users.DeleteUser(c.Request.Context(), userID)
	})
}
