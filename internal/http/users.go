package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/auth"
	"github.com/unipress/publishing/internal/database/users"
)

// UsersController manages accounts from the admin panel.
type UsersController struct {
	store      UserStore
	bcryptCost int
}

func NewUsersController(store UserStore, bcryptCost int) *UsersController {
	return &UsersController{store: store, bcryptCost: bcryptCost}
}

func (uc *UsersController) RegisterRoutes(admin gin.IRouter) {
	admin.GET("/users", uc.List)
	admin.POST("/users", uc.Create)
	admin.PUT("/users/:id", uc.Update)
	admin.DELETE("/users/:id", uc.Delete)
}

type userListQuery struct {
	pageQuery
	Role   string `form:"role"`
	Status string `form:"status"`
	Search string `form:"search"`
}

// List handles GET /api/admin/users
func (uc *UsersController) List(c *gin.Context) {
	var q userListQuery
	if !bindQuery(c, &q) {
		return
	}

	rows, pagination, err := uc.store.List(c.Request.Context(),
		users.ListFilter{Role: q.Role, Status: q.Status, Search: q.Search}, q.request())
	if err != nil {
		respondInternalError(c, "Failed to load users", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "users": rows, "pagination": pagination})
}

type createUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// Create handles POST /api/admin/users. Accounts made by staff start
// active with a verified email unless a status is given.
func (uc *UsersController) Create(c *gin.Context) {
	var req createUserRequest
	if !bindJSON(c, &req) {
		return
	}
	if blank(req.Username, req.Email, req.Password, req.FullName, req.Role) {
		respondBadRequest(c, "Required fields are missing")
		return
	}

	ctx := c.Request.Context()
	exists, err := uc.store.Exists(ctx, req.Email, req.Username)
	if err != nil {
		respondInternalError(c, "Failed to create user", err)
		return
	}
	if exists {
		respondBadRequest(c, "User with this email or username already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password, uc.bcryptCost)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	status := req.Status
	if status == "" {
		status = users.StatusActive
	}

	id, err := uc.store.Create(ctx, users.NewUser{
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  hash,
		FullName:      req.FullName,
		Role:          req.Role,
		Status:        status,
		EmailVerified: true,
	})
	if err != nil {
		respondInternalError(c, "Failed to create user", err)
		return
	}
	respondSuccess(c, "User created successfully", gin.H{"userId": id})
}

type updateUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	Status   string `json:"status"`
}

// Update handles PUT /api/admin/users/:id
func (uc *UsersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req updateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	err := uc.store.Update(c.Request.Context(), id, users.Update(req))
	if errors.Is(err, users.ErrUserNotFound) {
		respondNotFound(c, "User")
		return
	}
	if err != nil {
		respondInternalError(c, "Failed to update user", err)
		return
	}
	respondSuccess(c, "User updated successfully", nil)
}

// Delete handles DELETE /api/admin/users/:id
func (uc *UsersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	err := uc.store.Delete(c.Request.Context(), id)
	if errors.Is(err, users.ErrUserNotFound) {
		respondNotFound(c, "User")
		return
	}
	if err != nil {
		respondInternalError(c, "Failed to delete user", err)
		return
	}
	respondSuccess(c, "User deleted successfully", nil)
}
