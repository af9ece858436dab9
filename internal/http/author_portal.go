package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/auth"
	"github.com/unipress/publishing/internal/database/authors"
)

// AuthorPortalController serves /api/author to signed-in authors. Every
// lookup is scoped to the session's user.
type AuthorPortalController struct {
	store AuthorPortalStore
}

func NewAuthorPortalController(store AuthorPortalStore) *AuthorPortalController {
	return &AuthorPortalController{store: store}
}

func (ac *AuthorPortalController) RegisterRoutes(author gin.IRouter) {
	author.GET("/profile", ac.Profile)
	author.PUT("/profile", ac.UpdateProfile)
	author.GET("/dashboard", ac.Dashboard)
	author.GET("/books/:id", ac.Book)
}

// Profile handles GET /api/author/profile
func (ac *AuthorPortalController) Profile(c *gin.Context) {
	profile, err := ac.store.Profile(c.Request.Context(), auth.GetUserID(c))
	if errors.Is(err, authors.ErrAuthorNotFound) {
		respondNotFound(c, "Author profile")
		return
	}
	if err != nil {
		respondInternalError(c, "Failed to load author profile", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "author": profile})
}

// UpdateProfile handles PUT /api/author/profile
func (ac *AuthorPortalController) UpdateProfile(c *gin.Context) {
	var req authors.ProfileUpdate
	if !bindJSON(c, &req) {
		return
	}

	profile, err := ac.store.UpdateProfile(c.Request.Context(), auth.GetUserID(c), req)
	switch {
	case errors.Is(err, authors.ErrAuthorNotFound):
		respondNotFound(c, "Author profile")
		return
	case errors.Is(err, authors.ErrEmailTaken):
		respondBadRequest(c, "Email is already in use by another account")
		return
	case err != nil:
		respondInternalError(c, "Failed to update author profile", err)
		return
	}
	respondSuccess(c, "Profile updated successfully", gin.H{"author": profile})
}

// Dashboard handles GET /api/author/dashboard
func (ac *AuthorPortalController) Dashboard(c *gin.Context) {
	d, err := ac.store.Dashboard(c.Request.Context(), auth.GetUserID(c))
	if errors.Is(err, authors.ErrAuthorNotFound) {
		respondNotFound(c, "Author profile")
		return
	}
	if err != nil {
		respondInternalError(c, "Failed to load author dashboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": d})
}

// Book handles GET /api/author/books/:id
func (ac *AuthorPortalController) Book(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := ac.store.BookForAuthor(c.Request.Context(), auth.GetUserID(c), id)
	if errors.Is(err, authors.ErrBookNotOwned) {
		fail(c, http.StatusForbidden, "Unauthorized access")
		return
	}
	if err != nil {
		respondInternalError(c, "Failed to load book details", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": book})
}
