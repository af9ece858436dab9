package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/unipress/publishing/internal/database/contacts"
	"github.com/unipress/publishing/internal/database/training"
)

// PublicController serves the unauthenticated homepage endpoints.
type PublicController struct {
	books    BookStore
	authors  AuthorStore
	training TrainingStore
	contacts ContactStore
}

func NewPublicController(books BookStore, authors AuthorStore, training TrainingStore, contacts ContactStore) *PublicController {
	return &PublicController{
		books:    books,
		authors:  authors,
		training: training,
		contacts: contacts,
	}
}

func (pc *PublicController) RegisterRoutes(router gin.IRouter) {
	router.GET("/api/books/published", pc.PublishedBooks)
	router.GET("/api/authors/count", pc.AuthorCount)
	router.GET("/api/training/count", pc.TrainingCount)
	router.POST("/api/training/register", pc.RegisterTraining)
	router.POST("/api/contact", pc.Contact)
}

// PublishedBooks handles GET /api/books/published
func (pc *PublicController) PublishedBooks(c *gin.Context) {
	rows, err := pc.books.Published(c.Request.Context())
	if err != nil {
		respondInternalError(c, "Failed to load published books", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "books": rows, "count": len(rows)})
}

// AuthorCount handles GET /api/authors/count
func (pc *PublicController) AuthorCount(c *gin.Context) {
	count, err := pc.authors.CountActive(c.Request.Context())
	if err != nil {
		respondInternalError(c, "Failed to load authors count", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// TrainingCount handles GET /api/training/count
func (pc *PublicController) TrainingCount(c *gin.Context) {
	count, err := pc.training.CountCompleted(c.Request.Context())
	if err != nil {
		respondInternalError(c, "Failed to load training count", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": count})
}

// RegisterTraining handles POST /api/training/register
func (pc *PublicController) RegisterTraining(c *gin.Context) {
	var req training.Registration
	if !bindJSON(c, &req) {
		return
	}

	id, err := pc.training.Register(c.Request.Context(), req)
	if err != nil {
		respondInternalError(c, "Failed to register for training", err)
		return
	}
	respondSuccess(c, "Training registration submitted successfully", gin.H{"registrationId": id})
}

// Contact handles POST /api/contact
func (pc *PublicController) Contact(c *gin.Context) {
	var req contacts.Message
	if !bindJSON(c, &req) {
		return
	}
	if blank(req.Name, req.Email, req.Subject, req.Message) {
		respondBadRequest(c, "Required fields are missing")
		return
	}

	id, err := pc.contacts.Create(c.Request.Context(), req)
	if err != nil {
		respondInternalError(c, "Failed to send message", err)
		return
	}
	respondSuccess(c, "Message sent successfully. We will respond shortly.", gin.H{"contactId": id})
}

// blank reports whether any value is empty after trimming.
func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}
