package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type aboutValue struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

const (
	aboutMission = "To publish rigorous scholarship from our faculties and partners, " +
		"and to make it easy for researchers and students to find, read and cite."
	aboutVision = "A university press known for careful editing, fair contracts with its authors " +
		"and books that stay in print and in use."
)

var aboutValues = []aboutValue{
	{"Rigour", "Every manuscript is peer reviewed before it is accepted."},
	{"Integrity", "Authors see their contracts, reviews and royalties in one place."},
	{"Access", "Open access titles sit alongside print and ebook editions."},
	{"Teaching", "Workshops train students and staff in academic writing and publishing."},
}

// CountriesReached is a fixed figure; no table records it.
const CountriesReached = 25

type AboutController struct {
	store AboutStore
}

func NewAboutController(store AboutStore) *AboutController {
	return &AboutController{store: store}
}

func (ac *AboutController) RegisterRoutes(router gin.IRouter) {
	router.GET("/api/about", ac.About)
}

// About handles GET /api/about
func (ac *AboutController) About(c *gin.Context) {
	about, err := ac.store.About(c.Request.Context())
	if err != nil {
		respondInternalError(c, "Failed to load about information", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"mission": aboutMission,
		"vision":  aboutVision,
		"values":  aboutValues,
		"stats": gin.H{
			"booksPublished":   about.Stats.BooksPublished,
			"authorsPublished": about.Stats.AuthorsPublished,
			"studentsTrained":  about.Stats.StudentsTrained,
			"countriesReached": CountriesReached,
		},
		"team": about.Team,
	}})
}
