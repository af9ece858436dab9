package http

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

type SettingsController struct {
	store SettingsStore
}

func NewSettingsController(store SettingsStore) *SettingsController {
	return &SettingsController{store: store}
}

func (sc *SettingsController) RegisterRoutes(admin gin.IRouter) {
	admin.GET("/settings", sc.Get)
	admin.POST("/settings", sc.Save)
}

// Get handles GET /api/admin/settings and groups settings by category.
func (sc *SettingsController) Get(c *gin.Context) {
	grouped, err := sc.store.All(c.Request.Context())
	if err != nil {
		respondInternalError(c, "Failed to load settings", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "settings": grouped})
}

// Save handles POST /api/admin/settings. The body is a flat key/value
// object; non-string values are stored in their text form.
func (sc *SettingsController) Save(c *gin.Context) {
	var body map[string]any
	if !bindJSON(c, &body) {
		return
	}

	values := make(map[string]string, len(body))
	for key, value := range body {
		switch v := value.(type) {
		case string:
			values[key] = v
		case nil:
			values[key] = ""
		default:
			values[key] = fmt.Sprint(v)
		}
	}

	if err := sc.store.SetMany(c.Request.Context(), values); err != nil {
		respondInternalError(c, "Failed to update settings", err)
		return
	}
	respondSuccess(c, "Settings updated successfully", nil)
}
