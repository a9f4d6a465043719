package http

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed static/index.html
var staticFS embed.FS

// handleDashboard serves the single-page dashboard. All interaction runs
// through the v1 API; the page itself is static.
func (s *Server) handleDashboard(c *gin.Context) {
	page, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}
