// Package pages serves the static documentation page and the admin panel
// shell. The panel loads its data from the admin JSON API.
package pages

import (
	"embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templates embed.FS

// PagesHandler defines the HTML endpoints
type PagesHandler interface {
	Index(c *gin.Context)
	Admin(c *gin.Context)
}

type Handler struct {
	index []byte
	admin []byte
}

func NewHandler() PagesHandler {
	return &Handler{
		index: mustRead("templates/index.html"),
		admin: mustRead("templates/admin.html"),
	}
}

func mustRead(name string) []byte {
	b, err := templates.ReadFile(name)
	if err != nil {
		panic(err)
	}
	return b
}

func (h *Handler) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", h.index)
}

func (h *Handler) Admin(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", h.admin)
}
