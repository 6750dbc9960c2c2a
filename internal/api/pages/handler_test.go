package pages

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestPages(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler()
	r := gin.New()
	r.GET("/", h.Index)
	r.GET("/admin", h.Admin)

	tests := []struct {
		path string
		want string
	}{
		{"/", "/youtube?query="},
		{"/admin", "/admin/list_api_keys"},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		if w.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", tt.path, w.Code)
		}
		if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("GET %s Content-Type = %q", tt.path, ct)
		}
		if !strings.Contains(w.Body.String(), tt.want) {
			t.Errorf("GET %s body missing %q", tt.path, tt.want)
		}
	}
}
