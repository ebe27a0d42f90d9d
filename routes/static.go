package routes

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// SetupStaticRoutes serves uploads and the built storefront. Unknown GET paths fall
// back to index.html so client-side routes survive a reload.
func SetupStaticRoutes(r *gin.Engine, d Deps) {
	r.Static("/uploads", d.Server.UploadDir)

	root := d.Server.StaticDir
	r.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}

		name := filepath.Join(root, filepath.FromSlash(filepath.Clean("/"+c.Request.URL.Path)))
		if info, err := os.Stat(name); err == nil && !info.IsDir() {
			c.File(name)
			return
		}
		c.File(filepath.Join(root, "index.html"))
	})
}
