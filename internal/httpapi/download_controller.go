package httpapi

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
)

// DownloadController serves GET /download/{name}, the static artifact
// endpoint. It is deliberately thin: the output directory is flat and
// filenames are generated exclusively by the slicing pipeline
// ("output-<ms>-<disambiguator>.<ext>"), so the only client-controlled input
// is the final path segment, which is rejected outright if it contains a
// path separator.
type DownloadController struct {
	outputDir string
}

// NewDownloadController builds a DownloadController rooted at outputDir.
func NewDownloadController(outputDir string) *DownloadController {
	return &DownloadController{outputDir: outputDir}
}

// Download handles GET /download/{name}.
func (d *DownloadController) Download(c *gin.Context) {
	name := c.Param("name")
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "errorCode": "ARTIFACT_NOT_FOUND"})
		return
	}

	path := filepath.Join(d.outputDir, name)
	c.File(path)
}
