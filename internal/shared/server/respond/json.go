package respond

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Attachment streams r as a download named filename. size may be -1 when
// unknown.
func Attachment(c *gin.Context, filename, contentType string, size int64, r io.Reader) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, size, contentType, r, map[string]string{
		"Content-Disposition": "attachment; filename=" + strconv.Quote(filename),
		"Cache-Control":       "no-store",
	})
}
