package respond

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestErrorBodyShape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/flash", func(c *gin.Context) {
		Error(c, http.StatusBadRequest, "nothing_selected", "Select a job and a résumé first", []FieldIssue{{Field: "job", Issue: "required"}})
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodPost, "/flash", nil))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	var body ErrorResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Code != "nothing_selected" {
		t.Fatalf("unexpected code %q", body.Error.Code)
	}
	details, ok := body.Error.Details.([]any)
	if !ok || len(details) != 1 {
		t.Fatalf("unexpected details %#v", body.Error.Details)
	}
}

func TestAttachmentHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/file", func(c *gin.Context) {
		Attachment(c, `Ada "AL" Resume.pdf`, "", 4, strings.NewReader("%PDF"))
	})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/file", nil))

	if got := resp.Header().Get("Content-Disposition"); got != `attachment; filename="Ada \"AL\" Resume.pdf"` {
		t.Fatalf("unexpected disposition %q", got)
	}
	if got := resp.Header().Get("Content-Type"); got != "application/octet-stream" {
		t.Fatalf("unexpected content type %q", got)
	}
	if resp.Body.String() != "%PDF" {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}
