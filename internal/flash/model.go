package flash

import (
	"flash-backend/internal/sessions"
	"flash-backend/resume/model"
	"flash-backend/resume/render"
)

// Selection is what the caller picked for a run. Job and Resume are both
// required. A nil Preferences bag means "carry forward whatever the last
// session had"; Cached is the caller's own copy of that session, used when
// nothing can be hydrated from storage.
type Selection struct {
	Job         *model.JobContext
	Resume      *model.ResumePayload
	Preferences map[string]any
	Cached      *sessions.Record
}

// ArtifactBlob is one rendered document. It only lives for the run that
// produced it.
type ArtifactBlob struct {
	Kind     render.Kind `json:"kind"`
	Filename string      `json:"filename"`
	Bytes    []byte      `json:"-"`
}

// Size reports the document length in bytes.
func (a ArtifactBlob) Size() int {
	return len(a.Bytes)
}

// UploadReceipt is produced for each artifact that reached the blob store.
// Locator is the storage key the agent uses to fetch it later.
type UploadReceipt struct {
	Kind     render.Kind `json:"kind"`
	Locator  string      `json:"locator"`
	Filename string      `json:"filename"`
	Size     int64       `json:"size"`
	MimeType string      `json:"mimeType"`
}
