package flash

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"flash-backend/internal/sessions"
	"flash-backend/internal/shared/server/middleware"
	"flash-backend/internal/shared/server/respond"
	"flash-backend/internal/shared/storage/docstore"
	"flash-backend/internal/shared/storage/object"
	"flash-backend/resume/model"
	"flash-backend/resume/render"
)

// Handler wires HTTP handlers to the orchestrator.
type Handler struct {
	Orchestrator *Orchestrator
	Board        *Board
	Sessions     SessionStore
	Fallback     *Fallback
}

// NewHandler constructs a Handler sharing the orchestrator's board.
func NewHandler(orch *Orchestrator, sessionStore SessionStore, fallback *Fallback) *Handler {
	return &Handler{Orchestrator: orch, Board: orch.Board, Sessions: sessionStore, Fallback: fallback}
}

// RegisterRoutes attaches flash routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/flash", h.startFlash)
	rg.GET("/flash/state", h.getState)
	rg.GET("/flash/session", h.getSession)
	rg.GET("/flash/sync", h.getSync)
	rg.GET("/flash/sync/:kind/download", h.downloadArtifact)
}

type flashRequest struct {
	Job         *model.JobContext    `json:"job"`
	Resume      *model.ResumePayload `json:"resume"`
	Preferences map[string]any       `json:"preferences"`
}

type artifactResponse struct {
	Kind     render.Kind `json:"kind"`
	Filename string      `json:"filename"`
	Size     int         `json:"size"`
}

type outcomeResponse struct {
	RunID             string             `json:"runId"`
	State             State              `json:"state"`
	Delivery          Delivery           `json:"delivery"`
	Message           string             `json:"message"`
	Navigation        Navigation         `json:"navigation"`
	NavigationURL     string             `json:"navigationUrl,omitempty"`
	AgentAvailable    bool               `json:"agentAvailable"`
	LiveDelivered     bool               `json:"liveDelivered"`
	FallbackDelivered bool               `json:"fallbackDelivered"`
	UploadAbandoned   bool               `json:"uploadAbandoned"`
	Artifacts         []artifactResponse `json:"artifacts"`
	Receipts          []UploadReceipt    `json:"receipts"`
	Session           sessions.Record    `json:"session"`
}

func toResponse(o Outcome) outcomeResponse {
	artifacts := make([]artifactResponse, 0, len(o.Artifacts))
	for _, a := range o.Artifacts {
		artifacts = append(artifacts, artifactResponse{Kind: a.Kind, Filename: a.Filename, Size: a.Size()})
	}
	receipts := o.Receipts
	if receipts == nil {
		receipts = []UploadReceipt{}
	}
	return outcomeResponse{
		RunID:             o.RunID,
		State:             o.State,
		Delivery:          o.Delivery(),
		Message:           o.Message(),
		Navigation:        o.Navigation,
		NavigationURL:     o.NavigationURL,
		AgentAvailable:    o.AgentAvailable,
		LiveDelivered:     o.LiveDelivered,
		FallbackDelivered: o.FallbackDelivered,
		UploadAbandoned:   o.UploadAbandoned,
		Artifacts:         artifacts,
		Receipts:          receipts,
		Session:           o.Session,
	}
}

func (h *Handler) startFlash(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req flashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	if !h.Board.TryBegin(userID) {
		respond.Error(c, http.StatusConflict, "flash_in_progress", ErrInProgress.Error(), nil)
		return
	}
	defer h.Board.release(userID)

	outcome, err := h.Orchestrator.Run(c.Request.Context(), userID, Selection{
		Job:         req.Job,
		Resume:      req.Resume,
		Preferences: req.Preferences,
	})
	c.Set("runId", outcome.RunID)
	c.Set("flashState", string(outcome.State))
	if err != nil {
		switch {
		case errors.Is(err, ErrNothingSelected):
			respond.Error(c, http.StatusBadRequest, "nothing_selected", "Select a job and a résumé first", []respond.FieldIssue{
				{Field: "job", Issue: "required"},
				{Field: "resume", Issue: "required"},
			})
		case errors.Is(err, ErrSessionPersist):
			respond.Error(c, http.StatusInternalServerError, "session_persist_failed", "failed to save the active session", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "flash failed", nil)
		}
		return
	}

	respond.OK(c, toResponse(outcome))
}

func (h *Handler) getState(c *gin.Context) {
	view := h.Board.View(middleware.UserIDFromContext(c))
	resp := gin.H{
		"state":     view.State,
		"busy":      view.Busy,
		"updatedAt": view.UpdatedAt,
	}
	if view.LastError != "" {
		resp["lastError"] = view.LastError
	}
	if view.Outcome != nil {
		resp["outcome"] = toResponse(*view.Outcome)
	}
	respond.OK(c, resp)
}

func (h *Handler) getSession(c *gin.Context) {
	record, source, err := h.Sessions.Hydrate(c.Request.Context(), middleware.UserIDFromContext(c), nil)
	if err != nil {
		switch {
		case errors.Is(err, sessions.ErrNoSession):
			respond.Error(c, http.StatusNotFound, "not_found", "no active session", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load session", nil)
		}
		return
	}
	respond.OK(c, gin.H{
		"source":  source,
		"session": record,
	})
}

func (h *Handler) getSync(c *gin.Context) {
	if h.Fallback == nil {
		respond.Error(c, http.StatusNotFound, "not_found", "no synced artifacts", nil)
		return
	}
	manifest, err := h.Fallback.Manifest(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		switch {
		case errors.Is(err, docstore.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "no synced artifacts", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load sync manifest", nil)
		}
		return
	}
	respond.OK(c, manifest)
}

func (h *Handler) downloadArtifact(c *gin.Context) {
	kind := render.Kind(c.Param("kind"))
	if kind != render.KindPDF && kind != render.KindDOCX {
		respond.Error(c, http.StatusBadRequest, "validation_error", "kind must be pdf or docx", nil)
		return
	}
	if h.Fallback == nil {
		respond.Error(c, http.StatusNotFound, "not_found", "no synced artifacts", nil)
		return
	}

	rc, receipt, err := h.Fallback.Open(c.Request.Context(), middleware.UserIDFromContext(c), kind)
	if err != nil {
		switch {
		case errors.Is(err, docstore.ErrNotFound), errors.Is(err, ErrNoReceipt), errors.Is(err, object.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "artifact not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open artifact", nil)
		}
		return
	}
	defer rc.Close()

	contentType := receipt.MimeType
	if contentType == "" {
		contentType = kind.ContentType()
	}
	respond.Attachment(c, receipt.Filename, contentType, receipt.Size, rc)
}
