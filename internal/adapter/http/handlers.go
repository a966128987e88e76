package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/Strob0t/Hearth/internal/domain/assist"
	"github.com/Strob0t/Hearth/internal/domain/routing"
	"github.com/Strob0t/Hearth/internal/port/expert"
	"github.com/Strob0t/Hearth/internal/service"
)

// maxAssistBody bounds the assist request body size.
const maxAssistBody = 16 * 1024

// Handlers holds the services the HTTP surface dispatches to.
type Handlers struct {
	orchestrator *service.OrchestratorService
	sessions     *service.SessionService
	router       *service.RouterService
	experts      *expert.Registry
}

// NewHandlers creates the handler set.
func NewHandlers(orch *service.OrchestratorService, sessions *service.SessionService, router *service.RouterService, experts *expert.Registry) *Handlers {
	return &Handlers{
		orchestrator: orch,
		sessions:     sessions,
		router:       router,
		experts:      experts,
	}
}

type assistRequest struct {
	Text      string `json:"text"`
	SessionID string `json:"session_id"`
	Mode      string `json:"mode,omitempty"`
}

// Assist handles POST /api/v1/assist: one utterance in, one final response
// out. The response is always 200 with a coherent message; collaborator
// failures surface inside the payload, not as HTTP errors.
func (h *Handlers) Assist(w http.ResponseWriter, r *http.Request) {
	req, ok := readJSON[assistRequest](w, r, maxAssistBody)
	if !ok {
		return
	}

	req.Text = strings.TrimSpace(req.Text)
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	mode := assist.Mode(req.Mode)
	switch mode {
	case assist.ModeAuto, assist.ModeConversation, assist.ModeTask:
	default:
		writeError(w, http.StatusBadRequest, "mode must be one of: conversation, task")
		return
	}

	resp := h.orchestrator.Handle(r.Context(), assist.Utterance{
		Text:       req.Text,
		SessionID:  req.SessionID,
		Mode:       mode,
		ReceivedAt: time.Now(),
	})
	writeJSON(w, http.StatusOK, resp)
}

// SessionHistory handles GET /api/v1/sessions/{id}/history.
func (h *Handlers) SessionHistory(w http.ResponseWriter, r *http.Request) {
	id := urlParam(r, "id")
	history, ok := h.sessions.History(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": id,
		"history":    history,
	})
}

// ListExperts handles GET /api/v1/experts: registered expert names in
// dispatch priority order.
func (h *Handlers) ListExperts(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"experts": h.experts.Names()})
}

// Routes handles GET /api/v1/routing/{tier}: the live candidate chain for a
// tier with circuit-open candidates filtered out.
func (h *Handlers) Routes(w http.ResponseWriter, r *http.Request) {
	tier := routing.Tier(urlParam(r, "tier"))
	if !tier.Valid() {
		writeError(w, http.StatusBadRequest, "tier must be one of: low, medium, high")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"tier":   tier,
		"routes": h.router.Select(tier),
	})
}

// Health handles GET /health.
func (h *Handlers) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": h.sessions.Len(),
	})
}
