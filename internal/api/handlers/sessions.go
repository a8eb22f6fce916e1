package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/dataprobe/dataprobe/internal/report"
	"github.com/dataprobe/dataprobe/pkg/models"
)

// SessionListResponse is the body returned by GET /sessions.
type SessionListResponse struct {
	Sessions []SessionSummary `json:"sessions"`
	Count    int              `json:"count"`
}

// SessionSummary is the list view of a session: metadata without the full
// issue payload.
type SessionSummary struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	CreatedAt   string `json:"created_at"`
	TotalIssues int    `json:"total_issues"`
}

// ListSessions returns session history, newest first. ?limit= and ?offset=
// page through it.
func (h *Handlers) ListSessions(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	sessions, err := h.store.List(r.Context(), limit, offset)
	if err != nil {
		h.writeError(w, err)
		return
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, toSummary(session))
	}

	h.writeJSON(w, http.StatusOK, SessionListResponse{
		Sessions: summaries,
		Count:    len(summaries),
	})
}

// GetSession returns one full session including its issues.
func (h *Handlers) GetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}

// DeleteSession removes a session.
func (h *Handlers) DeleteSession(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"deleted": id})
}

// GetSessionReport renders a session as a report. ?format=markdown selects
// Markdown; anything else gets plain text.
func (h *Handlers) GetSessionReport(w http.ResponseWriter, r *http.Request) {
	session, err := h.store.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}

	format := r.URL.Query().Get("format")
	contentType := "text/plain; charset=utf-8"
	if format == report.FormatMarkdown {
		contentType = "text/markdown; charset=utf-8"
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(report.Render(session, format)))
}

func toSummary(session *models.CheckSession) SessionSummary {
	total := 0
	if session.Summary != nil {
		total = session.Summary.TotalIssues
	}
	return SessionSummary{
		ID:          session.ID,
		Filename:    session.Filename,
		CreatedAt:   session.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		TotalIssues: total,
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
