// ABOUTME: HTTP handlers for the webhook and the per-user entry API.
// ABOUTME: Maps validation errors to 400 and storage outages to 503.
package webhook

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/oklog/ulid/v2"

	"github.com/harperreed/coach/internal/aggregate"
	"github.com/harperreed/coach/internal/models"
	"github.com/harperreed/coach/internal/storage"
	"github.com/harperreed/coach/internal/validate"
)

type webhookRequest struct {
	SenderID    string `json:"sender_id"`
	MessageText string `json:"message_text"`
}

type webhookResponse struct {
	ID    string `json:"id"`
	Reply string `json:"reply"`
}

type logDayResponse struct {
	Entry    *models.Entry      `json:"entry"`
	Warnings []validate.Warning `json:"warnings"`
}

type entriesResponse struct {
	Count   int             `json:"count"`
	Entries []*models.Entry `json:"entries"`
}

// --- Helper Functions ---

func (s *Server) respondWithError(w http.ResponseWriter, code int, message string) {
	s.respondWithJSON(w, code, map[string]string{"error": message})
}

func (s *Server) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithFailure maps service errors to status codes. Storage details
// stay in the log.
func (s *Server) respondWithFailure(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validate.ValidationError
	switch {
	case errors.As(err, &verr):
		s.respondWithError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, storage.ErrStorageUnavailable):
		s.logger.Error("storage unavailable", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
		s.respondWithError(w, http.StatusServiceUnavailable, "storage is unavailable, try again shortly")
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "request_id", middleware.GetReqID(r.Context()), "err", err)
		s.respondWithError(w, http.StatusInternalServerError, "something went wrong, try again")
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		s.respondWithError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON body: %v", err))
		return false
	}
	return true
}

// --- Handlers ---

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var req webhookRequest
	if !s.decode(w, r, &req) {
		return
	}
	req.SenderID = strings.TrimSpace(req.SenderID)
	if req.SenderID == "" {
		s.respondWithError(w, http.StatusBadRequest, "sender_id is required")
		return
	}
	if strings.TrimSpace(req.MessageText) == "" {
		s.respondWithError(w, http.StatusBadRequest, "message_text is required")
		return
	}

	id := ulid.Make().String()
	s.logger.Debug("webhook message", "id", id, "sender", req.SenderID)
	reply := s.svc.Reply(r.Context(), req.SenderID, req.MessageText)
	s.respondWithJSON(w, http.StatusOK, webhookResponse{ID: id, Reply: reply})
}

func (s *Server) handleLogDay(w http.ResponseWriter, r *http.Request) {
	var rec models.Record
	if !s.decode(w, r, &rec) {
		return
	}
	e, warnings, err := s.svc.LogDay(chi.URLParam(r, "userID"), rec)
	if err != nil {
		s.respondWithFailure(w, r, err)
		return
	}
	if warnings == nil {
		warnings = []validate.Warning{}
	}
	s.respondWithJSON(w, http.StatusCreated, logDayResponse{Entry: e, Warnings: warnings})
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Entries(chi.URLParam(r, "userID"), r.URL.Query().Get("since"))
	if err != nil {
		s.respondWithFailure(w, r, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, entriesResponse{Count: len(entries), Entries: entries})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	e, err := s.svc.Entry(chi.URLParam(r, "userID"), date)
	if err != nil {
		s.respondWithFailure(w, r, err)
		return
	}
	if e == nil {
		s.respondWithError(w, http.StatusNotFound, fmt.Sprintf("no entry for %s", date))
		return
	}
	s.respondWithJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	date := chi.URLParam(r, "date")
	deleted, err := s.svc.DeleteDay(chi.URLParam(r, "userID"), date)
	if err != nil {
		s.respondWithFailure(w, r, err)
		return
	}
	if !deleted {
		s.respondWithError(w, http.StatusNotFound, fmt.Sprintf("no entry for %s", date))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	summary, err := s.svc.Weekly(chi.URLParam(r, "userID"))
	if errors.Is(err, aggregate.ErrInsufficientData) {
		s.respondWithError(w, http.StatusUnprocessableEntity,
			fmt.Sprintf("need at least %d logged days in the last week", aggregate.MinWeeklyEntries))
		return
	}
	if err != nil {
		s.respondWithFailure(w, r, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Profile(chi.URLParam(r, "userID"))
	if err != nil {
		s.respondWithFailure(w, r, err)
		return
	}
	s.respondWithJSON(w, http.StatusOK, p)
}
