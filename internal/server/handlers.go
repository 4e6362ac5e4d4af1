package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-applyform/pkg/fieldtree"
	"github.com/goliatone/go-applyform/pkg/formdata"
	"github.com/goliatone/go-applyform/pkg/orchestrator"
	"github.com/goliatone/go-applyform/pkg/schema"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type listResponse struct {
	Forms []string `json:"forms"`
}

type rejectedResponse struct {
	Form     orchestrator.Rendered    `json:"form"`
	Warnings []fieldtree.FieldWarning `json:"warnings"`
}

func (s *Server) handleListForms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, listResponse{Forms: s.catalog.IDs()})
}

// GET /forms/{id}
func (s *Server) handleGetForm(w http.ResponseWriter, r *http.Request) {
	form, ok := s.form(w, r)
	if !ok {
		return
	}
	rendered, err := s.orch.Render(r.Context(), form, nil, nil)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rendered)
}

// POST /forms/{id}/submissions
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	form, ok := s.form(w, r)
	if !ok {
		return
	}
	entries, err := formdata.FromRequest(r, s.maxMemory)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}

	sub, err := s.orch.Submit(r.Context(), form, entries)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	if !sub.Valid() {
		rendered, err := s.orch.Render(r.Context(), form, sub.Data, sub.Warnings)
		if err != nil {
			s.writeFailure(w, r, err)
			return
		}
		writeJSON(w, http.StatusUnprocessableEntity, rejectedResponse{Form: rendered, Warnings: rendered.Warnings})
		return
	}

	receipt := Receipt{
		ID:         uuid.New(),
		FormID:     form.ID,
		Data:       sub.Data,
		ReceivedAt: s.now().UTC(),
	}
	if err := s.sink.Store(r.Context(), receipt); err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, receipt)
}

func (s *Server) form(w http.ResponseWriter, r *http.Request) (*orchestrator.Form, bool) {
	id := chi.URLParam(r, "id")
	form, ok := s.catalog.Form(id)
	if !ok {
		writeError(w, http.StatusNotFound, "FORM_NOT_FOUND", "form not found: "+id)
		return nil, false
	}
	return form, true
}

// writeFailure maps pipeline errors to responses. Schema and layout errors
// are authoring bugs and surface as 500s.
func (s *Server) writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	switch {
	case errors.Is(err, schema.ErrMalformedSchema):
		code = "MALFORMED_SCHEMA"
	case errors.Is(err, fieldtree.ErrUnknownField):
		code = "UNKNOWN_FIELD"
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status, code = http.StatusServiceUnavailable, "TIMEOUT"
	}
	s.logger.Error("request failed",
		zap.String("path", r.URL.Path),
		zap.String("code", code),
		zap.Error(err),
	)
	writeError(w, status, code, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}
