package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"energy-insights/internal/calc"
	"energy-insights/internal/dashboard"
	"energy-insights/internal/dataset"
	"energy-insights/internal/query"
	"energy-insights/internal/render"
	"energy-insights/internal/view"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) layout(r *http.Request) view.Layout {
	layout := view.Compose(s.session.Snapshot(), r.URL.Query().Get("filter"))
	return layout.WithQuery(s.resolver.Current())
}

func (s *Server) listPanels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.layout(r))
}

func (s *Server) panelImage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	panel, ok := view.Compose(s.session.Snapshot(), "").Find(view.PanelID(vars["id"]))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("unknown panel"))
		return
	}
	s.writeImage(w, panel.Chart, vars["format"])
}

func (s *Server) queryImage(w http.ResponseWriter, r *http.Request) {
	res, ok := s.resolver.Current()
	if !ok || res.Config.ChartConfig == nil {
		writeError(w, http.StatusNotFound, errors.New("no chart to render"))
		return
	}
	s.writeImage(w, res.Config.ChartConfig.Chart(), mux.Vars(r)["format"])
}

func (s *Server) writeImage(w http.ResponseWriter, c dataset.Chart, format string) {
	f, err := render.ParseFormat(format)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var buf bytes.Buffer
	switch err := s.renderer.Render(&buf, c, f); {
	case errors.Is(err, render.ErrNothingToRender):
		w.WriteHeader(http.StatusNoContent)
		return
	case err != nil:
		s.logger.Error().Err(err).Str("chart", c.Title).Msg("render failed")
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (s *Server) getSelection(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Selection())
}

func (s *Server) applySelection(w http.ResponseWriter, r *http.Request) {
	sel := s.session.Selection()
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	switch err := s.session.Apply(r.Context(), sel); {
	case errors.Is(err, calc.ErrNoMatchingSlice):
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	case errors.Is(err, dashboard.ErrClosed):
		writeError(w, http.StatusServiceUnavailable, err)
		return
	case err != nil:
		// Fetch failures stay on the panel; the new selection still applies.
		s.logger.Warn().Err(err).Msg("selection refetch failed")
	}
	writeJSON(w, http.StatusOK, s.layout(r))
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	if err := s.session.Refresh(r.Context()); err != nil {
		s.logger.Warn().Err(err).Msg("refresh incomplete")
	}
	writeJSON(w, http.StatusOK, s.layout(r))
}

type queryRequest struct {
	Prompt string `json:"prompt"`
}

func (s *Server) submitQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := s.resolver.Submit(r.Context(), req.Prompt)
	switch {
	case errors.Is(err, query.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, query.ErrBusy):
		writeError(w, http.StatusConflict, err)
	case err != nil:
		writeError(w, http.StatusInternalServerError, err)
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func (s *Server) currentQuery(w http.ResponseWriter, _ *http.Request) {
	res, ok := s.resolver.Current()
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) clearQuery(w http.ResponseWriter, _ *http.Request) {
	s.resolver.Clear()
	w.WriteHeader(http.StatusNoContent)
}
