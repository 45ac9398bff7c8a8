// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rinman24/arcobs/internal/catalog"
	"github.com/rinman24/arcobs/internal/chrono"
	"github.com/rinman24/arcobs/internal/log"
	"github.com/rinman24/arcobs/internal/obs"
)

type dailyJobRequest struct {
	Observatory string `json:"observatory"`
	Instrument  string `json:"instrument"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
}

type renameRequest struct {
	Directory string `json:"directory"`
	Extension string `json:"extension"`
	Year      int    `json:"year"`
	Format    string `json:"format"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if err := s.catalog.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "catalog unavailable")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func decodeDaily(r *http.Request) (obs.DailyRequest, error) {
	var body dailyJobRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		return obs.DailyRequest{}, err
	}
	observatory, err := obs.ParseObservatory(body.Observatory)
	if err != nil {
		return obs.DailyRequest{}, err
	}
	instrument, err := obs.ParseInstrument(body.Instrument)
	if err != nil {
		return obs.DailyRequest{}, err
	}
	return obs.DailyRequest{
		Observatory: observatory,
		Instrument:  instrument,
		Year:        body.Year,
		Month:       time.Month(body.Month),
	}, nil
}

func (s *Server) handleDailyFiles(w http.ResponseWriter, r *http.Request) {
	s.launch(w, r, s.manager.LaunchDailyFiles)
}

func (s *Server) handleDailyMasks(w http.ResponseWriter, r *http.Request) {
	s.launch(w, r, s.manager.LaunchDailyMasks)
}

// launch queues a job detached from the request lifetime so it outlives
// the response.
func (s *Server) launch(w http.ResponseWriter, r *http.Request,
	fn func(context.Context, obs.DailyRequest) (string, error),
) {
	req, err := decodeDaily(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := fn(context.WithoutCancel(r.Context()), req)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"id": id})
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var body renameRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	renamed, err := s.manager.RenameRawFiles(obs.RenameRequest{
		Directory: body.Directory,
		Extension: body.Extension,
		Year:      body.Year,
		Format:    body.Format,
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"renamed": renamed})
}

func (s *Server) handleJobs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Jobs().List())
}

func (s *Server) handleJob(w http.ResponseWriter, r *http.Request) {
	job, ok := s.manager.Jobs().Get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

// handleProductsByDate lists every product of an observatory on one
// day. The date query parameter uses the DYYYY-MM-DD grammar.
func (s *Server) handleProductsByDate(w http.ResponseWriter, r *http.Request) {
	observatory, err := obs.ParseObservatory(chi.URLParam(r, "observatory"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	date := r.URL.Query().Get("date")
	if _, err := chrono.Extract(date, chrono.ToDay); err != nil {
		writeError(w, http.StatusBadRequest, "date must use the DYYYY-MM-DD grammar")
		return
	}
	records, err := s.catalog.ByDate(r.Context(), string(observatory), date)
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("catalog query failed")
		writeError(w, http.StatusInternalServerError, "catalog query failed")
		return
	}
	writeJSON(w, http.StatusOK, productList(records))
}

func (s *Server) handleProductsByMonth(w http.ResponseWriter, r *http.Request) {
	observatory, err := obs.ParseObservatory(chi.URLParam(r, "observatory"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	instrument, err := obs.ParseInstrument(chi.URLParam(r, "instrument"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	month := r.URL.Query().Get("month")
	dt, err := chrono.Extract(month, chrono.ToMonth)
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must use the DYYYY-MM grammar")
		return
	}
	kind := r.URL.Query().Get("kind")
	if kind == "" {
		kind = catalog.KindDaily
	}
	if kind != catalog.KindDaily && kind != catalog.KindMask {
		writeError(w, http.StatusBadRequest, "kind must be daily or mask")
		return
	}
	records, err := s.catalog.ByMonth(r.Context(),
		string(observatory), string(instrument), kind, dt.Year, dt.Month)
	if err != nil {
		logger := log.WithComponentFromContext(r.Context(), "api")
		logger.Error().Err(err).Msg("catalog query failed")
		writeError(w, http.StatusInternalServerError, "catalog query failed")
		return
	}
	writeJSON(w, http.StatusOK, productList(records))
}

// handleMaskSummaries reports per-day cloud coverage and persistence
// for the month's mask products.
func (s *Server) handleMaskSummaries(w http.ResponseWriter, r *http.Request) {
	observatory, err := obs.ParseObservatory(chi.URLParam(r, "observatory"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	instrument, err := obs.ParseInstrument(chi.URLParam(r, "instrument"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	month := r.URL.Query().Get("month")
	dt, err := chrono.Extract(month, chrono.ToMonth)
	if err != nil {
		writeError(w, http.StatusBadRequest, "month must use the DYYYY-MM grammar")
		return
	}
	summaries, err := s.manager.SummarizeMasks(r.Context(), obs.DailyRequest{
		Observatory: observatory,
		Instrument:  instrument,
		Year:        dt.Year,
		Month:       time.Month(dt.Month),
	})
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if summaries == nil {
		summaries = []obs.MaskSummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

// productList keeps empty result sets as [] rather than null.
func productList(records []catalog.Record) []catalog.Record {
	if records == nil {
		return []catalog.Record{}
	}
	return records
}
