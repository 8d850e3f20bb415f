package server

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stalewatch/stalewatch/internal/engine"
	"github.com/stalewatch/stalewatch/internal/record"
)

func (s *Server) handleListStale(w http.ResponseWriter, r *http.Request) {
	records, err := s.store.GetAll()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []record.StaleRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(records),
		"records": records,
	})
}

func (s *Server) handleListByCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")

	records, err := s.store.GetByCategory(category)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if records == nil {
		records = []record.StaleRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"category": category,
		"count":    len(records),
		"records":  records,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Statistics()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleIntegrity(w http.ResponseWriter, r *http.Request) {
	report, err := s.store.ValidateIntegrity()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Records         []record.SourceRecord `json:"records"`
		ThresholdMonths *int                  `json:"threshold_months,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Records == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "records required"})
		return
	}

	threshold := s.threshold
	if req.ThresholdMonths != nil {
		threshold = *req.ThresholdMonths
	}

	s.mu.Lock()
	result, err := engine.New(s.store, threshold).Detect(req.Records)
	s.mu.Unlock()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	// RecordErrors carry a wrapped error; flatten for the wire.
	recordErrors := make([]map[string]string, 0, len(result.Errors))
	for _, re := range result.Errors {
		recordErrors = append(recordErrors, map[string]string{
			"id":     re.ID,
			"reason": re.Err.Error(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"activeItems":      orEmptySource(result.ActiveItems),
		"staleItems":       orEmptyStale(result.StaleItems),
		"reactivatedItems": orEmptySource(result.ReactivatedItems),
		"errors":           recordErrors,
		"stats":            result.Stats,
	})
}

func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	path, err := s.store.Backup()
	s.mu.Unlock()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"backup": path})
}

func orEmptySource(records []record.SourceRecord) []record.SourceRecord {
	if records == nil {
		return []record.SourceRecord{}
	}
	return records
}

func orEmptyStale(records []record.StaleRecord) []record.StaleRecord {
	if records == nil {
		return []record.StaleRecord{}
	}
	return records
}
