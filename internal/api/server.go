// Package api exposes the ledger over HTTP for browser front ends and kiosks.
// Every mutating response carries a status and a human-readable message; the
// server keeps no per-client state.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/worawit/breaklog/internal/export"
	"github.com/worawit/breaklog/internal/ledger"
)

type Server struct {
	ledger *ledger.Ledger
	loc    *time.Location
	addr   string
	logger *slog.Logger
}

func New(ld *ledger.Ledger, loc *time.Location, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{ledger: ld, loc: loc, addr: addr, logger: logger}
}

// Handler builds the route table. Split from Run so tests can drive it
// through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /entries/start", s.startActivity)
	mux.HandleFunc("POST /entries/end", s.endActivity)
	mux.HandleFunc("DELETE /entries/{id}", s.deleteEntry)
	mux.HandleFunc("GET /entries", s.listEntries)
	mux.HandleFunc("GET /employees", s.listEmployees)
	mux.HandleFunc("GET /export.csv", s.exportCSV)
	mux.HandleFunc("GET /health", s.health)

	return withCORS(s.logRequests(mux))
}

// Run starts the HTTP server and blocks.
func (s *Server) Run() error {
	s.logger.Info("server listening", "addr", s.addr)
	return http.ListenAndServe(s.addr, s.Handler())
}

func withCORS(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		h.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h.ServeHTTP(w, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path, "elapsed", time.Since(start))
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type startRequest struct {
	EmployeeID string `json:"employee_id"`
	Activity   string `json:"activity"`
	Name       string `json:"name,omitempty"`
}

type actionResponse struct {
	Status  string           `json:"status"` // "success" or "warning"
	Message string           `json:"message"`
	Entry   *ledger.LogEntry `json:"entry,omitempty"`
	Ended   *bool            `json:"ended,omitempty"`
	Deleted *bool            `json:"deleted,omitempty"`
}

func (s *Server) startActivity(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required")
		return
	}
	if req.Activity == "" {
		req.Activity = ledger.ActivityWork
	}

	ctx := r.Context()
	if req.Name != "" {
		// Register with the name first; the start call's registration is
		// then a no-op and never overwrites it.
		if err := s.ledger.RegisterEmployee(ctx, req.EmployeeID, req.Name); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	date, clock := ledger.Stamp(time.Now().In(s.loc))
	entry, err := s.ledger.StartActivity(ctx, req.EmployeeID, req.Activity, date, clock)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, actionResponse{
		Status:  "success",
		Message: fmt.Sprintf("started %s for %s at %s", entry.Activity, entry.EmployeeID, entry.StartTime),
		Entry:   entry,
	})
}

type endRequest struct {
	EmployeeID string `json:"employee_id"`
}

func (s *Server) endActivity(w http.ResponseWriter, r *http.Request) {
	var req endRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.EmployeeID = strings.TrimSpace(req.EmployeeID)
	if req.EmployeeID == "" {
		writeError(w, http.StatusBadRequest, "employee_id is required")
		return
	}

	date, clock := ledger.Stamp(time.Now().In(s.loc))
	ended, err := s.ledger.EndActivity(r.Context(), req.EmployeeID, date, clock)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := actionResponse{Ended: &ended}
	if ended {
		resp.Status = "success"
		resp.Message = fmt.Sprintf("ended activity for %s at %s", req.EmployeeID, clock)
	} else {
		resp.Status = "warning"
		resp.Message = fmt.Sprintf("no open activity for %s on %s", req.EmployeeID, date)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) deleteEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := s.ledger.DeleteEntry(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := actionResponse{Deleted: &deleted}
	if deleted {
		resp.Status = "success"
		resp.Message = "entry deleted"
	} else {
		resp.Status = "warning"
		resp.Message = fmt.Sprintf("no entry with id %s", id)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) listEntries(w http.ResponseWriter, r *http.Request) {
	filter := ledger.Filter{
		DateFrom:   r.URL.Query().Get("from"),
		DateTo:     r.URL.Query().Get("to"),
		EmployeeID: r.URL.Query().Get("employee"),
	}

	entries, err := s.ledger.ListEntries(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if entries == nil {
		entries = []ledger.LogEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
	})
}

func (s *Server) listEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.ledger.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if employees == nil {
		employees = []ledger.KnownEmployee{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"employees": employees,
	})
}

func (s *Server) exportCSV(w http.ResponseWriter, r *http.Request) {
	entries, err := s.ledger.ListEntries(r.Context(), ledger.Filter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, entries); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	filename := fmt.Sprintf("time_logs_%s.csv", time.Now().In(s.loc).Format("20060102"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
