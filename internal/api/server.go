// Package api provides the HTTP API for chart and Gua calculations.
// GET endpoints are public (pure calculations and stored records).
// POST and DELETE endpoints that write require a bearer token.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/flyingstars/internal/compass"
	"github.com/talgya/flyingstars/internal/flyingstar"
	"github.com/talgya/flyingstars/internal/minggua"
	"github.com/talgya/flyingstars/internal/persistence"
)

const (
	maxBatch      = 100     // Charts per batch request
	maxBatchBytes = 1 << 20 // Batch request body size
	batchWorkers  = 8       // Charts calculated concurrently per batch
)

// Server serves the calculators and stores over HTTP.
type Server struct {
	DB            *persistence.DB // Nil disables the floor plan and people endpoints
	Port          int
	AdminKey      string // Bearer token for POST endpoints. Empty = POST disabled.
	CORSOrigins   []string
	DefaultPeriod int
	BatchLimiter  *RateLimiter

	started time.Time
}

// Handler builds the routed, CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	if s.started.IsZero() {
		s.started = time.Now()
	}

	mux := http.NewServeMux()

	// Public calculations.
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/sectors", s.handleSectors)
	mux.HandleFunc("GET /api/v1/chart", s.handleChart)
	mux.HandleFunc("GET /api/v1/annual", s.handleAnnual)
	mux.HandleFunc("GET /api/v1/gua", s.handleGua)
	mux.HandleFunc("GET /api/v1/compatibility", s.handleCompatibility)
	mux.HandleFunc("GET /api/v1/element", s.handleElement)

	batch := s.handleBatch
	if s.BatchLimiter != nil {
		batch = RateLimitMiddleware(s.BatchLimiter, batch)
	}
	mux.HandleFunc("POST /api/v1/charts/batch", batch)

	// Stored records.
	mux.HandleFunc("GET /api/v1/floorplans", s.withDB(s.handleListFloorPlans))
	mux.HandleFunc("GET /api/v1/floorplan/{id}", s.withDB(s.handleFloorPlan))
	mux.HandleFunc("GET /api/v1/person/{id}", s.withDB(s.handlePerson))

	// Admin endpoints (POST and DELETE, require bearer token).
	mux.HandleFunc("POST /api/v1/floorplans", s.adminOnly(s.withDB(s.handleCreateFloorPlan)))
	mux.HandleFunc("POST /api/v1/floorplan/{id}/note", s.adminOnly(s.withDB(s.handleSectorNote)))
	mux.HandleFunc("POST /api/v1/floorplan/{id}/recalculate", s.adminOnly(s.withDB(s.handleRecalculateFloorPlan)))
	mux.HandleFunc("DELETE /api/v1/floorplan/{id}", s.adminOnly(s.withDB(s.handleDeleteFloorPlan)))
	mux.HandleFunc("POST /api/v1/people", s.adminOnly(s.withDB(s.handleCreatePerson)))

	return corsMiddleware(s.CORSOrigins, mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "storage", s.DB != nil)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	slog.Info("HTTP API stopped")
	return nil
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range origins {
		allowedOrigins[origin] = true
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminKey)) == 1
}

func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no admin key set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) withDB(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.DB == nil {
			http.Error(w, "storage disabled", http.StatusServiceUnavailable)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year := minggua.SolarYear(now)
	status := map[string]any{
		"name":           "Flying Stars",
		"uptime_seconds": int(now.Sub(s.started).Seconds()),
		"storage":        s.DB != nil,
		"default_period": s.DefaultPeriod,
		"solar_year":     year,
		"annual_star":    flyingstar.AnnualStar(year),
	}
	if s.DB != nil {
		if v, err := s.DB.GetMeta(persistence.MetaLastStarted); err == nil {
			status["last_started"] = v
		}
	}
	writeJSON(w, status)
}

func (s *Server) handleSectors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, compass.Sectors)
}

// chartRequest reads chart inputs from query parameters.
func (s *Server) chartRequest(r *http.Request) (flyingstar.Request, error) {
	q := r.URL.Query()
	req := flyingstar.Request{
		Period:           s.DefaultPeriod,
		MountainOverride: q.Get("mountain"),
	}

	if v := q.Get("period"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return req, fmt.Errorf("period %q: %w", v, errBadRequest)
		}
		req.Period = p
	}

	v := q.Get("facing")
	if v == "" && req.MountainOverride == "" {
		return req, fmt.Errorf("facing or mountain is required: %w", errBadRequest)
	}
	if v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("facing %q: %w", v, errBadRequest)
		}
		req.FacingDegrees = f
	}

	if v := q.Get("replacement"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("replacement %q: %w", v, errBadRequest)
		}
		req.ForceReplacement = b
	}
	return req, nil
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	req, err := s.chartRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}
	chart, err := flyingstar.CalculateChecked(req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, chart)
}

func (s *Server) handleAnnual(w http.ResponseWriter, r *http.Request) {
	year := minggua.SolarYear(time.Now())
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, fmt.Errorf("year %q: %w", v, errBadRequest))
			return
		}
		year = y
	}
	writeJSON(w, map[string]any{
		"year":  year,
		"star":  flyingstar.AnnualStar(year),
		"stars": flyingstar.AnnualChart(year).Map(),
	})
}

func (s *Server) handleGua(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	gender, err := minggua.ParseGender(q.Get("gender"))
	if err != nil {
		writeError(w, err)
		return
	}

	birth, err := time.Parse(time.DateOnly, q.Get("birth"))
	if err != nil {
		writeError(w, fmt.Errorf("birth %q: %w", q.Get("birth"), errBadRequest))
		return
	}

	profile, err := minggua.NewProfile(birth, gender)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"profile":          profile,
		"best_directions":  minggua.BestDirections(profile.Gua),
		"worst_directions": minggua.WorstDirections(profile.Gua),
	})
}

func (s *Server) handleCompatibility(w http.ResponseWriter, r *http.Request) {
	person, err1 := strconv.Atoi(r.URL.Query().Get("person"))
	sector, err2 := strconv.Atoi(r.URL.Query().Get("sector"))
	if err1 != nil || err2 != nil {
		writeError(w, fmt.Errorf("person and sector must be gua numbers: %w", errBadRequest))
		return
	}
	result, err := minggua.Analyze(person, sector)
	if err != nil {
		writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	writeJSON(w, result)
}

// handleElement relates a trigram element to a year element. Each side is
// given either as a number (gua, year) or by element name (gua_element,
// year_element).
func (s *Server) handleElement(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	resp := map[string]any{}

	var guaElement minggua.Element
	switch {
	case q.Get("gua_element") != "":
		e, err := minggua.ParseElement(q.Get("gua_element"))
		if err != nil {
			writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		guaElement = e
	case q.Get("gua") != "":
		gua, err := strconv.Atoi(q.Get("gua"))
		if err != nil {
			writeError(w, fmt.Errorf("gua %q: %w", q.Get("gua"), errBadRequest))
			return
		}
		attrs, ok := minggua.AttributesFor(gua)
		if !ok {
			writeError(w, fmt.Errorf("unknown gua %d: %w", gua, errBadRequest))
			return
		}
		guaElement = attrs.Element
	default:
		writeError(w, fmt.Errorf("gua or gua_element is required: %w", errBadRequest))
		return
	}

	var yearElement minggua.Element
	switch {
	case q.Get("year_element") != "":
		e, err := minggua.ParseElement(q.Get("year_element"))
		if err != nil {
			writeError(w, fmt.Errorf("%w: %v", errBadRequest, err))
			return
		}
		yearElement = e
	case q.Get("year") != "":
		year, err := strconv.Atoi(q.Get("year"))
		if err != nil {
			writeError(w, fmt.Errorf("year %q: %w", q.Get("year"), errBadRequest))
			return
		}
		yearElement = minggua.YearElement(year)
		resp["zodiac"] = minggua.Zodiac(year)
	default:
		writeError(w, fmt.Errorf("year or year_element is required: %w", errBadRequest))
		return
	}

	resp["relationship"] = minggua.ElementRelationship(guaElement, yearElement)
	writeJSON(w, resp)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBatchBytes)

	var reqs []flyingstar.Request
	if err := json.NewDecoder(r.Body).Decode(&reqs); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("batch body exceeds %d bytes", tooLarge.Limit), http.StatusRequestEntityTooLarge)
			return
		}
		writeError(w, fmt.Errorf("decode batch: %w: %v", errBadRequest, err))
		return
	}
	if len(reqs) > maxBatch {
		writeError(w, fmt.Errorf("batch of %d exceeds %d: %w", len(reqs), maxBatch, errBadRequest))
		return
	}

	charts, err := flyingstar.CalculateBatch(r.Context(), reqs, batchWorkers)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, charts)
}

func (s *Server) handleListFloorPlans(w http.ResponseWriter, r *http.Request) {
	plans, err := s.DB.ListFloorPlans()
	if err != nil {
		writeError(w, err)
		return
	}
	if plans == nil {
		plans = []persistence.FloorPlan{}
	}
	writeJSON(w, plans)
}

func (s *Server) handleFloorPlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, fmt.Errorf("floor plan id: %w", errBadRequest))
		return
	}
	fp, err := s.DB.LoadFloorPlan(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{
		"floor_plan": fp,
		"chart":      flyingstar.Calculate(fp.Request()),
	})
}

func (s *Server) handleCreateFloorPlan(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
		flyingstar.Request
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("decode floor plan: %w: %v", errBadRequest, err))
		return
	}
	if body.Period == 0 {
		body.Period = s.DefaultPeriod
	}

	fp, _, err := persistence.NewFloorPlan(body.Name, body.Request)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.DB.SaveFloorPlan(fp); err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, fp)
}

func (s *Server) handleSectorNote(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, fmt.Errorf("floor plan id: %w", errBadRequest))
		return
	}
	var body struct {
		Trigram int    `json:"trigram"`
		Note    string `json:"note"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, fmt.Errorf("decode note: %w: %v", errBadRequest, err))
		return
	}
	if err := s.DB.UpdateSectorNote(id, body.Trigram, body.Note); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, map[string]any{"status": "ok"})
}

func (s *Server) handleRecalculateFloorPlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, fmt.Errorf("floor plan id: %w", errBadRequest))
		return
	}
	var req flyingstar.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("decode request: %w: %v", errBadRequest, err))
		return
	}
	if req.Period == 0 {
		req.Period = s.DefaultPeriod
	}

	fp, err := s.DB.RecalculateFloorPlan(id, req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, fp)
}

func (s *Server) handleDeleteFloorPlan(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, fmt.Errorf("floor plan id: %w", errBadRequest))
		return
	}
	if err := s.DB.DeleteFloorPlan(id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCreatePerson(w http.ResponseWriter, r *http.Request) {
	var p persistence.Person
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeError(w, fmt.Errorf("decode person: %w: %v", errBadRequest, err))
		return
	}
	if g, err := minggua.ParseGender(string(p.Gender)); err == nil {
		p.Gender = g
	}
	if _, err := p.Birth(); err != nil {
		writeError(w, fmt.Errorf("birth_date %q: %w", p.BirthDate, errBadRequest))
		return
	}
	if err := s.DB.SavePerson(&p); err != nil {
		writeError(w, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, p)
}

func (s *Server) handlePerson(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, fmt.Errorf("person id: %w", errBadRequest))
		return
	}
	p, err := s.DB.LoadPerson(id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, p)
}

// errBadRequest marks malformed input that maps to 400.
var errBadRequest = errors.New("bad request")

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, flyingstar.ErrInvalidPeriod),
		errors.Is(err, minggua.ErrInvalidGender):
		return http.StatusBadRequest
	case errors.Is(err, persistence.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
	}
	http.Error(w, err.Error(), status)
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
