// Package api provides the HTTP API for the theater common operating picture.
// GET endpoints are public (read-only observation).
// POST /cache/purge requires a bearer token (admin control plane).
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
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/singleflight"

	"github.com/talgya/theater-cop/internal/llm"
	"github.com/talgya/theater-cop/internal/persistence"
	"github.com/talgya/theater-cop/internal/theater"
)

const (
	maxMessageLen   = 2000
	maxBodyBytes    = 16 << 10
	generateTimeout = 60 * time.Second
	historyDefault  = 20
	historyMax      = 100
)

// Server serves the COP datasets and panel narratives over HTTP.
type Server struct {
	LLM         llm.Generator
	Chats       llm.ChatStarter
	DB          *persistence.DB
	Projector   *theater.Projector
	Metrics     *Metrics
	Gatherer    prometheus.Gatherer
	Port        int
	AdminKey    string   // Bearer token for POST /cache/purge. Empty = disabled.
	CORSOrigins []string // Extra allowed origins; localhost dev servers are always allowed.
	Model       string
	StartedAt   time.Time

	BriefingTTL time.Duration
	TickerTTL   time.Duration

	// Per-IP request budgets for LLM-consuming endpoints, per hour.
	BriefingsPerHour int
	AdvisorPerHour   int

	initOnce sync.Once
	cache    *briefingCache
	advisors *advisorStore
	flight   singleflight.Group
}

func (s *Server) init() {
	s.initOnce.Do(func() {
		s.cache = newBriefingCache(briefingCacheSize)
		s.advisors = newAdvisorStore(advisorSessions, s.Chats)
		if s.Projector == nil {
			s.Projector = theater.NewProjector(42)
		}
		if s.StartedAt.IsZero() {
			s.StartedAt = time.Now()
		}
		if s.BriefingsPerHour <= 0 {
			s.BriefingsPerHour = 60
		}
		if s.AdvisorPerHour <= 0 {
			s.AdvisorPerHour = 30
		}
	})
}

// Handler builds the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	s.init()

	briefingLimiter := NewRateLimiter(s.BriefingsPerHour, time.Hour)
	advisorLimiter := NewRateLimiter(s.AdvisorPerHour, time.Hour)
	limit := func(rl *RateLimiter, route string, h http.HandlerFunc) http.HandlerFunc {
		return RateLimitMiddleware(rl, func(*http.Request) { s.Metrics.limited(route) }, h)
	}

	mux := http.NewServeMux()

	// Static theater picture.
	mux.HandleFunc("GET /api/v1/status", s.handleStatus)
	mux.HandleFunc("GET /api/v1/pages", s.handlePages)
	mux.HandleFunc("GET /api/v1/nodes", s.handleNodes)
	mux.HandleFunc("GET /api/v1/node/{id}", s.handleNode)
	mux.HandleFunc("GET /api/v1/logistics", s.handleLogistics)
	mux.HandleFunc("GET /api/v1/fleet", s.handleFleet)
	mux.HandleFunc("GET /api/v1/personnel", s.handlePersonnel)
	mux.HandleFunc("GET /api/v1/health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/routes", s.handleRoutes)
	mux.HandleFunc("GET /api/v1/transactions", s.handleTransactions)
	mux.HandleFunc("GET /api/v1/mission", s.handleMission)
	mux.HandleFunc("GET /api/v1/contacts", s.handleContacts)
	mux.HandleFunc("GET /api/v1/messages", s.handleMessages)
	mux.HandleFunc("POST /api/v1/messages", s.handlePostMessage)

	// Narrative panels (LLM-consuming, rate limited).
	mux.HandleFunc("GET /api/v1/briefing/{panel}", limit(briefingLimiter, "briefing", s.handleBriefing))
	mux.HandleFunc("POST /api/v1/briefing/mission", limit(briefingLimiter, "mission", s.handleMissionReview))
	mux.HandleFunc("GET /api/v1/intel", limit(briefingLimiter, "intel", s.handleIntel))
	mux.HandleFunc("GET /api/v1/ticker", limit(briefingLimiter, "ticker", s.handleTicker))
	mux.HandleFunc("POST /api/v1/advisor", limit(advisorLimiter, "advisor", s.handleAdvisor))
	mux.HandleFunc("GET /api/v1/briefings/history", s.handleHistory)

	// Admin.
	mux.HandleFunc("POST /api/v1/cache/purge", s.adminOnly(s.handlePurge))

	if s.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	return corsMiddleware(s.CORSOrigins, mux)
}

// Start begins serving the HTTP API in a goroutine. The returned server can
// be shut down by the caller.
func (s *Server) Start() *http.Server {
	addr := fmt.Sprintf(":%d", s.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	slog.Info("HTTP API starting", "addr", addr, "admin_auth", s.AdminKey != "", "llm", s.LLM != nil)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
		}
	}()
	return srv
}

// corsMiddleware adds CORS headers for allowed frontend origins.
// Localhost dev servers are always allowed.
func corsMiddleware(extra []string, next http.Handler) http.Handler {
	allowedOrigins := map[string]bool{
		"http://localhost:5173": true,
		"http://localhost:4173": true,
		"http://localhost:3000": true,
	}
	for _, origin := range extra {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if allowedOrigins[origin] {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	return ok && subtle.ConstantTimeCompare([]byte(token), []byte(s.AdminKey)) == 1
}

// adminOnly wraps a handler to require bearer token auth.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey == "" {
			http.Error(w, "admin endpoints disabled (no COP_ADMIN_KEY set)", http.StatusForbidden)
			return
		}
		if !s.checkBearerToken(r) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"name":        "INDOPACOM COP",
		"pages":       len(theater.Pages()),
		"nodes":       len(theater.Nodes()),
		"assets":      len(theater.Assets()),
		"routes":      len(theater.Routes()),
		"llm_enabled": s.LLM != nil,
		"model":       s.Model,
		"panels":      llm.Panels(),
		"started_at":  s.StartedAt.UTC(),
		"up_since":    humanize.Time(s.StartedAt),
	})
}

func (s *Server) handlePages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, theater.Pages())
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, theater.Nodes())
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	node, ok := theater.Node(r.PathValue("id"))
	if !ok {
		http.Error(w, "node not found", http.StatusNotFound)
		return
	}
	writeJSON(w, node)
}

// handleLogistics returns aggregate gauges projected along the COP time slider (?t=hours).
func (s *Server) handleLogistics(w http.ResponseWriter, r *http.Request) {
	hours, err := offsetHours(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]any{
		"offset_hours": hours,
		"logistics":    s.Projector.Project(theater.Logistics(), hours),
	})
}

func (s *Server) handleFleet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, theater.Assets())
}

func (s *Server) handlePersonnel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, theater.PersonnelReadiness())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, theater.Health())
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"routes": theater.Routes(),
		"risk":   theater.RiskMetrics(),
	})
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, theater.Transactions())
}

func (s *Server) handleMission(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, theater.DefaultMission())
}

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, theater.Contacts())
}

func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	msgs, err := s.DB.Messages()
	if err != nil {
		slog.Error("load messages failed", "error", err)
		http.Error(w, "messages unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, msgs)
}

func (s *Server) handlePostMessage(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	text := strings.TrimSpace(body.Text)
	if text == "" {
		http.Error(w, "message text is required", http.StatusBadRequest)
		return
	}
	if len(text) > maxMessageLen {
		http.Error(w, fmt.Sprintf("message exceeds %d bytes", maxMessageLen), http.StatusBadRequest)
		return
	}

	msg := theater.SecureMessage{
		ID:             uuid.NewString(),
		Sender:         theater.SenderMe,
		Text:           text,
		Timestamp:      theater.ZuluStamp(time.Now()),
		Classification: theater.Secret,
		IsMe:           true,
	}
	if err := s.DB.SaveMessage(msg); err != nil {
		slog.Error("save message failed", "error", err)
		http.Error(w, "message not stored", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, http.StatusCreated, msg)
}

// briefingResponse is a panel briefing plus the panel-specific rendering.
type briefingResponse struct {
	llm.Briefing
	Cached   bool               `json:"cached"`
	Lines    []llm.AnalysisLine `json:"lines,omitempty"`
	Sections *llm.Sections      `json:"sections,omitempty"`
	Alerts   []string           `json:"alerts,omitempty"`
}

func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	panel, err := llm.ParsePanel(r.PathValue("panel"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	var args llm.PromptArgs
	switch panel {
	case llm.PanelAnalysis:
		if args.Hours, err = offsetHours(r); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
	case llm.PanelMission:
		m := theater.DefaultMission()
		args.Mission, args.Objectives = m.Name, m.Objectives
	}

	writeJSON(w, s.render(s.briefing(r.Context(), panel, args, true)))
}

func (s *Server) handleMissionReview(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name       string   `json:"name"`
		Objectives []string `json:"objectives"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := strings.ToUpper(strings.TrimSpace(body.Name))
	if name == "" {
		http.Error(w, "mission name is required", http.StatusBadRequest)
		return
	}
	var objectives []string
	for _, o := range body.Objectives {
		if o = strings.TrimSpace(o); o != "" {
			objectives = append(objectives, o)
		}
	}
	if len(objectives) == 0 {
		http.Error(w, "at least one objective is required", http.StatusBadRequest)
		return
	}

	// Reviews are on demand; each request gets a fresh assessment.
	args := llm.PromptArgs{Mission: name, Objectives: objectives}
	writeJSON(w, s.render(s.briefing(r.Context(), llm.PanelMission, args, false)))
}

func (s *Server) handleIntel(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.render(s.briefing(r.Context(), llm.PanelIntel, llm.PromptArgs{}, true)))
}

func (s *Server) handleTicker(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.render(s.briefing(r.Context(), llm.PanelTicker, llm.PromptArgs{}, true)))
}

func (s *Server) render(b llm.Briefing, cached bool) briefingResponse {
	resp := briefingResponse{Briefing: b, Cached: cached}
	switch b.Panel {
	case llm.PanelAnalysis:
		resp.Lines = llm.AnalysisLines(b.Text)
	case llm.PanelIntel:
		sections := llm.ParseSections(b.Text)
		resp.Sections = &sections
	case llm.PanelTicker:
		resp.Alerts = llm.TickerAlerts(b.Text)
	}
	return resp
}

// briefing returns a panel narrative, serving from cache when allowed.
// Concurrent requests for the same panel and arguments share one generation.
func (s *Server) briefing(ctx context.Context, panel llm.Panel, args llm.PromptArgs, useCache bool) (llm.Briefing, bool) {
	s.init()
	key := cacheKey(panel, args)

	if useCache {
		if b, ok := s.cache.get(key, s.ttlFor(panel)); ok {
			s.Metrics.briefingServed(string(panel), "cached")
			return b, true
		}
	}

	gen := func() (any, error) {
		// Shared work must outlive any single caller's disconnect.
		gctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), generateTimeout)
		defer cancel()

		start := time.Now()
		b := llm.Fetch(gctx, s.LLM, panel, args)
		s.Metrics.generated(string(panel), time.Since(start))

		if !b.Fallback {
			if useCache {
				s.cache.put(key, b)
			}
			if s.DB != nil {
				if err := s.DB.SaveBriefing(b, argsLabel(args)); err != nil {
					slog.Error("archive briefing failed", "panel", panel, "error", err)
				}
			}
		}
		return b, nil
	}

	var b llm.Briefing
	if useCache {
		v, _, _ := s.flight.Do(key, gen)
		b = v.(llm.Briefing)
	} else {
		v, _ := gen()
		b = v.(llm.Briefing)
	}

	outcome := "generated"
	if b.Fallback {
		outcome = "fallback"
	}
	s.Metrics.briefingServed(string(panel), outcome)
	return b, false
}

func (s *Server) ttlFor(panel llm.Panel) time.Duration {
	if panel == llm.PanelTicker {
		return s.TickerTTL
	}
	return s.BriefingTTL
}

func cacheKey(panel llm.Panel, args llm.PromptArgs) string {
	if label := argsLabel(args); label != "" {
		return string(panel) + "?" + label
	}
	return string(panel)
}

func argsLabel(args llm.PromptArgs) string {
	var parts []string
	if args.Hours != 0 {
		parts = append(parts, "t="+strconv.Itoa(args.Hours))
	}
	if args.Mission != "" {
		parts = append(parts, "mission="+args.Mission)
		parts = append(parts, "objectives="+strings.Join(args.Objectives, "; "))
	}
	return strings.Join(parts, "&")
}

func (s *Server) handleAdvisor(w http.ResponseWriter, r *http.Request) {
	var body struct {
		SessionID string `json:"session_id"`
		Message   string `json:"message"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	message := strings.TrimSpace(body.Message)
	if message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}

	id := body.SessionID
	if id == "" {
		id = uuid.NewString()
	} else if _, err := uuid.Parse(id); err != nil {
		http.Error(w, "invalid session_id", http.StatusBadRequest)
		return
	}

	adv, created := s.advisors.session(id)
	reply, ok := adv.Ask(r.Context(), message)
	s.Metrics.advisorReply(ok)

	resp := map[string]any{
		"session_id": id,
		"reply":      reply,
		"ok":         ok,
	}
	if created {
		resp["greeting"] = llm.AdvisorGreeting
	}
	writeJSON(w, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var panel llm.Panel
	if name := r.URL.Query().Get("panel"); name != "" {
		p, err := llm.ParsePanel(name)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		panel = p
	}

	limit := historyDefault
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = min(n, historyMax)
	}

	entries, err := s.DB.RecentBriefings(panel, limit)
	if err != nil {
		slog.Error("briefing history failed", "error", err)
		http.Error(w, "history unavailable", http.StatusInternalServerError)
		return
	}

	type historyEntry struct {
		persistence.ArchivedBriefing
		Age string `json:"age"`
	}
	out := make([]historyEntry, len(entries))
	for i, e := range entries {
		out[i] = historyEntry{ArchivedBriefing: e, Age: humanize.Time(e.GeneratedAt)}
	}
	writeJSON(w, out)
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	n := s.cache.purge()
	slog.Info("briefing cache purged", "entries", n)
	writeJSON(w, map[string]any{"purged": n})
}

// offsetHours reads the ?t= slider offset, 0..MaxOffsetHours.
func offsetHours(r *http.Request) (int, error) {
	v := r.URL.Query().Get("t")
	if v == "" {
		return 0, nil
	}
	h, err := strconv.Atoi(v)
	if err != nil || h < 0 || h > theater.MaxOffsetHours {
		return 0, fmt.Errorf("t must be an integer between 0 and %d", theater.MaxOffsetHours)
	}
	return h, nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, data any) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		slog.Debug("write response failed", "error", err)
	}
}
