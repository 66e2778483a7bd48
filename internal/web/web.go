package web

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/techtech0521/schedule-timeline/internal/battery"
	"github.com/techtech0521/schedule-timeline/internal/config"
	appLog "github.com/techtech0521/schedule-timeline/internal/log"
	"github.com/techtech0521/schedule-timeline/internal/render"
	"github.com/techtech0521/schedule-timeline/internal/schedule"
	"github.com/techtech0521/schedule-timeline/internal/timeline"
	"github.com/techtech0521/schedule-timeline/internal/timeslot"
)

const dayCacheTTL = 30 * time.Second

// DayBuilder produces the events for today.
type DayBuilder interface {
	Build(ctx context.Context) (schedule.Day, error)
}

// Server serves the timeline page and its JSON API.
type Server struct {
	cfg         *config.Config
	builder     DayBuilder
	battery     battery.Reader
	previewPath string
	mux         *http.ServeMux

	assigner *timeline.Assigner

	// Building a day may hit ICS feeds; keep it off the per-request path.
	dayMu     sync.Mutex
	day       schedule.Day
	dayAt     time.Time
	dayCached bool

	now func() time.Time
}

// NewServer constructs a Server. battery may be nil when the footer does
// not show it.
func NewServer(cfg *config.Config, builder DayBuilder, br battery.Reader, previewPath string) *Server {
	s := &Server{
		cfg:         cfg,
		builder:     builder,
		battery:     br,
		previewPath: previewPath,
		mux:         http.NewServeMux(),
		assigner:    timeline.NewAssigner(),
		now:         time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler, wrapped in Basic Auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) basicAuthEnabled() bool {
	return s.cfg != nil && s.cfg.BasicAuth != nil &&
		s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware guards everything except /health.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="Schedule", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen, "basic_auth", s.basicAuthEnabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /timeline", s.handleTimelinePage)
	s.mux.HandleFunc("GET /api/timeline", s.handleTimeline)
	s.mux.HandleFunc("GET /api/timeslot", s.handleTimeSlot)
	s.mux.HandleFunc("GET /api/battery", s.handleBattery)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /preview.png", s.handlePreview)
	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/timeline", http.StatusFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// View builds the render model for today. Feed errors are logged; the page
// still shows whatever could be assembled.
func (s *Server) View(ctx context.Context) render.View {
	day := s.currentDay(ctx)
	opts := s.renderOptions(ctx)
	opts.UpdatedAt = s.now().In(day.Date.Location())
	return render.NewView(day.Date, s.assigner.Layouts(day.Events), opts)
}

func (s *Server) currentDay(ctx context.Context) schedule.Day {
	s.dayMu.Lock()
	defer s.dayMu.Unlock()

	if s.dayCached && s.now().Sub(s.dayAt) < dayCacheTTL {
		return s.day
	}

	day, err := s.builder.Build(ctx)
	if err != nil {
		appLog.Error("building day had errors", err, "events", len(day.Events))
	}
	s.day, s.dayAt, s.dayCached = day, s.now(), true
	return day
}

// Invalidate drops the cached day so the next request rebuilds it.
func (s *Server) Invalidate() {
	s.dayMu.Lock()
	s.dayCached = false
	s.dayMu.Unlock()
}

func (s *Server) renderOptions(ctx context.Context) render.Options {
	opts := render.Options{
		Title:      s.cfg.Title,
		Subtitle:   s.cfg.Subtitle,
		ShowFooter: s.cfg.ShowFooter,
		FooterText: s.cfg.FooterText,
		FooterIcon: s.cfg.FooterIcon,
	}
	if s.cfg.ShowBattery && s.battery != nil {
		if st, err := s.battery.Read(ctx); err == nil {
			pct := st.Percent
			opts.Battery = &pct
		} else {
			appLog.Error("battery read failed", err)
		}
	}
	return opts
}

func (s *Server) handleTimelinePage(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := render.HTML(&buf, s.View(r.Context())); err != nil {
		appLog.Error("render timeline page failed", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.View(r.Context()))
}

// timeSlotResponse echoes what the parser makes of a slot.
type timeSlotResponse struct {
	Slot            string  `json:"slot"`
	Valid           bool    `json:"valid"`
	Kind            string  `json:"kind"`
	StartTime       string  `json:"start_time"`
	StartHour       int     `json:"start_hour"`
	StartMinute     int     `json:"start_minute"`
	EndTime         *string `json:"end_time"`
	EndHour         *int    `json:"end_hour,omitempty"`
	EndMinute       *int    `json:"end_minute,omitempty"`
	Formatted       string  `json:"formatted"`
	DurationMinutes int     `json:"duration_minutes"`
}

// handleTimeSlot: GET /api/timeslot?slot=08:00-09:30
func (s *Server) handleTimeSlot(w http.ResponseWriter, r *http.Request) {
	slot := r.URL.Query().Get("slot")
	p := timeslot.Parse(slot)

	resp := timeSlotResponse{
		Slot:            slot,
		Valid:           timeslot.IsValid(slot),
		Kind:            p.Kind.String(),
		StartTime:       p.StartTime,
		StartHour:       p.StartHour,
		StartMinute:     p.StartMinute,
		Formatted:       timeslot.Format(slot),
		DurationMinutes: timeslot.DurationMinutes(slot),
	}
	if p.HasEnd() {
		resp.EndTime = &p.EndTime
		resp.EndHour = &p.EndHour
		resp.EndMinute = &p.EndMinute
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBattery(w http.ResponseWriter, r *http.Request) {
	if s.battery == nil {
		writeError(w, http.StatusNotFound, "battery reader not configured")
		return
	}
	st, err := s.battery.Read(r.Context())
	if err != nil {
		appLog.Error("battery read failed", err)
		writeError(w, http.StatusInternalServerError, "failed to read battery")
		return
	}
	writeJSON(w, http.StatusOK, st)
}

// handleRefresh drops the cached day; the next page load rebuilds it.
func (s *Server) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	s.Invalidate()
	w.WriteHeader(http.StatusNoContent)
}

// handlePreview serves the last captured PNG; 404 until the first capture.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	if s.previewPath == "" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, s.previewPath)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
