// Package server exposes the attendance map over HTTP: a JSON API for
// check-ins and selections, the board state the page polls, and the page.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"iter"
	"net/http"
	"time"

	"go.uber.org/zap"

	"attendance/internal/models"
	"attendance/pkg/locationstore"
	"attendance/pkg/render"
)

//go:embed templates/index.html
var templates embed.FS

const shutdownTimeout = 10 * time.Second

// Controller handles the two interaction events.
type Controller interface {
	OnCheckIn(name string) (models.Snapshot, error)
	OnMarkerSelect(name string) (models.Snapshot, error)
}

// Locations is the read side of the location store.
type Locations interface {
	All() iter.Seq[models.Snapshot]
	Get(name string) (models.Snapshot, error)
	Record(name string) (models.Record, error)
}

type BoardSource interface {
	State() render.BoardState
}

// Location is the API representation of one location.
type Location struct {
	Name          string     `json:"name"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	Address       string     `json:"address,omitempty"`
	VisitCount    int        `json:"visitCount"`
	LastVisitedAt *time.Time `json:"lastVisitedAt,omitempty"`
	LastVisited   string     `json:"lastVisited"`
}

type errorBody struct {
	Error string `json:"error"`
}

type Server struct {
	ctrl      Controller
	locations Locations
	board     BoardSource
	title     string
	reload    func(ctx context.Context) error
	logger    *zap.Logger
	page      *template.Template
}

type Option func(*Server)

func WithTitle(title string) Option {
	return func(s *Server) { s.title = title }
}

// WithReload enables POST /api/reload, which calls fn.
func WithReload(fn func(ctx context.Context) error) Option {
	return func(s *Server) { s.reload = fn }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(ctrl Controller, locations Locations, board BoardSource, opts ...Option) *Server {
	s := &Server{
		ctrl:      ctrl,
		locations: locations,
		board:     board,
		title:     "Attendance",
		logger:    zap.NewNop(),
		page:      template.Must(template.ParseFS(templates, "templates/index.html")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed, logged handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/locations", s.handleList)
	mux.HandleFunc("GET /api/locations/{name}", s.handleGet)
	mux.HandleFunc("POST /api/locations/{name}/checkin", s.handleCheckIn)
	mux.HandleFunc("POST /api/locations/{name}/select", s.handleSelect)
	mux.HandleFunc("GET /api/board", s.handleBoard)
	if s.reload != nil {
		mux.HandleFunc("POST /api/reload", s.handleReload)
	}
	mux.HandleFunc("GET /{$}", s.handlePage)
	return s.logRequests(mux)
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	out := []Location{}
	for snap := range s.locations.All() {
		rec, err := s.locations.Record(snap.Name)
		if err != nil {
			// reloaded while iterating
			continue
		}
		out = append(out, toLocation(rec, snap))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	snap, err := s.locations.Get(name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeLocation(w, snap)
}

func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ctrl.OnCheckIn(r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeLocation(w, snap)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	snap, err := s.ctrl.OnMarkerSelect(r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeLocation(w, snap)
}

func (s *Server) handleBoard(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.board.State())
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.reload(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.board.State())
}

func (s *Server) handlePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.page.Execute(w, map[string]string{"Title": s.title}); err != nil {
		s.logger.Error("failed to render page", zap.Error(err))
	}
}

func (s *Server) writeLocation(w http.ResponseWriter, snap models.Snapshot) {
	rec, err := s.locations.Record(snap.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toLocation(rec, snap))
}

// writeError maps store errors to status codes. The controller has already
// reported the failure, so nothing is logged here.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, locationstore.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, locationstore.ErrInvalidData), errors.Is(err, locationstore.ErrDuplicateName):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func toLocation(rec models.Record, snap models.Snapshot) Location {
	return Location{
		Name:          snap.Name,
		Latitude:      rec.Latitude,
		Longitude:     rec.Longitude,
		Address:       rec.Address,
		VisitCount:    snap.VisitCount,
		LastVisitedAt: snap.LastVisitedAt,
		LastVisited:   snap.LastVisitedLabel(render.DateLayout),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)))
	})
}
