// Package server exposes the reminder form over a small JSON API for a
// browser front end.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/medremind/internal/constants"
	"github.com/julianstephens/medremind/internal/identity"
	"github.com/julianstephens/medremind/internal/logger"
	"github.com/julianstephens/medremind/internal/models"
	"github.com/julianstephens/medremind/internal/reminder"
	"github.com/julianstephens/medremind/internal/session"
)

const maxBodyBytes = 1 << 20

// Server serves the reminder API on top of a persistence adapter.
type Server struct {
	persist  session.Persistence
	settings models.Settings
	router   chi.Router

	mu       sync.Mutex
	inflight map[string]struct{}
}

func New(p session.Persistence, settings models.Settings) *Server {
	s := &Server{
		persist:  p,
		settings: settings,
		inflight: map[string]struct{}{},
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		middleware.RealIP,
		middleware.CleanPath,
		requestLogger,
		middleware.Timeout(30*time.Second),
	)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": constants.Version})
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/saved", s.getSaved)
		r.Route("/reminders/{id}", func(r chi.Router) {
			r.Use(s.validID)
			r.Get("/", s.getReminder)
			r.With(s.oneAtATime).Put("/", s.putReminder)
			r.With(s.oneAtATime).Delete("/", s.deleteReminder)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully within shutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ErrorLog:          logger.StandardLog(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("API listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("API shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) validID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := identity.Validate(chi.URLParam(r, "id")); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		next.ServeHTTP(w, r)
	})
}

// oneAtATime rejects a write for an id that already has one in flight.
func (s *Server) oneAtATime(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		s.mu.Lock()
		if _, busy := s.inflight[id]; busy {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, session.ErrSaveInProgress.Error())
			return
		}
		s.inflight[id] = struct{}{}
		s.mu.Unlock()

		defer func() {
			s.mu.Lock()
			delete(s.inflight, id)
			s.mu.Unlock()
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) getReminder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	res, err := s.persist.Load(r.Context(), id)
	switch {
	case errors.Is(err, reminder.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case errors.Is(err, reminder.ErrRemoteUnavailable):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeDocument(w, res)
}

func (s *Server) putReminder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, err.Error())
		return
	}
	week, err := reminder.DecodeStrict(body)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	form := session.NewForm(id, s.persist, s.settings)
	form.Schedule().Replace(week)

	ack, err := form.Save(r.Context())
	switch {
	case errors.Is(err, session.ErrNoDaysSelected):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	case errors.Is(err, reminder.ErrSaveFailed):
		writeError(w, http.StatusBadGateway, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":        ack.ID,
		"updatedAt": ack.UpdatedAt,
	})
}

func (s *Server) deleteReminder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.persist.Remove(r.Context(), id); err != nil {
		if errors.Is(err, reminder.ErrDeleteFailed) {
			writeError(w, http.StatusBadGateway, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSaved(w http.ResponseWriter, r *http.Request) {
	res, err := s.persist.LoadFromCacheOnly()
	if errors.Is(err, reminder.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeDocument(w, res)
}

// writeDocument responds with the reminder document plus id and updatedAt.
func writeDocument(w http.ResponseWriter, res reminder.LoadResult) {
	data, err := reminder.Encode(res.Week)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	doc["id"] = res.ID
	doc["updatedAt"] = res.UpdatedAt

	w.Header().Set(constants.SourceHeader, res.Source.String())
	writeJSON(w, http.StatusOK, doc)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}
