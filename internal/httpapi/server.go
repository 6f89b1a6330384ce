// Package httpapi exposes the burst service as a JSON API for a
// presentation layer.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/nikbrunner/burst/internal/burst"
	"github.com/nikbrunner/burst/internal/logger"
	"github.com/nikbrunner/burst/internal/model"
	"github.com/nikbrunner/burst/internal/search"
	"github.com/nikbrunner/burst/internal/sorter"
	"github.com/nikbrunner/burst/internal/storage"
)

const shutdownTimeout = 5 * time.Second

// Server serves the JSON API.
type Server struct {
	svc    *burst.Service
	router *chi.Mux
}

// New builds the router for svc.
func New(svc *burst.Service) *Server {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	s := &Server{svc: svc, router: r}
	s.RegisterHTTP(r)
	return s
}

// RegisterHTTP registers the endpoints on r.
func (s *Server) RegisterHTTP(r chi.Router) {
	r.Get("/api/tree", s.handleTree)
	r.Get("/api/duplicates", s.handleDuplicates)
	r.Delete("/api/duplicates", s.handleCloseDuplicates)
	r.Get("/api/search", s.handleSearch)
	r.Get("/api/filter", s.handleFilter)
	r.Get("/api/checked", s.handleChecked)
	r.Get("/api/checked/urls", s.handleCheckedURLs)
	r.Post("/api/checked/clear", s.handleClearChecked)

	r.Route("/api/nodes/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetNode)
		r.Patch("/", s.handleEditNode)
		r.Delete("/", s.handleRemoveNode)
		r.Post("/toggle", s.handleToggle)
	})
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Log.WithField("addr", addr).Info("http api listening")
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// requestLogger logs each request through logrus.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		logger.Log.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     ww.Status(),
			"duration":   time.Since(start).String(),
			"request_id": middleware.GetReqID(r.Context()),
		}).Debug("request")
	})
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get("sort")
	if mode == "" {
		writeJSON(w, http.StatusOK, s.svc.Tree())
		return
	}
	m, err := sorter.ParseMode(mode)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Sort(m, true))
}

func (s *Server) handleDuplicates(w http.ResponseWriter, r *http.Request) {
	key, err := model.ParseKey(r.URL.Query().Get("by"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	set, err := s.svc.Duplicates(r.Context(), key)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, set)
}

func (s *Server) handleCloseDuplicates(w http.ResponseWriter, r *http.Request) {
	s.svc.CloseDuplicates()
	w.WriteHeader(http.StatusNoContent)
}

func searchRequest(r *http.Request) (burst.SearchRequest, error) {
	q := r.URL.Query()
	by := q.Get("by")
	if by == "" {
		by = string(model.KeyTitle)
	}
	key, err := model.ParseKey(by)
	if err != nil {
		return burst.SearchRequest{}, err
	}
	req := burst.SearchRequest{Key: key, Query: q.Get("q")}
	if st := q.Get("strategy"); st != "" {
		strategy, err := search.ParseStrategy(st)
		if err != nil {
			return burst.SearchRequest{}, err
		}
		req.Strategy = strategy
	}
	if t := q.Get("threshold"); t != "" {
		n, err := strconv.Atoi(t)
		if err != nil {
			return burst.SearchRequest{}, errors.New("threshold must be an integer")
		}
		req.Threshold = n
	}
	return req, nil
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	req, err := searchRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	results, err := s.svc.Search(r.Context(), req)
	if err != nil {
		s.fail(w, err)
		return
	}
	if results == nil {
		results = []search.SearchResult{}
	}
	writeJSON(w, http.StatusOK, results)
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	req, err := searchRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tree, err := s.svc.Filter(req)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *Server) handleChecked(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Checked())
}

func (s *Server) handleCheckedURLs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.CheckedURLs())
}

func (s *Server) handleClearChecked(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]int{"cleared": s.svc.ClearChecked()})
}

func (s *Server) handleGetNode(w http.ResponseWriter, r *http.Request) {
	n, err := s.svc.Node(chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleEditNode(w http.ResponseWriter, r *http.Request) {
	var fields model.Fields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	n, err := s.svc.Edit(r.Context(), chi.URLParam(r, "id"), fields)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Remove(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	checked, err := s.svc.Toggle(id)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "checked": checked})
}

// fail maps service and store errors to status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrInvalidKey), errors.Is(err, storage.ErrFolderURL):
		status = http.StatusBadRequest
	case errors.Is(err, burst.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, storage.ErrUnmodifiable):
		status = http.StatusForbidden
	case errors.Is(err, burst.ErrSourceUnavailable):
		status = http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		status = http.StatusRequestTimeout
	}
	if status == http.StatusInternalServerError {
		logger.Log.WithError(err).Error("request failed")
	}
	writeError(w, status, err)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("encode response")
	}
}
