// Package web serves the search UI and the JSON search API.
package web

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/steamdex/steamdex/internal/catalog"
	"github.com/steamdex/steamdex/internal/db"
	"github.com/steamdex/steamdex/internal/logging"
	"github.com/steamdex/steamdex/internal/metrics"
)

//go:embed templates/*
var templates embed.FS

// Server handles HTTP requests.
type Server struct {
	engine *catalog.Engine
	store  *db.Store
	conn   *sql.DB
	mux    *http.ServeMux
	tmpl   *template.Template
}

// NewServer creates a web server over the search engine and store.
func NewServer(engine *catalog.Engine, store *db.Store, conn *sql.DB) *Server {
	s := &Server{
		engine: engine,
		store:  store,
		conn:   conn,
		mux:    http.NewServeMux(),
		tmpl:   template.Must(template.ParseFS(templates, "templates/index.html")),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/search", s.handleSearchAPI)
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/metrics", s.handleMetrics)
	s.mux.HandleFunc("/", s.handleIndex)
}

// formValues keeps the raw form inputs so the page can echo them back.
type formValues struct {
	Name     string
	Tags     string
	MinPrice string
	MaxPrice string
}

type pageData struct {
	Form     formValues
	Results  []catalog.Result
	Error    string
	Titles   []string
	TagNames []string
}

func searchParams(r *http.Request) (catalog.Params, formValues, error) {
	q := r.URL.Query()
	form := formValues{
		Name:     q.Get("name"),
		Tags:     q.Get("tags"),
		MinPrice: q.Get("min_price"),
		MaxPrice: q.Get("max_price"),
	}

	params := catalog.Params{Name: form.Name, Tags: form.Tags}

	minBound, err := catalog.ParsePriceBound(form.MinPrice)
	if err != nil {
		return params, form, fmt.Errorf("minimum price: %w", err)
	}
	if minBound != nil {
		params.MinPrice = *minBound
	}

	params.MaxPrice, err = catalog.ParsePriceBound(form.MaxPrice)
	if err != nil {
		return params, form, fmt.Errorf("maximum price: %w", err)
	}

	return params, form, nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := pageData{}
	data.Titles, _ = s.store.AllTitles(r.Context())
	data.TagNames, _ = s.store.AllTagNames(r.Context())

	params, form, err := searchParams(r)
	data.Form = form
	if err == nil {
		data.Results, err = s.engine.Search(r.Context(), params)
	}
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidRange):
			metrics.SearchesTotal.WithLabelValues("invalid").Inc()
			data.Error = err.Error()
		default:
			metrics.SearchesTotal.WithLabelValues("error").Inc()
			logging.Error("search failed", "error", err)
			http.Error(w, "search failed", http.StatusInternalServerError)
			return
		}
	} else {
		metrics.SearchesTotal.WithLabelValues("ok").Inc()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.Execute(w, data); err != nil {
		logging.Error("render failed", "error", err)
	}
}

func (s *Server) handleSearchAPI(w http.ResponseWriter, r *http.Request) {
	params, _, err := searchParams(r)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("invalid").Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	results, err := s.engine.Search(r.Context(), params)
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidRange) {
			metrics.SearchesTotal.WithLabelValues("invalid").Inc()
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		logging.Error("search failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "search failed"})
		return
	}

	metrics.SearchesTotal.WithLabelValues("ok").Inc()
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if err := metrics.UpdateDBMetrics(s.conn); err != nil {
		logging.Warn("metrics refresh failed", "error", err)
	}
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	err := s.conn.PingContext(r.Context())
	status := "healthy"
	statusCode := http.StatusOK
	if err != nil {
		status = "unhealthy"
		statusCode = http.StatusServiceUnavailable
	}
	writeJSON(w, statusCode, map[string]string{
		"status": status,
		"db":     fmt.Sprintf("%v", err == nil),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
