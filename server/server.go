package server

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-flexcrew-dashboard/apiclient"
	"github.com/jrsteele09/go-flexcrew-dashboard/internal/config"
	"github.com/jrsteele09/go-flexcrew-dashboard/internal/metrics"
	"github.com/jrsteele09/go-flexcrew-dashboard/session"
	"github.com/rs/zerolog/log"
)

// Deps are the collaborators the dashboard server renders pages from
type Deps struct {
	Sessions *session.Manager
	Gate     *session.Gate
	API      *apiclient.Client
	Metrics  *metrics.Metrics
}

type Server struct {
	env      string // Environment (e.g., "DEV", "PROD")
	appName  string
	mux      *http.ServeMux
	routes   []string
	sessions *session.Manager
	gate     *session.Gate
	api      *apiclient.Client
	metrics  *metrics.Metrics
	pages    map[string]*template.Template

	allowedHosts config.AllowedHosts
}

func New(cfg config.EnvConfig, deps Deps) (*Server, error) {
	if deps.Sessions == nil || deps.Gate == nil || deps.API == nil {
		return nil, errors.New("[Server New] sessions, gate and api client are required")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		appName:  cfg.GetAppName(),
		mux:      http.NewServeMux(),
		sessions: deps.Sessions,
		gate:     deps.Gate,
		api:      deps.API,
		metrics:  deps.Metrics,
		pages:    make(map[string]*template.Template),

		allowedHosts: cfg.GetAllowedHosts(),
	}

	for _, page := range pageTemplates {
		tmpl, err := ParseTemplate(page)
		if err != nil {
			return nil, fmt.Errorf("[Server New] failed to parse template %s: %w", page, err)
		}
		s.pages[page] = tmpl
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Routes lists the registered patterns in registration order
func (s *Server) Routes() []string {
	return append([]string{}, s.routes...)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		log.Debug().Msgf("[%-19s] %s", colourMethod(method), path)
	}
}
