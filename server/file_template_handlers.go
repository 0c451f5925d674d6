package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/jrsteele09/go-flexcrew-dashboard/session"
	"github.com/rs/zerolog"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	layoutTemplate  = "layout.html"
)

//go:embed templates/*
var templateFiles embed.FS

// pageTemplates are parsed once when the server is created
var pageTemplates = []string{
	"loading.html",
	"login.html",
	"home.html",
	"profile.html",
	"team.html",
	"weekly.html",
	"employees.html",
	"schedules.html",
	"schedule_form.html",
	"analytics.html",
	"projects.html",
	"project.html",
}

func TemplateFilesFS() fs.FS {
	// Create the sub filesystem once
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page from the embedded filesystem together with the
// shared layout. Pages define the "title" and "content" blocks.
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(layoutTemplate).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), layoutTemplate, name)
}

var templateFuncs = template.FuncMap{
	"percent": func(part, total int) int {
		if total <= 0 {
			return 0
		}
		return part * 100 / total
	},
}

// PageData is the model every page template receives
type PageData struct {
	AppName string
	Title   string
	Session session.Session
	Error   string
	Notice  string
	Data    any
}

func (s *Server) pageData(title string, data any) PageData {
	return PageData{
		AppName: s.appName,
		Title:   title,
		Session: s.sessions.Snapshot(),
		Data:    data,
	}
}

// render executes into a buffer first so a failing template never leaves a
// half written page behind.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, data PageData) {
	tmpl, ok := s.pages[page]
	if !ok {
		zerolog.Ctx(r.Context()).Error().Str("template", page).Msg("Unknown page template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, layoutTemplate, data); err != nil {
		zerolog.Ctx(r.Context()).Err(err).Str("template", page).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
