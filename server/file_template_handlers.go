package server

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/jrsteele09/aicp-web/apiclient"
	"github.com/jrsteele09/aicp-web/internal/logging"
	"github.com/jrsteele09/aicp-web/internal/utils"
)

const contentTypeHTML = "text/html; charset=utf-8"

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// templateSet holds one template per page, each a clone of the layout and partials,
// plus the shared set used to render htmx fragments.
type templateSet struct {
	pages     map[string]*template.Template
	fragments *template.Template
}

var templateFuncs = template.FuncMap{
	"deref": utils.Value[string],
	"initial": func(s string) string {
		for _, r := range s {
			return string(r)
		}
		return "?"
	},
	"userError":  userError,
	"formatTime": func(t time.Time) string { return t.UTC().Format(time.RFC1123) },
}

func loadTemplates() (*templateSet, error) {
	fsys := TemplateFilesFS()

	base, err := template.New("base").Funcs(templateFuncs).ParseFS(fsys, "layout.html", "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	pageFiles, err := fs.Glob(fsys, "pages/*.html")
	if err != nil {
		return nil, err
	}

	set := &templateSet{pages: make(map[string]*template.Template, len(pageFiles))}
	for _, file := range pageFiles {
		page, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := page.ParseFS(fsys, file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", file, err)
		}
		set.pages[path.Base(file)] = page
	}
	set.fragments = base
	return set, nil
}

// PageData is the model every page template receives
type PageData struct {
	AppName string
	User    *apiclient.User
	Error   string
	Data    any
}

func (s *Server) pageData(r *http.Request, data any) PageData {
	pd := PageData{
		AppName: s.config.GetAppName(),
		Error:   r.URL.Query().Get("error"),
		Data:    data,
	}
	if rs, ok := sessionFromContext(r.Context()); ok {
		user := rs.Token.User
		pd.User = &user
	}
	return pd
}

// renderPage executes a page into a buffer first so a template error never leaves a half written response
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, page string, status int, data PageData) {
	tmpl, ok := s.templates.pages[page]
	if !ok {
		logging.FromContext(r.Context()).Error().Str("page", page).Msg("unknown page template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	s.execute(w, r, tmpl, "layout", status, data)
}

func (s *Server) renderFragment(w http.ResponseWriter, r *http.Request, name string, data any) {
	s.execute(w, r, s.templates.fragments, name, http.StatusOK, data)
}

func (s *Server) execute(w http.ResponseWriter, r *http.Request, tmpl *template.Template, name string, status int, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logging.FromContext(r.Context()).Err(err).Str("template", name).Msg("Failed to render template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

var userFacingErrors = []error{
	apiclient.ErrFetchProjects,
	apiclient.ErrFetchProject,
	apiclient.ErrCreateProject,
	apiclient.ErrFetchPrograms,
	apiclient.ErrFetchProductionConfigs,
	apiclient.ErrFetchUser,
}

// userError turns an operation failure into the message shown on the page, hiding backend detail
func userError(err error) string {
	if err == nil {
		return ""
	}
	for _, sentinel := range userFacingErrors {
		if errors.Is(err, sentinel) {
			msg := sentinel.Error()
			return strings.ToUpper(msg[:1]) + msg[1:]
		}
	}
	return "Something went wrong"
}
