// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render turns page templates into HTML responses.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"

	"github.com/olegiv/innercircle-portal/internal/model"
	"github.com/olegiv/innercircle-portal/internal/session"
)

// blankLinesRegex matches runs of blank lines left behind by template actions.
var blankLinesRegex = regexp.MustCompile(`(?:\r?\n[ \t]*){2,}`)

// Flash types.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

const (
	flashKey     = "flash"
	flashTypeKey = "flash_type"
)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	isAdmin        func(*model.Member) bool
	markdown       goldmark.Markdown
	sanitizer      *bluemonday.Policy
	isDev          bool
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	// IsAdmin decides whether the admin link is shown.
	IsAdmin func(*model.Member) bool
	IsDev   bool
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		isAdmin:        cfg.IsAdmin,
		markdown:       newMarkdown(),
		sanitizer:      newSanitizer(),
		isDev:          cfg.IsDev,
	}
	if r.isAdmin == nil {
		r.isAdmin = func(*model.Member) bool { return false }
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}
	return r, nil
}

// parseTemplates builds one template set per page: the base layout, every
// partial and the page itself. Pages live in pages/ and admin/.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := r.getTemplateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	const baseLayout = "layouts/base.html"

	for _, dir := range []string{"pages", "admin"} {
		pages, err := r.getTemplateFiles(templatesFS, dir)
		if err != nil {
			return fmt.Errorf("getting %s templates: %w", dir, err)
		}

		for _, tmplPath := range pages {
			name := dir + "/" + strings.TrimSuffix(path.Base(tmplPath), ".html")

			files := []string{baseLayout}
			files = append(files, partials...)
			files = append(files, tmplPath)

			tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(templatesFS, files...)
			if err != nil {
				return fmt.Errorf("parsing template %s: %w", name, err)
			}
			r.templates[name] = tmpl
		}
	}

	if len(r.templates) == 0 {
		return fmt.Errorf("no page templates found")
	}
	return nil
}

// getTemplateFiles returns all .html files in a directory.
func (r *Renderer) getTemplateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		// A missing directory is not an error.
		return nil, nil
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Data        any
	Session     session.Session
	IsAdmin     bool
	Flash       string
	FlashType   string
	CurrentPath string
	CurrentYear int
	IsDev       bool
}

// Member returns the signed-in member, or nil.
func (d TemplateData) Member() *model.Member {
	return d.Session.Member
}

// Render renders a page with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a page with the given status code.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	data.CurrentPath = req.URL.Path
	data.IsDev = r.isDev
	data.Session = session.FromContext(req.Context())
	data.IsAdmin = data.Session.IsAuthenticated && r.isAdmin(data.Session.Member)

	if r.sessionManager != nil {
		if flash := r.sessionManager.PopString(req.Context(), flashKey); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), flashTypeKey)
			if data.FlashType == "" {
				data.FlashType = FlashInfo
			}
		}
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(blankLinesRegex.ReplaceAll(buf.Bytes(), []byte("\n")))
	return nil
}

// SetFlash stores a message shown on the next rendered page.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager == nil {
		return
	}
	r.sessionManager.Put(req.Context(), flashKey, message)
	r.sessionManager.Put(req.Context(), flashTypeKey, flashType)
}

// ErrorPage is the data of pages/error.
type ErrorPage struct {
	Status  int
	Heading string
	Message string
}

// Error renders the error page. It falls back to plain text when the page
// itself cannot be rendered.
func (r *Renderer) Error(w http.ResponseWriter, req *http.Request, status int, message string) {
	page := ErrorPage{Status: status, Heading: http.StatusText(status), Message: message}
	if err := r.RenderStatus(w, req, status, "pages/error", TemplateData{Title: page.Heading, Data: page}); err != nil {
		slog.ErrorContext(req.Context(), "failed to render error page", "error", err, "status", status)
		http.Error(w, message, status)
	}
}

// LoadingRefreshSeconds is how often the loading page reloads itself.
const LoadingRefreshSeconds = 2

// Loading renders the blocking spinner shown while the session is resolved.
func (r *Renderer) Loading(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Refresh", fmt.Sprintf("%d", LoadingRefreshSeconds))
	w.Header().Set("Cache-Control", "no-store")
	if err := r.Render(w, req, "pages/loading", TemplateData{Title: "One moment"}); err != nil {
		slog.ErrorContext(req.Context(), "failed to render loading page", "error", err)
		http.Error(w, "Loading...", http.StatusOK)
	}
}

// Denied renders the inline access-denied page.
func (r *Renderer) Denied(w http.ResponseWriter, req *http.Request) {
	if err := r.RenderStatus(w, req, http.StatusForbidden, "pages/denied", TemplateData{Title: "Access Denied"}); err != nil {
		slog.ErrorContext(req.Context(), "failed to render denied page", "error", err)
		http.Error(w, "You do not have access to this page.", http.StatusForbidden)
	}
}
