package minapi

import (
	"context"
	"encoding/json"
	"html/template"
	"io"
	"net/http"

	"gopkg.in/yaml.v3"
)

// ServeSpec registers a GET handler at the given pattern that serves the
// default document as JSON. It is registered on the raw mux, so it never
// appears in the document it serves.
func (a *App) ServeSpec(pattern string, opts ...DocumentOption) {
	svc := a.Document(defaultDocumentName, opts...)
	a.mux.HandleFunc("GET "+pattern, func(w http.ResponseWriter, r *http.Request) {
		doc, err := svc.GenerateDocument(r.Context())
		if err != nil {
			writeErrorResponse(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		//nolint:errcheck,gosec // best-effort after WriteHeader
		json.NewEncoder(w).Encode(doc)
	})
}

// ServeSpecYAML registers a GET handler at the given pattern that serves
// the default document as YAML.
func (a *App) ServeSpecYAML(pattern string, opts ...DocumentOption) {
	svc := a.Document(defaultDocumentName, opts...)
	a.mux.HandleFunc("GET "+pattern, func(w http.ResponseWriter, r *http.Request) {
		doc, err := svc.GenerateDocument(r.Context())
		if err != nil {
			writeErrorResponse(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		//nolint:errcheck,gosec // best-effort after WriteHeader
		yaml.NewEncoder(w).Encode(doc)
	})
}

// WriteSpec generates the default document and writes it as indented JSON.
func (a *App) WriteSpec(w io.Writer) error {
	doc, err := a.Document(defaultDocumentName).GenerateDocument(context.Background())
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteSpecYAML generates the default document and writes it as YAML.
func (a *App) WriteSpecYAML(w io.Writer) error {
	doc, err := a.Document(defaultDocumentName).GenerateDocument(context.Background())
	if err != nil {
		return err
	}
	return yaml.NewEncoder(w).Encode(doc)
}

// DocsOption configures the docs UI.
type DocsOption func(*docsConfig)

type docsConfig struct {
	title   string
	specURL string
}

// WithDocsTitle sets the page title for the docs UI.
func WithDocsTitle(title string) DocsOption {
	return func(c *docsConfig) {
		c.title = title
	}
}

// WithDocsSpecURL sets the spec URL the docs UI loads.
func WithDocsSpecURL(url string) DocsOption {
	return func(c *docsConfig) {
		c.specURL = url
	}
}

// ServeDocs serves an interactive API documentation UI at the given path.
// It renders Stoplight Elements pointing at the app's document endpoint.
func (a *App) ServeDocs(path string, opts ...DocsOption) {
	cfg := &docsConfig{
		title:   a.title,
		specURL: "/openapi.json",
	}
	for _, opt := range opts {
		opt(cfg)
	}

	tmpl := template.Must(template.New("docs").Parse(docsHTML))

	a.mux.HandleFunc("GET "+path, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		//nolint:errcheck,gosec // best-effort template render
		tmpl.Execute(w, cfg)
	})
}

const docsHTML = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <link rel="stylesheet" href="https://unpkg.com/@stoplight/elements/styles.min.css">
  <script src="https://unpkg.com/@stoplight/elements/web-components.min.js"></script>
</head>
<body>
  <elements-api
    apiDescriptionUrl="{{.SpecURL}}"
    router="hash"
    layout="sidebar"
  />
</body>
</html>`

// Title returns the docs config title (used in the template).
func (c *docsConfig) Title() string { return c.title }

// SpecURL returns the docs config spec URL (used in the template).
func (c *docsConfig) SpecURL() string { return c.specURL }
