package minapi

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// App is the central type that holds endpoints, middleware, and document
// configuration. It implements http.Handler.
type App struct {
	mux        *http.ServeMux
	middleware []Middleware
	endpoints  []*endpoint

	title   string
	version string
	servers []Server

	services     map[string]any
	errorHandler ErrorHandler

	docMu     sync.Mutex
	documents map[string]*DocumentService

	mu sync.Mutex
}

// Option configures an App.
type Option func(*App)

// WithTitle sets the API title (used in generated documents).
func WithTitle(title string) Option {
	return func(a *App) {
		a.title = title
	}
}

// WithVersion sets the API version (used in generated documents).
func WithVersion(version string) Option {
	return func(a *App) {
		a.version = version
	}
}

// WithServers sets the servers array for generated documents.
func WithServers(servers ...Server) Option {
	return func(a *App) {
		a.servers = servers
	}
}

// WithService registers a named shared service, exposed to filter
// factories through the build-time context.
func WithService(name string, svc any) Option {
	return func(a *App) {
		if a.services == nil {
			a.services = make(map[string]any)
		}
		a.services[name] = svc
	}
}

// WithErrorHandler sets a custom error response writer for all endpoints.
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// New creates a new App with the given options.
func New(opts ...Option) *App {
	a := &App{
		mux:       http.NewServeMux(),
		documents: make(map[string]*DocumentService),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Use adds middleware to the app. Middleware is applied in the order added.
func (a *App) Use(mw ...Middleware) {
	a.middleware = append(a.middleware, mw...)
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	handler := http.Handler(a.mux)
	for i := len(a.middleware) - 1; i >= 0; i-- {
		handler = a.middleware[i](handler)
	}
	handler.ServeHTTP(w, req)
}

// ListenAndServe starts an HTTP server on the given address. It blocks
// until the context is cancelled, then shuts down gracefully.
func (a *App) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           a,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// addEndpoint registers an endpoint with the app's mux and stores its
// description source for document generation. Global middleware is applied
// in ServeHTTP, not here; only group middleware is baked into e.handler.
func (a *App) addEndpoint(e *endpoint) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.mux.Handle(e.method+" "+e.pattern, e.handler)
	a.endpoints = append(a.endpoints, e)
}

func (a *App) routePrefix() string             { return "" }
func (a *App) routeGroupName() string          { return "" }
func (a *App) routeMetadata() []any            { return nil }
func (a *App) routeFactories() []FilterFactory { return nil }
func (a *App) routeMiddleware() []Middleware   { return nil }
func (a *App) appServices() map[string]any     { return a.services }
func (a *App) appErrorHandler() ErrorHandler   { return a.errorHandler }

// Document returns the document service for a name, creating it on first
// use. Options apply only on creation; the title, version, and servers
// configured on the app seed the document's info block unless overridden.
func (a *App) Document(name string, opts ...DocumentOption) *DocumentService {
	a.docMu.Lock()
	defer a.docMu.Unlock()

	if svc, ok := a.documents[name]; ok {
		return svc
	}

	defaults := []DocumentOption{
		WithDocumentInfo(Info{Title: a.title, Version: a.version}),
		WithDocumentServers(a.servers...),
	}
	svc := NewDocumentService(name, a, append(defaults, opts...)...)
	a.documents[name] = svc
	return svc
}

// defaultDocumentName is used by the Serve and Write helpers.
const defaultDocumentName = "v1"
