package minapi

// Group is a collection of endpoints under a shared prefix with shared
// filters, metadata, middleware, and a controller grouping name.
type Group struct {
	app        *App
	prefix     string
	name       string
	metadata   []any
	factories  []FilterFactory
	middleware []Middleware
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithGroupMetadata appends metadata to every endpoint registered on the
// group. Group metadata precedes route metadata, so route-level entries
// win under the last-registered-wins policy.
func WithGroupMetadata(items ...any) GroupOption {
	return func(g *Group) {
		g.metadata = append(g.metadata, items...)
	}
}

// WithGroupFilters appends filter factories to every endpoint registered
// on the group. Group filters register before route filters and therefore
// wrap them.
func WithGroupFilters(factories ...FilterFactory) GroupOption {
	return func(g *Group) {
		g.factories = append(g.factories, factories...)
	}
}

// WithGroupMiddleware adds HTTP middleware to the group.
func WithGroupMiddleware(mw ...Middleware) GroupOption {
	return func(g *Group) {
		g.middleware = append(g.middleware, mw...)
	}
}

// Group creates a route group with the given prefix and controller
// grouping name. Endpoints on the group without explicit tags get one
// tag named after the group.
func (a *App) Group(prefix, name string, opts ...GroupOption) *Group {
	g := &Group{
		app:    a,
		prefix: prefix,
		name:   name,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Group) addEndpoint(e *endpoint)         { g.app.addEndpoint(e) }
func (g *Group) routePrefix() string             { return g.prefix }
func (g *Group) routeGroupName() string          { return g.name }
func (g *Group) routeMetadata() []any            { return g.metadata }
func (g *Group) routeFactories() []FilterFactory { return g.factories }
func (g *Group) routeMiddleware() []Middleware   { return g.middleware }
func (g *Group) appServices() map[string]any     { return g.app.services }
func (g *Group) appErrorHandler() ErrorHandler   { return g.app.errorHandler }
