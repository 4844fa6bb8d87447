package minapi

import (
	"fmt"
	"net/http"
	"reflect"
)

// endpoint holds everything registered for one route: the reflected
// handler, the ordered metadata bag, and the filter factories. Endpoints
// are immutable once the application starts serving.
type endpoint struct {
	method  string
	pattern string

	routeName string
	groupName string

	status     int
	paramNames []string

	metadata  []any
	factories []FilterFactory

	h       handlerInfo
	handler http.Handler
}

// RouteOption configures an endpoint at registration time.
type RouteOption func(*endpoint)

// WithName sets the route name, used as the operationId when no explicit
// one is declared.
func WithName(name string) RouteOption {
	return func(e *endpoint) {
		e.routeName = name
	}
}

// WithGroupName sets the controller grouping the endpoint belongs to.
// Endpoints without explicit tags get one tag named after their group.
func WithGroupName(name string) RouteOption {
	return func(e *endpoint) {
		e.groupName = name
	}
}

// WithStatus sets the default HTTP status code for successful responses.
func WithStatus(code int) RouteOption {
	return func(e *endpoint) {
		e.status = code
	}
}

// WithParams names the handler's bindable parameters in declaration
// order. Names matching a pattern variable bind from the path; the rest
// bind from the query string. Without it, parameters map positionally to
// the pattern variables.
func WithParams(names ...string) RouteOption {
	return func(e *endpoint) {
		e.paramNames = names
	}
}

// WithSummary sets the operation summary.
func WithSummary(s string) RouteOption {
	return WithMetadata(SummaryMetadata{Summary: s})
}

// WithDescription sets the operation description.
func WithDescription(d string) RouteOption {
	return WithMetadata(DescriptionMetadata{Description: d})
}

// WithTags sets the operation tags. A later WithTags replaces an earlier
// one outright.
func WithTags(tags ...string) RouteOption {
	return WithMetadata(TagsMetadata{Tags: tags})
}

// WithOperationID sets an explicit operationId.
func WithOperationID(id string) RouteOption {
	return WithMetadata(OperationIDMetadata{ID: id})
}

// WithResponseType declares a response body type for a status code.
func WithResponseType(status int, prototype any, contentTypes ...string) RouteOption {
	return WithMetadata(ResponseTypeMetadata{
		StatusCode:   status,
		Type:         reflect.TypeOf(prototype),
		ContentTypes: contentTypes,
	})
}

// WithDefaultResponse declares the response covering all otherwise
// undeclared status codes.
func WithDefaultResponse(status int, prototype any, contentTypes ...string) RouteOption {
	return WithMetadata(ResponseTypeMetadata{
		StatusCode:   status,
		Type:         reflect.TypeOf(prototype),
		ContentTypes: contentTypes,
		IsDefault:    true,
	})
}

// WithProduces declares additional produced content types for a status
// code, emitted without schemas.
func WithProduces(status int, contentTypes ...string) RouteOption {
	return WithMetadata(ProducesMetadata{StatusCode: status, ContentTypes: contentTypes})
}

// WithBody declares a required request body of the prototype's type.
func WithBody(prototype any, contentTypes ...string) RouteOption {
	return WithMetadata(AcceptsMetadata{Type: reflect.TypeOf(prototype), ContentTypes: contentTypes})
}

// WithOptionalBody declares an optional request body of the prototype's type.
func WithOptionalBody(prototype any, contentTypes ...string) RouteOption {
	return WithMetadata(AcceptsMetadata{
		Type:         reflect.TypeOf(prototype),
		ContentTypes: contentTypes,
		Optional:     true,
	})
}

// WithFormParam declares a form-bound parameter. Container names the
// bound model it originated from; parameters sharing a container collapse
// into one schema group.
func WithFormParam(name string, prototype any, container string) RouteOption {
	return WithMetadata(FormParameterMetadata{
		Name:      name,
		Type:      reflect.TypeOf(prototype),
		Container: container,
	})
}

// WithRequired marks a named parameter as required in the generated document.
func WithRequired(name string) RouteOption {
	return WithMetadata(RequiredMetadata{Name: name})
}

// WithExcludeFromDescription removes the endpoint from generated documents.
func WithExcludeFromDescription() RouteOption {
	return WithMetadata(ExcludeMetadata{})
}

// WithMetadata appends arbitrary metadata entries to the endpoint's bag.
func WithMetadata(items ...any) RouteOption {
	return func(e *endpoint) {
		e.metadata = append(e.metadata, items...)
	}
}

// WithFilterFactory appends a filter factory. The first registered factory
// runs outermost at request time.
func WithFilterFactory(factories ...FilterFactory) RouteOption {
	return func(e *endpoint) {
		e.factories = append(e.factories, factories...)
	}
}

// WithFilter appends a request-time filter with no build-time setup.
func WithFilter(filters ...FilterFunc) RouteOption {
	return func(e *endpoint) {
		for _, f := range filters {
			e.factories = append(e.factories, f.Factory())
		}
	}
}

// Registrar is the interface accepted by the registration functions.
// Both *App and *Group implement it.
type Registrar interface {
	addEndpoint(e *endpoint)
	routePrefix() string
	routeGroupName() string
	routeMetadata() []any
	routeFactories() []FilterFactory
	routeMiddleware() []Middleware
	appServices() map[string]any
	appErrorHandler() ErrorHandler
}

// register builds and registers one endpoint. Handler signature problems
// are configuration errors and panic at startup, like http.ServeMux does
// for malformed patterns.
func register(reg Registrar, method, pattern string, handler any, opts ...RouteOption) {
	e := &endpoint{
		method:    method,
		pattern:   reg.routePrefix() + pattern,
		groupName: reg.routeGroupName(),
		metadata:  append([]any(nil), reg.routeMetadata()...),
		factories: append([]FilterFactory(nil), reg.routeFactories()...),
	}

	for _, opt := range opts {
		opt(e)
	}

	h, err := parseHandler(handler, e.pattern, e.paramNames)
	if err != nil {
		panic(fmt.Sprintf("minapi: %v", err))
	}
	e.h = h

	if e.status == 0 {
		e.status = http.StatusOK
	}

	fctx := FilterFactoryContext{
		Handler:  h.typ,
		Metadata: e.metadata,
		Services: reg.appServices(),
	}
	e.handler = newDelegate(h, fctx, e.factories, e.status, reg.appErrorHandler())

	routeMW := reg.routeMiddleware()
	for i := len(routeMW) - 1; i >= 0; i-- {
		e.handler = routeMW[i](e.handler)
	}

	reg.addEndpoint(e)
}

// Get registers a GET handler.
func Get(reg Registrar, pattern string, handler any, opts ...RouteOption) {
	register(reg, http.MethodGet, pattern, handler, opts...)
}

// Post registers a POST handler.
func Post(reg Registrar, pattern string, handler any, opts ...RouteOption) {
	register(reg, http.MethodPost, pattern, handler, opts...)
}

// Put registers a PUT handler.
func Put(reg Registrar, pattern string, handler any, opts ...RouteOption) {
	register(reg, http.MethodPut, pattern, handler, opts...)
}

// Patch registers a PATCH handler.
func Patch(reg Registrar, pattern string, handler any, opts ...RouteOption) {
	register(reg, http.MethodPatch, pattern, handler, opts...)
}

// Delete registers a DELETE handler.
func Delete(reg Registrar, pattern string, handler any, opts ...RouteOption) {
	register(reg, http.MethodDelete, pattern, handler, opts...)
}
