package minapi

import (
	"reflect"

	"golang.org/x/time/rate"
)

// FilterInvocation executes the rest of the filter chain for one request
// and yields the terminal handler's result.
type FilterInvocation func(ic *InvocationContext) (any, error)

// FilterFactory builds a filter around next. Factories run once per
// endpoint at registration time, so they can resolve metadata or allocate
// shared state up front and close over it for every request.
type FilterFactory func(fctx FilterFactoryContext, next FilterInvocation) FilterInvocation

// FilterFactoryContext is the build-time view a factory gets of its
// endpoint: the handler's reflected signature, the metadata bag, and the
// application's shared services.
type FilterFactoryContext struct {
	// Handler is the reflected type of the endpoint's handler function.
	Handler reflect.Type

	// Metadata is the endpoint's metadata in registration order.
	Metadata []any

	// Services are the application-level shared services by name.
	Services map[string]any
}

// FilterFunc is a request-time-only filter for the common case where no
// build-time setup is needed.
type FilterFunc func(ic *InvocationContext, next FilterInvocation) (any, error)

// Factory adapts a FilterFunc into a FilterFactory.
func (f FilterFunc) Factory() FilterFactory {
	return func(_ FilterFactoryContext, next FilterInvocation) FilterInvocation {
		return func(ic *InvocationContext) (any, error) {
			return f(ic, next)
		}
	}
}

// buildFilterPipeline composes the factories around terminal. Factories
// are applied in reverse registration order so that the first-registered
// factory ends up outermost: it runs first on the way in and last on the
// way out. With zero factories the terminal invocation is returned as is.
func buildFilterPipeline(fctx FilterFactoryContext, factories []FilterFactory, terminal FilterInvocation) FilterInvocation {
	inv := terminal
	for i := len(factories) - 1; i >= 0; i-- {
		inv = factories[i](fctx, inv)
	}
	return inv
}

// RateLimitFilter returns a filter factory that applies a token-bucket
// rate limit to one endpoint. The limiter is created once at build time
// and shared by every request to the endpoint.
func RateLimitFilter(rps float64, burst int) FilterFactory {
	return func(_ FilterFactoryContext, next FilterInvocation) FilterInvocation {
		limiter := rate.NewLimiter(rate.Limit(rps), burst)
		return func(ic *InvocationContext) (any, error) {
			if !limiter.Allow() {
				return nil, Error(429, "rate limit exceeded")
			}
			return next(ic)
		}
	}
}
