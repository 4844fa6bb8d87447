// Package minapi is a minimal-endpoint HTTP framework for Go. Handlers are
// plain functions whose parameters are bound positionally from the route
// pattern and query string, and the framework derives an OpenAPI 3.1
// document from endpoint metadata attached at registration time.
//
// Routes are registered with package-level functions:
//
//	app := minapi.New(minapi.WithTitle("My API"), minapi.WithVersion("1.0.0"))
//	minapi.Get(app, "/hello/{name}", func(name string) string {
//	    return "Hello, " + name + "!"
//	})
//
// Per-endpoint filters wrap the handler invocation in an onion: the first
// registered filter runs outermost. Filter factories run once per endpoint
// at registration, so expensive setup (metadata lookups, limiters) is done
// at build time and closed over for every request:
//
//	minapi.Get(app, "/hello/{name}", sayHello,
//	    minapi.WithFilter(func(ic *minapi.InvocationContext, next minapi.FilterInvocation) (any, error) {
//	        out, err := next(ic)
//	        return fmt.Sprint(out, " (filtered)"), err
//	    }),
//	)
//
// Middleware at the HTTP level uses the standard func(http.Handler)
// http.Handler signature, so the Go middleware ecosystem works natively.
//
// OpenAPI documents are produced by a named document service and can be
// served directly:
//
//	app.ServeSpec("/openapi.json")
package minapi
