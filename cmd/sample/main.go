// Command sample demonstrates the minapi framework with a small Todos API.
//
// Run the server:
//
//	go run ./cmd/sample serve
//
// Print the OpenAPI document:
//
//	go run ./cmd/sample spec
//	go run ./cmd/sample spec --yaml
//
// Then explore:
//
//	GET  http://localhost:8080/openapi.json        OpenAPI document
//	GET  http://localhost:8080/docs                interactive docs UI
//	GET  http://localhost:8080/hello/{name}        greeting
//	GET  http://localhost:8080/todos               list todos
//	POST http://localhost:8080/todos               create todo
//	GET  http://localhost:8080/todos/{id}          get todo
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/eerhardt/minapi"
)

func main() {
	root := &cobra.Command{
		Use:           "sample",
		Short:         "Sample minapi application",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var addr string
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), addr)
		},
	}
	serve.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	var asYAML bool
	spec := &cobra.Command{
		Use:   "spec",
		Short: "Print the OpenAPI document and exit",
		RunE: func(_ *cobra.Command, _ []string) error {
			app := newApp()
			if asYAML {
				return app.WriteSpecYAML(os.Stdout)
			}
			return app.WriteSpec(os.Stdout)
		},
	}
	spec.Flags().BoolVar(&asYAML, "yaml", false, "emit YAML instead of JSON")

	root.AddCommand(serve, spec)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context, addr string) error {
	logger := slog.New(tint.NewHandler(os.Stdout, &tint.Options{Level: slog.LevelDebug}))
	slog.SetDefault(logger)

	app := newApp()
	app.Use(minapi.Recovery())
	app.Use(minapi.RequestID())
	app.Use(minapi.Logger(logger))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	logger.Info("starting server", "addr", addr, "spec", "http://localhost"+addr+"/openapi.json")

	err := app.ListenAndServe(ctx, addr)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logger.Info("server stopped")
	return nil
}

// Todo is the sample resource.
type Todo struct {
	ID    int    `json:"id"`
	Title string `json:"title" required:"true"`
	Done  bool   `json:"done"`
}

// todoStore is an in-memory store for the sample.
type todoStore struct {
	mu     sync.Mutex
	nextID int
	todos  map[int]Todo
}

func newTodoStore() *todoStore {
	return &todoStore{nextID: 1, todos: make(map[int]Todo)}
}

func newApp() *minapi.App {
	app := minapi.New(
		minapi.WithTitle("Todos API"),
		minapi.WithVersion("1.0.0"),
		minapi.WithServers(minapi.Server{URL: "http://localhost:8080"}),
	)

	app.ServeSpec("/openapi.json",
		minapi.WithDocumentTransformer(func(_ context.Context, doc *minapi.Document, _ *minapi.DocumentContext) error {
			doc.Info.Description = "A sample Todos API built with minapi."
			return nil
		}),
	)
	app.ServeDocs("/docs")

	// Greeting with a filter that decorates the result after the handler
	// runs and a name-normalizing filter that rewrites the argument
	// before the handler sees it.
	minapi.Get(app, "/hello/{name}", sayHello,
		minapi.WithSummary("Greet someone"),
		minapi.WithTags("greetings"),
		minapi.WithFilter(normalizeName),
		minapi.WithFilterFactory(minapi.RateLimitFilter(50, 10)),
	)

	store := newTodoStore()
	todos := app.Group("/todos", "Todos")

	minapi.Get(todos, "", store.list,
		minapi.WithName("listTodos"),
		minapi.WithSummary("List todos"),
		minapi.WithResponseType(http.StatusOK, []Todo{}),
	)
	minapi.Post(todos, "", store.create,
		minapi.WithName("createTodo"),
		minapi.WithStatus(http.StatusCreated),
		minapi.WithSummary("Create a todo"),
		minapi.WithParams("title"),
		minapi.WithRequired("title"),
		minapi.WithResponseType(http.StatusCreated, Todo{}),
		minapi.WithProduces(http.StatusCreated, "application/json"),
	)
	minapi.Get(todos, "/{id}", store.get,
		minapi.WithName("getTodo"),
		minapi.WithSummary("Get a todo by ID"),
		minapi.WithResponseType(http.StatusOK, Todo{}),
		minapi.WithResponseType(http.StatusNotFound, minapi.ProblemDetail{}, "application/problem+json"),
	)

	return app
}

func sayHello(name string) string {
	return fmt.Sprintf("Hello, %s!", name)
}

// normalizeName title-cases the name argument before the handler observes it.
func normalizeName(ic *minapi.InvocationContext, next minapi.FilterInvocation) (any, error) {
	arg, err := ic.Argument(0)
	if err != nil {
		return nil, err
	}
	if name, ok := arg.(string); ok && name != "" {
		normalized := strings.ToUpper(name[:1]) + name[1:]
		if err := ic.SetArgument(0, normalized); err != nil {
			return nil, err
		}
	}
	return next(ic)
}

func (s *todoStore) list() []Todo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Todo, 0, len(s.todos))
	for _, t := range s.todos {
		out = append(out, t)
	}
	return out
}

func (s *todoStore) create(title string) (Todo, error) {
	if title == "" {
		return Todo{}, minapi.Error(http.StatusBadRequest, "title is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := Todo{ID: s.nextID, Title: title}
	s.nextID++
	s.todos[t.ID] = t
	return t, nil
}

func (s *todoStore) get(id int) (Todo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.todos[id]
	if !ok {
		return Todo{}, minapi.Errorf(http.StatusNotFound, "todo %d not found", id)
	}
	return t, nil
}
