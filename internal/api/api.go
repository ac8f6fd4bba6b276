// package api provides the HTTP API for the application
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/cirocosta/todolist/internal/model"
	"github.com/cirocosta/todolist/pkg/router"
)

const (
	// TodosPath is the collection route of the todo API
	TodosPath = "/api/v1/todos"

	// TodoPath is the item route of the todo API
	TodoPath = "/api/v1/todos/{id}"
)

// TodoRepository defines the minimal interface needed by the API
type TodoRepository interface {
	// FindAllTodos returns all todos
	FindAllTodos(ctx context.Context) ([]model.Todo, error)

	// CreateTodo persists a new todo
	CreateTodo(ctx context.Context, req model.CreateTodoRequest) (model.Todo, error)

	// UpdateTodoByID applies a partial update to an existing todo
	UpdateTodoByID(ctx context.Context, id string, req model.UpdateTodoRequest) (model.Todo, error)

	// DeleteTodoByID removes a todo
	DeleteTodoByID(ctx context.Context, id string) (model.Todo, error)
}

// Options tunes the router built by NewRouter
type Options struct {
	// CORS enables permissive cross-origin headers for browser frontends
	CORS bool

	// Version is reported in the generated OpenAPI document
	Version string
}

// API holds the components needed to register routes
type API struct {
	router      *router.DocRouter
	todoHandler *TodoHandler

	openAPIOnce sync.Once
	openAPI     []byte
	openAPIErr  error
}

// NewRouter creates a new router with all routes configured
func NewRouter(repo TodoRepository, opts Options) *router.DocRouter {
	version := opts.Version
	if version == "" {
		version = "1.0.0"
	}

	r := router.NewDocRouter("Todo List API",
		"CRUD API for todo items backed by a document store",
		version,
	)

	r.Use(loggerMiddleware)
	r.Use(recovererMiddleware)
	if opts.CORS {
		r.Use(corsMiddleware)
	}

	api := &API{router: r, todoHandler: NewTodoHandler(repo)}
	api.registerRoutes()

	return r
}

// registerRoutes configures all API routes with documentation
func (api *API) registerRoutes() {
	notFound := &model.NotFoundResponse{}
	notFoundExample := router.Example{
		ContentType: "application/json",
		Value:       `{"msg":"Not Found Todo:65a1f0c2e4b0a1b2c3d4e5f6"}`,
	}

	api.router.WithServer("http://localhost:8080", "Local development server").
		WithTag("Todos", "Operations related to todo items").
		WithTag("Core", "Core API endpoints")

	api.router.RegisterResponse("ServerError", map[string]any{
		"description": "Store failure; the body carries the underlying error message",
		"content": map[string]any{
			"text/plain": map[string]any{
				"schema":  map[string]any{"type": "string"},
				"example": "[Server Error]: connection refused",
			},
		},
	})

	api.router.Route("GET", "/ping", pingHandler).
		WithName("Ping").
		WithDescription("Liveness check, independent of the store").
		WithTags("Core").
		Register()

	api.router.Route("GET", "/openapi.json", api.openAPIHandler).
		WithName("OpenAPI").
		WithDescription("OpenAPI document describing this API").
		WithTags("Core").
		Register()

	api.router.Route("GET", TodosPath, api.todoHandler.ListTodos).
		WithName("List Todos").
		WithDescription("Get all todo items").
		WithResponse(&model.TodoListResponse{}).
		WithTags("Todos").
		Register()

	api.router.Route("POST", TodosPath, api.todoHandler.CreateTodo).
		WithName("Create Todo").
		WithDescription("Create a new todo item").
		WithRequest(&model.CreateTodoRequest{}).
		WithResponse(&model.TodoResponse{}).
		WithStatus("201", "Todo created").
		WithTags("Todos").
		Register()

	api.router.Route("PUT", TodoPath, api.todoHandler.UpdateTodo).
		WithName("Update Todo").
		WithDescription("Partially update a todo item, e.g. mark it as completed").
		WithRequest(&model.UpdateTodoRequest{}).
		WithResponse(&model.TodoResponse{}).
		WithErrorResponse("404", "Not Found", notFound, notFoundExample).
		WithTags("Todos").
		Register()

	api.router.Route("DELETE", TodoPath, api.todoHandler.DeleteTodo).
		WithName("Delete Todo").
		WithDescription("Delete a todo item").
		WithStatus("204", "Todo deleted").
		WithErrorResponse("404", "Not Found", notFound, notFoundExample).
		WithErrorResponse("500", "Store failure", nil).
		WithTags("Todos").
		Register()

	api.router.RegisterRouteResponse(TodosPath, "GET", "500", "ServerError")
	api.router.RegisterRouteResponse(TodosPath, "POST", "500", "ServerError")
	api.router.RegisterRouteResponse(TodoPath, "PUT", "500", "ServerError")
}

// pingHandler handles the liveness endpoint
func pingHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}

// openAPIHandler serves the OpenAPI document, generated on first use
func (api *API) openAPIHandler(w http.ResponseWriter, r *http.Request) {
	api.openAPIOnce.Do(func() {
		api.openAPI, api.openAPIErr = json.MarshalIndent(api.router.OpenAPI(), "", "  ")
	})

	if api.openAPIErr != nil {
		slog.ErrorContext(r.Context(), "marshal openapi document", "error", api.openAPIErr)
		writeServerError(w, api.openAPIErr)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(api.openAPI)
}
