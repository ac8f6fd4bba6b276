// package api provides the HTTP API for the application
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/cirocosta/todolist/internal/model"
	"github.com/cirocosta/todolist/internal/repository"
)

// serverErrorPrefix starts the plain-text body of every 500 response
const serverErrorPrefix = "[Server Error]: "

// TodoHandler handles HTTP requests for todo operations
type TodoHandler struct {
	repo TodoRepository
}

// NewTodoHandler creates a new todo handler with the given repository
func NewTodoHandler(repo TodoRepository) *TodoHandler {
	return &TodoHandler{
		repo: repo,
	}
}

// ListTodos handles GET /api/v1/todos
func (h *TodoHandler) ListTodos(w http.ResponseWriter, r *http.Request) {
	todos, err := h.repo.FindAllTodos(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list todos", "error", err)
		writeServerError(w, err)
		return
	}

	if todos == nil {
		todos = []model.Todo{}
	}

	writeJSON(w, model.TodoListResponse{Todos: todos}, http.StatusOK)
}

// CreateTodo handles POST /api/v1/todos
func (h *TodoHandler) CreateTodo(w http.ResponseWriter, r *http.Request) {
	var req model.CreateTodoRequest
	if err := decodeBody(r, &req); err != nil {
		slog.ErrorContext(r.Context(), "create todo", "error", err)
		writeServerError(w, err)
		return
	}

	todo, err := h.repo.CreateTodo(r.Context(), req)
	if err != nil {
		slog.ErrorContext(r.Context(), "create todo", "error", err)
		writeServerError(w, err)
		return
	}

	writeJSON(w, model.TodoResponse{Todo: todo}, http.StatusCreated)
}

// UpdateTodo handles PUT /api/v1/todos/{id}
func (h *TodoHandler) UpdateTodo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req model.UpdateTodoRequest
	if err := decodeBody(r, &req); err != nil {
		slog.ErrorContext(r.Context(), "update todo", "id", id, "error", err)
		writeServerError(w, err)
		return
	}

	todo, err := h.repo.UpdateTodoByID(r.Context(), id, req)
	if err != nil {
		var notFoundErr repository.ErrTodoNotFound
		if errors.As(err, &notFoundErr) {
			writeJSON(w, model.NotFoundTodo(id), http.StatusNotFound)
			return
		}
		slog.ErrorContext(r.Context(), "update todo", "id", id, "error", err)
		writeServerError(w, err)
		return
	}

	writeJSON(w, model.TodoResponse{Todo: todo}, http.StatusOK)
}

// DeleteTodo handles DELETE /api/v1/todos/{id}
func (h *TodoHandler) DeleteTodo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if _, err := h.repo.DeleteTodoByID(r.Context(), id); err != nil {
		var notFoundErr repository.ErrTodoNotFound
		if errors.As(err, &notFoundErr) {
			writeJSON(w, model.NotFoundTodo(id), http.StatusNotFound)
			return
		}
		// delete failures carry no body
		slog.ErrorContext(r.Context(), "delete todo", "id", id, "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// decodeBody decodes a JSON request body into v
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// writeServerError writes a 500 whose plain-text body carries err's message
func writeServerError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	w.Write([]byte(serverErrorPrefix + err.Error()))
}
