// package repository provides data access interfaces and implementations
package repository

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/cirocosta/todolist/internal/model"
)

// TodoRepository defines the interface for todo data access
type TodoRepository interface {
	// FindAllTodos returns all todos in no particular order
	FindAllTodos(ctx context.Context) ([]model.Todo, error)

	// CreateTodo persists a new todo and returns it with its assigned ID
	CreateTodo(ctx context.Context, req model.CreateTodoRequest) (model.Todo, error)

	// UpdateTodoByID applies a partial update and returns the updated todo.
	// It returns ErrTodoNotFound when no todo matches id.
	UpdateTodoByID(ctx context.Context, id string, req model.UpdateTodoRequest) (model.Todo, error)

	// DeleteTodoByID removes a todo and returns its prior value.
	// It returns ErrTodoNotFound when no todo matches id.
	DeleteTodoByID(ctx context.Context, id string) (model.Todo, error)

	// Close releases the underlying store
	Close(ctx context.Context) error
}

// InMemoryTodoRepository implements TodoRepository with an in-memory map
type InMemoryTodoRepository struct {
	todos map[string]model.Todo
	mutex sync.RWMutex
}

// NewInMemoryTodoRepository creates a new, empty in-memory todo repository
func NewInMemoryTodoRepository() *InMemoryTodoRepository {
	return &InMemoryTodoRepository{
		todos: make(map[string]model.Todo),
	}
}

// FindAllTodos returns all todos
func (r *InMemoryTodoRepository) FindAllTodos(ctx context.Context) ([]model.Todo, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	todos := make([]model.Todo, 0, len(r.todos))
	for _, todo := range r.todos {
		todos = append(todos, todo)
	}

	return todos, nil
}

// CreateTodo adds a new todo
func (r *InMemoryTodoRepository) CreateTodo(ctx context.Context, req model.CreateTodoRequest) (model.Todo, error) {
	todo := model.Todo{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	}
	if err := validateTodo(todo); err != nil {
		return model.Todo{}, err
	}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.todos[todo.ID] = todo
	return todo, nil
}

// UpdateTodoByID modifies an existing todo
func (r *InMemoryTodoRepository) UpdateTodoByID(ctx context.Context, id string, req model.UpdateTodoRequest) (model.Todo, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, exists := r.todos[id]
	if !exists {
		return model.Todo{}, ErrTodoNotFound{ID: id}
	}

	todo := req.Apply(existing)
	if err := validateTodo(todo); err != nil {
		return model.Todo{}, err
	}

	r.todos[id] = todo
	return todo, nil
}

// DeleteTodoByID removes a todo
func (r *InMemoryTodoRepository) DeleteTodoByID(ctx context.Context, id string) (model.Todo, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	todo, exists := r.todos[id]
	if !exists {
		return model.Todo{}, ErrTodoNotFound{ID: id}
	}

	delete(r.todos, id)
	return todo, nil
}

// Close is a no-op for the in-memory store
func (r *InMemoryTodoRepository) Close(ctx context.Context) error {
	return nil
}
