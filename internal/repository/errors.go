// package repository provides data access and error types
package repository

import (
	"errors"
	"fmt"

	"github.com/cirocosta/todolist/internal/model"
)

// ErrTodoNotFound is returned when a todo with the specified ID does not exist
type ErrTodoNotFound struct {
	ID string
}

// Error implements the error interface
func (e ErrTodoNotFound) Error() string {
	return fmt.Sprintf("todo with id %s not found", e.ID)
}

// ErrInvalidTodo is returned when a todo would be persisted without its required fields
var ErrInvalidTodo = errors.New("todo validation failed")

// validateTodo enforces the required fields every stored todo must carry.
func validateTodo(todo model.Todo) error {
	switch {
	case todo.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidTodo)
	case todo.Description == "":
		return fmt.Errorf("%w: description is required", ErrInvalidTodo)
	}
	return nil
}
