// package model contains the data models for the todolist application
package model

import "fmt"

// Todo represents a todo item in the system
type Todo struct {
	ID          string `json:"id" doc:"Unique identifier assigned by the store" example:"65a1f0c2e4b0a1b2c3d4e5f6"`
	Name        string `json:"name" doc:"Name of the todo item" example:"Buy groceries"`
	Description string `json:"description" doc:"Description of the todo item" example:"Milk, eggs and bread"`
	Status      bool   `json:"status" doc:"Whether the todo item is completed" example:"false"`
}

// CreateTodoRequest is used when creating a new todo item
type CreateTodoRequest struct {
	Name        string `json:"name" doc:"Name of the todo item" example:"Buy groceries"`
	Description string `json:"description" doc:"Description of the todo item" example:"Milk, eggs and bread"`
	Status      bool   `json:"status,omitempty" doc:"Initial completion status" example:"false"`
}

// UpdateTodoRequest is a partial update; nil fields are left untouched
type UpdateTodoRequest struct {
	Name        *string `json:"name,omitempty" doc:"New name of the todo item" example:"Buy groceries"`
	Description *string `json:"description,omitempty" doc:"New description of the todo item" example:"Milk, eggs and bread"`
	Status      *bool   `json:"status,omitempty" doc:"New completion status" example:"true"`
}

// Apply returns a copy of todo with the non-nil fields of the update applied.
func (u UpdateTodoRequest) Apply(todo Todo) Todo {
	if u.Name != nil {
		todo.Name = *u.Name
	}
	if u.Description != nil {
		todo.Description = *u.Description
	}
	if u.Status != nil {
		todo.Status = *u.Status
	}
	return todo
}

// TodoResponse is used for responses with a single todo item
type TodoResponse struct {
	Todo Todo `json:"todo" doc:"A todo item"`
}

// TodoListResponse is used for responses with multiple todo items
type TodoListResponse struct {
	Todos []Todo `json:"todos" doc:"List of todo items"`
}

// NotFoundResponse is returned when an id-scoped operation matches nothing
type NotFoundResponse struct {
	Msg string `json:"msg" doc:"Message naming the missing todo" example:"Not Found Todo:65a1f0c2e4b0a1b2c3d4e5f6"`
}

// NotFoundTodo builds the not-found body for the given id.
func NotFoundTodo(id string) NotFoundResponse {
	return NotFoundResponse{Msg: fmt.Sprintf("Not Found Todo:%s", id)}
}
