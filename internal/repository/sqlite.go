package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/cirocosta/todolist/internal/model"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS todos (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	description TEXT NOT NULL,
	status INTEGER NOT NULL DEFAULT 0
);
`

// SQLiteTodoRepository implements TodoRepository on top of an SQLite database
type SQLiteTodoRepository struct {
	db *sql.DB
}

// NewSQLiteTodoRepository opens (creating if needed) the database at path and
// makes sure the todos table exists. Use ":memory:" for a throwaway database.
func NewSQLiteTodoRepository(ctx context.Context, path string) (*SQLiteTodoRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database '%s': %w", path, err)
	}

	// an in-memory database only lives as long as its connection
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create todos table: %w", err)
	}

	return &SQLiteTodoRepository{db: db}, nil
}

// FindAllTodos returns all todos
func (r *SQLiteTodoRepository) FindAllTodos(ctx context.Context) ([]model.Todo, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, description, status FROM todos ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("query todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		var todo model.Todo
		if err := rows.Scan(&todo.ID, &todo.Name, &todo.Description, &todo.Status); err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, todo)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate todos: %w", err)
	}

	return todos, nil
}

// CreateTodo inserts a new todo row
func (r *SQLiteTodoRepository) CreateTodo(ctx context.Context, req model.CreateTodoRequest) (model.Todo, error) {
	todo := model.Todo{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	}
	if err := validateTodo(todo); err != nil {
		return model.Todo{}, err
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO todos (id, name, description, status) VALUES (?, ?, ?, ?)",
		todo.ID, todo.Name, todo.Description, todo.Status,
	)
	if err != nil {
		return model.Todo{}, fmt.Errorf("insert todo: %w", err)
	}

	return todo, nil
}

// UpdateTodoByID applies a partial update inside a transaction
func (r *SQLiteTodoRepository) UpdateTodoByID(ctx context.Context, id string, req model.UpdateTodoRequest) (model.Todo, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Todo{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := findTodoTx(ctx, tx, id)
	if err != nil {
		return model.Todo{}, err
	}

	todo := req.Apply(existing)
	if err := validateTodo(todo); err != nil {
		return model.Todo{}, err
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE todos SET name = ?, description = ?, status = ? WHERE id = ?",
		todo.Name, todo.Description, todo.Status, id,
	)
	if err != nil {
		return model.Todo{}, fmt.Errorf("update todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Todo{}, fmt.Errorf("commit transaction: %w", err)
	}

	return todo, nil
}

// DeleteTodoByID removes a todo row and returns what was removed
func (r *SQLiteTodoRepository) DeleteTodoByID(ctx context.Context, id string) (model.Todo, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Todo{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	todo, err := findTodoTx(ctx, tx, id)
	if err != nil {
		return model.Todo{}, err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id); err != nil {
		return model.Todo{}, fmt.Errorf("delete todo: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.Todo{}, fmt.Errorf("commit transaction: %w", err)
	}

	return todo, nil
}

// Close closes the database handle
func (r *SQLiteTodoRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func findTodoTx(ctx context.Context, tx *sql.Tx, id string) (model.Todo, error) {
	var todo model.Todo
	err := tx.QueryRowContext(ctx,
		"SELECT id, name, description, status FROM todos WHERE id = ?", id,
	).Scan(&todo.ID, &todo.Name, &todo.Description, &todo.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, ErrTodoNotFound{ID: id}
	}
	if err != nil {
		return model.Todo{}, fmt.Errorf("query todo %s: %w", id, err)
	}
	return todo, nil
}
