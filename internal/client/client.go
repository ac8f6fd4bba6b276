// Package client talks to the todo HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cirocosta/todolist/internal/model"
)

const todosPath = "/api/v1/todos"

// ErrNotFound is returned when the API reports that a todo does not exist.
type ErrNotFound struct {
	ID  string
	Msg string
}

// Error implements the error interface
func (e ErrNotFound) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	return fmt.Sprintf("todo %s not found", e.ID)
}

// ErrServer is returned for a 500 response; Msg carries the server's text.
type ErrServer struct {
	StatusCode int
	Msg        string
}

// Error implements the error interface
func (e ErrServer) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("server error (%d)", e.StatusCode)
	}
	return e.Msg
}

// Client is a typed client for the todo routes.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New returns a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ListTodos fetches every todo.
func (c *Client) ListTodos(ctx context.Context) ([]model.Todo, error) {
	var res model.TodoListResponse
	if err := c.do(ctx, http.MethodGet, todosPath, "", nil, &res); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return res.Todos, nil
}

// CreateTodo creates a todo and returns it as stored.
func (c *Client) CreateTodo(ctx context.Context, req model.CreateTodoRequest) (model.Todo, error) {
	var res model.TodoResponse
	if err := c.do(ctx, http.MethodPost, todosPath, "", req, &res); err != nil {
		return model.Todo{}, fmt.Errorf("create todo: %w", err)
	}
	return res.Todo, nil
}

// UpdateTodo applies a partial update to the todo with the given id.
func (c *Client) UpdateTodo(ctx context.Context, id string, req model.UpdateTodoRequest) (model.Todo, error) {
	var res model.TodoResponse
	if err := c.do(ctx, http.MethodPut, todosPath+"/"+url.PathEscape(id), id, req, &res); err != nil {
		return model.Todo{}, fmt.Errorf("update todo %s: %w", id, err)
	}
	return res.Todo, nil
}

// DeleteTodo removes the todo with the given id.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, todosPath+"/"+url.PathEscape(id), id, nil, nil); err != nil {
		return fmt.Errorf("delete todo %s: %w", id, err)
	}
	return nil
}

// do sends a request and decodes a 2xx JSON body into out when non-nil.
func (c *Client) do(ctx context.Context, method, path, id string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		var nf model.NotFoundResponse
		// a bare 404 from the mux has no JSON body
		_ = json.Unmarshal(data, &nf)
		return ErrNotFound{ID: id, Msg: nf.Msg}
	case resp.StatusCode >= http.StatusInternalServerError:
		return ErrServer{StatusCode: resp.StatusCode, Msg: strings.TrimSpace(string(data))}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is an ErrNotFound.
func IsNotFound(err error) bool {
	var nf ErrNotFound
	return errors.As(err, &nf)
}
