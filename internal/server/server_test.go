package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cirocosta/todolist/internal/config"
	"github.com/cirocosta/todolist/internal/model"
	"github.com/cirocosta/todolist/internal/repository"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := config.Default().Server
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, repository.NewInMemoryTodoRepository(), logger)
}

func TestInjectPing(t *testing.T) {
	t.Parallel()

	res, err := newTestServer(t).Inject(context.Background(), InjectRequest{Method: "GET", URL: "/ping"})
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "pong", res.String())
}

func TestInjectLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	srv := newTestServer(t)

	// create
	res, err := srv.Inject(ctx, InjectRequest{
		Method: "POST",
		URL:    "/api/v1/todos",
		Body:   model.CreateTodoRequest{Name: "Water plants", Description: "Balcony and kitchen"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode, res.String())

	var created model.TodoResponse
	require.NoError(t, res.JSON(&created))
	require.NotEmpty(t, created.Todo.ID)
	assert.Equal(t, "Water plants", created.Todo.Name)
	assert.False(t, created.Todo.Status)

	// complete
	res, err = srv.Inject(ctx, InjectRequest{
		Method: "PUT",
		URL:    "/api/v1/todos/" + created.Todo.ID,
		Body:   `{"status":true}`,
		Header: http.Header{"Content-Type": []string{"application/json"}},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode, res.String())

	var updated model.TodoResponse
	require.NoError(t, res.JSON(&updated))
	want := created.Todo
	want.Status = true
	if diff := cmp.Diff(want, updated.Todo); diff != "" {
		t.Errorf("updated todo mismatch (-want +got):\n%s", diff)
	}

	// a second todo survives the delete of the first
	res, err = srv.Inject(ctx, InjectRequest{
		Method: "POST",
		URL:    "/api/v1/todos",
		Body:   map[string]any{"name": "Call mom", "description": "Sunday"},
	})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, res.StatusCode)
	var other model.TodoResponse
	require.NoError(t, res.JSON(&other))

	res, err = srv.Inject(ctx, InjectRequest{Method: "GET", URL: "/api/v1/todos"})
	require.NoError(t, err)
	var list model.TodoListResponse
	require.NoError(t, res.JSON(&list))
	sortByID := cmpopts.SortSlices(func(a, b model.Todo) bool { return a.ID < b.ID })
	if diff := cmp.Diff([]model.Todo{updated.Todo, other.Todo}, list.Todos, sortByID); diff != "" {
		t.Errorf("list mismatch (-want +got):\n%s", diff)
	}

	// delete
	res, err = srv.Inject(ctx, InjectRequest{Method: "DELETE", URL: "/api/v1/todos/" + created.Todo.ID})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Empty(t, res.Body)

	res, err = srv.Inject(ctx, InjectRequest{Method: "GET", URL: "/api/v1/todos"})
	require.NoError(t, err)
	list = model.TodoListResponse{}
	require.NoError(t, res.JSON(&list))
	if diff := cmp.Diff([]model.Todo{other.Todo}, list.Todos); diff != "" {
		t.Errorf("list after delete mismatch (-want +got):\n%s", diff)
	}

	// gone
	res, err = srv.Inject(ctx, InjectRequest{Method: "DELETE", URL: "/api/v1/todos/" + created.Todo.ID})
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.JSONEq(t, fmt.Sprintf(`{"msg":"Not Found Todo:%s"}`, created.Todo.ID), res.String())
}

func TestInjectStoreRejection(t *testing.T) {
	t.Parallel()

	res, err := newTestServer(t).Inject(context.Background(), InjectRequest{
		Method: "POST",
		URL:    "/api/v1/todos",
		Body:   model.CreateTodoRequest{Name: "No description"},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	assert.Equal(t, "[Server Error]: todo validation failed: description is required", res.String())
}

func TestInjectUnknownID(t *testing.T) {
	t.Parallel()

	res, err := newTestServer(t).Inject(context.Background(), InjectRequest{
		Method: "put",
		URL:    "/api/v1/todos/non-existent-id",
		Body:   map[string]bool{"status": true},
	})
	require.NoError(t, err)

	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.JSONEq(t, `{"msg":"Not Found Todo:non-existent-id"}`, res.String())
}

func TestInjectBadBody(t *testing.T) {
	t.Parallel()

	_, err := newTestServer(t).Inject(context.Background(), InjectRequest{
		Method: "POST",
		URL:    "/api/v1/todos",
		Body:   make(chan int),
	})
	assert.ErrorContains(t, err, "encode request body")
}

func TestServe(t *testing.T) {
	t.Parallel()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	res, err := http.Get("http://" + ln.Addr().String() + "/ping")
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "pong", string(body))

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunListenError(t *testing.T) {
	t.Parallel()

	cfg := config.Default().Server
	cfg.Addr = "127.0.0.1:99999"
	srv := New(cfg, repository.NewInMemoryTodoRepository(), nil)

	assert.ErrorContains(t, srv.Run(context.Background()), "listen on 127.0.0.1:99999")
}
