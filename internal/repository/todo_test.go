package repository

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cirocosta/todolist/internal/config"
	"github.com/cirocosta/todolist/internal/model"
)

func ptr[T any](v T) *T { return &v }

// repositoryFactories returns one constructor per implementation available in
// this environment. MongoDB is only exercised when TODOLIST_TEST_MONGO_URI is set.
func repositoryFactories(t *testing.T) map[string]func(t *testing.T) TodoRepository {
	t.Helper()

	factories := map[string]func(t *testing.T) TodoRepository{
		"memory": func(t *testing.T) TodoRepository {
			return NewInMemoryTodoRepository()
		},
		"sqlite": func(t *testing.T) TodoRepository {
			repo, err := NewSQLiteTodoRepository(context.Background(), ":memory:")
			require.NoError(t, err)
			t.Cleanup(func() { repo.Close(context.Background()) })
			return repo
		},
	}

	if uri := os.Getenv("TODOLIST_TEST_MONGO_URI"); uri != "" {
		factories["mongo"] = func(t *testing.T) TodoRepository {
			ctx := context.Background()
			repo, err := NewMongoTodoRepository(ctx, uri, "todolist_test", strings.ReplaceAll(t.Name(), "/", "_"))
			require.NoError(t, err)
			t.Cleanup(func() {
				repo.collection.Drop(ctx)
				repo.Close(ctx)
			})
			return repo
		}
	}

	return factories
}

func TestRepositoryLifecycle(t *testing.T) {
	t.Parallel()

	for name, newRepo := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			repo := newRepo(t)

			todos, err := repo.FindAllTodos(ctx)
			require.NoError(t, err)
			assert.Empty(t, todos)

			created, err := repo.CreateTodo(ctx, model.CreateTodoRequest{
				Name:        "Test Todo",
				Description: "This is a test todo",
			})
			require.NoError(t, err)
			assert.NotEmpty(t, created.ID)
			assert.False(t, created.Status)

			other, err := repo.CreateTodo(ctx, model.CreateTodoRequest{
				Name:        "Other Todo",
				Description: "Another one",
				Status:      true,
			})
			require.NoError(t, err)
			assert.NotEqual(t, created.ID, other.ID)

			updated, err := repo.UpdateTodoByID(ctx, created.ID, model.UpdateTodoRequest{Status: ptr(true)})
			require.NoError(t, err)
			want := model.Todo{ID: created.ID, Name: "Test Todo", Description: "This is a test todo", Status: true}
			if diff := cmp.Diff(want, updated); diff != "" {
				t.Errorf("updated todo mismatch (-want +got):\n%s", diff)
			}

			// an empty update changes nothing and returns the stored todo
			unchanged, err := repo.UpdateTodoByID(ctx, created.ID, model.UpdateTodoRequest{})
			require.NoError(t, err)
			if diff := cmp.Diff(want, unchanged); diff != "" {
				t.Errorf("empty update mismatch (-want +got):\n%s", diff)
			}

			todos, err = repo.FindAllTodos(ctx)
			require.NoError(t, err)
			sortByID := cmpopts.SortSlices(func(a, b model.Todo) bool { return a.ID < b.ID })
			if diff := cmp.Diff([]model.Todo{want, other}, todos, sortByID); diff != "" {
				t.Errorf("todos mismatch (-want +got):\n%s", diff)
			}

			deleted, err := repo.DeleteTodoByID(ctx, created.ID)
			require.NoError(t, err)
			if diff := cmp.Diff(want, deleted); diff != "" {
				t.Errorf("deleted todo mismatch (-want +got):\n%s", diff)
			}

			todos, err = repo.FindAllTodos(ctx)
			require.NoError(t, err)
			if diff := cmp.Diff([]model.Todo{other}, todos); diff != "" {
				t.Errorf("todos after delete mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRepositoryNotFound(t *testing.T) {
	t.Parallel()

	// a well-formed ObjectID hex so the mongo store reaches the lookup
	const missingID = "65a1f0c2e4b0a1b2c3d4e5f6"

	for name, newRepo := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			repo := newRepo(t)

			_, err := repo.UpdateTodoByID(ctx, missingID, model.UpdateTodoRequest{Status: ptr(true)})
			var notFound ErrTodoNotFound
			require.True(t, errors.As(err, &notFound), "want ErrTodoNotFound, got %v", err)
			assert.Equal(t, missingID, notFound.ID)

			_, err = repo.DeleteTodoByID(ctx, missingID)
			require.True(t, errors.As(err, &notFound), "want ErrTodoNotFound, got %v", err)
			assert.Equal(t, missingID, notFound.ID)
		})
	}
}

func TestRepositoryValidation(t *testing.T) {
	t.Parallel()

	for name, newRepo := range repositoryFactories(t) {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			repo := newRepo(t)

			_, err := repo.CreateTodo(ctx, model.CreateTodoRequest{})
			assert.ErrorIs(t, err, ErrInvalidTodo)

			_, err = repo.CreateTodo(ctx, model.CreateTodoRequest{Name: "only a name"})
			assert.ErrorIs(t, err, ErrInvalidTodo)

			created, err := repo.CreateTodo(ctx, model.CreateTodoRequest{Name: "n", Description: "d"})
			require.NoError(t, err)

			_, err = repo.UpdateTodoByID(ctx, created.ID, model.UpdateTodoRequest{Name: ptr("")})
			assert.ErrorIs(t, err, ErrInvalidTodo)

			todos, err := repo.FindAllTodos(ctx)
			require.NoError(t, err)
			assert.Equal(t, []model.Todo{created}, todos)
		})
	}
}

func TestUpdateDocument(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		req     model.UpdateTodoRequest
		want    map[string]any
		wantErr error
	}{
		"empty": {
			req:  model.UpdateTodoRequest{},
			want: map[string]any{},
		},
		"status": {
			req:  model.UpdateTodoRequest{Status: ptr(false)},
			want: map[string]any{"status": false},
		},
		"all fields": {
			req:  model.UpdateTodoRequest{Name: ptr("n"), Description: ptr("d"), Status: ptr(true)},
			want: map[string]any{"name": "n", "description": "d", "status": true},
		},
		"blank description": {
			req:     model.UpdateTodoRequest{Description: ptr("")},
			wantErr: ErrInvalidTodo,
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := updateDocument(tc.req)
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
				return
			}
			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, map[string]any(got)); diff != "" {
				t.Errorf("$set mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMongoMalformedID(t *testing.T) {
	t.Parallel()

	// id parsing happens before any round trip, so no server is needed
	repo := &MongoTodoRepository{}

	_, err := repo.UpdateTodoByID(context.Background(), "not-an-object-id", model.UpdateTodoRequest{})
	require.Error(t, err)
	assert.False(t, errors.As(err, new(ErrTodoNotFound)))

	_, err = repo.DeleteTodoByID(context.Background(), "not-an-object-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid todo id")
}

func TestOpenUnknownDriver(t *testing.T) {
	t.Parallel()

	_, err := Open(context.Background(), config.StoreConfig{Driver: "redis"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}

func TestOpenMemory(t *testing.T) {
	t.Parallel()

	repo, err := Open(context.Background(), config.StoreConfig{Driver: config.DriverMemory})
	require.NoError(t, err)
	assert.IsType(t, &InMemoryTodoRepository{}, repo)
}
