package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cirocosta/todolist/internal/model"
)

// panickingRepository blows up on every call
type panickingRepository struct{ mockTodoRepository }

func (*panickingRepository) FindAllTodos(ctx context.Context) ([]model.Todo, error) {
	panic("store exploded")
}

func TestPing(t *testing.T) {
	t.Parallel()

	// no expectations: the store must not be touched
	repo := new(mockTodoRepository)
	rec := serve(t, repo, http.MethodGet, "/ping", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
	repo.AssertExpectations(t)
}

func TestOpenAPIDocument(t *testing.T) {
	t.Parallel()

	rec := serve(t, new(mockTodoRepository), http.MethodGet, "/openapi.json", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var doc struct {
		OpenAPI string                    `json:"openapi"`
		Paths   map[string]map[string]any `json:"paths"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	assert.Equal(t, "3.0.3", doc.OpenAPI)
	assert.ElementsMatch(t, []string{"get", "post"}, keys(doc.Paths[TodosPath]))
	assert.ElementsMatch(t, []string{"put", "delete"}, keys(doc.Paths[TodoPath]))
	assert.Contains(t, doc.Paths, "/ping")

	// served twice from the same router, the document is stable
	router := NewRouter(new(mockTodoRepository), Options{Version: "9.9.9"})
	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))

	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Contains(t, first.Body.String(), `"version": "9.9.9"`)
}

func TestCORS(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		cors       bool
		method     string
		wantStatus int
		wantOrigin string
	}{
		"preflight": {
			cors:       true,
			method:     http.MethodOptions,
			wantStatus: http.StatusNoContent,
			wantOrigin: "*",
		},
		"simple request": {
			cors:       true,
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			wantOrigin: "*",
		},
		"disabled": {
			cors:       false,
			method:     http.MethodGet,
			wantStatus: http.StatusOK,
			wantOrigin: "",
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(tc.method, "/ping", nil)
			req.Header.Set("Origin", "http://localhost:3000")
			rec := httptest.NewRecorder()

			NewRouter(new(mockTodoRepository), Options{CORS: tc.cors}).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
			if tc.wantOrigin != "" {
				assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPut)
			}
		})
	}
}

func TestRecoverer(t *testing.T) {
	t.Parallel()

	rec := serve(t, &panickingRepository{}, http.MethodGet, TodosPath, "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "[Server Error]: internal server error", rec.Body.String())
}

func TestRecovererAfterHeadersWritten(t *testing.T) {
	t.Parallel()

	for name, tc := range map[string]struct {
		handler    http.HandlerFunc
		wantStatus int
		wantBody   string
	}{
		"explicit status": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte("partial"))
				panic("late failure")
			},
			wantStatus: http.StatusCreated,
			wantBody:   "partial",
		},
		"implicit status": {
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("partial"))
				panic("late failure")
			},
			wantStatus: http.StatusOK,
			wantBody:   "partial",
		},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			recovererMiddleware(tc.handler).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, TodosPath, nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantBody, rec.Body.String())
		})
	}
}

func keys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
