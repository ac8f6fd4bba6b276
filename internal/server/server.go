// Package server runs the todo API over HTTP and in-process.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/cirocosta/todolist/internal/api"
	"github.com/cirocosta/todolist/internal/config"
)

// Version is reported in the generated OpenAPI document.
var Version = "1.0.0"

// Server wires the todo routes to a repository and serves them.
type Server struct {
	cfg     config.ServerConfig
	handler http.Handler
	logger  *slog.Logger
}

// New builds a server whose routes are backed by repo.
func New(cfg config.ServerConfig, repo api.TodoRepository, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	return &Server{
		cfg:     cfg,
		handler: api.NewRouter(repo, api.Options{CORS: cfg.CORS, Version: Version}),
		logger:  logger,
	}
}

// Handler returns the root http.Handler of the server.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then shuts down
// gracefully within the configured timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", ln.Addr().String())
		errc <- srv.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server", "timeout", s.cfg.ShutdownTimeout.String())
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// InjectRequest describes a request run in-process by Inject.
type InjectRequest struct {
	Method string
	URL    string
	Header http.Header

	// Body is sent as-is when it is a string or []byte, and JSON encoded otherwise.
	Body any
}

// InjectResponse is the recorded outcome of an injected request.
type InjectResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// JSON decodes the response body into v.
func (r InjectResponse) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response body: %w", err)
	}
	return nil
}

// String returns the response body as text.
func (r InjectResponse) String() string {
	return string(r.Body)
}

// Inject runs req through the server's handler without opening a socket.
func (s *Server) Inject(ctx context.Context, req InjectRequest) (InjectResponse, error) {
	body, isJSON, err := injectBody(req.Body)
	if err != nil {
		return InjectResponse{}, err
	}

	method := strings.ToUpper(req.Method)
	if method == "" {
		method = http.MethodGet
	}

	r, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		return InjectResponse{}, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range req.Header {
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if isJSON && r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "application/json")
	}
	r.RemoteAddr = "inject"

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, r)

	res := rec.Result()
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return InjectResponse{}, fmt.Errorf("read response body: %w", err)
	}

	return InjectResponse{
		StatusCode: res.StatusCode,
		Header:     res.Header,
		Body:       data,
	}, nil
}

func injectBody(v any) (io.Reader, bool, error) {
	switch b := v.(type) {
	case nil:
		return http.NoBody, false, nil
	case string:
		return strings.NewReader(b), false, nil
	case []byte:
		return bytes.NewReader(b), false, nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, false, fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(data), true, nil
	}
}
