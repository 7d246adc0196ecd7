package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"pantry/internal/config"
	"pantry/internal/storage"
	"pantry/internal/todo"
)

const (
	serverReadHeaderTimeout = 5 * time.Second
	serverReadTimeout       = 10 * time.Minute
	serverWriteTimeout      = 10 * time.Minute
	serverIdleTimeout       = 2 * time.Minute
	serverMaxHeaderBytes    = 1 << 20
	shutdownTimeout         = 5 * time.Second
)

// TodoStore is the record store behind the /todos routes.
type TodoStore interface {
	List(ctx context.Context, skip, limit int) (int64, []todo.Todo, error)
	Create(ctx context.Context, label string, quantity int) (todo.Todo, error)
	Delete(ctx context.Context, id int64) (todo.Todo, error)
}

// ObjectGateway is the object storage facade behind the /objects routes.
type ObjectGateway interface {
	ListObjects(ctx context.Context) ([]storage.Object, error)
	PutObject(ctx context.Context, name string, content []byte) (string, error)
	DeleteObject(ctx context.Context, name string) (string, error)
	GetObject(ctx context.Context, name string) ([]byte, error)
	BucketType() config.BucketType
}

type Server struct {
	cfg     config.ServerConfig
	todos   TodoStore
	objects ObjectGateway
	logger  *slog.Logger
	handler http.Handler
}

func New(cfg config.ServerConfig, todos TodoStore, objects ObjectGateway, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		todos:   todos,
		objects: objects,
		logger:  logger,
	}
	s.handler = s.newHandler()
	return s
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves until ctx is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := s.newHTTPServer()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error("graceful shutdown failed", "err", err)
		}
	}()

	s.logger.Info("pantryd listening", "addr", ln.Addr().String(), "root_path", s.cfg.RootPath)
	err := srv.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: serverReadHeaderTimeout,
		ReadTimeout:       serverReadTimeout,
		WriteTimeout:      serverWriteTimeout,
		IdleTimeout:       serverIdleTimeout,
		MaxHeaderBytes:    serverMaxHeaderBytes,
	}
}
