package server

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/akolanti/GoIndex/internal/adapter/utils"
	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/handlers"
	"github.com/akolanti/GoIndex/internal/indexManager"
	"github.com/akolanti/GoIndex/internal/middleware"
	"github.com/akolanti/GoIndex/pkg/logger_i"
)

type Server struct {
	http   *http.Server
	logger *logger_i.Logger
}

type ShutdownParams struct {
	GracefulShutdown chan os.Signal
	StopExecution    chan bool
	// CloseServices flushes the index and releases its backends after the listener has drained.
	CloseServices func(ctx context.Context) error
}

// NewServer mounts the RPC routes for service. Nothing is shared between two servers.
func NewServer(service indexManager.Service, settings config.ServerSettings) *Server {
	r := utils.NewRouter()
	mw := middleware.New(settings)
	h := handlers.NewIndexHandler(service)

	r.Get("/healthz", mw.WrapPublic(h.Health))
	r.Post("/rpc/insert_document", mw.Wrap(h.InsertDocument))
	r.Post("/rpc/insert_documents", mw.Wrap(h.InsertDocuments))
	r.Post("/rpc/delete_document", mw.Wrap(h.DeleteDocument))
	r.Post("/rpc/query", mw.Wrap(h.Query))
	r.Post("/rpc/list_documents", mw.Wrap(h.ListDocuments))

	return &Server{
		http: &http.Server{
			Addr:         settings.ListenAddr,
			Handler:      r,
			ReadTimeout:  config.ReadTimeout,
			WriteTimeout: config.WriteTimeout,
			IdleTimeout:  config.IdleTimeout,
		},
		logger: logger_i.NewLogger("Server"),
	}
}

func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// CreateServer blocks serving until the server is shut down.
func (s *Server) CreateServer() error {
	s.logger.Info("Server is listening at", "address", s.http.Addr)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Error("Server crashed", "error", err.Error(), "addr", s.http.Addr)
		return err
	}
	return nil
}

// ShutDownHandler waits for a signal, drains in-flight requests, then closes the services.
func (s *Server) ShutDownHandler(shutdownParams ShutdownParams) {
	state := <-shutdownParams.GracefulShutdown
	s.logger.Info("Server is shutting down", "signal", state.String())

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownContextTimeout)
	defer cancel()

	done := make(chan struct{})

	go func() {
		s.http.SetKeepAlivesEnabled(false)

		if err := s.http.Shutdown(ctx); err != nil {
			s.logger.Error("Could not shutdown gracefully", "error", err)
		}
		if err := shutdownParams.CloseServices(ctx); err != nil {
			s.logger.Error("Closing services failed", "error", err)
		}
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Gracefully shut down")
	case <-ctx.Done():
		s.logger.Error("Force shut down; the last snapshot may be missing recent changes")
	}
	close(shutdownParams.StopExecution)
}
