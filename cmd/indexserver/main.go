// @title           GoIndex RPC
// @version         1.0
// @description     Synchronous document indexing and retrieval over a shared static credential.

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:5602
// @BasePath  /
// @schemes   http
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/GoIndex/internal/config"
	"github.com/akolanti/GoIndex/internal/indexManager"
	"github.com/akolanti/GoIndex/internal/persistence"
	"github.com/akolanti/GoIndex/internal/rag/gateway"
	"github.com/akolanti/GoIndex/internal/rag/vectorDB"
	"github.com/akolanti/GoIndex/internal/rag/vectorDB/qdrantDB"
	"github.com/akolanti/GoIndex/internal/server"
	"github.com/akolanti/GoIndex/pkg/logger_i"
)

var (
	configPath string
	listenAddr string
)

func main() {
	flag.StringVar(&configPath, "config", "goindex.yaml", "path to the YAML settings file")
	flag.StringVar(&listenAddr, "listen-addr", "", "server listen address, overrides the settings")
	flag.Parse()

	settings, err := config.Load(configPath)
	logger_i.Init(settings.Logging.Level, settings.Logging.JSON)
	var logger = logger_i.NewLogger("main")
	if err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if listenAddr != "" {
		settings.Server.ListenAddr = listenAddr
	}

	serviceContext, closeExternalServices := context.WithCancel(context.Background())
	defer closeExternalServices()

	backend, err := persistence.Open(serviceContext, settings.Snapshot)
	if err != nil {
		logger.Error("Snapshot backend unavailable", "backend", settings.Snapshot.Backend, "error", err)
		os.Exit(1)
	}

	gw, err := gateway.NewFromSettings(serviceContext, settings)
	if err != nil {
		logger.Error("Gateway failed to initialize", "provider", settings.Gateway.Provider, "error", err)
		_ = backend.Close()
		os.Exit(1)
	}

	var replica vectorDB.Replica
	if settings.Mirror.QdrantHost != "" {
		replica, err = qdrantDB.NewQdrantReplica(settings.Mirror)
		if err != nil {
			// the mirror is optional; the index serves without it
			logger.Warn("Qdrant mirror unavailable, continuing without it", "error", err)
			replica = nil
		}
	}

	service, err := indexManager.NewService(serviceContext, indexManager.Options{
		Index:   settings.Index,
		Gateway: gw,
		Backend: backend,
		Replica: replica,
	})
	if err != nil {
		logger.Error("Index could not be restored; refusing to start", "error", err)
		_ = backend.Close()
		os.Exit(1)
	}

	//server handling
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)
	stopExecution := make(chan bool, 1)

	srv := server.NewServer(service, settings.Server)
	go srv.ShutDownHandler(server.ShutdownParams{
		GracefulShutdown: gracefulShutdown,
		StopExecution:    stopExecution,
		CloseServices: func(ctx context.Context) error {
			defer closeExternalServices()
			return service.Close(ctx)
		},
	})
	go func() {
		if err := srv.CreateServer(); err != nil {
			gracefulShutdown <- syscall.SIGTERM
		}
	}()

	<-stopExecution
	logger.Info("Server stopped")
}
