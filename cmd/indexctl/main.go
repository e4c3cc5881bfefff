package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/GoIndex/internal/rpcclient"
	"github.com/akolanti/GoIndex/pkg/logger_i"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	flagServer   string
	flagToken    string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:          "indexctl",
	Short:        "Operate a GoIndex server: insert files, delete, query, list, serve MCP",
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// logs go to stderr so stdout stays clean for results and the MCP stdio stream
		logger_i.InitWithWriter(os.Stderr, flagLogLevel, false)
	},
}

func init() {
	_ = godotenv.Load()
	rootCmd.PersistentFlags().StringVar(&flagServer, "server", envOr("INDEX_SERVER_URL", "http://localhost:5602"), "base URL of the index server")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", os.Getenv("INDEX_AUTH_TOKEN"), "shared bearer token (default $INDEX_AUTH_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level: debug, info, warn, error")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newClient() *rpcclient.Client {
	return rpcclient.New(flagServer, flagToken)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
