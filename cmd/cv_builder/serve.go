package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/llm"
	"github.com/jonathan/cv-builder/internal/server"
	"github.com/jonathan/cv-builder/internal/suggestions"
)

var (
	servePort      int
	serveOrigins   string
	serveAccessLog bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server exposing PDF export, job suggestions and the template list.
Suggestions are drafted by Gemini when GEMINI_API_KEY is set, otherwise they come from
the built-in table.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default from config, 8080)")
	serveCmd.Flags().StringVar(&serveOrigins, "cors-origins", "", "Comma-separated allowed CORS origins, * for any")
	serveCmd.Flags().BoolVar(&serveAccessLog, "access-log", false, "Log every request, not only failures")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := cliLogger()

	port := appConfig.Port
	if servePort != 0 {
		port = servePort
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var remote suggestions.Provider
	if appConfig.APIKey != "" {
		client, err := llm.NewClient(ctx, llm.DefaultConfig(), appConfig.APIKey)
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %w", err)
		}
		defer func() { _ = client.Close() }()
		remote = suggestions.NewLLMProvider(client)
	} else {
		log.Info("GEMINI_API_KEY not set, suggestions use the built-in table")
	}
	svc := suggestions.NewService(remote, log)
	svc.Timeout = appConfig.Timeout()

	var origins []string
	for _, o := range strings.Split(serveOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	srv, err := server.New(server.Config{
		Port:           port,
		Exporter:       newExporter(),
		Suggestions:    svc,
		Logger:         log,
		AllowedOrigins: origins,
		AccessLog:      serveAccessLog,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	log.Info("Listening", zap.String("addr", srv.Addr()))
	return srv.Start(ctx)
}
