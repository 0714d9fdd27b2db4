// Package main provides the cv_builder command: PDF export, layout preview,
// job suggestions, account access and the HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/cv-builder/internal/config"
	"github.com/jonathan/cv-builder/internal/logger"
)

var (
	configPath string
	logLevel   string
	logFormat  string
	logFile    string

	// appConfig is resolved once per invocation from file, environment and flags.
	appConfig config.Config
)

var rootCmd = &cobra.Command{
	Use:   "cv_builder",
	Short: "CV builder: professional PDF résumés from structured data",
	Long: `cv_builder lays out CV data in one of three templates (modern, classic, creative)
and writes a paginated PDF. It also drafts job descriptions from a title and talks to the
account API.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write logs to this file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup merges configuration and starts the logger before any subcommand runs.
func setup(_ *cobra.Command, _ []string) error {
	cfg, err := resolveConfig(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	appConfig = cfg

	return logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
}

// resolveConfig layers the environment over the optional config file, then fills defaults.
func resolveConfig(path string) (config.Config, error) {
	env, err := config.FromEnv()
	if err != nil {
		return config.Config{}, err
	}
	file := &config.Config{}
	if path != "" {
		file, err = config.LoadConfig(path)
		if err != nil {
			return config.Config{}, err
		}
	}
	return env.MergeWithDefaults(*file), nil
}

func cliLogger() *zap.Logger {
	return logger.Named("cli")
}
