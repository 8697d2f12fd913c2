// Command server runs the S&P 500 tariff-exposure analysis server. It
// serves the portfolio tools over the Model Context Protocol on stdio or
// streamable HTTP, and doubles as a local inspection CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/data-power-io/tariffscope/internal/config"
	"github.com/data-power-io/tariffscope/internal/logging"
	"github.com/data-power-io/tariffscope/internal/mcp"
	"github.com/data-power-io/tariffscope/internal/portfolio"
)

const serverVersion = "2.0.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "tariffscope",
		Short:        "S&P 500 tariff-exposure analysis server",
		Long:         "tariffscope serves a read-only S&P 500 tariff-exposure portfolio as analysis tools over the Model Context Protocol.",
		SilenceUsage: true,
		RunE:         runServe,
	}

	flags := root.Flags()
	flags.String("transport", config.TransportStreamableHTTP, "transport to serve on (streamable-http or stdio)")
	flags.String("host", "0.0.0.0", "host to bind to")
	flags.Int("port", 8001, "port to listen on")
	flags.Bool("show-banner", false, "print a startup banner")

	persistent := root.PersistentFlags()
	persistent.String("data-file", "", "path to the portfolio CSV dataset")
	persistent.String("log-level", "", "log level (debug, info, warn, error)")

	root.AddCommand(newQueryCmd(), newSectorsCmd(), newSummaryCmd())
	return root
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogDevelopment)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	logger.Info("starting analysis server",
		zap.String("server_name", cfg.ServerName),
		zap.String("version", serverVersion),
		zap.String("transport", cfg.Transport))

	store, err := buildStore(cmd.Context(), cfg, logger)
	if err != nil {
		logger.Error("failed to configure dataset source", zap.Error(err))
		return err
	}

	// Pre-load so a missing dataset surfaces before the first tool call.
	records := store.Warm(cmd.Context())
	logger.Info("portfolio dataset ready",
		zap.Int("records", records),
		zap.Strings("tools", mcp.ToolNames()))

	engine := portfolio.NewEngine(store, logger)
	srv := mcp.NewServer(cfg.ServerName, serverVersion, engine, store, logger)

	if show, _ := cmd.Flags().GetBool("show-banner"); show {
		printBanner(cfg)
	}

	if cfg.Transport == config.TransportStdio {
		return srv.ServeStdio(cmd.Context(), os.Stdin, os.Stdout)
	}
	return serveHTTP(cfg, srv, logger)
}

// loadConfig reads environment configuration and applies any flags the
// caller set explicitly on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("transport") {
		cfg.Transport, _ = flags.GetString("transport")
	}
	if flags.Changed("host") {
		cfg.Host, _ = flags.GetString("host")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("data-file") {
		// An explicit file beats any configured remote source.
		cfg.Data.File, _ = flags.GetString("data-file")
		cfg.Data.URL = ""
		cfg.Data.S3.Bucket = ""
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func buildStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*portfolio.Store, error) {
	src, err := buildSource(ctx, cfg.Data)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset source configured", zap.String("source", src.Describe()))
	return portfolio.NewStore(src, logger), nil
}

func buildSource(ctx context.Context, data config.DataConfig) (portfolio.Source, error) {
	switch {
	case data.S3.Bucket != "":
		return portfolio.NewS3Source(ctx, portfolio.S3Config{
			Endpoint:        data.S3.Endpoint,
			Region:          data.S3.Region,
			Bucket:          data.S3.Bucket,
			Key:             data.S3.Key,
			AccessKeyID:     data.S3.AccessKeyID,
			SecretAccessKey: data.S3.SecretAccessKey,
			UseSSL:          data.S3.UseSSL,
		})
	case data.URL != "":
		return portfolio.HTTPSource{URL: data.URL}, nil
	default:
		return portfolio.FileSource{Path: data.File}, nil
	}
}

func serveHTTP(cfg *config.Config, srv *mcp.Server, logger *zap.Logger) error {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("endpoint", "/mcp"))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.Info("shutting down server...", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("server stopped")
	return nil
}

// printBanner writes to stderr so stdio transports keep a clean stdout.
func printBanner(cfg *config.Config) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintf(os.Stderr, "  %s v%s\n", cfg.ServerName, serverVersion)
	if cfg.Transport == config.TransportStreamableHTTP {
		fmt.Fprintf(os.Stderr, "  transport=%s addr=%s:%d endpoint=/mcp\n", cfg.Transport, cfg.Host, cfg.Port)
	} else {
		fmt.Fprintf(os.Stderr, "  transport=%s\n", cfg.Transport)
	}
	fmt.Fprintln(os.Stderr)
}
