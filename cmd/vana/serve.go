package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sagarc03/vana"
	"github.com/sagarc03/vana/backend"
	"github.com/sagarc03/vana/config"
	"github.com/sagarc03/vana/database"
	vanahttp "github.com/sagarc03/vana/http"
	"github.com/sagarc03/vana/keystore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long:  `Start the Vana HTTP server.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().Int("port", 8090, "HTTP server port")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	cfg, err := config.FromContext(ctx)
	if err != nil {
		return err
	}

	repos, cleanup, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer cleanup()
	slog.Info("connected to database", "type", cfg.Database.Type)

	creds, err := keystore.NewStore(cfg.Credentials)
	if err != nil {
		return fmt.Errorf("load credentials: %w", err)
	}

	signers, err := backend.Build(ctx, cfg.Backends, creds)
	if err != nil {
		return fmt.Errorf("build backends: %w", err)
	}
	slog.Info("configured storage backends", "count", len(signers))

	catalog := vana.NewMessageCatalog()
	if cfg.Messages.File != "" {
		catalog, err = vana.LoadMessageCatalog(cfg.Messages.File)
		if err != nil {
			return fmt.Errorf("load message catalog: %w", err)
		}
	}

	service, err := vana.NewService(repos.Objects, repos.Groups, signers)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	handlerConfig := vanahttp.HandlerConfig{
		CORS:    cfg.CORS,
		Catalog: catalog,
		Ping:    repos.Ping,
	}
	handler := vanahttp.NewHandler(&handlerConfig, service)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)

	server := &http.Server{
		Addr:         addr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server...")
		shutdownCtx, shutdownCancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
		)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "err", err)
		}
		cancel()
	}()

	slog.Info("starting server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}
