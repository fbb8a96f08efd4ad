package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/channkenn/pta-kaikei/internal/amqp"
	"github.com/channkenn/pta-kaikei/internal/backend"
	"github.com/channkenn/pta-kaikei/internal/cli"
	apphttp "github.com/channkenn/pta-kaikei/internal/http"
	applog "github.com/channkenn/pta-kaikei/internal/log"
	"github.com/channkenn/pta-kaikei/internal/session"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("kaikei")
	cfg := cli.LoadAndValidateConfig(logger)

	factory, err := backend.NewFactory(backend.Config{
		Type:                backend.Type(cfg.DataBackend),
		Endpoint:            cfg.LedgerAPIURL,
		Timeout:             cfg.LedgerTimeout,
		GoogleSpreadsheetID: cfg.GoogleSpreadsheetID,
		SheetsPasscode:      cfg.SheetsPasscode,
		MemoryPasscode:      cfg.MemoryPasscode,
		MemoryEditable:      cfg.MemoryEditable,
	}, logger.Logger)
	if err != nil {
		logger.Error("Failed to initialize backend factory", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	sessions := session.NewStore(cfg.SessionLimit, cfg.SessionTTL)
	categories := cli.Categories(cfg)

	// Mutation events are optional: without a broker the app just runs
	// without an audit trail.
	var opts []apphttp.Option
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing without event publishing", "error", err)
		} else {
			defer amqpClient.Close()
			opts = append(opts, apphttp.WithEventSink(amqp.NewSink(amqpClient)))
			logger.Info("AMQP event publishing enabled", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	srv, err := apphttp.NewServer(":"+cfg.Port, factory, sessions, categories, opts...)
	if err != nil {
		logger.Error("Failed to initialize HTTP server", "error", err)
		os.Exit(1)
	}
	srv.Handler = applog.Middleware(logger.WithComponent(applog.ComponentHTTP))(srv.Handler)
	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting kaikei server", "port", cfg.Port, "backend", cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
