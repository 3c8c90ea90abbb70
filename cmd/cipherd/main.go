package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"google.golang.org/grpc"

	"github.com/RowanDark/cipherlab/internal/api"
	"github.com/RowanDark/cipherlab/internal/config"
	"github.com/RowanDark/cipherlab/internal/crack"
	"github.com/RowanDark/cipherlab/internal/logging"
	"github.com/RowanDark/cipherlab/internal/rpc"
)

func main() {
	configPath := flag.String("config", "", "load configuration from this file instead of the default locations")
	httpAddr := flag.String("http-addr", "", "override the HTTP API listen address")
	grpcAddr := flag.String("grpc-addr", "", "override the gRPC listen address")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if v := strings.TrimSpace(*httpAddr); v != "" {
		cfg.HTTPAddr = v
	}
	if v := strings.TrimSpace(*grpcAddr); v != "" {
		cfg.GRPCAddr = v
	}

	logger, err := logging.NewLogger(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	slog.SetDefault(logger)

	auditOpts := []logging.Option{logging.WithoutStdout(), logging.WithWriter(os.Stderr)}
	if cfg.AuditLogPath != "" {
		auditOpts = []logging.Option{logging.WithoutStdout(), logging.WithFile(cfg.AuditLogPath)}
	}
	audit, err := logging.NewAuditLogger("cipherd", auditOpts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "audit log: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := 0
	if err := run(ctx, cfg, logger, audit); err != nil {
		logger.Error("cipherd exited", slog.Any("error", err))
		code = 1
	}
	stop()
	if err := audit.Close(); err != nil {
		logger.Warn("failed to close audit log", slog.Any("error", err))
	}
	os.Exit(code)
}

func loadConfig(path string) (config.Config, error) {
	if strings.TrimSpace(path) != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger, audit *logging.AuditLogger) error {
	httpLis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", cfg.HTTPAddr, err)
	}
	grpcLis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		_ = httpLis.Close()
		return fmt.Errorf("failed to listen on %s: %w", cfg.GRPCAddr, err)
	}
	return serve(ctx, httpLis, grpcLis, cfg, logger, audit)
}

// serve runs the HTTP API and the gRPC service until ctx is cancelled or one
// of them fails. Both share a single crack service.
func serve(ctx context.Context, httpLis, grpcLis net.Listener, cfg config.Config, logger *slog.Logger, audit *logging.AuditLogger) error {
	svc := crack.NewServiceFromConfig(cfg.Crack,
		crack.WithAuditLogger(audit.WithComponent("crack")),
		crack.WithLogger(logger))

	apiServer, err := api.NewServer(api.Config{
		Addr:      httpLis.Addr().String(),
		AuthToken: cfg.AuthToken,
		Crack:     svc,
		Audit:     audit.WithComponent("api"),
		Logger:    logger,
	})
	if err != nil {
		_ = httpLis.Close()
		_ = grpcLis.Close()
		return err
	}

	grpcServer := rpc.NewGRPCServer(rpc.Config{
		AuthToken: cfg.AuthToken,
		Crack:     svc,
		Audit:     audit.WithComponent("rpc"),
		Logger:    logger,
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	httpErr := make(chan error, 1)
	go func() {
		err := apiServer.Serve(ctx, httpLis)
		cancel()
		httpErr <- err
	}()

	// Stop the gRPC server once the context is cancelled.
	go func() {
		<-ctx.Done()

		done := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			grpcServer.Stop()
		}
	}()

	logger.Info("grpc listening", slog.String("addr", grpcLis.Addr().String()))
	_ = audit.Emit(logging.AuditEvent{
		EventType: logging.EventServerLifecycle,
		Decision:  logging.DecisionInfo,
		Reason:    "cipherd started",
		Metadata: map[string]any{
			"http_addr": httpLis.Addr().String(),
			"grpc_addr": grpcLis.Addr().String(),
			"auth":      cfg.AuthToken != "",
		},
	})

	grpcErr := grpcServer.Serve(grpcLis)
	if errors.Is(grpcErr, grpc.ErrServerStopped) {
		grpcErr = nil
	}
	cancel()
	err = errors.Join(grpcErr, <-httpErr)

	_ = audit.Emit(logging.AuditEvent{
		EventType: logging.EventServerLifecycle,
		Decision:  logging.DecisionInfo,
		Reason:    "cipherd stopped",
	})
	return err
}
