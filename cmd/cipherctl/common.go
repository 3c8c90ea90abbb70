package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/RowanDark/cipherlab/internal/cipher"
	"github.com/RowanDark/cipherlab/internal/config"
	"github.com/RowanDark/cipherlab/internal/crack"
	"github.com/RowanDark/cipherlab/internal/env"
	"github.com/RowanDark/cipherlab/internal/rpc"
)

// commonFlags are shared by every command that takes text.
type commonFlags struct {
	json    bool
	server  string
	token   string
	in      string
	timeout time.Duration
}

func (c *commonFlags) register(fs *flag.FlagSet, remote bool) {
	fs.BoolVar(&c.json, "json", false, "print the structured result as JSON")
	fs.StringVar(&c.in, "in", "", "read the text from a file (\"-\" for stdin) instead of the arguments")
	fs.DurationVar(&c.timeout, "timeout", 0, "give up after this long (0 waits indefinitely)")
	if remote {
		fs.StringVar(&c.server, "server", "", "send the request to a cipherd gRPC address instead of computing locally")
		fs.StringVar(&c.token, "token", "", "bearer token for --server (defaults to CIPHERLAB_AUTH_TOKEN)")
	}
}

// input returns the text to work on: --in when given, otherwise the
// remaining arguments joined by spaces.
func (c *commonFlags) input(fs *flag.FlagSet) (string, error) {
	switch c.in {
	case "":
		return strings.Join(fs.Args(), " "), nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	default:
		data, err := os.ReadFile(c.in)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", c.in, err)
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
}

func (c *commonFlags) context() (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if c.timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func (c *commonFlags) client() (*rpc.Client, error) {
	token := strings.TrimSpace(c.token)
	if token == "" {
		token, _ = env.Lookup("CIPHERLAB_AUTH_TOKEN")
	}
	return rpc.NewClient(c.server, rpc.WithToken(token))
}

// localService builds a crack service from the resolved configuration. Only
// warnings and errors are logged so the command output stays readable.
func localService() (*crack.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	// The command already bounds the call with --timeout.
	cfg.Crack.Timeout = 0
	return crack.NewServiceFromConfig(cfg.Crack, crack.WithLogger(logger)), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// fail prints err for the user and returns the exit code.
func fail(err error) int {
	if ue, ok := cipher.AsUserError(err); ok {
		fmt.Fprintln(stderr, ue.Message)
		return 1
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		fmt.Fprintln(stderr, "timed out")
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "interrupted")
	default:
		fmt.Fprintf(stderr, "error: %v\n", err)
	}
	return 1
}
