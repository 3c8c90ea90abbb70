package crack

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/RowanDark/cipherlab/internal/analysis"
	"github.com/RowanDark/cipherlab/internal/cipher"
	"github.com/RowanDark/cipherlab/internal/config"
	"github.com/RowanDark/cipherlab/internal/logging"
	"github.com/RowanDark/cipherlab/internal/observability/metrics"
)

// Service runs the crackers on behalf of servers. Each call runs on its own
// goroutine so the caller can give up when its context ends; the cracker
// itself finishes in the background and its result is dropped.
type Service struct {
	defaults VigenereOptions
	timeout  time.Duration
	audit    *logging.AuditLogger
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithDefaults sets the Vigenère options used for fields a request leaves zero.
func WithDefaults(opts VigenereOptions) Option {
	return func(s *Service) { s.defaults = opts }
}

// WithTimeout bounds every crack call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// WithAuditLogger records a crack_request or crack_failed event per call.
func WithAuditLogger(l *logging.AuditLogger) Option {
	return func(s *Service) { s.audit = l }
}

// WithLogger replaces slog.Default for operational logs. Nil is ignored.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service. Without options it uses the package defaults,
// no timeout and no audit trail.
func NewService(opts ...Option) *Service {
	s := &Service{logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.defaults = s.defaults.withDefaults()
	return s
}

// NewServiceFromConfig applies the crack section of the configuration.
func NewServiceFromConfig(cfg config.CrackConfig, opts ...Option) *Service {
	base := []Option{
		WithDefaults(VigenereOptions{
			MaxKeyLength:      cfg.MaxKeyLength,
			ShiftsPerPosition: cfg.ShiftsPerPosition,
			CombinationCap:    cfg.CombinationCap,
		}),
		WithTimeout(cfg.Timeout),
	}
	return NewService(append(base, opts...)...)
}

// Defaults returns the Vigenère options applied to zero request fields.
func (s *Service) Defaults() VigenereOptions {
	return s.defaults
}

// Caesar runs the Caesar cracker.
func (s *Service) Caesar(ctx context.Context, ciphertext string) (CaesarResult, error) {
	return run(ctx, s, cipher.Caesar, ciphertext,
		func() (CaesarResult, error) { return Caesar(ciphertext) },
		func(r CaesarResult) map[string]any {
			return map[string]any{"best_shift": r.BestShift, "candidates": 26}
		})
}

// Vigenere runs the Vigenère cracker. Zero fields of opts are filled from
// the service defaults.
func (s *Service) Vigenere(ctx context.Context, ciphertext string, opts VigenereOptions) (VigenereResult, error) {
	opts = s.merge(opts)
	return run(ctx, s, cipher.Vigenere, ciphertext,
		func() (VigenereResult, error) { return Vigenere(ciphertext, opts) },
		func(r VigenereResult) map[string]any {
			return map[string]any{
				"max_key_length":  opts.MaxKeyLength,
				"best_key_length": len(r.BestKey),
				"candidates":      r.KeysTried,
			}
		})
}

// RailFence runs the Rail Fence cracker.
func (s *Service) RailFence(ctx context.Context, ciphertext string) (RailFenceResult, error) {
	return run(ctx, s, cipher.RailFence, ciphertext,
		func() (RailFenceResult, error) { return RailFence(ciphertext) },
		func(r RailFenceResult) map[string]any {
			return map[string]any{"candidates": len(r.Candidates)}
		})
}

func (s *Service) merge(opts VigenereOptions) VigenereOptions {
	if opts.MaxKeyLength == 0 {
		opts.MaxKeyLength = s.defaults.MaxKeyLength
	}
	if opts.ShiftsPerPosition == 0 {
		opts.ShiftsPerPosition = s.defaults.ShiftsPerPosition
	}
	if opts.CombinationCap == 0 {
		opts.CombinationCap = s.defaults.CombinationCap
	}
	if opts.Scorer == nil {
		opts.Scorer = s.defaults.Scorer
	}
	return opts
}

type outcome[T any] struct {
	result T
	err    error
}

func run[T any](ctx context.Context, s *Service, kind cipher.Kind, ciphertext string, crack func() (T, error), summary func(T) map[string]any) (T, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	done := metrics.CrackStarted(string(kind))
	start := time.Now()
	var out outcome[T]
	if err := ctx.Err(); err != nil {
		out.err = err
	} else {
		ch := make(chan outcome[T], 1)
		go func() {
			res, err := crack()
			ch <- outcome[T]{result: res, err: err}
		}()
		select {
		case out = <-ch:
		case <-ctx.Done():
			out.err = ctx.Err()
		}
	}

	requestID := logging.RequestIDFromContext(ctx)
	meta := map[string]any{
		"letters":     analysis.LetterCount(ciphertext),
		"duration_ms": time.Since(start).Milliseconds(),
		"ciphertext":  ciphertext,
	}

	if out.err != nil {
		label := outcomeLabel(out.err)
		done(label, 0)
		s.logger.LogAttrs(ctx, levelFor(label), "crack failed",
			slog.String("cipher", string(kind)),
			slog.String("request_id", requestID),
			slog.String("outcome", label),
			slog.Any("error", out.err))
		_ = s.audit.Emit(logging.AuditEvent{
			RequestID: requestID,
			EventType: logging.EventCrackFailed,
			Cipher:    string(kind),
			Decision:  logging.DecisionDeny,
			Reason:    out.err.Error(),
			Metadata:  meta,
		})
		var zero T
		return zero, out.err
	}

	info := summary(out.result)
	candidates, _ := info["candidates"].(int)
	done("success", candidates)
	for k, v := range info {
		meta[k] = v
	}
	s.logger.LogAttrs(ctx, slog.LevelDebug, "crack finished",
		slog.String("cipher", string(kind)),
		slog.String("request_id", requestID),
		slog.Int("candidates", candidates),
		slog.Duration("elapsed", time.Since(start)))
	_ = s.audit.Emit(logging.AuditEvent{
		RequestID: requestID,
		EventType: logging.EventCrackRequest,
		Cipher:    string(kind),
		Decision:  logging.DecisionAllow,
		Metadata:  meta,
	})
	return out.result, nil
}

func outcomeLabel(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	if _, ok := cipher.AsUserError(err); ok {
		return "user_error"
	}
	return "error"
}

func levelFor(outcome string) slog.Level {
	if outcome == "error" {
		return slog.LevelError
	}
	return slog.LevelInfo
}
