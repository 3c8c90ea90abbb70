package rpc

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/cipherlab/internal/cipher"
	"github.com/RowanDark/cipherlab/internal/crack"
	"github.com/RowanDark/cipherlab/internal/logging"
	"github.com/RowanDark/cipherlab/internal/observability/metrics"
)

// Config configures the gRPC service.
type Config struct {
	// AuthToken, when set, must arrive as "authorization: Bearer <token>"
	// metadata on every call.
	AuthToken string
	Crack     *crack.Service
	Audit     *logging.AuditLogger
	Logger    *slog.Logger
}

// Server implements CipherServiceServer on top of the cipher primitives and
// the crack service.
type Server struct {
	crack  *crack.Service
	audit  *logging.AuditLogger
	logger *slog.Logger
	token  string
}

var _ CipherServiceServer = (*Server)(nil)

// NewServer builds the service implementation.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	svc := cfg.Crack
	if svc == nil {
		svc = crack.NewService(crack.WithAuditLogger(cfg.Audit), crack.WithLogger(logger))
	}
	return &Server{
		crack:  svc,
		audit:  cfg.Audit,
		logger: logger,
		token:  strings.TrimSpace(cfg.AuthToken),
	}
}

// NewGRPCServer returns a grpc.Server with the service registered and the
// logging, metrics and auth interceptor installed.
func NewGRPCServer(cfg Config, opts ...grpc.ServerOption) *grpc.Server {
	impl := NewServer(cfg)
	opts = append(opts, grpc.ChainUnaryInterceptor(impl.UnaryInterceptor()))
	srv := grpc.NewServer(opts...)
	RegisterCipherServiceServer(srv, impl)
	return srv
}

// UnaryInterceptor assigns a request id, enforces the bearer token, and
// records logs and metrics for every call.
func (s *Server) UnaryInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		method := strings.TrimPrefix(info.FullMethod, "/"+ServiceName+"/")

		md, _ := metadata.FromIncomingContext(ctx)
		requestID := firstValue(md, "x-request-id")
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}
		ctx = logging.ContextWithRequestID(ctx, requestID)
		_ = grpc.SetHeader(ctx, metadata.Pairs("x-request-id", requestID))

		var (
			resp any
			err  error
		)
		if authErr := s.authorize(ctx, md, method); authErr != nil {
			err = authErr
		} else {
			resp, err = handler(ctx, req)
		}

		code := status.Code(err)
		metrics.ObserveRPCRequest(method, code.String(), time.Since(start))
		level := slog.LevelDebug
		if code == codes.Internal || code == codes.Unknown {
			level = slog.LevelError
		}
		s.logger.LogAttrs(ctx, level, "rpc call",
			slog.String("method", method),
			slog.String("code", code.String()),
			slog.String("request_id", requestID),
			slog.Duration("elapsed", time.Since(start)))
		return resp, err
	}
}

func (s *Server) authorize(ctx context.Context, md metadata.MD, method string) error {
	if s.token == "" {
		return nil
	}
	header := firstValue(md, "authorization")
	token := strings.TrimSpace(header)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	if token != "" && subtle.ConstantTimeCompare([]byte(token), []byte(s.token)) == 1 {
		return nil
	}
	reason := "invalid token"
	if header == "" {
		reason = "missing token"
	}
	_ = s.audit.Emit(logging.AuditEvent{
		RequestID: logging.RequestIDFromContext(ctx),
		EventType: logging.EventAuthDenied,
		Decision:  logging.DecisionDeny,
		Reason:    reason,
		Metadata:  map[string]any{"method": method},
	})
	return status.Error(codes.Unauthenticated, reason)
}

func firstValue(md metadata.MD, key string) string {
	if vals := md.Get(key); len(vals) > 0 {
		return strings.TrimSpace(vals[0])
	}
	return ""
}

// Encrypt applies {cipher, text, key} and returns {output, cipher}.
func (s *Server) Encrypt(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.transform(ctx, req, cipher.OperationTypeEncrypt)
}

// Decrypt reverses Encrypt.
func (s *Server) Decrypt(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	return s.transform(ctx, req, cipher.OperationTypeDecrypt)
}

func (s *Server) transform(ctx context.Context, req *structpb.Struct, dir cipher.OperationType) (*structpb.Struct, error) {
	kind, err := cipher.ParseKind(stringField(req, "cipher"))
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}
	text := stringField(req, "text", "input")
	key := stringField(req, "key", kind.KeyParam())

	var output string
	if dir == cipher.OperationTypeEncrypt {
		output, err = cipher.Encrypt(kind, text, key)
	} else {
		output, err = cipher.Decrypt(kind, text, key)
	}
	if err != nil {
		return nil, toStatus(err)
	}

	metrics.RecordCipherOperation(string(kind), string(dir))
	eventType := logging.EventEncrypt
	if dir == cipher.OperationTypeDecrypt {
		eventType = logging.EventDecrypt
	}
	_ = s.audit.Emit(logging.AuditEvent{
		RequestID: logging.RequestIDFromContext(ctx),
		EventType: eventType,
		Cipher:    string(kind),
		Decision:  logging.DecisionAllow,
		Metadata:  map[string]any{"key": key, "text": text, "output": output, "transport": "grpc"},
	})
	return structpb.NewStruct(map[string]any{"output": output, "cipher": string(kind)})
}

// Detect returns {detections} for {input}.
func (s *Server) Detect(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input := stringField(req, "input", "ciphertext", "text")
	detections, err := cipher.NewClassicalDetector().Detect(ctx, []byte(input))
	if err != nil {
		return nil, toStatus(err)
	}
	if detections == nil {
		detections = []cipher.DetectionResult{}
	}
	_ = s.audit.Emit(logging.AuditEvent{
		RequestID: logging.RequestIDFromContext(ctx),
		EventType: logging.EventDetect,
		Decision:  logging.DecisionInfo,
		Metadata:  map[string]any{"ciphertext": input, "guesses": len(detections), "transport": "grpc"},
	})
	return toStruct(map[string]any{"detections": detections})
}

func (s *Server) CrackCaesar(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result, err := s.crack.Caesar(ctx, stringField(req, "ciphertext", "text"))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(result)
}

// CrackVigenere honours maxKeyLength, shiftsPerPosition and combinationCap;
// absent fields use the service defaults.
func (s *Server) CrackVigenere(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var opts crack.VigenereOptions
	if v := stringField(req, "maxKeyLength"); v != "" {
		opts.MaxKeyLength = crack.ParseMaxKeyLength(v)
	}
	if n, ok := intField(req, "shiftsPerPosition"); ok && n > 0 {
		opts.ShiftsPerPosition = n
	}
	if n, ok := intField(req, "combinationCap"); ok && n > 0 {
		opts.CombinationCap = n
	}
	result, err := s.crack.Vigenere(ctx, stringField(req, "ciphertext", "text"), opts)
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(result)
}

func (s *Server) CrackRailFence(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	result, err := s.crack.RailFence(ctx, stringField(req, "ciphertext", "text"))
	if err != nil {
		return nil, toStatus(err)
	}
	return toStruct(result)
}
