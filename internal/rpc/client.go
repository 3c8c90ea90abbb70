package rpc

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/cipherlab/internal/cipher"
	"github.com/RowanDark/cipherlab/internal/crack"
)

// Client calls a remote CipherService.
type Client struct {
	conn  *grpc.ClientConn
	token string
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	token    string
	dialOpts []grpc.DialOption
}

// WithToken sends token as a bearer token on every call.
func WithToken(token string) ClientOption {
	return func(c *clientConfig) { c.token = strings.TrimSpace(token) }
}

// WithDialOptions appends extra grpc dial options.
func WithDialOptions(opts ...grpc.DialOption) ClientOption {
	return func(c *clientConfig) { c.dialOpts = append(c.dialOpts, opts...) }
}

// NewClient creates a client for addr. The connection is plaintext; it is
// meant for a daemon on the local machine or a trusted network.
func NewClient(addr string, opts ...ClientOption) (*Client, error) {
	var cfg clientConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	dialOpts := append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, cfg.dialOpts...)
	conn, err := grpc.NewClient(addr, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{conn: conn, token: cfg.token}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) Encrypt(ctx context.Context, kind cipher.Kind, text, key string) (string, error) {
	return c.transform(ctx, MethodEncrypt, kind, text, key)
}

func (c *Client) Decrypt(ctx context.Context, kind cipher.Kind, text, key string) (string, error) {
	return c.transform(ctx, MethodDecrypt, kind, text, key)
}

func (c *Client) transform(ctx context.Context, method string, kind cipher.Kind, text, key string) (string, error) {
	var out struct {
		Output string `json:"output"`
	}
	err := c.invoke(ctx, method, map[string]any{"cipher": string(kind), "text": text, "key": key}, &out)
	return out.Output, err
}

func (c *Client) Detect(ctx context.Context, text string) ([]cipher.DetectionResult, error) {
	var out struct {
		Detections []cipher.DetectionResult `json:"detections"`
	}
	err := c.invoke(ctx, MethodDetect, map[string]any{"input": text}, &out)
	return out.Detections, err
}

func (c *Client) CrackCaesar(ctx context.Context, ciphertext string) (crack.CaesarResult, error) {
	var out crack.CaesarResult
	err := c.invoke(ctx, MethodCrackCaesar, map[string]any{"ciphertext": ciphertext}, &out)
	return out, err
}

// CrackVigenere sends the non-zero fields of opts; the server fills the rest
// from its defaults. opts.Scorer is not transmitted.
func (c *Client) CrackVigenere(ctx context.Context, ciphertext string, opts crack.VigenereOptions) (crack.VigenereResult, error) {
	req := map[string]any{"ciphertext": ciphertext}
	if opts.MaxKeyLength > 0 {
		req["maxKeyLength"] = opts.MaxKeyLength
	}
	if opts.ShiftsPerPosition > 0 {
		req["shiftsPerPosition"] = opts.ShiftsPerPosition
	}
	if opts.CombinationCap > 0 {
		req["combinationCap"] = opts.CombinationCap
	}
	var out crack.VigenereResult
	err := c.invoke(ctx, MethodCrackVigenere, req, &out)
	return out, err
}

func (c *Client) CrackRailFence(ctx context.Context, ciphertext string) (crack.RailFenceResult, error) {
	var out crack.RailFenceResult
	err := c.invoke(ctx, MethodCrackRailFence, map[string]any{"ciphertext": ciphertext}, &out)
	return out, err
}

func (c *Client) invoke(ctx context.Context, method string, req map[string]any, out any) error {
	in, err := structpb.NewStruct(req)
	if err != nil {
		return err
	}
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+c.token)
	}
	resp := &structpb.Struct{}
	if err := c.conn.Invoke(ctx, FullMethod(method), in, resp); err != nil {
		return fromStatus(method, err)
	}
	return fromStruct(resp, out)
}
