// Package rpc serves the cipher and cracking operations over gRPC.
//
// The service has no generated stubs. Every method takes and returns a
// google.protobuf.Struct carrying the same JSON shapes as the HTTP API, so
// the default proto codec is used and the descriptor below is written by
// hand.
package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "cipherlab.v1.CipherService"

// Method names of CipherService.
const (
	MethodEncrypt        = "Encrypt"
	MethodDecrypt        = "Decrypt"
	MethodDetect         = "Detect"
	MethodCrackCaesar    = "CrackCaesar"
	MethodCrackVigenere  = "CrackVigenere"
	MethodCrackRailFence = "CrackRailFence"
)

// CipherServiceServer is the server API for CipherService.
type CipherServiceServer interface {
	Encrypt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Decrypt(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Detect(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CrackCaesar(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CrackVigenere(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CrackRailFence(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(CipherServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ServiceDesc describes CipherService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CipherServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodEncrypt, Handler: unaryHandler(MethodEncrypt, CipherServiceServer.Encrypt)},
		{MethodName: MethodDecrypt, Handler: unaryHandler(MethodDecrypt, CipherServiceServer.Decrypt)},
		{MethodName: MethodDetect, Handler: unaryHandler(MethodDetect, CipherServiceServer.Detect)},
		{MethodName: MethodCrackCaesar, Handler: unaryHandler(MethodCrackCaesar, CipherServiceServer.CrackCaesar)},
		{MethodName: MethodCrackVigenere, Handler: unaryHandler(MethodCrackVigenere, CipherServiceServer.CrackVigenere)},
		{MethodName: MethodCrackRailFence, Handler: unaryHandler(MethodCrackRailFence, CipherServiceServer.CrackRailFence)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cipherlab/v1/cipher.proto",
}

// RegisterCipherServiceServer registers srv with s.
func RegisterCipherServiceServer(s grpc.ServiceRegistrar, srv CipherServiceServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// FullMethod returns the wire path of a CipherService method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

func unaryHandler(method string, call unaryMethod) grpc.MethodHandler {
	fullMethod := FullMethod(method)
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(CipherServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(CipherServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}
