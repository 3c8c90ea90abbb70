package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/RowanDark/cipherlab/internal/cipher"
)

// errorDomain tags the ErrorInfo detail attached to user errors.
const errorDomain = "cipherlab"

// toStruct converts a JSON-tagged Go value into a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, out); err != nil {
		return nil, err
	}
	return out, nil
}

// fromStruct decodes s into the JSON-tagged value pointed to by v.
func fromStruct(s *structpb.Struct, v any) error {
	raw, err := protojson.Marshal(s)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// stringField reads a field sent as either a string or a number.
func stringField(s *structpb.Struct, names ...string) string {
	for _, name := range names {
		v, ok := s.GetFields()[name]
		if !ok {
			continue
		}
		switch k := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			return k.StringValue
		case *structpb.Value_NumberValue:
			return strconv.FormatFloat(k.NumberValue, 'f', -1, 64)
		case *structpb.Value_BoolValue:
			return strconv.FormatBool(k.BoolValue)
		}
	}
	return ""
}

// intField reads an integer sent as a number or numeric string. Numbers are
// truncated and clamped to the int32 range; NaN and infinities are rejected.
func intField(s *structpb.Struct, name string) (int, bool) {
	v, ok := s.GetFields()[name]
	if !ok {
		return 0, false
	}
	switch k := v.GetKind().(type) {
	case *structpb.Value_NumberValue:
		n := k.NumberValue
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return int(max(math.MinInt32, min(n, math.MaxInt32))), true
	case *structpb.Value_StringValue:
		n, err := strconv.Atoi(k.StringValue)
		return n, err == nil
	}
	return 0, false
}

// toStatus maps domain and context errors onto gRPC status codes. User
// errors carry their kind in an ErrorInfo detail so clients can rebuild them.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	ue, ok := cipher.AsUserError(err)
	if !ok {
		return status.Error(codes.Internal, err.Error())
	}
	code := codes.InvalidArgument
	if ue.Kind == cipher.KindNoViableCandidates {
		code = codes.NotFound
	}
	st, detailErr := status.New(code, ue.Message).WithDetails(&errdetails.ErrorInfo{
		Reason: string(ue.Kind),
		Domain: errorDomain,
	})
	if detailErr != nil {
		return status.Error(code, ue.Message)
	}
	return st.Err()
}

// fromStatus turns a status carrying a user error detail back into a
// *cipher.UserError. Other errors are wrapped with the method name.
func fromStatus(method string, err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("%s: %w", method, err)
	}
	for _, detail := range st.Details() {
		if info, ok := detail.(*errdetails.ErrorInfo); ok && info.GetDomain() == errorDomain {
			return cipher.NewUserError(cipher.ErrorKind(info.GetReason()), st.Message())
		}
	}
	switch st.Code() {
	case codes.Canceled:
		return fmt.Errorf("%s: %w", method, context.Canceled)
	case codes.DeadlineExceeded:
		return fmt.Errorf("%s: %w", method, context.DeadlineExceeded)
	}
	return fmt.Errorf("%s: %w", method, err)
}
