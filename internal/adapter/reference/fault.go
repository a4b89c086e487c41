package reference

import (
	"context"
	"fmt"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ProtocolFault is a structured failure reported by a reference service
type ProtocolFault struct {
	Code    string
	Message string
	Actor   string // origin of the fault, may be empty
}

func (f *ProtocolFault) Error() string {
	return fmt.Sprintf("protocol fault %s: %s", f.Code, f.Message)
}

// CommunicationError is a transport failure carrying no structured fault data
type CommunicationError struct {
	Err error
}

func (e *CommunicationError) Error() string {
	return "communication failure: " + e.Err.Error()
}

func (e *CommunicationError) Unwrap() error {
	return e.Err
}

// ActorMetadataKey is the ErrorInfo metadata key naming the fault's origin
const ActorMetadataKey = "actor"

// FaultInterceptor returns a gRPC unary client interceptor that turns status errors
// into the two failure shapes understood by the Translator.
// Statuses carrying an ErrorInfo become ProtocolFault; transport-level codes become
// CommunicationError; every other error is returned untouched.
func FaultInterceptor() grpc.UnaryClientInterceptor {
	return func(
		ctx context.Context,
		method string,
		req, reply interface{},
		cc *grpc.ClientConn,
		invoker grpc.UnaryInvoker,
		opts ...grpc.CallOption,
	) error {
		err := invoker(ctx, method, req, reply, cc, opts...)
		if err == nil {
			return nil
		}
		return faultFromStatus(err)
	}
}

// faultFromStatus classifies a gRPC error
func faultFromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if !ok {
			continue
		}
		actor := info.GetMetadata()[ActorMetadataKey]
		if actor == "" {
			actor = info.GetDomain()
		}
		return &ProtocolFault{
			Code:    info.GetReason(),
			Message: st.Message(),
			Actor:   actor,
		}
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted, codes.Aborted:
		return &CommunicationError{Err: err}
	default:
		return err
	}
}
