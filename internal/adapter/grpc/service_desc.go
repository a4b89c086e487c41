package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified name of the valuation API
const ServiceName = "pawnvalue.v1.ValuationService"

// ValuationServiceServer is the server API for the valuation service.
// Every method exchanges google.protobuf.Struct messages.
type ValuationServiceServer interface {
	Appraise(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCurrentFactors(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReplaceFactors(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetCurrentCatalog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ReplaceCatalog(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LookupModifier(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SetRoundingMode(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type unaryMethod func(ValuationServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// methodHandler adapts a unary method to grpc.MethodHandler, running the server interceptor chain
func methodHandler(name string, call unaryMethod) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	fullMethod := "/" + ServiceName + "/" + name
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(ValuationServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(ValuationServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// ValuationServiceDesc is the grpc.ServiceDesc for the valuation service
var ValuationServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ValuationServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Appraise", Handler: methodHandler("Appraise", ValuationServiceServer.Appraise)},
		{MethodName: "GetCurrentFactors", Handler: methodHandler("GetCurrentFactors", ValuationServiceServer.GetCurrentFactors)},
		{MethodName: "ReplaceFactors", Handler: methodHandler("ReplaceFactors", ValuationServiceServer.ReplaceFactors)},
		{MethodName: "GetCurrentCatalog", Handler: methodHandler("GetCurrentCatalog", ValuationServiceServer.GetCurrentCatalog)},
		{MethodName: "ReplaceCatalog", Handler: methodHandler("ReplaceCatalog", ValuationServiceServer.ReplaceCatalog)},
		{MethodName: "LookupModifier", Handler: methodHandler("LookupModifier", ValuationServiceServer.LookupModifier)},
		{MethodName: "SetRoundingMode", Handler: methodHandler("SetRoundingMode", ValuationServiceServer.SetRoundingMode)},
	},
	Streams: []grpc.StreamDesc{},
}

// RegisterValuationServiceServer registers srv on s
func RegisterValuationServiceServer(s grpc.ServiceRegistrar, srv ValuationServiceServer) {
	s.RegisterService(&ValuationServiceDesc, srv)
}
