package reference

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/pawnvalue-backend/internal/domain"
)

// DiamondQuoteMethod is the full gRPC method name of the diamond pricing service
const DiamondQuoteMethod = "/pricing.v1.DiamondPricingService/Quote"

// DiamondClient quotes diamonds over gRPC.
// Requests and responses are google.protobuf.Struct messages; money travels as decimal strings.
type DiamondClient struct {
	conn    grpc.ClientConnInterface
	timeout time.Duration
}

// NewDiamondClient creates a client on an existing connection
func NewDiamondClient(conn grpc.ClientConnInterface, timeout time.Duration) *DiamondClient {
	return &DiamondClient{conn: conn, timeout: timeout}
}

// DialDiamond opens a connection to addr with the fault interceptor installed
func DialDiamond(addr string, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithChainUnaryInterceptor(FaultInterceptor()),
	}, opts...)

	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create diamond pricing client: %w", err)
	}
	return conn, nil
}

// QuoteDiamond implements domain.DiamondPricer.
// When the caller's context ends first its own error is returned, so only the
// client timeout and transport failures surface as communication errors.
func (c *DiamondClient) QuoteDiamond(ctx context.Context, criteria domain.DiamondCriteria) (domain.PriceRange, error) {
	callCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := structpb.NewStruct(map[string]interface{}{
		"cut":     criteria.Cut,
		"color":   criteria.Color,
		"clarity": criteria.Clarity,
		"carat":   criteria.Carat,
	})
	if err != nil {
		return domain.PriceRange{}, fmt.Errorf("failed to build diamond quote request: %w", err)
	}

	resp := &structpb.Struct{}
	if err := c.conn.Invoke(callCtx, DiamondQuoteMethod, req, resp); err != nil {
		if ctx.Err() != nil {
			return domain.PriceRange{}, ctx.Err()
		}
		return domain.PriceRange{}, err
	}

	return priceRangeFromStruct(resp)
}

// priceRangeFromStruct reads the minimum/average/maximum fields of a quote response
func priceRangeFromStruct(s *structpb.Struct) (domain.PriceRange, error) {
	fields := s.GetFields()

	read := func(name string) (decimal.Decimal, error) {
		v, ok := fields[name]
		if !ok {
			return decimal.Zero, fmt.Errorf("diamond quote response missing %s", name)
		}
		switch kind := v.GetKind().(type) {
		case *structpb.Value_StringValue:
			d, err := decimal.NewFromString(kind.StringValue)
			if err != nil {
				return decimal.Zero, fmt.Errorf("failed to parse %s: %w", name, err)
			}
			return d, nil
		case *structpb.Value_NumberValue:
			return decimal.NewFromFloat(kind.NumberValue), nil
		default:
			return decimal.Zero, fmt.Errorf("diamond quote field %s has unexpected type", name)
		}
	}

	var out domain.PriceRange
	var err error
	if out.Minimum, err = read("minimum"); err != nil {
		return domain.PriceRange{}, err
	}
	if out.Average, err = read("average"); err != nil {
		return domain.PriceRange{}, err
	}
	if out.Maximum, err = read("maximum"); err != nil {
		return domain.PriceRange{}, err
	}
	return out, nil
}
