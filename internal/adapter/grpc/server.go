package grpc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/simaogato/pawnvalue-backend/internal/adapter/reference"
	"github.com/simaogato/pawnvalue-backend/internal/domain"
	"github.com/simaogato/pawnvalue-backend/internal/usecase/policy"
	"github.com/simaogato/pawnvalue-backend/internal/usecase/valuation"
)

// Server implements the ValuationService gRPC server
type Server struct {
	ValuationService *valuation.ValuationService
	PolicyService    *policy.PolicyService
}

var _ ValuationServiceServer = (*Server)(nil)

// NewServer creates a new gRPC server instance
func NewServer(valuationService *valuation.ValuationService, policyService *policy.PolicyService) *Server {
	return &Server{
		ValuationService: valuationService,
		PolicyService:    policyService,
	}
}

// Appraise handles the Appraise RPC
func (s *Server) Appraise(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input := valuation.AppraiseInput{
		Condition: stringField(req, "condition"),
	}

	if diamond := structField(req, "diamond"); diamond != nil {
		input.Diamond = &valuation.DiamondItem{Criteria: domain.DiamondCriteria{
			Cut:     stringField(diamond, "cut"),
			Color:   stringField(diamond, "color"),
			Clarity: stringField(diamond, "clarity"),
			Carat:   stringField(diamond, "carat"),
		}}
	}

	if gold := structField(req, "gold"); gold != nil {
		grams, err := decimalField(gold, "grams")
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid gold.grams format: %v", err)
		}
		input.Gold = &valuation.GoldItem{
			Criteria: domain.GoldCriteria{
				Metal:   stringField(gold, "metal"),
				Quality: stringField(gold, "quality"),
				Range:   stringField(gold, "range"),
			},
			Grams: grams.Decimal,
		}
	}

	ancillary, err := decimalField(req, "ancillary_value")
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid ancillary_value format: %v", err)
	}
	input.AncillaryValue = ancillary.Decimal

	if input.AsOf, err = dateField(req, "as_of"); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid as_of format: %v", err)
	}

	appraisal, err := s.ValuationService.Appraise(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	// Rounded figures are read now, under whatever policy is active
	reading := appraisal.Read()
	return structpb.NewStruct(map[string]interface{}{
		"appraisal_id":  uuid.NewString(),
		"minimum":       reading.Minimum,
		"average":       reading.Average,
		"maximum":       reading.Maximum,
		"rounding_mode": string(reading.Policy.Mode),
		"scale":         float64(reading.Policy.Scale),
	})
}

// GetCurrentFactors handles the GetCurrentFactors RPC
// With as_of set it returns every version valid at that date instead
func (s *Server) GetCurrentFactors(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	asOf, err := dateField(req, "as_of")
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid as_of format: %v", err)
	}

	if asOf == nil {
		factors, err := s.PolicyService.CurrentFactors(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		return structpb.NewStruct(map[string]interface{}{"factors": factorsToMap(factors)})
	}

	versions, err := s.PolicyService.FactorsAsOf(ctx, *asOf)
	if err != nil {
		return nil, mapError(err)
	}

	list := make([]interface{}, 0, len(versions))
	for _, f := range versions {
		list = append(list, factorsToMap(f))
	}
	return structpb.NewStruct(map[string]interface{}{"versions": list})
}

// ReplaceFactors handles the ReplaceFactors RPC
func (s *Server) ReplaceFactors(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	builder := &domain.PunishmentFactorsBuilder{}
	var err error
	if builder.Diamond, err = decimalField(req, "diamond_factor"); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid diamond_factor format: %v", err)
	}
	if builder.Jewelry, err = decimalField(req, "jewelry_factor"); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid jewelry_factor format: %v", err)
	}
	if builder.Ancillary, err = decimalField(req, "ancillary_factor"); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid ancillary_factor format: %v", err)
	}

	factors, err := s.PolicyService.ReplaceFactors(ctx, builder)
	if err != nil {
		return nil, mapError(err)
	}

	return structpb.NewStruct(map[string]interface{}{"factors": factorsToMap(factors)})
}

// GetCurrentCatalog handles the GetCurrentCatalog RPC
// With as_of set it returns the catalogs published on that day instead
func (s *Server) GetCurrentCatalog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	asOf, err := dateField(req, "as_of")
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid as_of format: %v", err)
	}

	if asOf == nil {
		catalog, err := s.PolicyService.CurrentCatalog(ctx)
		if err != nil {
			return nil, mapError(err)
		}
		return structpb.NewStruct(map[string]interface{}{"catalog": catalogToMap(catalog)})
	}

	catalogs, err := s.PolicyService.CatalogsAsOf(ctx, *asOf)
	if err != nil {
		return nil, mapError(err)
	}

	list := make([]interface{}, 0, len(catalogs))
	for _, c := range catalogs {
		list = append(list, catalogToMap(c))
	}
	return structpb.NewStruct(map[string]interface{}{"catalogs": list})
}

// ReplaceCatalog handles the ReplaceCatalog RPC
func (s *Server) ReplaceCatalog(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	input := policy.ReplaceCatalogInput{Name: stringField(req, "name")}

	for i, v := range req.GetFields()["modifiers"].GetListValue().GetValues() {
		entry := v.GetStructValue()
		if entry == nil {
			return nil, status.Errorf(codes.InvalidArgument, "modifiers[%d] must be an object", i)
		}

		var condition *string
		if code := stringField(entry, "condition"); code != "" {
			condition = &code
		}

		factor, err := decimalField(entry, "factor")
		if err != nil {
			return nil, status.Errorf(codes.InvalidArgument, "invalid modifiers[%d].factor format: %v", i, err)
		}
		var factorPtr *decimal.Decimal
		if factor.Valid {
			factorPtr = &factor.Decimal
		}

		input.Modifiers = append(input.Modifiers, domain.NewConditionModifier(condition, factorPtr))
	}

	catalog, err := s.PolicyService.ReplaceCatalog(ctx, input)
	if err != nil {
		return nil, mapError(err)
	}

	return structpb.NewStruct(map[string]interface{}{"catalog": catalogToMap(catalog)})
}

// LookupModifier handles the LookupModifier RPC
func (s *Server) LookupModifier(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	modifier, err := s.PolicyService.LookupModifier(ctx, stringField(req, "condition"))
	if err != nil {
		return nil, mapError(err)
	}

	return structpb.NewStruct(map[string]interface{}{"modifier": modifierToMap(modifier)})
}

// SetRoundingMode handles the SetRoundingMode RPC
func (s *Server) SetRoundingMode(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	p, err := s.PolicyService.SetRoundingMode(stringField(req, "mode"))
	if err != nil {
		return nil, mapError(err)
	}

	return structpb.NewStruct(map[string]interface{}{
		"mode":  string(p.Mode),
		"scale": float64(p.Scale),
	})
}

// factorsToMap converts punishment factors to their wire form
func factorsToMap(f domain.PunishmentFactors) map[string]interface{} {
	return map[string]interface{}{
		"diamond_factor":   f.DiamondFactor().String(),
		"jewelry_factor":   f.JewelryFactor().String(),
		"ancillary_factor": f.AncillaryFactor().String(),
	}
}

// catalogToMap converts a condition catalog to its wire form
func catalogToMap(c *domain.ConditionCatalog) map[string]interface{} {
	modifiers := make([]interface{}, 0, len(c.Modifiers))
	for _, m := range c.Modifiers {
		modifiers = append(modifiers, modifierToMap(m))
	}
	return map[string]interface{}{
		"id":           c.ID.String(),
		"name":         c.Name,
		"last_updated": c.LastUpdated.UTC().Format(time.RFC3339),
		"current":      c.Current,
		"modifiers":    modifiers,
	}
}

// modifierToMap converts a condition modifier; missing fields become null
func modifierToMap(m domain.ConditionModifier) map[string]interface{} {
	out := map[string]interface{}{"condition": nil, "factor": nil}
	if m.Condition != nil {
		out["condition"] = *m.Condition
	}
	if m.Factor.Valid {
		out["factor"] = m.Factor.Decimal.String()
	}
	return out
}

// stringField returns a trimmed string field or "" when absent
func stringField(s *structpb.Struct, name string) string {
	return strings.TrimSpace(s.GetFields()[name].GetStringValue())
}

// structField returns a nested object or nil when absent
func structField(s *structpb.Struct, name string) *structpb.Struct {
	return s.GetFields()[name].GetStructValue()
}

// decimalField reads a decimal sent as a string or a number.
// Absent and null fields yield an invalid NullDecimal.
func decimalField(s *structpb.Struct, name string) (decimal.NullDecimal, error) {
	v, ok := s.GetFields()[name]
	if !ok {
		return decimal.NullDecimal{}, nil
	}

	switch kind := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return decimal.NullDecimal{}, nil
	case *structpb.Value_StringValue:
		if strings.TrimSpace(kind.StringValue) == "" {
			return decimal.NullDecimal{}, nil
		}
		d, err := decimal.NewFromString(strings.TrimSpace(kind.StringValue))
		if err != nil {
			return decimal.NullDecimal{}, err
		}
		return decimal.NewNullDecimal(d), nil
	case *structpb.Value_NumberValue:
		return decimal.NewNullDecimal(decimal.NewFromFloat(kind.NumberValue)), nil
	default:
		return decimal.NullDecimal{}, fmt.Errorf("%s must be a string or a number", name)
	}
}

// dateField parses an RFC 3339 timestamp or a YYYY-MM-DD date; absent means nil
func dateField(s *structpb.Struct, name string) (*time.Time, error) {
	raw := stringField(s, name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// mapError converts domain errors to gRPC status errors
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var verr *domain.ValuationError
	switch {
	case errors.As(err, &verr):
		return valuationStatus(verr).Err()
	case errors.Is(err, domain.ErrInvalidArgument):
		return status.Errorf(codes.InvalidArgument, "%s", err.Error())
	case domain.IsNotFound(err):
		return status.Errorf(codes.NotFound, "%s", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Errorf(codes.DeadlineExceeded, "%s", err.Error())
	case errors.Is(err, context.Canceled):
		return status.Errorf(codes.Canceled, "%s", err.Error())
	}

	// Default to Internal error for unknown errors
	return status.Errorf(codes.Internal, "%s", err.Error())
}

// valuationStatus carries a reference-service fault to the caller with its code and actor
func valuationStatus(verr *domain.ValuationError) *status.Status {
	code := codes.FailedPrecondition
	if verr.Code == domain.CodeCommunication {
		code = codes.Unavailable
	}

	info := &errdetails.ErrorInfo{
		Reason: verr.Code,
		Domain: ServiceName,
	}
	if verr.Actor != "" {
		info.Metadata = map[string]string{reference.ActorMetadataKey: verr.Actor}
	}

	st := status.New(code, verr.Message)
	withDetails, err := st.WithDetails(info)
	if err != nil {
		return st
	}
	return withDetails
}
