package policy

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/pawnvalue-backend/internal/domain"
)

// ReplaceCatalogInput represents the input for publishing a new condition catalog
type ReplaceCatalogInput struct {
	Name      string
	Modifiers []domain.ConditionModifier
}

// PolicyService handles administration of punishment policies, condition catalogs
// and the rounding strategy
type PolicyService struct {
	PolicyRepo  domain.PunishmentPolicyRepository
	CatalogRepo domain.ConditionCatalogRepository
	Rounding    *domain.RoundingConfig
	Now         func() time.Time
}

// NewPolicyService creates a new PolicyService instance
func NewPolicyService(
	policyRepo domain.PunishmentPolicyRepository,
	catalogRepo domain.ConditionCatalogRepository,
	rounding *domain.RoundingConfig,
) *PolicyService {
	return &PolicyService{
		PolicyRepo:  policyRepo,
		CatalogRepo: catalogRepo,
		Rounding:    rounding,
		Now:         time.Now,
	}
}

// CurrentFactors returns the punishment factors valid now
func (s *PolicyService) CurrentFactors(ctx context.Context) (domain.PunishmentFactors, error) {
	return s.PolicyRepo.Current(ctx)
}

// FactorsAsOf returns every policy version valid at date, oldest first
func (s *PolicyService) FactorsAsOf(ctx context.Context, date time.Time) ([]domain.PunishmentFactors, error) {
	date, err := domain.RejectFutureDate(date, s.Now())
	if err != nil {
		return nil, err
	}
	return s.PolicyRepo.AsOf(ctx, date)
}

// ReplaceFactors validates the builder and supersedes the active policy
// Logic:
//  1. Every factor must be present and strictly positive
//  2. Factors above 1 are rejected, a punishment never increases value
//  3. Freeze the builder and hand the result to PolicyRepo.Replace
func (s *PolicyService) ReplaceFactors(ctx context.Context, builder *domain.PunishmentFactorsBuilder) (domain.PunishmentFactors, error) {
	if builder == nil {
		return domain.PunishmentFactors{}, fmt.Errorf("%w: punishment factors are required", domain.ErrInvalidArgument)
	}

	fields := []struct {
		name  string
		value decimal.NullDecimal
	}{
		{"diamond factor", builder.Diamond},
		{"jewelry factor", builder.Jewelry},
		{"ancillary factor", builder.Ancillary},
	}
	one := decimal.NewFromInt(1)
	for _, f := range fields {
		v, err := domain.RejectNonPositiveMsg(f.value, f.name)
		if err != nil {
			return domain.PunishmentFactors{}, err
		}
		if v.GreaterThan(one) {
			return domain.PunishmentFactors{}, fmt.Errorf("%w: %s must not exceed 1, got %s", domain.ErrInvalidArgument, f.name, v)
		}
	}

	factors, err := builder.Build()
	if err != nil {
		return domain.PunishmentFactors{}, err
	}

	if err := s.PolicyRepo.Replace(ctx, &factors); err != nil {
		return domain.PunishmentFactors{}, err
	}

	return factors, nil
}

// CurrentCatalog returns the catalog currently in force
func (s *PolicyService) CurrentCatalog(ctx context.Context) (*domain.ConditionCatalog, error) {
	return s.CatalogRepo.CurrentCatalog(ctx)
}

// CatalogsAsOf returns the catalogs published on date's calendar day
func (s *PolicyService) CatalogsAsOf(ctx context.Context, date time.Time) ([]*domain.ConditionCatalog, error) {
	date, err := domain.RejectFutureDate(date, s.Now())
	if err != nil {
		return nil, err
	}
	return s.CatalogRepo.CatalogsAsOf(ctx, date)
}

// ReplaceCatalog publishes a new catalog that supersedes the current one entirely
func (s *PolicyService) ReplaceCatalog(ctx context.Context, input ReplaceCatalogInput) (*domain.ConditionCatalog, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: catalog name is required", domain.ErrInvalidArgument)
	}

	seen := make(map[string]struct{}, len(input.Modifiers))
	for _, m := range input.Modifiers {
		code := m.Code()
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			return nil, fmt.Errorf("%w: duplicate condition %q", domain.ErrInvalidArgument, code)
		}
		seen[code] = struct{}{}
	}

	catalog := &domain.ConditionCatalog{
		Name:        name,
		LastUpdated: s.Now(),
		Modifiers:   input.Modifiers,
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	return s.CatalogRepo.ReplaceCatalog(ctx, catalog)
}

// LookupModifier returns the current modifier for a condition code
func (s *PolicyService) LookupModifier(ctx context.Context, condition string) (domain.ConditionModifier, error) {
	if strings.TrimSpace(condition) == "" {
		return domain.ConditionModifier{}, fmt.Errorf("%w: condition is required", domain.ErrInvalidArgument)
	}
	return s.CatalogRepo.Lookup(ctx, condition)
}

// SetRoundingMode switches the process-wide rounding strategy
// Existing appraisals pick up the new mode on their next read
func (s *PolicyService) SetRoundingMode(mode string) (domain.RoundingPolicy, error) {
	switch domain.RoundingMode(strings.ToUpper(strings.TrimSpace(mode))) {
	case domain.RoundingModeHalfUp, domain.RoundingModeHalfDown:
	default:
		return domain.RoundingPolicy{}, fmt.Errorf("%w: unknown rounding mode %q", domain.ErrInvalidArgument, mode)
	}

	s.Rounding.SetMode(domain.ParseRoundingMode(mode))
	return s.Rounding.Current(), nil
}
