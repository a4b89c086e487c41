package seeder

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"github.com/simaogato/pawnvalue-backend/internal/domain"
)

// DefaultCatalogName names the catalog published on first start
const DefaultCatalogName = "system-default"

// Default punishment factors used until an operator publishes real ones
var (
	DefaultDiamondFactor   = decimal.RequireFromString("0.80")
	DefaultJewelryFactor   = decimal.RequireFromString("0.90")
	DefaultAncillaryFactor = decimal.RequireFromString("0.50")
)

// DefaultConditions lists the condition codes and factors of the default catalog
var DefaultConditions = []struct {
	Code   string
	Factor string
}{
	{Code: "EX", Factor: "1.00"}, // excellent
	{Code: "VG", Factor: "0.95"}, // very good
	{Code: "GO", Factor: "0.90"}, // good
	{Code: "FA", Factor: "0.80"}, // fair
	{Code: "PO", Factor: "0.60"}, // poor
}

// SystemSeeder handles seeding of the policies a fresh installation needs to appraise
type SystemSeeder struct {
	policyRepo  domain.PunishmentPolicyRepository
	catalogRepo domain.ConditionCatalogRepository
}

// NewSystemSeeder creates a new SystemSeeder instance
func NewSystemSeeder(policyRepo domain.PunishmentPolicyRepository, catalogRepo domain.ConditionCatalogRepository) *SystemSeeder {
	return &SystemSeeder{
		policyRepo:  policyRepo,
		catalogRepo: catalogRepo,
	}
}

// Seed ensures a current punishment policy and condition catalog exist
// Existing versions are never replaced
func (s *SystemSeeder) Seed(ctx context.Context) error {
	if err := s.seedPolicy(ctx); err != nil {
		return err
	}
	return s.seedCatalog(ctx)
}

func (s *SystemSeeder) seedPolicy(ctx context.Context) error {
	_, err := s.policyRepo.Current(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrPunishmentPolicyNotFound) {
		return err
	}

	factors, err := domain.NewPunishmentFactorsBuilder(DefaultDiamondFactor, DefaultJewelryFactor, DefaultAncillaryFactor).Build()
	if err != nil {
		return err
	}
	return s.policyRepo.Replace(ctx, &factors)
}

func (s *SystemSeeder) seedCatalog(ctx context.Context) error {
	_, err := s.catalogRepo.CurrentCatalog(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrCatalogNotFound) {
		return err
	}

	catalog := &domain.ConditionCatalog{Name: DefaultCatalogName}
	for _, c := range DefaultConditions {
		code := c.Code
		factor := decimal.RequireFromString(c.Factor)
		catalog.Modifiers = append(catalog.Modifiers, domain.NewConditionModifier(&code, &factor))
	}

	// Validate before publishing
	if err := catalog.Validate(); err != nil {
		return err
	}

	_, err = s.catalogRepo.ReplaceCatalog(ctx, catalog)
	return err
}
