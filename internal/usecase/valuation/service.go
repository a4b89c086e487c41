package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/pawnvalue-backend/internal/domain"
)

// DiamondItem is the diamond part of a pawned piece
type DiamondItem struct {
	Criteria domain.DiamondCriteria
}

// GoldItem is the metal setting of a pawned piece
type GoldItem struct {
	Criteria domain.GoldCriteria
	Grams    decimal.Decimal
}

// AppraiseInput represents the input for appraising a pawned item
type AppraiseInput struct {
	Diamond        *DiamondItem    // optional
	Gold           *GoldItem       // optional
	AncillaryValue decimal.Decimal // declared value of ancillary pieces, may be zero
	Condition      string          // condition code, "" means no adjustment
	AsOf           *time.Time      // policy date, nil means now
}

// ValuationService combines market quotes with the governing policies
type ValuationService struct {
	PolicyRepo  domain.PunishmentPolicyRepository
	CatalogRepo domain.ConditionCatalogRepository
	Diamonds    domain.DiamondPricer
	Gold        domain.GoldPricer
	Rounding    *domain.RoundingConfig
	Now         func() time.Time
}

// NewValuationService creates a new ValuationService instance
// Connectors are expected to be wrapped with fault translation already
func NewValuationService(
	policyRepo domain.PunishmentPolicyRepository,
	catalogRepo domain.ConditionCatalogRepository,
	diamonds domain.DiamondPricer,
	gold domain.GoldPricer,
	rounding *domain.RoundingConfig,
) *ValuationService {
	return &ValuationService{
		PolicyRepo:  policyRepo,
		CatalogRepo: catalogRepo,
		Diamonds:    diamonds,
		Gold:        gold,
		Rounding:    rounding,
		Now:         time.Now,
	}
}

// Appraise produces the bounded appraisal of an item
// Logic:
//
//	diamond_x = quote_x * diamondFactor
//	gold      = pricePerGram * grams * jewelryFactor
//	ancillary = declared * ancillaryFactor
//	raw_x     = (diamond_x + gold + ancillary) * conditionFactor
func (s *ValuationService) Appraise(ctx context.Context, input AppraiseInput) (*domain.Appraisal, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	factors, err := s.factors(ctx, input.AsOf)
	if err != nil {
		return nil, err
	}

	conditionFactor := decimal.NewFromInt(1)
	if input.Condition != "" {
		modifier, err := s.CatalogRepo.Lookup(ctx, input.Condition)
		if err != nil {
			return nil, err
		}
		conditionFactor = modifier.FactorOrOne()
	}

	var diamond domain.PriceRange
	if input.Diamond != nil {
		quote, err := s.Diamonds.QuoteDiamond(ctx, input.Diamond.Criteria)
		if err != nil {
			return nil, err
		}
		df := factors.DiamondFactor()
		diamond = domain.PriceRange{
			Minimum: quote.Minimum.Mul(df),
			Average: quote.Average.Mul(df),
			Maximum: quote.Maximum.Mul(df),
		}
	}

	gold := decimal.Zero
	if input.Gold != nil {
		perGram, err := s.Gold.QuoteGold(ctx, input.Gold.Criteria)
		if err != nil {
			return nil, err
		}
		gold = perGram.Mul(input.Gold.Grams).Mul(factors.JewelryFactor())
	}

	ancillary := input.AncillaryValue.Mul(factors.AncillaryFactor())
	base := gold.Add(ancillary)

	return domain.NewAppraisal(s.Rounding,
		diamond.Minimum.Add(base).Mul(conditionFactor),
		diamond.Average.Add(base).Mul(conditionFactor),
		diamond.Maximum.Add(base).Mul(conditionFactor),
	), nil
}

// factors loads the punishment factors valid now or at asOf
func (s *ValuationService) factors(ctx context.Context, asOf *time.Time) (domain.PunishmentFactors, error) {
	if asOf == nil {
		return s.PolicyRepo.Current(ctx)
	}

	date, err := domain.RejectFutureDate(*asOf, s.Now())
	if err != nil {
		return domain.PunishmentFactors{}, err
	}

	versions, err := s.PolicyRepo.AsOf(ctx, date)
	if err != nil {
		return domain.PunishmentFactors{}, err
	}
	if len(versions) == 0 {
		return domain.PunishmentFactors{}, domain.ErrPunishmentPolicyNotFound
	}

	// Versions come oldest first; the newest one governs
	return versions[len(versions)-1], nil
}

func validateInput(input AppraiseInput) error {
	if input.Diamond == nil && input.Gold == nil && input.AncillaryValue.IsZero() {
		return fmt.Errorf("%w: nothing to appraise", domain.ErrInvalidArgument)
	}
	if input.AncillaryValue.IsNegative() {
		return fmt.Errorf("%w: ancillary value must not be negative", domain.ErrInvalidArgument)
	}
	if input.Gold != nil {
		if _, err := domain.RejectNonPositiveMsg(decimal.NewNullDecimal(input.Gold.Grams), "gold weight"); err != nil {
			return err
		}
	}
	return nil
}
