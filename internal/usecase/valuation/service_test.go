package valuation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/simaogato/pawnvalue-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockPolicyRepository is a mock implementation of PunishmentPolicyRepository for testing
type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) Current(ctx context.Context) (domain.PunishmentFactors, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.PunishmentFactors), args.Error(1)
}

func (m *MockPolicyRepository) AsOf(ctx context.Context, date time.Time) ([]domain.PunishmentFactors, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.PunishmentFactors), args.Error(1)
}

func (m *MockPolicyRepository) Replace(ctx context.Context, factors *domain.PunishmentFactors) error {
	args := m.Called(ctx, factors)
	return args.Error(0)
}

// MockCatalogRepository is a mock implementation of ConditionCatalogRepository for testing
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) Lookup(ctx context.Context, condition string) (domain.ConditionModifier, error) {
	args := m.Called(ctx, condition)
	return args.Get(0).(domain.ConditionModifier), args.Error(1)
}

func (m *MockCatalogRepository) CurrentCatalog(ctx context.Context) (*domain.ConditionCatalog, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConditionCatalog), args.Error(1)
}

func (m *MockCatalogRepository) CatalogsAsOf(ctx context.Context, date time.Time) ([]*domain.ConditionCatalog, error) {
	args := m.Called(ctx, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.ConditionCatalog), args.Error(1)
}

func (m *MockCatalogRepository) ReplaceCatalog(ctx context.Context, catalog *domain.ConditionCatalog) (*domain.ConditionCatalog, error) {
	args := m.Called(ctx, catalog)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConditionCatalog), args.Error(1)
}

// MockDiamondPricer is a mock implementation of DiamondPricer for testing
type MockDiamondPricer struct {
	mock.Mock
}

func (m *MockDiamondPricer) QuoteDiamond(ctx context.Context, criteria domain.DiamondCriteria) (domain.PriceRange, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).(domain.PriceRange), args.Error(1)
}

// MockGoldPricer is a mock implementation of GoldPricer for testing
type MockGoldPricer struct {
	mock.Mock
}

func (m *MockGoldPricer) QuoteGold(ctx context.Context, criteria domain.GoldCriteria) (decimal.Decimal, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mustFactors(t *testing.T, diamond, jewelry, ancillary string) domain.PunishmentFactors {
	t.Helper()
	f, err := domain.NewPunishmentFactorsBuilder(d(diamond), d(jewelry), d(ancillary)).Build()
	require.NoError(t, err)
	return f
}

func modifier(code, factor string) domain.ConditionModifier {
	f := d(factor)
	return domain.NewConditionModifier(&code, &f)
}

type fixture struct {
	policies *MockPolicyRepository
	catalogs *MockCatalogRepository
	diamonds *MockDiamondPricer
	gold     *MockGoldPricer
	rounding *domain.RoundingConfig
	service  *ValuationService
	now      time.Time
}

func newFixture() *fixture {
	f := &fixture{
		policies: new(MockPolicyRepository),
		catalogs: new(MockCatalogRepository),
		diamonds: new(MockDiamondPricer),
		gold:     new(MockGoldPricer),
		rounding: domain.NewDefaultRoundingConfig(),
		now:      time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewValuationService(f.policies, f.catalogs, f.diamonds, f.gold, f.rounding)
	f.service.Now = func() time.Time { return f.now }
	return f
}

var (
	diamondCriteria = domain.DiamondCriteria{Cut: "round", Color: "D", Clarity: "VS1", Carat: "1.00"}
	goldCriteria    = domain.GoldCriteria{Metal: "gold", Quality: "14K", Range: "A"}
)

func TestAppraise_FullItem(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.policies.On("Current", ctx).Return(mustFactors(t, "0.9", "0.8", "0.5"), nil)
	f.catalogs.On("Lookup", ctx, "GO").Return(modifier("GO", "0.95"), nil)
	f.diamonds.On("QuoteDiamond", ctx, diamondCriteria).Return(domain.PriceRange{
		Minimum: d("1000"), Average: d("1500"), Maximum: d("2000"),
	}, nil)
	f.gold.On("QuoteGold", ctx, goldCriteria).Return(d("100"), nil)

	appraisal, err := f.service.Appraise(ctx, AppraiseInput{
		Diamond:        &DiamondItem{Criteria: diamondCriteria},
		Gold:           &GoldItem{Criteria: goldCriteria, Grams: d("3.5")},
		AncillaryValue: d("40"),
		Condition:      "GO",
	})
	require.NoError(t, err)

	// gold = 100 * 3.5 * 0.8 = 280; ancillary = 40 * 0.5 = 20; base = 300
	// min = (900 + 300) * 0.95 = 1140
	// avg = (1350 + 300) * 0.95 = 1567.5
	// max = (1800 + 300) * 0.95 = 1995
	assert.True(t, d("1140").Equal(appraisal.Minimum()), appraisal.String())
	assert.True(t, d("1567.5").Equal(appraisal.Average()), appraisal.String())
	assert.True(t, d("1995").Equal(appraisal.Maximum()), appraisal.String())

	f.policies.AssertExpectations(t)
	f.catalogs.AssertExpectations(t)
	f.diamonds.AssertExpectations(t)
	f.gold.AssertExpectations(t)
}

func TestAppraise_GoldOnlyRoundsOnRead(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	f.policies.On("Current", ctx).Return(mustFactors(t, "1", "1", "1"), nil)
	f.gold.On("QuoteGold", ctx, goldCriteria).Return(d("12.335"), nil)

	appraisal, err := f.service.Appraise(ctx, AppraiseInput{
		Gold: &GoldItem{Criteria: goldCriteria, Grams: d("1")},
	})
	require.NoError(t, err)

	assert.True(t, d("12.34").Equal(appraisal.RoundedAverage()))
	f.rounding.SetMode(domain.RoundingModeHalfDown)
	assert.True(t, d("12.33").Equal(appraisal.RoundedAverage()))

	f.diamonds.AssertNotCalled(t, "QuoteDiamond", mock.Anything, mock.Anything)
	f.catalogs.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything)
}

func TestAppraise_MissingConditionFactorIsNeutral(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	code := "EX"
	f.policies.On("Current", ctx).Return(mustFactors(t, "1", "1", "0.5"), nil)
	f.catalogs.On("Lookup", ctx, "EX").Return(domain.NewConditionModifier(&code, nil), nil)

	appraisal, err := f.service.Appraise(ctx, AppraiseInput{AncillaryValue: d("10"), Condition: "EX"})
	require.NoError(t, err)
	assert.True(t, d("5").Equal(appraisal.Average()))
}

func TestAppraise_HistoricalFactors(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	asOf := f.now.AddDate(0, -2, 0)

	f.policies.On("AsOf", ctx, asOf).Return([]domain.PunishmentFactors{
		mustFactors(t, "1", "1", "0.1"),
		mustFactors(t, "1", "1", "0.2"),
	}, nil)

	appraisal, err := f.service.Appraise(ctx, AppraiseInput{AncillaryValue: d("100"), AsOf: &asOf})
	require.NoError(t, err)
	assert.True(t, d("20").Equal(appraisal.Average()))
	f.policies.AssertNotCalled(t, "Current", mock.Anything)
}

func TestAppraise_FutureDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	tomorrow := f.now.AddDate(0, 0, 1)

	_, err := f.service.Appraise(ctx, AppraiseInput{AncillaryValue: d("100"), AsOf: &tomorrow})
	assert.ErrorIs(t, err, domain.ErrFutureDate)
	f.policies.AssertNotCalled(t, "AsOf", mock.Anything, mock.Anything)
}

func TestAppraise_InvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		input AppraiseInput
	}{
		{name: "Nothing to appraise", input: AppraiseInput{}},
		{name: "Negative ancillary", input: AppraiseInput{AncillaryValue: d("-1")}},
		{name: "Zero grams", input: AppraiseInput{Gold: &GoldItem{Criteria: goldCriteria, Grams: decimal.Zero}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			_, err := f.service.Appraise(context.Background(), tt.input)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
			f.policies.AssertNotCalled(t, "Current", mock.Anything)
		})
	}
}

func TestAppraise_PropagatesDomainErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("No policy", func(t *testing.T) {
		f := newFixture()
		f.policies.On("Current", ctx).Return(domain.PunishmentFactors{}, domain.ErrPunishmentPolicyNotFound)

		_, err := f.service.Appraise(ctx, AppraiseInput{AncillaryValue: d("1")})
		assert.ErrorIs(t, err, domain.ErrPunishmentPolicyNotFound)
	})

	t.Run("Unknown condition", func(t *testing.T) {
		f := newFixture()
		f.policies.On("Current", ctx).Return(mustFactors(t, "1", "1", "1"), nil)
		f.catalogs.On("Lookup", ctx, "XX").Return(domain.ConditionModifier{}, domain.ErrConditionModifierNotFound)

		_, err := f.service.Appraise(ctx, AppraiseInput{AncillaryValue: d("1"), Condition: "XX"})
		assert.ErrorIs(t, err, domain.ErrConditionModifierNotFound)
	})

	t.Run("Translated connector fault", func(t *testing.T) {
		f := newFixture()
		f.policies.On("Current", ctx).Return(mustFactors(t, "1", "1", "1"), nil)
		fault := domain.NewValuationError("NMP-TR-010", "Error Test", "")
		f.diamonds.On("QuoteDiamond", ctx, diamondCriteria).Return(domain.PriceRange{}, fault)

		_, err := f.service.Appraise(ctx, AppraiseInput{Diamond: &DiamondItem{Criteria: diamondCriteria}})

		var verr *domain.ValuationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "NMP-TR-010", verr.Code)
		f.gold.AssertNotCalled(t, "QuoteGold", mock.Anything, mock.Anything)
	})
}
