package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// PunishmentPolicyRepository defines temporal access to the punishment factors
type PunishmentPolicyRepository interface {
	// Current retrieves the factors valid now
	// Returns ErrPunishmentPolicyNotFound if no version covers the present instant
	Current(ctx context.Context) (PunishmentFactors, error)

	// AsOf retrieves every version valid at date
	// Returns ErrPunishmentPolicyNotFound if the result would be empty
	AsOf(ctx context.Context, date time.Time) ([]PunishmentFactors, error)

	// Replace supersedes the active policy in a single atomic step
	Replace(ctx context.Context, factors *PunishmentFactors) error
}

// ConditionCatalogRepository defines access to the dated condition modifier catalogs
type ConditionCatalogRepository interface {
	// Lookup retrieves the modifier for condition from the current catalog
	Lookup(ctx context.Context, condition string) (ConditionModifier, error)

	// CurrentCatalog retrieves the catalog flagged valid now
	CurrentCatalog(ctx context.Context) (*ConditionCatalog, error)

	// CatalogsAsOf retrieves every catalog last updated on date's calendar day
	// date must not be in the future
	CatalogsAsOf(ctx context.Context, date time.Time) ([]*ConditionCatalog, error)

	// ReplaceCatalog atomically makes catalog the current one
	ReplaceCatalog(ctx context.Context, catalog *ConditionCatalog) (*ConditionCatalog, error)
}

// DiamondCriteria identifies a diamond for the pricing service
type DiamondCriteria struct {
	Cut     string
	Color   string
	Clarity string
	Carat   string
}

// GoldCriteria identifies a gold alloy for the pricing service
type GoldCriteria struct {
	Metal   string
	Quality string
	Range   string
}

// PriceRange is a bounded market quote
type PriceRange struct {
	Minimum decimal.Decimal
	Average decimal.Decimal
	Maximum decimal.Decimal
}

// DiamondPricer is a reference-data connector quoting diamonds
type DiamondPricer interface {
	QuoteDiamond(ctx context.Context, criteria DiamondCriteria) (PriceRange, error)
}

// GoldPricer is a reference-data connector quoting gold per gram
type GoldPricer interface {
	QuoteGold(ctx context.Context, criteria GoldCriteria) (decimal.Decimal, error)
}
