package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PunishmentFactors holds the three risk discounts applied to raw market value.
// Each factor is the fraction of value retained, conceptually in (0, 1].
type PunishmentFactors struct {
	diamond   decimal.Decimal
	jewelry   decimal.Decimal
	ancillary decimal.Decimal
}

// PunishmentFactorsBuilder collects the factors before they are frozen
type PunishmentFactorsBuilder struct {
	Diamond   decimal.NullDecimal
	Jewelry   decimal.NullDecimal
	Ancillary decimal.NullDecimal
}

// NewPunishmentFactorsBuilder creates a builder with all three factors set
func NewPunishmentFactorsBuilder(diamond, jewelry, ancillary decimal.Decimal) *PunishmentFactorsBuilder {
	return &PunishmentFactorsBuilder{
		Diamond:   decimal.NewNullDecimal(diamond),
		Jewelry:   decimal.NewNullDecimal(jewelry),
		Ancillary: decimal.NewNullDecimal(ancillary),
	}
}

// Build is shorthand for NewPunishmentFactors(b)
func (b *PunishmentFactorsBuilder) Build() (PunishmentFactors, error) {
	return NewPunishmentFactors(b)
}

// NewPunishmentFactors freezes the builder's values.
// Values are copied as they are; range checks belong to the caller.
func NewPunishmentFactors(b *PunishmentFactorsBuilder) (PunishmentFactors, error) {
	if b == nil {
		return PunishmentFactors{}, fmt.Errorf("%w: punishment factors builder is nil", ErrInvalidArgument)
	}
	if !b.Diamond.Valid || !b.Jewelry.Valid || !b.Ancillary.Valid {
		return PunishmentFactors{}, fmt.Errorf("%w: punishment factors must all be set", ErrInvalidArgument)
	}

	return PunishmentFactors{
		diamond:   b.Diamond.Decimal,
		jewelry:   b.Jewelry.Decimal,
		ancillary: b.Ancillary.Decimal,
	}, nil
}

// DiamondFactor returns the discount applied to diamonds
func (f PunishmentFactors) DiamondFactor() decimal.Decimal { return f.diamond }

// JewelryFactor returns the discount applied to the jewelry setting
func (f PunishmentFactors) JewelryFactor() decimal.Decimal { return f.jewelry }

// AncillaryFactor returns the discount applied to ancillary pieces
func (f PunishmentFactors) AncillaryFactor() decimal.Decimal { return f.ancillary }

// Equal compares the three factors by value
func (f PunishmentFactors) Equal(other PunishmentFactors) bool {
	return f.diamond.Equal(other.diamond) &&
		f.jewelry.Equal(other.jewelry) &&
		f.ancillary.Equal(other.ancillary)
}

// HashKey returns a key that is identical for equal factors
func (f PunishmentFactors) HashKey() string {
	return f.diamond.String() + "|" + f.jewelry.String() + "|" + f.ancillary.String()
}

func (f PunishmentFactors) String() string {
	return fmt.Sprintf("PunishmentFactors{diamond=%s, jewelry=%s, ancillary=%s}", f.diamond, f.jewelry, f.ancillary)
}

// PunishmentPolicy is one stored version of the factors with its validity window
type PunishmentPolicy struct {
	ID        uuid.UUID
	Factors   PunishmentFactors
	ValidFrom time.Time
	ValidTo   *time.Time // NULL while the version is open
}

// ValidAt reports whether the version covers instant t
func (p *PunishmentPolicy) ValidAt(t time.Time) bool {
	if t.Before(p.ValidFrom) {
		return false
	}
	return p.ValidTo == nil || t.Before(*p.ValidTo)
}
