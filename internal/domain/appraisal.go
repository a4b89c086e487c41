package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Appraisal (avalúo) is the bounded valuation of a pawned item.
// It stores raw figures only; rounded readings are computed on every access
// with the policy active at that moment, so two reads separated by a policy
// change may differ. Ordering min <= avg <= max is the caller's responsibility.
type Appraisal struct {
	minimum  decimal.Decimal
	average  decimal.Decimal
	maximum  decimal.Decimal
	rounding *RoundingConfig
}

// NewAppraisal creates an appraisal read through rounding.
// A nil rounding selector reads with the default policy.
func NewAppraisal(rounding *RoundingConfig, minimum, average, maximum decimal.Decimal) *Appraisal {
	return &Appraisal{
		minimum:  minimum,
		average:  average,
		maximum:  maximum,
		rounding: rounding,
	}
}

// Minimum returns the raw minimum
func (a *Appraisal) Minimum() decimal.Decimal { return a.minimum }

// Average returns the raw average
func (a *Appraisal) Average() decimal.Decimal { return a.average }

// Maximum returns the raw maximum
func (a *Appraisal) Maximum() decimal.Decimal { return a.maximum }

// RoundedMinimum rounds the minimum with the current policy
func (a *Appraisal) RoundedMinimum() decimal.Decimal { return a.rounding.Round(a.minimum) }

// RoundedAverage rounds the average with the current policy
func (a *Appraisal) RoundedAverage() decimal.Decimal { return a.rounding.Round(a.average) }

// RoundedMaximum rounds the maximum with the current policy
func (a *Appraisal) RoundedMaximum() decimal.Decimal { return a.rounding.Round(a.maximum) }

// Equal compares raw figures only
func (a *Appraisal) Equal(other *Appraisal) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.minimum.Equal(other.minimum) &&
		a.average.Equal(other.average) &&
		a.maximum.Equal(other.maximum)
}

// HashKey returns a key that is identical for appraisals with equal raw figures
func (a *Appraisal) HashKey() string {
	return a.minimum.String() + "|" + a.average.String() + "|" + a.maximum.String()
}

func (a *Appraisal) String() string {
	return fmt.Sprintf("Appraisal{minimum=%s, average=%s, maximum=%s}", a.minimum, a.average, a.maximum)
}

// AppraisalReading is a rounded snapshot of an appraisal taken under a single policy
type AppraisalReading struct {
	Minimum string         `json:"minimum"`
	Average string         `json:"average"`
	Maximum string         `json:"maximum"`
	Policy  RoundingPolicy `json:"-"`
}

// Read rounds all three figures with the policy active at the time of the call.
// Values are formatted with exactly Scale fractional digits.
func (a *Appraisal) Read() AppraisalReading {
	p := a.rounding.Current()
	return AppraisalReading{
		Minimum: p.Round(a.minimum).StringFixed(p.Scale),
		Average: p.Round(a.average).StringFixed(p.Scale),
		Maximum: p.Round(a.maximum).StringFixed(p.Scale),
		Policy:  p,
	}
}

// MarshalJSON serializes the rounded readings at the time of the call
func (a *Appraisal) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Read())
}
