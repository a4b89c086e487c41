package domain

import (
	"strings"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// RoundingMode represents the tie-breaking strategy used when rounding money
type RoundingMode string

const (
	RoundingModeHalfUp   RoundingMode = "HALF_UP"
	RoundingModeHalfDown RoundingMode = "HALF_DOWN"
)

// DefaultRoundingScale is the number of fractional digits kept by the built-in policies
const DefaultRoundingScale int32 = 2

// ParseRoundingMode converts a configured strategy name into a RoundingMode.
// Unknown or empty names fall back to HALF_UP.
func ParseRoundingMode(name string) RoundingMode {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case string(RoundingModeHalfDown):
		return RoundingModeHalfDown
	default:
		return RoundingModeHalfUp
	}
}

// RoundingPolicy converts a raw decimal into a display-ready decimal
type RoundingPolicy struct {
	Mode  RoundingMode
	Scale int32
}

// DefaultRoundingPolicy returns HALF_UP with two decimals
func DefaultRoundingPolicy() RoundingPolicy {
	return RoundingPolicy{Mode: RoundingModeHalfUp, Scale: DefaultRoundingScale}
}

// Round applies the policy to value. It never fails.
// Ties are resolved away from zero for HALF_UP and towards zero for HALF_DOWN.
func (p RoundingPolicy) Round(value decimal.Decimal) decimal.Decimal {
	scale := p.Scale
	if scale < 0 {
		scale = DefaultRoundingScale
	}

	if p.Mode != RoundingModeHalfDown {
		// decimal.Round is half away from zero
		return value.Round(scale)
	}

	truncated := value.Truncate(scale)
	half := decimal.New(5, -(scale + 1))
	if value.Sub(truncated).Abs().Equal(half) {
		return truncated
	}
	return value.Round(scale)
}

// RoundingConfig is the process-wide, swappable rounding selector.
// It is passed explicitly to whoever needs to read rounded money; readers always
// observe a complete policy, never a half-written one.
type RoundingConfig struct {
	policy atomic.Pointer[RoundingPolicy]
}

// NewRoundingConfig creates a selector holding the given policy
func NewRoundingConfig(policy RoundingPolicy) *RoundingConfig {
	c := &RoundingConfig{}
	c.Set(policy)
	return c
}

// NewDefaultRoundingConfig creates a selector holding HALF_UP with two decimals
func NewDefaultRoundingConfig() *RoundingConfig {
	return NewRoundingConfig(DefaultRoundingPolicy())
}

// Current returns the active policy. A nil selector yields the default policy.
func (c *RoundingConfig) Current() RoundingPolicy {
	if c == nil {
		return DefaultRoundingPolicy()
	}
	p := c.policy.Load()
	if p == nil {
		return DefaultRoundingPolicy()
	}
	return *p
}

// Set swaps the active policy; subsequent reads use it
func (c *RoundingConfig) Set(policy RoundingPolicy) {
	if policy.Mode != RoundingModeHalfDown {
		policy.Mode = RoundingModeHalfUp
	}
	if policy.Scale < 0 {
		policy.Scale = DefaultRoundingScale
	}
	c.policy.Store(&policy)
}

// SetMode swaps only the tie-breaking strategy, keeping the current scale
func (c *RoundingConfig) SetMode(mode RoundingMode) {
	p := c.Current()
	p.Mode = mode
	c.Set(p)
}

// Round rounds value with whatever policy is active at call time
func (c *RoundingConfig) Round(value decimal.Decimal) decimal.Decimal {
	return c.Current().Round(value)
}
