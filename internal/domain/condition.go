package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConditionModifier pairs an item condition code (e.g. "EX") with its adjustment factor.
// Either field may be missing; partially populated modifiers are kept as they are.
type ConditionModifier struct {
	Condition *string
	Factor    decimal.NullDecimal
}

// NewConditionModifier creates a modifier without validating either field
func NewConditionModifier(condition *string, factor *decimal.Decimal) ConditionModifier {
	m := ConditionModifier{Condition: condition}
	if factor != nil {
		m.Factor = decimal.NewNullDecimal(*factor)
	}
	return m
}

// Code returns the condition code or "" when it is missing
func (m ConditionModifier) Code() string {
	if m.Condition == nil {
		return ""
	}
	return *m.Condition
}

// FactorOrOne returns the factor, treating a missing one as neutral
func (m ConditionModifier) FactorOrOne() decimal.Decimal {
	if !m.Factor.Valid {
		return decimal.NewFromInt(1)
	}
	return m.Factor.Decimal
}

// ConditionCatalog is a named, dated snapshot of every condition modifier.
// Catalogs are replaced as a whole, never merged entry by entry.
type ConditionCatalog struct {
	ID          uuid.UUID
	Name        string
	LastUpdated time.Time
	Current     bool
	Modifiers   []ConditionModifier
}

// Lookup returns the modifier whose code matches condition
func (c *ConditionCatalog) Lookup(condition string) (ConditionModifier, bool) {
	for _, m := range c.Modifiers {
		if m.Condition != nil && *m.Condition == condition {
			return m, true
		}
	}
	return ConditionModifier{}, false
}

// Validate ensures the catalog can become the current one
func (c *ConditionCatalog) Validate() error {
	if len(c.Modifiers) == 0 {
		return ErrCatalogEmpty
	}
	return nil
}

// Clone returns a deep copy so callers cannot mutate stored snapshots
func (c *ConditionCatalog) Clone() *ConditionCatalog {
	out := *c
	out.Modifiers = make([]ConditionModifier, len(c.Modifiers))
	for i, m := range c.Modifiers {
		if m.Condition != nil {
			code := *m.Condition
			m.Condition = &code
		}
		out.Modifiers[i] = m
	}
	return &out
}

// SameDay reports whether a and b fall on the same calendar day in a's location
func SameDay(a, b time.Time) bool {
	b = b.In(a.Location())
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
