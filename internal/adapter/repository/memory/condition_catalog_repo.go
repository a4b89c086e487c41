package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/pawnvalue-backend/internal/domain"
)

// conditionCatalogRepository implements domain.ConditionCatalogRepository in memory
type conditionCatalogRepository struct {
	mu       sync.RWMutex
	catalogs []*domain.ConditionCatalog
	current  *domain.ConditionCatalog
	now      func() time.Time
}

// NewConditionCatalogRepository creates an empty in-memory catalog repository
// now is the clock; nil means time.Now
func NewConditionCatalogRepository(now func() time.Time) domain.ConditionCatalogRepository {
	if now == nil {
		now = time.Now
	}
	return &conditionCatalogRepository{now: now}
}

// Lookup retrieves the modifier for condition from the current catalog
func (r *conditionCatalogRepository) Lookup(ctx context.Context, condition string) (domain.ConditionModifier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == nil {
		return domain.ConditionModifier{}, domain.ErrCatalogNotFound
	}

	m, ok := r.current.Lookup(condition)
	if !ok {
		return domain.ConditionModifier{}, fmt.Errorf("condition %q: %w", condition, domain.ErrConditionModifierNotFound)
	}

	return m, nil
}

// CurrentCatalog retrieves a copy of the current catalog
func (r *conditionCatalogRepository) CurrentCatalog(ctx context.Context) (*domain.ConditionCatalog, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.current == nil {
		return nil, domain.ErrCatalogNotFound
	}

	return r.current.Clone(), nil
}

// CatalogsAsOf retrieves every catalog last updated on date's calendar day
func (r *conditionCatalogRepository) CatalogsAsOf(ctx context.Context, date time.Time) ([]*domain.ConditionCatalog, error) {
	if _, err := domain.RejectFutureDate(date, r.now()); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.ConditionCatalog, 0)
	for _, c := range r.catalogs {
		if domain.SameDay(date, c.LastUpdated) {
			out = append(out, c.Clone())
		}
	}

	return out, nil
}

// ReplaceCatalog makes catalog the current one, superseding the previous set entirely
func (r *conditionCatalogRepository) ReplaceCatalog(ctx context.Context, catalog *domain.ConditionCatalog) (*domain.ConditionCatalog, error) {
	if catalog == nil {
		return nil, fmt.Errorf("%w: catalog is nil", domain.ErrInvalidArgument)
	}
	if err := catalog.Validate(); err != nil {
		return nil, err
	}

	stored := catalog.Clone()
	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	if stored.LastUpdated.IsZero() {
		stored.LastUpdated = r.now()
	}
	stored.Current = true

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		r.current.Current = false
	}
	r.catalogs = append(r.catalogs, stored)
	r.current = stored

	return stored.Clone(), nil
}
