package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/simaogato/pawnvalue-backend/internal/domain"
)

// punishmentPolicyRepository implements domain.PunishmentPolicyRepository in memory
type punishmentPolicyRepository struct {
	mu       sync.RWMutex
	policies []*domain.PunishmentPolicy
	now      func() time.Time
}

// NewPunishmentPolicyRepository creates an empty in-memory policy repository
// now is the clock; nil means time.Now
func NewPunishmentPolicyRepository(now func() time.Time) domain.PunishmentPolicyRepository {
	if now == nil {
		now = time.Now
	}
	return &punishmentPolicyRepository{now: now}
}

// Current retrieves the factors valid now
func (r *punishmentPolicyRepository) Current(ctx context.Context) (domain.PunishmentFactors, error) {
	now := r.now()

	r.mu.RLock()
	defer r.mu.RUnlock()

	// Newest version wins if windows ever overlap
	for i := len(r.policies) - 1; i >= 0; i-- {
		if r.policies[i].ValidAt(now) {
			return r.policies[i].Factors, nil
		}
	}

	return domain.PunishmentFactors{}, fmt.Errorf("no policy valid at %s: %w", now.Format(time.RFC3339), domain.ErrPunishmentPolicyNotFound)
}

// AsOf retrieves every version valid at date
func (r *punishmentPolicyRepository) AsOf(ctx context.Context, date time.Time) ([]domain.PunishmentFactors, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidArgument)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.PunishmentFactors
	for _, p := range r.policies {
		if p.ValidAt(date) {
			out = append(out, p.Factors)
		}
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no policy valid at %s: %w", date.Format(time.RFC3339), domain.ErrPunishmentPolicyNotFound)
	}

	return out, nil
}

// Replace closes the open version and opens a new one under a single lock
func (r *punishmentPolicyRepository) Replace(ctx context.Context, factors *domain.PunishmentFactors) error {
	if factors == nil {
		return fmt.Errorf("%w: punishment factors are nil", domain.ErrInvalidArgument)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, p := range r.policies {
		if p.ValidTo == nil {
			closedAt := now
			p.ValidTo = &closedAt
		}
	}

	r.policies = append(r.policies, &domain.PunishmentPolicy{
		ID:        uuid.New(),
		Factors:   *factors,
		ValidFrom: now,
	})

	return nil
}
