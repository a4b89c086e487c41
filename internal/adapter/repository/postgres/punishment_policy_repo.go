package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/simaogato/pawnvalue-backend/internal/domain"
)

// punishmentPolicyRepository implements domain.PunishmentPolicyRepository
type punishmentPolicyRepository struct {
	db  *DB
	now func() time.Time
}

// NewPunishmentPolicyRepository creates a new punishment policy repository
// now is the clock; nil means time.Now
func NewPunishmentPolicyRepository(db *DB, now func() time.Time) domain.PunishmentPolicyRepository {
	if now == nil {
		now = time.Now
	}
	return &punishmentPolicyRepository{db: db, now: now}
}

// Current retrieves the factors valid now
func (r *punishmentPolicyRepository) Current(ctx context.Context) (domain.PunishmentFactors, error) {
	query := `
		SELECT diamond_factor, jewelry_factor, ancillary_factor
		FROM punishment_policies
		WHERE valid_from <= $1 AND (valid_to IS NULL OR valid_to > $1)
		ORDER BY valid_from DESC
		LIMIT 1
	`

	var diamondStr, jewelryStr, ancillaryStr string
	err := r.db.QueryRowContext(ctx, query, r.now()).Scan(&diamondStr, &jewelryStr, &ancillaryStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.PunishmentFactors{}, domain.ErrPunishmentPolicyNotFound
		}
		return domain.PunishmentFactors{}, fmt.Errorf("failed to get current punishment policy: %w", err)
	}

	return parseFactors(diamondStr, jewelryStr, ancillaryStr)
}

// AsOf retrieves every version valid at date
func (r *punishmentPolicyRepository) AsOf(ctx context.Context, date time.Time) ([]domain.PunishmentFactors, error) {
	if date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrInvalidArgument)
	}

	query := `
		SELECT diamond_factor, jewelry_factor, ancillary_factor
		FROM punishment_policies
		WHERE valid_from <= $1 AND (valid_to IS NULL OR valid_to > $1)
		ORDER BY valid_from ASC
	`

	rows, err := r.db.QueryContext(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query punishment policies: %w", err)
	}
	defer rows.Close()

	var out []domain.PunishmentFactors
	for rows.Next() {
		var diamondStr, jewelryStr, ancillaryStr string
		if err := rows.Scan(&diamondStr, &jewelryStr, &ancillaryStr); err != nil {
			return nil, fmt.Errorf("failed to scan punishment policy: %w", err)
		}

		factors, err := parseFactors(diamondStr, jewelryStr, ancillaryStr)
		if err != nil {
			return nil, err
		}
		out = append(out, factors)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating punishment policies: %w", err)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("no policy valid at %s: %w", date.Format(time.RFC3339), domain.ErrPunishmentPolicyNotFound)
	}

	return out, nil
}

// Replace closes the open version and inserts the new one in one transaction
func (r *punishmentPolicyRepository) Replace(ctx context.Context, factors *domain.PunishmentFactors) error {
	if factors == nil {
		return fmt.Errorf("%w: punishment factors are nil", domain.ErrInvalidArgument)
	}

	now := r.now()

	return r.db.withTx(ctx, func(tx *sql.Tx) error {
		// Serialize concurrent replacements; readers are not blocked
		if _, err := tx.ExecContext(ctx, `LOCK TABLE punishment_policies IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("failed to lock punishment policies: %w", err)
		}

		closeQuery := `
			UPDATE punishment_policies
			SET valid_to = $1
			WHERE valid_to IS NULL
		`
		if _, err := tx.ExecContext(ctx, closeQuery, now); err != nil {
			return fmt.Errorf("failed to close current punishment policy: %w", err)
		}

		insertQuery := `
			INSERT INTO punishment_policies (id, diamond_factor, jewelry_factor, ancillary_factor, valid_from, valid_to)
			VALUES ($1, $2, $3, $4, $5, NULL)
		`
		_, err := tx.ExecContext(ctx, insertQuery,
			uuid.New(),
			factors.DiamondFactor().String(),
			factors.JewelryFactor().String(),
			factors.AncillaryFactor().String(),
			now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert punishment policy: %w", err)
		}

		return nil
	})
}

// parseFactors converts the NUMERIC columns into PunishmentFactors
func parseFactors(diamondStr, jewelryStr, ancillaryStr string) (domain.PunishmentFactors, error) {
	diamond, err := decimal.NewFromString(diamondStr)
	if err != nil {
		return domain.PunishmentFactors{}, fmt.Errorf("failed to parse diamond_factor: %w", err)
	}
	jewelry, err := decimal.NewFromString(jewelryStr)
	if err != nil {
		return domain.PunishmentFactors{}, fmt.Errorf("failed to parse jewelry_factor: %w", err)
	}
	ancillary, err := decimal.NewFromString(ancillaryStr)
	if err != nil {
		return domain.PunishmentFactors{}, fmt.Errorf("failed to parse ancillary_factor: %w", err)
	}

	return domain.NewPunishmentFactorsBuilder(diamond, jewelry, ancillary).Build()
}
