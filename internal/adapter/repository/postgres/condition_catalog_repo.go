package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/simaogato/pawnvalue-backend/internal/domain"
)

// conditionCatalogRepository implements domain.ConditionCatalogRepository
type conditionCatalogRepository struct {
	db  *DB
	now func() time.Time
}

// NewConditionCatalogRepository creates a new condition catalog repository
// now is the clock; nil means time.Now
func NewConditionCatalogRepository(db *DB, now func() time.Time) domain.ConditionCatalogRepository {
	if now == nil {
		now = time.Now
	}
	return &conditionCatalogRepository{db: db, now: now}
}

// Lookup retrieves the modifier for condition from the current catalog
// A single statement tells "no current catalog" apart from "no such modifier"
func (r *conditionCatalogRepository) Lookup(ctx context.Context, condition string) (domain.ConditionModifier, error) {
	query := `
		SELECT c.id, m.condition, m.factor
		FROM condition_catalogs c
		LEFT JOIN condition_modifiers m ON m.catalog_id = c.id AND m.condition = $1
		WHERE c.is_current
		ORDER BY m.id ASC
		LIMIT 1
	`

	var catalogID uuid.UUID
	var code, factorStr sql.NullString

	err := r.db.QueryRowContext(ctx, query, condition).Scan(&catalogID, &code, &factorStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ConditionModifier{}, domain.ErrCatalogNotFound
		}
		return domain.ConditionModifier{}, fmt.Errorf("failed to lookup condition modifier: %w", err)
	}

	if !code.Valid {
		return domain.ConditionModifier{}, fmt.Errorf("condition %q: %w", condition, domain.ErrConditionModifierNotFound)
	}

	return toModifier(code, factorStr)
}

// CurrentCatalog retrieves the catalog flagged current with all of its modifiers
func (r *conditionCatalogRepository) CurrentCatalog(ctx context.Context) (*domain.ConditionCatalog, error) {
	query := `
		SELECT id, name, last_updated, is_current
		FROM condition_catalogs
		WHERE is_current
	`

	var catalog domain.ConditionCatalog
	err := r.db.QueryRowContext(ctx, query).Scan(
		&catalog.ID,
		&catalog.Name,
		&catalog.LastUpdated,
		&catalog.Current,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCatalogNotFound
		}
		return nil, fmt.Errorf("failed to get current catalog: %w", err)
	}

	catalogs := []*domain.ConditionCatalog{&catalog}
	if err := r.loadModifiers(ctx, catalogs); err != nil {
		return nil, err
	}

	return &catalog, nil
}

// CatalogsAsOf retrieves every catalog last updated on date's calendar day
func (r *conditionCatalogRepository) CatalogsAsOf(ctx context.Context, date time.Time) ([]*domain.ConditionCatalog, error) {
	if _, err := domain.RejectFutureDate(date, r.now()); err != nil {
		return nil, err
	}

	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	query := `
		SELECT id, name, last_updated, is_current
		FROM condition_catalogs
		WHERE last_updated >= $1 AND last_updated < $2
		ORDER BY last_updated ASC
	`

	rows, err := r.db.QueryContext(ctx, query, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalogs: %w", err)
	}
	defer rows.Close()

	catalogs := make([]*domain.ConditionCatalog, 0)
	for rows.Next() {
		var c domain.ConditionCatalog
		if err := rows.Scan(&c.ID, &c.Name, &c.LastUpdated, &c.Current); err != nil {
			return nil, fmt.Errorf("failed to scan catalog: %w", err)
		}
		catalogs = append(catalogs, &c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating catalogs: %w", err)
	}

	if len(catalogs) == 0 {
		return catalogs, nil
	}

	if err := r.loadModifiers(ctx, catalogs); err != nil {
		return nil, err
	}

	return catalogs, nil
}

// ReplaceCatalog demotes the current catalog and inserts the new one in one transaction
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

	err := r.db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `LOCK TABLE condition_catalogs IN SHARE ROW EXCLUSIVE MODE`); err != nil {
			return fmt.Errorf("failed to lock catalogs: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `UPDATE condition_catalogs SET is_current = FALSE WHERE is_current`); err != nil {
			return fmt.Errorf("failed to demote current catalog: %w", err)
		}

		insertCatalog := `
			INSERT INTO condition_catalogs (id, name, last_updated, is_current)
			VALUES ($1, $2, $3, TRUE)
		`
		if _, err := tx.ExecContext(ctx, insertCatalog, stored.ID, stored.Name, stored.LastUpdated); err != nil {
			return fmt.Errorf("failed to insert catalog: %w", err)
		}

		insertModifier := `
			INSERT INTO condition_modifiers (catalog_id, condition, factor)
			VALUES ($1, $2, $3)
		`
		for _, m := range stored.Modifiers {
			var code, factor interface{}
			if m.Condition != nil {
				code = *m.Condition
			}
			if m.Factor.Valid {
				factor = m.Factor.Decimal.String()
			}

			if _, err := tx.ExecContext(ctx, insertModifier, stored.ID, code, factor); err != nil {
				return fmt.Errorf("failed to insert condition modifier: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// loadModifiers fills the modifiers of every catalog in one query
func (r *conditionCatalogRepository) loadModifiers(ctx context.Context, catalogs []*domain.ConditionCatalog) error {
	byID := make(map[uuid.UUID]*domain.ConditionCatalog, len(catalogs))
	ids := make([]string, 0, len(catalogs))
	for _, c := range catalogs {
		byID[c.ID] = c
		ids = append(ids, c.ID.String())
	}

	query := `
		SELECT catalog_id, condition, factor
		FROM condition_modifiers
		WHERE catalog_id = ANY($1::uuid[])
		ORDER BY id ASC
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to query condition modifiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var catalogID uuid.UUID
		var code, factorStr sql.NullString
		if err := rows.Scan(&catalogID, &code, &factorStr); err != nil {
			return fmt.Errorf("failed to scan condition modifier: %w", err)
		}

		m, err := toModifier(code, factorStr)
		if err != nil {
			return err
		}

		if c, ok := byID[catalogID]; ok {
			c.Modifiers = append(c.Modifiers, m)
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating condition modifiers: %w", err)
	}

	return nil
}

// toModifier converts nullable columns into a ConditionModifier, keeping NULLs
func toModifier(code, factorStr sql.NullString) (domain.ConditionModifier, error) {
	var condition *string
	if code.Valid {
		c := code.String
		condition = &c
	}

	var factor *decimal.Decimal
	if factorStr.Valid {
		f, err := decimal.NewFromString(factorStr.String)
		if err != nil {
			return domain.ConditionModifier{}, fmt.Errorf("failed to parse condition factor: %w", err)
		}
		factor = &f
	}

	return domain.NewConditionModifier(condition, factor), nil
}
