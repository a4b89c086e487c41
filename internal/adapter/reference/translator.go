package reference

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/simaogato/pawnvalue-backend/internal/domain"
)

// Translator normalizes reference-service failures into *domain.ValuationError.
// Unrecognized errors are returned unchanged.
type Translator struct {
	log zerolog.Logger
}

// NewTranslator creates a Translator logging through log
func NewTranslator(log zerolog.Logger) *Translator {
	return &Translator{log: log.With().Str("component", "fault_translator").Logger()}
}

// Translate classifies err raised by operation
func (t *Translator) Translate(operation string, err error) error {
	if err == nil {
		return nil
	}

	var fault *ProtocolFault
	if errors.As(err, &fault) {
		t.logFailure(operation, fault.Code, fault.Actor, err)
		return domain.NewValuationError(fault.Code, fault.Message, fault.Actor)
	}

	var comm *CommunicationError
	if errors.As(err, &comm) {
		t.logFailure(operation, domain.CodeCommunication, "", err)
		return domain.NewValuationError(domain.CodeCommunication, domain.MessageCommunication, comm.Err.Error())
	}

	t.logFailure(operation, "", "", err)
	return err
}

func (t *Translator) logFailure(operation, code, actor string, err error) {
	event := t.log.Warn().Err(err).Str("operation", operation)
	if code != "" {
		event = event.Str("code", code)
	}
	if actor != "" {
		event = event.Str("actor", actor)
	}
	event.Msg("reference service call failed")
}

// Call runs fn and translates its failure; a successful result passes through unchanged
func Call[T any](ctx context.Context, t *Translator, operation string, fn func(context.Context) (T, error)) (T, error) {
	result, err := fn(ctx)
	if err != nil {
		var zero T
		return zero, t.Translate(operation, err)
	}
	return result, nil
}

// translatingDiamondPricer wraps every diamond quote with the Translator
type translatingDiamondPricer struct {
	next       domain.DiamondPricer
	translator *Translator
}

// WithDiamondTranslation decorates next so its failures are translated
func WithDiamondTranslation(next domain.DiamondPricer, t *Translator) domain.DiamondPricer {
	return &translatingDiamondPricer{next: next, translator: t}
}

func (p *translatingDiamondPricer) QuoteDiamond(ctx context.Context, criteria domain.DiamondCriteria) (domain.PriceRange, error) {
	return Call(ctx, p.translator, "QuoteDiamond", func(ctx context.Context) (domain.PriceRange, error) {
		return p.next.QuoteDiamond(ctx, criteria)
	})
}

// translatingGoldPricer wraps every gold quote with the Translator
type translatingGoldPricer struct {
	next       domain.GoldPricer
	translator *Translator
}

// WithGoldTranslation decorates next so its failures are translated
func WithGoldTranslation(next domain.GoldPricer, t *Translator) domain.GoldPricer {
	return &translatingGoldPricer{next: next, translator: t}
}

func (p *translatingGoldPricer) QuoteGold(ctx context.Context, criteria domain.GoldCriteria) (decimal.Decimal, error) {
	return Call(ctx, p.translator, "QuoteGold", func(ctx context.Context) (decimal.Decimal, error) {
		return p.next.QuoteGold(ctx, criteria)
	})
}
