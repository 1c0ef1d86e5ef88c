package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	"github.com/rs/zerolog"

	"github.com/supportdesk/support-system/internal/api/metrics"
	"github.com/supportdesk/support-system/internal/core/domain"
	"github.com/supportdesk/support-system/internal/core/ports"
)

const DefaultNumberingAttempts = 10

var numeroSpace = big.NewInt(100_000_000)

// NumeroGenerator produces a candidate numero_portabilite.
type NumeroGenerator func() (string, error)

// RandomNumero draws uniformly from 00000000..99999999.
func RandomNumero() (string, error) {
	n, err := rand.Int(rand.Reader, numeroSpace)
	if err != nil {
		return "", fmt.Errorf("draw numero: %w", err)
	}
	return fmt.Sprintf("%0*d", domain.NumeroPortabiliteLength, n.Int64()), nil
}

// Numbering hands out numero_portabilite values. Uniqueness is ultimately
// enforced by the store's unique index: a duplicate-key failure on claim is
// treated like a probe hit and retried with a new candidate.
type Numbering struct {
	checker     ports.NumeroChecker
	generate    NumeroGenerator
	maxAttempts int
	log         zerolog.Logger
}

func NewNumbering(checker ports.NumeroChecker, generate NumeroGenerator, maxAttempts int, log zerolog.Logger) *Numbering {
	if generate == nil {
		generate = RandomNumero
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultNumberingAttempts
	}
	return &Numbering{checker: checker, generate: generate, maxAttempts: maxAttempts, log: log}
}

// Generate returns a candidate that was free at probe time.
func (n *Numbering) Generate(ctx context.Context) (string, error) {
	return n.Assign(ctx, nil)
}

// Assign draws candidates until claim succeeds. claim is usually the insert of
// the entity carrying the numero; it must return domain.ErrDuplicateNumero
// when the numero was taken concurrently.
func (n *Numbering) Assign(ctx context.Context, claim func(ctx context.Context, numero string) error) (string, error) {
	for attempt := 1; attempt <= n.maxAttempts; attempt++ {
		candidate, err := n.generate()
		if err != nil {
			return "", err
		}
		if !domain.ValidNumeroPortabilite(candidate) {
			return "", fmt.Errorf("generator produced malformed numero %q", candidate)
		}

		taken, err := n.checker.ExistsNumero(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("probe numero: %w", err)
		}
		if taken {
			n.collision(candidate, attempt, "probe")
			continue
		}
		if claim == nil {
			return candidate, nil
		}

		err = claim(ctx, candidate)
		if errors.Is(err, domain.ErrDuplicateNumero) {
			n.collision(candidate, attempt, "insert")
			continue
		}
		if err != nil {
			return "", err
		}
		return candidate, nil
	}

	n.log.Error().Int("attempts", n.maxAttempts).Msg("numero_portabilite retry budget exhausted")
	return "", domain.ErrNumberingExhausted
}

func (n *Numbering) collision(candidate string, attempt int, stage string) {
	metrics.NumberingCollisionsTotal.WithLabelValues(stage).Inc()
	n.log.Warn().Str("numero", candidate).Int("attempt", attempt).Str("stage", stage).Msg("numero_portabilite collision")
}
