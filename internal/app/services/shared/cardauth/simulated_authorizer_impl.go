package cardauth

import (
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// simulatedAuthorizer stands in for a card processor and declines a configured share of charges.
type simulatedAuthorizer struct {
	DeclineRate float64
	Log         *zap.Logger

	mu  sync.Mutex
	rng *rand.Rand
}

func NewSimulatedAuthorizer(declineRate float64, logger *zap.Logger) contracts.CardAuthorizer {
	return &simulatedAuthorizer{
		DeclineRate: declineRate,
		Log:         logger,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (a *simulatedAuthorizer) Authorize(ctx context.Context, transactionID string, card models.CardDetails, amount decimal.Decimal) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	a.mu.Lock()
	roll := a.rng.Float64()
	a.mu.Unlock()

	approved := roll >= a.DeclineRate
	a.Log.Info("simulatedAuthorizer.Authorize decided",
		zap.String(constvars.LoggingTransactionIDKey, transactionID),
		zap.String("card_last_four", card.LastFour()),
		zap.String(constvars.LoggingAmountKey, amount.StringFixed(2)),
		zap.Bool("approved", approved),
	)
	return approved, nil
}

// StubAuthorizer returns a fixed decision and records every transaction id it saw.
type StubAuthorizer struct {
	Approve bool
	Err     error

	mu    sync.Mutex
	Calls []string
}

func (s *StubAuthorizer) Authorize(ctx context.Context, transactionID string, card models.CardDetails, amount decimal.Decimal) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Calls = append(s.Calls, transactionID)
	if s.Err != nil {
		return false, s.Err
	}
	return s.Approve, nil
}

func (s *StubAuthorizer) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Calls)
}
