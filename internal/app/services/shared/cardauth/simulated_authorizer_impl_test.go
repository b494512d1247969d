package cardauth

import (
	"context"
	"hospital-service/internal/app/models"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSimulatedAuthorizer_DeclineRateBounds(t *testing.T) {
	card := models.CardDetails{Number: "4111111111111111"}
	amount := decimal.RequireFromString("10")

	always := NewSimulatedAuthorizer(0, zap.NewNop())
	never := NewSimulatedAuthorizer(1, zap.NewNop())
	for i := 0; i < 50; i++ {
		ok, err := always.Authorize(context.Background(), "TXN", card, amount)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = never.Authorize(context.Background(), "TXN", card, amount)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestSimulatedAuthorizer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ok, err := NewSimulatedAuthorizer(0, zap.NewNop()).Authorize(ctx, "TXN", models.CardDetails{}, decimal.Zero)
	assert.Error(t, err)
	assert.False(t, ok)
}
