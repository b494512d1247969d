package payments

import (
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCard(t *testing.T) {
	now := time.Date(2030, time.June, 15, 12, 0, 0, 0, time.UTC)
	valid := models.CardDetails{
		Number:      "4111-1111-1111-1111",
		HolderName:  "Jane Doe",
		ExpiryMonth: 6,
		ExpiryYear:  2030,
		CVV:         "123",
	}

	tests := []struct {
		name   string
		mutate func(card *models.CardDetails)
		ok     bool
	}{
		{name: "valid with dashes", mutate: func(c *models.CardDetails) {}, ok: true},
		{name: "valid amex length with four digit cvv", mutate: func(c *models.CardDetails) {
			c.Number = "378282246310005"
			c.CVV = "1234"
		}, ok: true},
		{name: "too short", mutate: func(c *models.CardDetails) { c.Number = "411111111111" }},
		{name: "letters", mutate: func(c *models.CardDetails) { c.Number = "4111 1111 1111 111a" }},
		{name: "bad checksum", mutate: func(c *models.CardDetails) { c.Number = "4111 1111 1111 1112" }},
		{name: "month zero", mutate: func(c *models.CardDetails) { c.ExpiryMonth = 0 }},
		{name: "month thirteen", mutate: func(c *models.CardDetails) { c.ExpiryMonth = 13 }},
		{name: "expired last month", mutate: func(c *models.CardDetails) { c.ExpiryMonth = 5 }},
		{name: "expired last year", mutate: func(c *models.CardDetails) { c.ExpiryYear = 2029 }},
		{name: "short cvv", mutate: func(c *models.CardDetails) { c.CVV = "12" }},
		{name: "non numeric cvv", mutate: func(c *models.CardDetails) { c.CVV = "12a" }},
		{name: "missing holder", mutate: func(c *models.CardDetails) { c.HolderName = "  " }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			card := valid
			tt.mutate(&card)

			normalized, err := ValidateCard(card, now)

			if !tt.ok {
				assert.ErrorIs(t, err, exceptions.ErrKindInvalidAmount)
				assert.Equal(t, 400, exceptions.StatusCodeOf(err))
				return
			}
			require.NoError(t, err)
			assert.NotContains(t, normalized.Number, "-")
			assert.NotContains(t, normalized.Number, " ")
		})
	}
}

func TestValidateCard_LastFourAfterNormalizing(t *testing.T) {
	card, err := ValidateCard(models.CardDetails{
		Number:      "5555 5555 5555 4444",
		HolderName:  "John Roe",
		ExpiryMonth: 1,
		ExpiryYear:  2031,
		CVV:         "999",
	}, time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, "4444", card.LastFour())
}
