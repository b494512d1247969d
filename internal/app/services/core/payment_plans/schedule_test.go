package paymentPlans

import (
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestMonthlyPayment(t *testing.T) {
	tests := []struct {
		name      string
		principal string
		rate      string
		n         int
		want      string
	}{
		{name: "no interest splits evenly", principal: "300.00", rate: "0", n: 3, want: "100.00"},
		{name: "rounds half up to cents", principal: "100.00", rate: "0", n: 3, want: "33.33"},
		{name: "interest on principal", principal: "300.00", rate: "0.05", n: 3, want: "105.00"},
		{name: "single installment", principal: "57.25", rate: "0", n: 1, want: "57.25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyPayment(money(tt.principal), money(tt.rate), tt.n)
			assert.Equal(t, tt.want, got.StringFixed(2))
		})
	}
}

func TestBuildSchedule_MonthlyFromStart(t *testing.T) {
	start := time.Date(2030, time.March, 15, 0, 0, 0, 0, time.UTC)

	installments, err := BuildSchedule(money("300.00"), money("100.00"), 3, start)

	require.NoError(t, err)
	require.Len(t, installments, 3)
	for idx, inst := range installments {
		assert.Equal(t, idx+1, inst.InstallmentNumber)
		assert.Equal(t, "100.00", inst.Amount.StringFixed(2))
		assert.True(t, inst.AmountPaid.IsZero())
		assert.Equal(t, models.InstallmentStatusPending, inst.Status)
		assert.Equal(t, start.AddDate(0, idx, 0), inst.DueDate)
	}
}

func TestBuildSchedule_RemainderGoesToLastInstallment(t *testing.T) {
	total := money("100.00")
	monthly := MonthlyPayment(total, decimal.Zero, 3)

	installments, err := BuildSchedule(total, monthly, 3, time.Date(2030, time.January, 1, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, "33.33", installments[0].Amount.StringFixed(2))
	assert.Equal(t, "33.33", installments[1].Amount.StringFixed(2))
	assert.Equal(t, "33.34", installments[2].Amount.StringFixed(2))
	plan := models.PaymentPlan{Installments: installments}
	assert.True(t, plan.ScheduledTotal().Equal(total))
}

func TestBuildSchedule_ClampsMonthEnd(t *testing.T) {
	installments, err := BuildSchedule(money("90.00"), money("30.00"), 3, time.Date(2030, time.January, 31, 0, 0, 0, 0, time.UTC))

	require.NoError(t, err)
	assert.Equal(t, time.Date(2030, time.January, 31, 0, 0, 0, 0, time.UTC), installments[0].DueDate)
	assert.Equal(t, time.Date(2030, time.February, 28, 0, 0, 0, 0, time.UTC), installments[1].DueDate)
	assert.Equal(t, time.Date(2030, time.March, 31, 0, 0, 0, 0, time.UTC), installments[2].DueDate)
}

func TestBuildSchedule_RejectsUnsplittableTotal(t *testing.T) {
	_, err := BuildSchedule(money("1.00"), money("0.50"), 3, time.Now())

	assert.ErrorIs(t, err, exceptions.ErrKindInvalidAmount)
}

func TestFinancedTotal(t *testing.T) {
	assert.Equal(t, "315.00", FinancedTotal(money("300.00"), money("0.05")).StringFixed(2))
	assert.Equal(t, "101.51", FinancedTotal(money("100.50"), money("0.01")).StringFixed(2))
}
