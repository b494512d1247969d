package paymentPlans

import (
	"fmt"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/exceptions"
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyPayment is principal*(1+rate)/n rounded half-up to cents.
func MonthlyPayment(principal, interestRate decimal.Decimal, numberOfInstallments int) decimal.Decimal {
	financed := principal.Mul(decimal.NewFromInt(1).Add(interestRate))
	return models.RoundMoney(financed.Div(decimal.NewFromInt(int64(numberOfInstallments))))
}

// FinancedTotal is the principal plus interest, rounded to cents.
func FinancedTotal(principal, interestRate decimal.Decimal) decimal.Decimal {
	return models.RoundMoney(principal.Mul(decimal.NewFromInt(1).Add(interestRate)))
}

// BuildSchedule creates n monthly installments from start. Every installment is monthly except
// the last one, which takes whatever is left so the schedule sums exactly to total.
func BuildSchedule(total, monthly decimal.Decimal, n int, start time.Time) ([]models.PaymentPlanInstallment, error) {
	leading := monthly.Mul(decimal.NewFromInt(int64(n - 1)))
	last := total.Sub(leading)
	if !last.IsPositive() {
		return nil, exceptions.ErrInvalidAmount(total.StringFixed(2), fmt.Sprintf("cannot be split into %d installments of %s", n, monthly.StringFixed(2)))
	}

	installments := FixedSchedule(monthly, n, start)
	installments[n-1].Amount = last
	return installments, nil
}

// FixedSchedule creates n PENDING installments of amount each, due monthly from start.
func FixedSchedule(amount decimal.Decimal, n int, start time.Time) []models.PaymentPlanInstallment {
	start = models.DateOf(start)
	installments := make([]models.PaymentPlanInstallment, 0, n)
	for i := 0; i < n; i++ {
		installments = append(installments, models.PaymentPlanInstallment{
			InstallmentNumber: i + 1,
			DueDate:           models.AddMonths(start, i),
			Amount:            amount,
			AmountPaid:        decimal.Zero,
			Status:            models.InstallmentStatusPending,
		})
	}
	return installments
}
