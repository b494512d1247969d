package paymentPlans_test

import (
	"context"
	"fmt"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/core/coretest"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPlan(t *testing.T, f *coretest.Fixture, total string, n int, start time.Time) (*models.Invoice, *models.PaymentPlan) {
	t.Helper()
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, total)
	plan, err := f.Plans.CreatePlan(context.Background(), contracts.CreatePaymentPlanInput{
		InvoiceID:            invoice.ID,
		NumberOfInstallments: n,
		StartDate:            start,
		InterestRate:         decimal.Zero,
		Method:               models.PaymentMethodCash,
	})
	require.NoError(t, err)
	return invoice, plan
}

func payCash(t *testing.T, f *coretest.Fixture, planID int64, number int, amount string) *contracts.InstallmentPaymentResult {
	t.Helper()
	result, err := f.Plans.PayInstallment(context.Background(), contracts.PayInstallmentInput{
		PlanID:            planID,
		InstallmentNumber: number,
		Amount:            coretest.Money(amount),
		Method:            models.PaymentMethodCash,
		ReceivedBy:        3,
	})
	require.NoError(t, err)
	return result
}

func TestCreatePlan_EvenSplit(t *testing.T) {
	f := coretest.New(t)
	start := coretest.Date(t, "2030-01-10")

	invoice, plan := createPlan(t, f, "300.00", 3, start)

	assert.Equal(t, fmt.Sprintf("PLAN%d000001", time.Now().Year()), plan.PlanNumber)
	assert.Equal(t, models.PaymentPlanStatusActive, plan.Status)
	assert.Equal(t, "100.00", plan.MonthlyPayment.StringFixed(2))
	assert.Equal(t, "300.00", plan.TotalAmount.StringFixed(2))
	assert.Equal(t, "300.00", plan.RemainingBalance.StringFixed(2))
	assert.Equal(t, coretest.Date(t, "2030-03-10"), plan.EndDate)
	require.NotNil(t, plan.NextPaymentDate)
	assert.Equal(t, start, *plan.NextPaymentDate)
	require.Len(t, plan.Installments, 3)
	for idx, inst := range plan.Installments {
		assert.Equal(t, "100.00", inst.Amount.StringFixed(2))
		assert.Equal(t, start.AddDate(0, idx, 0), inst.DueDate)
		assert.Equal(t, plan.ID, inst.PlanID)
	}
	assert.True(t, plan.ScheduledTotal().Equal(plan.TotalAmount))

	reloaded := f.ReloadInvoice(t, invoice.ID)
	assert.Equal(t, models.InvoiceStatusPartiallyPaid, reloaded.Status)
	assert.Equal(t, "300.00", reloaded.BalanceDue.StringFixed(2))

	active, err := f.Plans.ActiveCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, active)
}

func TestCreatePlan_ScheduleSumsToTotal(t *testing.T) {
	for _, tc := range []struct {
		total string
		n     int
	}{
		{"100.00", 3},
		{"999.99", 7},
		{"0.05", 2},
		{"1234.56", 12},
	} {
		t.Run(fmt.Sprintf("%s over %d", tc.total, tc.n), func(t *testing.T) {
			f := coretest.New(t)
			_, plan := createPlan(t, f, tc.total, tc.n, coretest.Date(t, "2030-01-01"))

			assert.True(t, plan.ScheduledTotal().Equal(plan.TotalAmount),
				"scheduled %s, total %s", plan.ScheduledTotal(), plan.TotalAmount)
			stored, err := f.Plans.Get(context.Background(), plan.ID)
			require.NoError(t, err)
			assert.Len(t, stored.Installments, tc.n)
			assert.True(t, stored.ScheduledTotal().Equal(stored.TotalAmount))
		})
	}
}

func TestCreatePlan_InterestBecomesInvoiceItem(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "300.00")

	plan, err := f.Plans.CreatePlan(context.Background(), contracts.CreatePaymentPlanInput{
		InvoiceID:            invoice.ID,
		NumberOfInstallments: 3,
		StartDate:            coretest.Date(t, "2030-01-01"),
		InterestRate:         coretest.Money("0.05"),
	})

	require.NoError(t, err)
	assert.Equal(t, "315.00", plan.TotalAmount.StringFixed(2))
	assert.Equal(t, "105.00", plan.MonthlyPayment.StringFixed(2))
	reloaded := f.ReloadInvoice(t, invoice.ID)
	assert.Equal(t, "315.00", reloaded.Total.StringFixed(2))
	assert.Equal(t, "315.00", reloaded.BalanceDue.StringFixed(2))
	require.Len(t, reloaded.Items, 2)
	assert.Equal(t, constvars.PlanInterestItemName, reloaded.Items[1].Description)
	assert.Equal(t, "15.00", reloaded.Items[1].LineTotal.StringFixed(2))
}

func TestCreatePlan_Rejections(t *testing.T) {
	f := coretest.New(t)
	ctx := context.Background()
	invoice, _ := createPlan(t, f, "90.00", 3, coretest.Date(t, "2030-01-01"))

	_, err := f.Plans.CreatePlan(ctx, contracts.CreatePaymentPlanInput{InvoiceID: invoice.ID, NumberOfInstallments: 2})
	assert.ErrorIs(t, err, exceptions.ErrKindPlanAlreadyExists)
	assert.Equal(t, 409, exceptions.StatusCodeOf(err))

	patient := f.CreatePatient(t)
	paid := f.Invoice(t, patient.ID, "20.00")
	_, err = f.Invoices.ApplyPayment(ctx, paid.ID, coretest.Money("20.00"))
	require.NoError(t, err)
	_, err = f.Plans.CreatePlan(ctx, contracts.CreatePaymentPlanInput{InvoiceID: paid.ID, NumberOfInstallments: 2})
	assert.ErrorIs(t, err, exceptions.ErrKindInvoiceAlreadyPaid)

	other := f.Invoice(t, patient.ID, "20.00")
	_, err = f.Plans.CreatePlan(ctx, contracts.CreatePaymentPlanInput{InvoiceID: other.ID, NumberOfInstallments: 0})
	assert.Equal(t, 400, exceptions.StatusCodeOf(err))
	_, err = f.Plans.CreatePlan(ctx, contracts.CreatePaymentPlanInput{
		InvoiceID: other.ID, NumberOfInstallments: 2, InterestRate: coretest.Money("-0.01"),
	})
	assert.Equal(t, 400, exceptions.StatusCodeOf(err))
	assert.Equal(t, models.InvoiceStatusPending, f.ReloadInvoice(t, other.ID).Status)
}

func TestPayInstallment_CounterUntilCompleted(t *testing.T) {
	f := coretest.New(t)
	invoice, plan := createPlan(t, f, "300.00", 3, coretest.Date(t, "2030-01-10"))

	first := payCash(t, f, plan.ID, 1, "100.00")

	assert.Equal(t, models.PaymentStatusCompleted, first.Payment.Status)
	assert.Contains(t, first.Payment.Notes, plan.PlanNumber)
	assert.Equal(t, 1, first.Plan.PaymentsMade)
	assert.Equal(t, "200.00", first.Plan.RemainingBalance.StringFixed(2))
	assert.Equal(t, models.InstallmentStatusPaid, first.Plan.Installment(1).Status)
	require.NotNil(t, first.Plan.Installment(1).PaymentID)
	assert.Equal(t, first.Payment.ID, *first.Plan.Installment(1).PaymentID)
	require.NotNil(t, first.Plan.NextPaymentDate)
	assert.Equal(t, coretest.Date(t, "2030-02-10"), *first.Plan.NextPaymentDate)
	assert.Equal(t, "200.00", f.ReloadInvoice(t, invoice.ID).BalanceDue.StringFixed(2))

	_, err := f.Plans.PayInstallment(context.Background(), contracts.PayInstallmentInput{
		PlanID: plan.ID, InstallmentNumber: 1, Amount: coretest.Money("1.00"), Method: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, exceptions.ErrKindInvalidAction)

	partial := payCash(t, f, plan.ID, 2, "40.00")
	assert.Equal(t, models.InstallmentStatusPartial, partial.Plan.Installment(2).Status)
	assert.Equal(t, 1, partial.Plan.PaymentsMade)

	payCash(t, f, plan.ID, 2, "60.00")
	last := payCash(t, f, plan.ID, 3, "100.00")

	assert.Equal(t, models.PaymentPlanStatusCompleted, last.Plan.Status)
	assert.Equal(t, 3, last.Plan.PaymentsMade)
	assert.True(t, last.Plan.RemainingBalance.IsZero())
	assert.Nil(t, last.Plan.NextPaymentDate)
	reloaded := f.ReloadInvoice(t, invoice.ID)
	assert.Equal(t, models.InvoiceStatusPaid, reloaded.Status)
	assert.True(t, reloaded.BalanceDue.IsZero())

	stored, err := f.Plans.Get(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPlanStatusCompleted, stored.Status)
}

func TestPayInstallment_Card(t *testing.T) {
	f := coretest.New(t)
	invoice, plan := createPlan(t, f, "100.00", 3, coretest.Date(t, "2030-01-01"))

	result, err := f.Plans.PayInstallment(context.Background(), contracts.PayInstallmentInput{
		PlanID:            plan.ID,
		InstallmentNumber: 3,
		Amount:            coretest.Money("33.34"),
		Method:            models.PaymentMethodDebitCard,
		Card:              coretest.ValidCard(),
	})

	require.NoError(t, err)
	assert.Equal(t, models.PaymentMethodDebitCard, result.Payment.Method)
	assert.Equal(t, models.InstallmentStatusPaid, result.Plan.Installment(3).Status)
	assert.Equal(t, "66.66", f.ReloadInvoice(t, invoice.ID).BalanceDue.StringFixed(2))
	assert.Equal(t, 1, f.Authorizer.CallCount())
}

func TestPayInstallment_DeclinedCardLeavesPlanUntouched(t *testing.T) {
	f := coretest.New(t)
	invoice, plan := createPlan(t, f, "100.00", 2, coretest.Date(t, "2030-01-01"))
	f.Authorizer.Approve = false

	_, err := f.Plans.PayInstallment(context.Background(), contracts.PayInstallmentInput{
		PlanID: plan.ID, InstallmentNumber: 1, Amount: coretest.Money("50.00"),
		Method: models.PaymentMethodCreditCard, Card: coretest.ValidCard(),
	})

	assert.ErrorIs(t, err, exceptions.ErrKindPaymentDeclined)
	stored, err := f.Plans.Get(context.Background(), plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPending, stored.Installment(1).Status)
	assert.Zero(t, stored.PaymentsMade)
	assert.Equal(t, "100.00", f.ReloadInvoice(t, invoice.ID).BalanceDue.StringFixed(2))
}

func TestPayInstallment_Rejections(t *testing.T) {
	f := coretest.New(t)
	_, plan := createPlan(t, f, "300.00", 3, coretest.Date(t, "2030-01-01"))
	ctx := context.Background()

	tests := []struct {
		name  string
		input contracts.PayInstallmentInput
		kind  error
	}{
		{
			name:  "unknown installment",
			input: contracts.PayInstallmentInput{PlanID: plan.ID, InstallmentNumber: 4, Amount: coretest.Money("10"), Method: models.PaymentMethodCash},
			kind:  exceptions.ErrKindNotFound,
		},
		{
			name:  "more than outstanding",
			input: contracts.PayInstallmentInput{PlanID: plan.ID, InstallmentNumber: 1, Amount: coretest.Money("100.01"), Method: models.PaymentMethodCash},
			kind:  exceptions.ErrKindInvalidAmount,
		},
		{
			name:  "zero amount",
			input: contracts.PayInstallmentInput{PlanID: plan.ID, InstallmentNumber: 1, Amount: decimal.Zero, Method: models.PaymentMethodCash},
			kind:  exceptions.ErrKindInvalidAmount,
		},
		{
			name:  "bank transfer",
			input: contracts.PayInstallmentInput{PlanID: plan.ID, InstallmentNumber: 1, Amount: coretest.Money("10"), Method: models.PaymentMethodBankTransfer},
			kind:  exceptions.ErrKindInvalidAction,
		},
		{
			name:  "unknown plan",
			input: contracts.PayInstallmentInput{PlanID: 999, InstallmentNumber: 1, Amount: coretest.Money("10"), Method: models.PaymentMethodCash},
			kind:  exceptions.ErrKindNotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.Plans.PayInstallment(ctx, tt.input)
			assert.ErrorIs(t, err, tt.kind)
		})
	}
}

func TestUpdateStatus_SuspendBlocksPaymentsUntilResumed(t *testing.T) {
	f := coretest.New(t)
	_, plan := createPlan(t, f, "300.00", 3, coretest.Date(t, "2030-01-01"))
	ctx := context.Background()

	suspended, err := f.Plans.UpdateStatus(ctx, plan.ID, "suspend", "patient travelling")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPlanStatusSuspended, suspended.Status)
	assert.Contains(t, suspended.Notes, "patient travelling")

	_, err = f.Plans.PayInstallment(ctx, contracts.PayInstallmentInput{
		PlanID: plan.ID, InstallmentNumber: 1, Amount: coretest.Money("100.00"), Method: models.PaymentMethodCash,
	})
	assert.ErrorIs(t, err, exceptions.ErrKindPlanNotActive)

	_, err = f.Plans.UpdateStatus(ctx, plan.ID, "suspend", "")
	assert.ErrorIs(t, err, exceptions.ErrKindInvalidAction)

	resumed, err := f.Plans.UpdateStatus(ctx, plan.ID, " Resume ", "")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentPlanStatusActive, resumed.Status)

	payCash(t, f, plan.ID, 1, "100.00")

	_, err = f.Plans.UpdateStatus(ctx, plan.ID, "archive", "")
	assert.ErrorIs(t, err, exceptions.ErrKindInvalidAction)
	assert.Equal(t, 400, exceptions.StatusCodeOf(err))
}

func TestUpdateStatus_CancelKeepsPaidInstallments(t *testing.T) {
	f := coretest.New(t)
	_, plan := createPlan(t, f, "300.00", 3, coretest.Date(t, "2030-01-01"))
	ctx := context.Background()
	payCash(t, f, plan.ID, 1, "100.00")

	cancelled, err := f.Plans.UpdateStatus(ctx, plan.ID, "cancel", "")

	require.NoError(t, err)
	assert.Equal(t, models.PaymentPlanStatusCancelled, cancelled.Status)
	assert.Nil(t, cancelled.NextPaymentDate)
	stored, err := f.Plans.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusPaid, stored.Installment(1).Status)
	assert.Equal(t, models.InstallmentStatusCancelled, stored.Installment(2).Status)
	assert.Equal(t, models.InstallmentStatusCancelled, stored.Installment(3).Status)

	for _, action := range []string{"resume", "suspend", "complete", "cancel"} {
		_, err = f.Plans.UpdateStatus(ctx, plan.ID, action, "")
		assert.ErrorIs(t, err, exceptions.ErrKindInvalidAction, action)
	}

	active, err := f.Plans.ActiveCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, active)
}

func TestUpdateStatus_CompleteMarksInvoicePaid(t *testing.T) {
	f := coretest.New(t)
	invoice, plan := createPlan(t, f, "300.00", 3, coretest.Date(t, "2030-01-01"))

	completed, err := f.Plans.UpdateStatus(context.Background(), plan.ID, "complete", "settled off-system")

	require.NoError(t, err)
	assert.Equal(t, models.PaymentPlanStatusCompleted, completed.Status)
	assert.Equal(t, models.InvoiceStatusPaid, f.ReloadInvoice(t, invoice.ID).Status)
}

func TestAdjust_RegeneratesSchedule(t *testing.T) {
	f := coretest.New(t)
	start := coretest.Date(t, "2030-01-15")
	_, plan := createPlan(t, f, "300.00", 3, start)
	ctx := context.Background()
	payCash(t, f, plan.ID, 1, "100.00")

	adjusted, err := f.Plans.Adjust(ctx, contracts.AdjustPaymentPlanInput{
		PlanID:           plan.ID,
		NewDuration:      6,
		NewMonthlyAmount: coretest.Money("50.00"),
		Reason:           "reduced income",
	})

	require.NoError(t, err)
	assert.Equal(t, 6, adjusted.NumberOfPayments)
	assert.Equal(t, "50.00", adjusted.MonthlyPayment.StringFixed(2))
	assert.Equal(t, coretest.Date(t, "2030-06-15"), adjusted.EndDate)
	assert.Equal(t, "200.00", adjusted.RemainingBalance.StringFixed(2))
	assert.Zero(t, adjusted.PaymentsMade)
	assert.Contains(t, adjusted.Notes, "reduced income")

	stored, err := f.Plans.Get(ctx, plan.ID)
	require.NoError(t, err)
	require.Len(t, stored.Installments, 6)
	for idx, inst := range stored.Installments {
		assert.Equal(t, "50.00", inst.Amount.StringFixed(2))
		assert.Equal(t, start.AddDate(0, idx, 0), inst.DueDate)
		assert.Equal(t, models.InstallmentStatusPending, inst.Status)
	}

	_, err = f.Plans.Adjust(ctx, contracts.AdjustPaymentPlanInput{PlanID: plan.ID, NewDuration: 0, NewMonthlyAmount: coretest.Money("50")})
	assert.Equal(t, 400, exceptions.StatusCodeOf(err))
	_, err = f.Plans.Adjust(ctx, contracts.AdjustPaymentPlanInput{PlanID: plan.ID, NewDuration: 2, NewMonthlyAmount: decimal.Zero})
	assert.ErrorIs(t, err, exceptions.ErrKindInvalidAmount)

	_, err = f.Plans.UpdateStatus(ctx, plan.ID, "cancel", "")
	require.NoError(t, err)
	_, err = f.Plans.Adjust(ctx, contracts.AdjustPaymentPlanInput{PlanID: plan.ID, NewDuration: 2, NewMonthlyAmount: coretest.Money("100")})
	assert.ErrorIs(t, err, exceptions.ErrKindPlanNotActive)
}

func TestOverdueInstallments(t *testing.T) {
	f := coretest.New(t)
	ctx := context.Background()
	today := models.DateOf(time.Now())
	_, plan := createPlan(t, f, "300.00", 3, models.AddMonths(today, -2))
	_, current := createPlan(t, f, "100.00", 2, today)

	overdue, err := f.Plans.OverdueInstallments(ctx, today)
	require.NoError(t, err)
	require.Len(t, overdue, 2)
	assert.Equal(t, plan.ID, overdue[0].PlanID)
	assert.Equal(t, 1, overdue[0].InstallmentNumber)

	plans, err := f.Plans.OverduePlans(ctx, today)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, plan.ID, plans[0].ID)

	marked, err := f.Plans.MarkOverdue(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 2, marked)
	marked, err = f.Plans.MarkOverdue(ctx, today)
	require.NoError(t, err)
	assert.Zero(t, marked)

	stored, err := f.Plans.Get(ctx, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InstallmentStatusOverdue, stored.Installment(1).Status)
	assert.Equal(t, models.InstallmentStatusOverdue, stored.Installment(2).Status)
	assert.Equal(t, models.InstallmentStatusPending, stored.Installment(3).Status)

	overdue, err = f.Plans.OverdueInstallments(ctx, today)
	require.NoError(t, err)
	assert.Len(t, overdue, 2)

	result := payCash(t, f, plan.ID, 1, "100.00")
	assert.Equal(t, models.InstallmentStatusPaid, result.Plan.Installment(1).Status)

	outstanding, err := f.Plans.TotalOutstanding(ctx)
	require.NoError(t, err)
	assert.Equal(t, "300.00", outstanding.StringFixed(2))

	_, err = f.Plans.UpdateStatus(ctx, current.ID, "suspend", "")
	require.NoError(t, err)
	outstanding, err = f.Plans.TotalOutstanding(ctx)
	require.NoError(t, err)
	assert.Equal(t, "300.00", outstanding.StringFixed(2))
}
