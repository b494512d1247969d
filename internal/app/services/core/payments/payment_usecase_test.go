package payments_test

import (
	"context"
	"errors"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/core/coretest"
	"hospital-service/internal/app/services/shared/notification"
	"hospital-service/internal/pkg/exceptions"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var receiptPattern = regexp.MustCompile(`^RCP-\d{8}-[0-9A-F]{8}$`)

func payByCard(t *testing.T, f *coretest.Fixture, invoiceID int64, amount string) *models.Payment {
	t.Helper()
	payment, err := f.Payments.ProcessCardPayment(context.Background(), contracts.CardPaymentInput{
		InvoiceID: invoiceID,
		Amount:    coretest.Money(amount),
		Card:      coretest.ValidCard(),
	})
	require.NoError(t, err)
	return payment
}

func submitTransfer(t *testing.T, f *coretest.Fixture, invoiceID int64, amount string) *models.Payment {
	t.Helper()
	payment, err := f.Payments.ProcessBankTransfer(context.Background(), contracts.BankTransferInput{
		InvoiceID:       invoiceID,
		Amount:          coretest.Money(amount),
		ReferenceNumber: "TRX-778812",
		Slip:            &contracts.UploadedFile{FileName: "slip.png", ContentType: "image/png", Data: []byte("png-bytes")},
	})
	require.NoError(t, err)
	return payment
}

func TestCardPayment_PartialThenFull(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "100.00")

	first := payByCard(t, f, invoice.ID, "40.00")

	assert.Equal(t, models.PaymentStatusCompleted, first.Status)
	assert.Equal(t, models.PaymentMethodCreditCard, first.Method)
	assert.Equal(t, "1111", first.CardLastFour)
	assert.Regexp(t, receiptPattern, first.ReceiptNumber)
	assert.True(t, strings.HasPrefix(first.TransactionID, "TXN"))
	assert.NotNil(t, first.PaymentDate)
	reloaded := f.ReloadInvoice(t, invoice.ID)
	assert.Equal(t, "60.00", reloaded.BalanceDue.StringFixed(2))
	assert.Equal(t, models.InvoiceStatusPartiallyPaid, reloaded.Status)

	payByCard(t, f, invoice.ID, "60.00")

	reloaded = f.ReloadInvoice(t, invoice.ID)
	assert.Equal(t, "0.00", reloaded.BalanceDue.StringFixed(2))
	assert.Equal(t, models.InvoiceStatusPaid, reloaded.Status)
	assert.Equal(t, 2, f.Sink.PaymentCount())
	assert.Equal(t, 2, f.Authorizer.CallCount())

	payments, err := f.Payments.ListByInvoice(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestCardPayment_DeclineLeavesInvoiceUntouched(t *testing.T) {
	f := coretest.New(t)
	f.Authorizer.Approve = false
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "100.00")

	_, err := f.Payments.ProcessCardPayment(context.Background(), contracts.CardPaymentInput{
		InvoiceID: invoice.ID,
		Amount:    coretest.Money("40.00"),
		Card:      coretest.ValidCard(),
	})

	assert.ErrorIs(t, err, exceptions.ErrKindPaymentDeclined)
	assert.Equal(t, 402, exceptions.StatusCodeOf(err))
	reloaded := f.ReloadInvoice(t, invoice.ID)
	assert.Equal(t, "100.00", reloaded.BalanceDue.StringFixed(2))
	assert.Equal(t, models.InvoiceStatusPending, reloaded.Status)

	payments, err := f.Payments.ListByInvoice(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentStatusFailed, payments[0].Status)
	assert.Empty(t, payments[0].ReceiptNumber)
	assert.Zero(t, f.Sink.PaymentCount())
}

func TestCardPayment_AuthorizerErrorFailsPayment(t *testing.T) {
	f := coretest.New(t)
	f.Authorizer.Err = errors.New("processor unreachable")
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "25.00")

	_, err := f.Payments.ProcessCardPayment(context.Background(), contracts.CardPaymentInput{
		InvoiceID: invoice.ID,
		Amount:    coretest.Money("25.00"),
		Card:      coretest.ValidCard(),
	})

	require.Error(t, err)
	assert.Equal(t, 500, exceptions.StatusCodeOf(err))
	payments, err := f.Payments.ListByInvoice(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentStatusFailed, payments[0].Status)
	assert.Equal(t, "25.00", f.ReloadInvoice(t, invoice.ID).BalanceDue.StringFixed(2))
}

func TestCardPayment_RejectedBeforeAuthorizing(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "100.00")
	ctx := context.Background()

	_, err := f.Payments.ProcessCardPayment(ctx, contracts.CardPaymentInput{
		InvoiceID: invoice.ID, Amount: coretest.Money("100.01"), Card: coretest.ValidCard(),
	})
	assert.ErrorIs(t, err, exceptions.ErrKindInvalidAmount)

	bad := coretest.ValidCard()
	bad.Number = "4111 1111 1111 1112"
	_, err = f.Payments.ProcessCardPayment(ctx, contracts.CardPaymentInput{
		InvoiceID: invoice.ID, Amount: coretest.Money("10.00"), Card: bad,
	})
	assert.Error(t, err)

	_, err = f.Payments.ProcessCardPayment(ctx, contracts.CardPaymentInput{
		InvoiceID: invoice.ID, Amount: coretest.Money("10.00"), Method: models.PaymentMethodCash, Card: coretest.ValidCard(),
	})
	assert.ErrorIs(t, err, exceptions.ErrKindInvalidAction)

	_, err = f.Payments.ProcessCardPayment(ctx, contracts.CardPaymentInput{
		InvoiceID: 9999, Amount: coretest.Money("10.00"), Card: coretest.ValidCard(),
	})
	assert.ErrorIs(t, err, exceptions.ErrKindNotFound)

	assert.Zero(t, f.Authorizer.CallCount())
	payments, err := f.Payments.ListByInvoice(ctx, invoice.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestCardPayment_HookErrorRollsBackApplication(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "90.00")
	hookErr := errors.New("installment bookkeeping failed")

	_, err := f.Payments.ProcessCardPayment(context.Background(), contracts.CardPaymentInput{
		InvoiceID: invoice.ID,
		Amount:    coretest.Money("30.00"),
		Card:      coretest.ValidCard(),
		AfterApply: func(ctx context.Context, payment *models.Payment) error {
			return hookErr
		},
	})

	assert.ErrorIs(t, err, hookErr)
	reloaded := f.ReloadInvoice(t, invoice.ID)
	assert.Equal(t, "90.00", reloaded.BalanceDue.StringFixed(2))
	assert.Equal(t, models.InvoiceStatusPending, reloaded.Status)
	payments, err := f.Payments.ListByInvoice(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentStatusFailed, payments[0].Status)
}

func TestBankTransfer_ApproveSettlesInvoice(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "120.00")
	ctx := context.Background()

	payment := submitTransfer(t, f, invoice.ID, "50.00")

	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Equal(t, models.PaymentMethodBankTransfer, payment.Method)
	assert.NotEmpty(t, payment.BankSlipPath)
	assert.Contains(t, payment.Notes, "TRX-778812")
	assert.Equal(t, "120.00", f.ReloadInvoice(t, invoice.ID).BalanceDue.StringFixed(2))

	pending, err := f.Payments.PendingVerification(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, payment.ID, pending[0].ID)

	slip, contentType, err := f.Payments.BankSlip(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), slip)
	assert.Equal(t, "image/png", contentType)

	verified, err := f.Payments.VerifyBankSlip(ctx, contracts.VerifyBankSlipInput{
		PaymentID:  payment.ID,
		Action:     contracts.VerificationActionApprove,
		Notes:      "matched statement",
		VerifierID: 42,
	})

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, verified.Status)
	assert.Regexp(t, receiptPattern, verified.ReceiptNumber)
	require.NotNil(t, verified.VerifiedBy)
	assert.Equal(t, int64(42), *verified.VerifiedBy)
	assert.Equal(t, "matched statement", verified.VerificationNotes)
	reloaded := f.ReloadInvoice(t, invoice.ID)
	assert.Equal(t, "70.00", reloaded.BalanceDue.StringFixed(2))
	assert.Equal(t, models.InvoiceStatusPartiallyPaid, reloaded.Status)
	assert.Equal(t, 1, f.Sink.PaymentCount())

	pending, err = f.Payments.PendingVerification(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)

	_, err = f.Payments.VerifyBankSlip(ctx, contracts.VerifyBankSlipInput{
		PaymentID: payment.ID,
		Action:    contracts.VerificationActionApprove,
	})
	assert.ErrorIs(t, err, exceptions.ErrKindPaymentNotPending)
	assert.Equal(t, "70.00", f.ReloadInvoice(t, invoice.ID).BalanceDue.StringFixed(2))
}

func TestBankTransfer_Reject(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "80.00")
	payment := submitTransfer(t, f, invoice.ID, "80.00")

	rejected, err := f.Payments.VerifyBankSlip(context.Background(), contracts.VerifyBankSlipInput{
		PaymentID: payment.ID,
		Action:    contracts.VerificationActionReject,
		Notes:     "no matching credit",
	})

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusFailed, rejected.Status)
	assert.Empty(t, rejected.ReceiptNumber)
	reloaded := f.ReloadInvoice(t, invoice.ID)
	assert.Equal(t, "80.00", reloaded.BalanceDue.StringFixed(2))
	assert.Equal(t, models.InvoiceStatusPending, reloaded.Status)
	assert.Zero(t, f.Sink.PaymentCount())
}

func TestBankTransfer_PartialVerification(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "200.00")
	ctx := context.Background()
	payment := submitTransfer(t, f, invoice.ID, "100.00")

	tooMuch := coretest.Money("100.01")
	_, err := f.Payments.VerifyBankSlip(ctx, contracts.VerifyBankSlipInput{
		PaymentID: payment.ID, Action: contracts.VerificationActionPartial, VerifiedAmount: &tooMuch,
	})
	assert.ErrorIs(t, err, exceptions.ErrKindVerificationConflict)

	zero := decimal.Zero
	_, err = f.Payments.VerifyBankSlip(ctx, contracts.VerifyBankSlipInput{
		PaymentID: payment.ID, Action: contracts.VerificationActionPartial, VerifiedAmount: &zero,
	})
	assert.ErrorIs(t, err, exceptions.ErrKindInvalidAmount)

	_, err = f.Payments.VerifyBankSlip(ctx, contracts.VerifyBankSlipInput{
		PaymentID: payment.ID, Action: contracts.VerificationActionPartial,
	})
	assert.ErrorIs(t, err, exceptions.ErrKindInvalidAmount)

	stored, err := f.Payments.Get(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, stored.Status)
	assert.Equal(t, "100.00", stored.Amount.StringFixed(2))

	verifiedAmount := coretest.Money("75.00")
	verified, err := f.Payments.VerifyBankSlip(ctx, contracts.VerifyBankSlipInput{
		PaymentID: payment.ID, Action: contracts.VerificationActionPartial, VerifiedAmount: &verifiedAmount,
	})

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, verified.Status)
	assert.Equal(t, "75.00", verified.Amount.StringFixed(2))
	assert.Contains(t, verified.Notes, "75.00")
	assert.Equal(t, "125.00", f.ReloadInvoice(t, invoice.ID).BalanceDue.StringFixed(2))
}

func TestBankTransfer_Validation(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "60.00")
	ctx := context.Background()

	_, err := f.Payments.ProcessBankTransfer(ctx, contracts.BankTransferInput{
		InvoiceID: invoice.ID, Amount: coretest.Money("10.00"), ReferenceNumber: "  ",
	})
	assert.Equal(t, 400, exceptions.StatusCodeOf(err))

	_, err = f.Payments.ProcessBankTransfer(ctx, contracts.BankTransferInput{
		InvoiceID: invoice.ID, Amount: coretest.Money("60.01"), ReferenceNumber: "REF-1",
	})
	assert.ErrorIs(t, err, exceptions.ErrKindInvalidAmount)

	oversized := make([]byte, (f.Config.Billing.BankSlipMaxUploadSizeInMB<<20)+1)
	_, err = f.Payments.ProcessBankTransfer(ctx, contracts.BankTransferInput{
		InvoiceID: invoice.ID, Amount: coretest.Money("10.00"), ReferenceNumber: "REF-1",
		Slip: &contracts.UploadedFile{FileName: "slip.pdf", Data: oversized},
	})
	assert.Equal(t, 400, exceptions.StatusCodeOf(err))

	withoutSlip, err := f.Payments.ProcessBankTransfer(ctx, contracts.BankTransferInput{
		InvoiceID: invoice.ID, Amount: coretest.Money("10.00"), ReferenceNumber: "REF-2", Notes: "paid from savings",
	})
	require.NoError(t, err)
	assert.Empty(t, withoutSlip.BankSlipPath)
	assert.Contains(t, withoutSlip.Notes, "paid from savings")

	_, _, err = f.Payments.BankSlip(ctx, withoutSlip.ID)
	assert.ErrorIs(t, err, exceptions.ErrKindNotFound)
}

func TestVerifyBankSlip_RejectsOtherMethods(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "60.00")
	card := payByCard(t, f, invoice.ID, "10.00")

	_, err := f.Payments.VerifyBankSlip(context.Background(), contracts.VerifyBankSlipInput{
		PaymentID: card.ID, Action: contracts.VerificationActionApprove,
	})
	assert.ErrorIs(t, err, exceptions.ErrKindInvalidAction)

	_, err = f.Payments.VerifyBankSlip(context.Background(), contracts.VerifyBankSlipInput{
		PaymentID: card.ID, Action: "escalate",
	})
	assert.ErrorIs(t, err, exceptions.ErrKindInvalidAction)
}

func TestCounterPayment(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "45.00")
	ctx := context.Background()

	_, err := f.Payments.ProcessCounterPayment(ctx, contracts.CounterPaymentInput{
		InvoiceID: invoice.ID, Amount: coretest.Money("5.00"), Method: models.PaymentMethodBankTransfer,
	})
	assert.ErrorIs(t, err, exceptions.ErrKindInvalidAction)

	payment, err := f.Payments.ProcessCounterPayment(ctx, contracts.CounterPaymentInput{
		InvoiceID:  invoice.ID,
		Amount:     coretest.Money("45.00"),
		Method:     models.PaymentMethodCash,
		Notes:      "exact change",
		ReceivedBy: 7,
	})

	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Contains(t, payment.Notes, "exact change")
	assert.Equal(t, models.InvoiceStatusPaid, f.ReloadInvoice(t, invoice.ID).Status)
	assert.Zero(t, f.Authorizer.CallCount())

	_, err = f.Payments.ProcessCounterPayment(ctx, contracts.CounterPaymentInput{
		InvoiceID: invoice.ID, Amount: coretest.Money("1.00"), Method: models.PaymentMethodCheck,
	})
	assert.ErrorIs(t, err, exceptions.ErrKindInvoiceAlreadyPaid)
}

func TestRevenueReporting(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "300.00")
	ctx := context.Background()

	payByCard(t, f, invoice.ID, "100.00")
	_, err := f.Payments.ProcessCounterPayment(ctx, contracts.CounterPaymentInput{
		InvoiceID: invoice.ID, Amount: coretest.Money("50.00"), Method: models.PaymentMethodInsurance,
	})
	require.NoError(t, err)
	submitTransfer(t, f, invoice.ID, "25.00")

	today := time.Now()
	from, to := today.AddDate(0, 0, -1), today.AddDate(0, 0, 1)

	revenue, err := f.Payments.TotalRevenue(ctx, from, to)
	require.NoError(t, err)
	assert.Equal(t, "150.00", revenue.StringFixed(2))

	dated, err := f.Payments.ListByDateRange(ctx, from, to)
	require.NoError(t, err)
	assert.Len(t, dated, 2)

	revenue, err = f.Payments.TotalRevenue(ctx, today.AddDate(0, 0, 5), today.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.True(t, revenue.IsZero())
}

func TestBankTransfer_SlipUploadFailureKeepsPending(t *testing.T) {
	f := coretest.New(t, coretest.WithFileStore(&coretest.FailingFileStore{Err: errors.New("disk full")}))
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "60.00")
	ctx := context.Background()

	payment := submitTransfer(t, f, invoice.ID, "60.00")

	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Empty(t, payment.BankSlipPath)
	assert.Contains(t, payment.Notes, "Bank transfer - Reference: TRX-778812")
	assert.Contains(t, payment.Notes, "Bank slip upload failed: disk full")
	assert.Equal(t, "60.00", f.ReloadInvoice(t, invoice.ID).BalanceDue.StringFixed(2))

	pending, err := f.Payments.PendingVerification(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, payment.ID, pending[0].ID)

	verified, err := f.Payments.VerifyBankSlip(ctx, contracts.VerifyBankSlipInput{
		PaymentID: payment.ID,
		Action:    contracts.VerificationActionApprove,
		Notes:     "confirmed by phone",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, verified.Status)
	assert.Equal(t, models.InvoiceStatusPaid, f.ReloadInvoice(t, invoice.ID).Status)
}

func TestCardPayment_ConfirmationFailuresDoNotFailPayment(t *testing.T) {
	notifier := &notification.RecordingSink{Err: errors.New("queue closed")}
	f := coretest.New(t,
		coretest.WithNotifier(notifier),
		coretest.WithRenderer(&coretest.FailingRenderer{Err: errors.New("font missing")}),
	)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "30.00")

	payment := payByCard(t, f, invoice.ID, "30.00")

	assert.Equal(t, models.PaymentStatusCompleted, payment.Status)
	assert.Regexp(t, receiptPattern, payment.ReceiptNumber)
	assert.Equal(t, 1, notifier.PaymentCount())
	reloaded := f.ReloadInvoice(t, invoice.ID)
	assert.Equal(t, models.InvoiceStatusPaid, reloaded.Status)
	assert.True(t, reloaded.BalanceDue.IsZero())
}

func TestCardPayment_ConcurrentPartialPaymentsAreAllApplied(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "100.00")

	const payers = 10
	var wg sync.WaitGroup
	errs := make(chan error, payers)
	for i := 0; i < payers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Payments.ProcessCardPayment(context.Background(), contracts.CardPaymentInput{
				InvoiceID: invoice.ID,
				Amount:    coretest.Money("10.00"),
				Card:      coretest.ValidCard(),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	reloaded := f.ReloadInvoice(t, invoice.ID)
	assert.Equal(t, "100.00", reloaded.AmountPaid.StringFixed(2))
	assert.True(t, reloaded.BalanceDue.IsZero())
	assert.Equal(t, models.InvoiceStatusPaid, reloaded.Status)

	payments, err := f.Payments.ListByInvoice(context.Background(), invoice.ID)
	require.NoError(t, err)
	assert.Len(t, payments, payers)
}

func TestCounterPayment_ConcurrentOverpaymentSettlesOnce(t *testing.T) {
	f := coretest.New(t)
	patient := f.CreatePatient(t)
	invoice := f.Invoice(t, patient.ID, "100.00")

	const payers = 3
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < payers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.Payments.ProcessCounterPayment(context.Background(), contracts.CounterPaymentInput{
				InvoiceID: invoice.ID,
				Amount:    coretest.Money("60.00"),
				Method:    models.PaymentMethodCash,
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			assert.ErrorIs(t, err, exceptions.ErrKindInvalidAmount)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	reloaded := f.ReloadInvoice(t, invoice.ID)
	assert.Equal(t, "60.00", reloaded.AmountPaid.StringFixed(2))
	assert.Equal(t, "40.00", reloaded.BalanceDue.StringFixed(2))
	assert.Equal(t, models.InvoiceStatusPartiallyPaid, reloaded.Status)
}
