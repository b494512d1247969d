package document

import (
	"bytes"
	"hospital-service/internal/app/models"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPdfRenderer_RenderInvoicePdf(t *testing.T) {
	renderer := NewPdfRenderer("City Hospital")
	invoice := &models.Invoice{
		InvoiceNumber: "INV-202603-00001",
		PatientID:     4,
		IssueDate:     time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		DueDate:       time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:        models.InvoiceStatusPending,
	}
	invoice.AddItem(models.NewInvoiceItem("Doctor Consultation", 1, decimal.RequireFromString("150")))

	data, err := renderer.RenderInvoicePdf(invoice)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestPdfRenderer_RenderReceiptPdf(t *testing.T) {
	renderer := NewPdfRenderer("City Hospital")
	paidAt := time.Date(2026, 3, 2, 10, 15, 0, 0, time.UTC)
	payment := &models.Payment{
		ReceiptNumber: "RCP-20260302-0A1B2C3D",
		TransactionID: "TXN0A1B2C3D4E5F",
		Method:        models.PaymentMethodCreditCard,
		CardLastFour:  "1111",
		Amount:        decimal.RequireFromString("75"),
		PaymentDate:   &paidAt,
	}

	data, err := renderer.RenderReceiptPdf(payment, nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}
