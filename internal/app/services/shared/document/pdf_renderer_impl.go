package document

import (
	"bytes"
	"fmt"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

const (
	fontFamily = "Arial"
	moneyWidth = 35
)

type pdfRenderer struct {
	HospitalName string
}

func NewPdfRenderer(hospitalName string) contracts.DocumentRenderer {
	return &pdfRenderer{HospitalName: hospitalName}
}

func (r *pdfRenderer) RenderInvoicePdf(invoice *models.Invoice) ([]byte, error) {
	pdf := r.newDocument("Invoice " + invoice.InvoiceNumber)

	addDetail(pdf, "Invoice Number", invoice.InvoiceNumber, true)
	addDetail(pdf, "Patient ID", strconv.FormatInt(invoice.PatientID, 10), false)
	addDetail(pdf, "Issue Date", invoice.IssueDate.Format(constvars.DateFormat), false)
	addDetail(pdf, "Due Date", invoice.DueDate.Format(constvars.DateFormat), false)
	addDetail(pdf, "Status", string(invoice.Status), false)
	if invoice.Description != "" {
		addDetail(pdf, "Description", invoice.Description, false)
	}

	pdf.Ln(4)
	pdf.SetFont(fontFamily, "B", 11)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(85, 8, "Item", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "C", true, 0, "")
	pdf.CellFormat(moneyWidth, 8, "Unit Price", "1", 0, "R", true, 0, "")
	pdf.CellFormat(0, 8, "Line Total", "1", 1, "R", true, 0, "")

	pdf.SetFont(fontFamily, "", 10)
	for _, item := range invoice.Items {
		pdf.CellFormat(85, 8, item.Description, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, strconv.Itoa(item.Quantity), "1", 0, "C", false, 0, "")
		pdf.CellFormat(moneyWidth, 8, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(0, 8, item.LineTotal.StringFixed(2), "1", 1, "R", false, 0, "")
	}

	pdf.Ln(4)
	addTotal(pdf, "Subtotal", invoice.Subtotal.StringFixed(2), false)
	addTotal(pdf, "Tax", invoice.Tax.StringFixed(2), false)
	addTotal(pdf, "Discount", invoice.Discount.StringFixed(2), false)
	addTotal(pdf, "Total", invoice.Total.StringFixed(2), true)
	addTotal(pdf, "Amount Paid", invoice.AmountPaid.StringFixed(2), false)
	addTotal(pdf, "Balance Due", invoice.BalanceDue.StringFixed(2), true)

	return output(pdf, "invoice")
}

func (r *pdfRenderer) RenderReceiptPdf(payment *models.Payment, invoice *models.Invoice) ([]byte, error) {
	pdf := r.newDocument("Payment Receipt")

	addDetail(pdf, "Receipt Number", payment.ReceiptNumber, true)
	addDetail(pdf, "Transaction ID", payment.TransactionID, false)
	if invoice != nil {
		addDetail(pdf, "Invoice Number", invoice.InvoiceNumber, false)
	}
	addDetail(pdf, "Method", string(payment.Method), false)
	if payment.CardLastFour != "" {
		addDetail(pdf, "Card", "**** "+payment.CardLastFour, false)
	}
	if payment.ReferenceNumber != "" {
		addDetail(pdf, "Reference", payment.ReferenceNumber, false)
	}
	if payment.PaymentDate != nil {
		addDetail(pdf, "Payment Date", payment.PaymentDate.Format("2006-01-02 15:04"), false)
	}

	pdf.Ln(4)
	addTotal(pdf, "Amount Paid", payment.Amount.StringFixed(2), true)
	if invoice != nil {
		addTotal(pdf, "Remaining Balance", invoice.BalanceDue.StringFixed(2), false)
	}

	return output(pdf, "receipt")
}

func (r *pdfRenderer) newDocument(title string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetTitle(title, false)
	pdf.AddPage()

	pdf.SetFont(fontFamily, "B", 14)
	pdf.SetTextColor(0, 70, 127)
	pdf.CellFormat(0, 10, r.HospitalName, "", 1, "C", false, 0, "")

	pdf.SetFont(fontFamily, "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 10, title, "1", 1, "C", false, 0, "")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(fontFamily, "I", 8)
		pdf.CellFormat(0, 10, "This is a computer generated document", "", 0, "R", false, 0, "")
	})
	return pdf
}

func addDetail(pdf *gofpdf.Fpdf, label, value string, isHeader bool) {
	if isHeader {
		pdf.SetFont(fontFamily, "B", 11)
	} else {
		pdf.SetFont(fontFamily, "", 10)
	}
	pdf.CellFormat(45, 8, label, "1", 0, "", false, 0, "")
	pdf.CellFormat(0, 8, value, "1", 1, "", false, 0, "")
}

func addTotal(pdf *gofpdf.Fpdf, label, value string, bold bool) {
	style := ""
	if bold {
		style = "B"
	}
	pdf.SetFont(fontFamily, style, 10)
	pdf.CellFormat(140, 7, label, "", 0, "R", false, 0, "")
	pdf.CellFormat(0, 7, value, "", 1, "R", false, 0, "")
}

func output(pdf *gofpdf.Fpdf, document string) ([]byte, error) {
	var buffer bytes.Buffer
	if err := pdf.Output(&buffer); err != nil {
		return nil, exceptions.ErrRenderPdf(err, document)
	}
	if buffer.Len() == 0 {
		return nil, exceptions.ErrRenderPdf(fmt.Errorf("empty output"), document)
	}
	return buffer.Bytes(), nil
}
