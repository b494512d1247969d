package coretest

import (
	"context"
	"hospital-service/internal/app/models"
)

// FailingFileStore rejects every write and read with Err.
type FailingFileStore struct {
	Err error
}

func (s *FailingFileStore) StoreReceiptFile(ctx context.Context, data []byte, paymentID int64, fileName, contentType string) (string, error) {
	return "", s.Err
}

func (s *FailingFileStore) ReadFile(ctx context.Context, path string) ([]byte, error) {
	return nil, s.Err
}

type FailingRenderer struct {
	Err error
}

func (r *FailingRenderer) RenderInvoicePdf(invoice *models.Invoice) ([]byte, error) {
	return nil, r.Err
}

func (r *FailingRenderer) RenderReceiptPdf(payment *models.Payment, invoice *models.Invoice) ([]byte, error) {
	return nil, r.Err
}
