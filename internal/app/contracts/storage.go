package contracts

import "context"

// FileStore keeps bank slips and generated documents.
type FileStore interface {
	StoreReceiptFile(ctx context.Context, data []byte, paymentID int64, fileName, contentType string) (string, error)
	ReadFile(ctx context.Context, path string) ([]byte, error)
}
