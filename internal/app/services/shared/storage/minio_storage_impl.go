package storage

import (
	"bytes"
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"io"
	"path/filepath"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

type minioStorage struct {
	MinioClient *minio.Client
	BucketName  string
	Log         *zap.Logger
}

func NewMinioStorage(minioClient *minio.Client, bucketName string, logger *zap.Logger) contracts.FileStore {
	return &minioStorage{
		MinioClient: minioClient,
		BucketName:  bucketName,
		Log:         logger,
	}
}

// StoreReceiptFile writes the file under a generated bankslip_<paymentID>_<uuid><ext> name
// and returns that object name.
func (m *minioStorage) StoreReceiptFile(ctx context.Context, data []byte, paymentID int64, fileName, contentType string) (string, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	objectName := utils.GenerateBankSlipObjectName(paymentID, filepath.Ext(fileName))
	if contentType == "" {
		contentType = constvars.MIMEOctetStream
	}

	_, err := m.MinioClient.PutObject(
		ctx,
		m.BucketName,
		objectName,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{
			ContentType: contentType,
		},
	)
	if err != nil {
		m.Log.Error("minioStorage.StoreReceiptFile error putting object",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingBucketKey, m.BucketName),
			zap.String(constvars.LoggingObjectKey, objectName),
			zap.Error(err),
		)
		return "", exceptions.ErrMinioCreateObject(err, m.BucketName)
	}

	m.Log.Info("minioStorage.StoreReceiptFile stored object",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingObjectKey, objectName),
		zap.Int64(constvars.LoggingPaymentIDKey, paymentID),
	)
	return objectName, nil
}

func (m *minioStorage) ReadFile(ctx context.Context, path string) ([]byte, error) {
	object, err := m.MinioClient.GetObject(ctx, m.BucketName, path, minio.GetObjectOptions{})
	if err != nil {
		return nil, exceptions.ErrMinioGetObject(err, m.BucketName)
	}
	defer object.Close()

	data, err := io.ReadAll(object)
	if err != nil {
		errResponse := minio.ToErrorResponse(err)
		if errResponse.Code == "NoSuchKey" {
			return nil, exceptions.ErrNotFound(err, constvars.ResourceBankSlip, path)
		}
		return nil, exceptions.ErrMinioGetObject(err, m.BucketName)
	}
	return data, nil
}
