package storage

import (
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"path/filepath"
	"sync"
)

// memoryStorage backs the memory store driver. Contents are lost on restart.
type memoryStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStorage() contracts.FileStore {
	return &memoryStorage{objects: make(map[string][]byte)}
}

func (m *memoryStorage) StoreReceiptFile(ctx context.Context, data []byte, paymentID int64, fileName, contentType string) (string, error) {
	objectName := utils.GenerateBankSlipObjectName(paymentID, filepath.Ext(fileName))
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[objectName] = append([]byte(nil), data...)
	return objectName, nil
}

func (m *memoryStorage) ReadFile(ctx context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[path]
	if !ok {
		return nil, exceptions.ErrNotFound(nil, constvars.ResourceBankSlip, path)
	}
	return append([]byte(nil), data...), nil
}
