package contracts

import (
	"context"
	"hospital-service/internal/app/models"

	"github.com/shopspring/decimal"
)

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, orderID int64) (*models.Order, error)
	UpdateStatus(ctx context.Context, orderID int64, status models.OrderStatus) error
}

type CheckoutLine struct {
	Medicine  string
	Quantity  int
	UnitPrice decimal.Decimal
}

type CheckoutInput struct {
	PatientID    int64
	PharmacistID *int64
	Lines        []CheckoutLine
}

type CheckoutResult struct {
	Order   *models.Order   `json:"order"`
	Invoice *models.Invoice `json:"invoice"`
}

type OrderUsecase interface {
	Checkout(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
	Get(ctx context.Context, orderID int64) (*models.Order, error)
}
