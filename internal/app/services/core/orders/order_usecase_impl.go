package orders

import (
	"context"
	"fmt"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"strings"
	"time"

	"go.uber.org/zap"
)

type orderUsecase struct {
	Transactor      contracts.Transactor
	OrderRepository contracts.OrderRepository
	UserUsecase     contracts.UserUsecase
	InvoiceUsecase  contracts.InvoiceUsecase
	Log             *zap.Logger
}

func NewOrderUsecase(
	transactor contracts.Transactor,
	orderRepository contracts.OrderRepository,
	userUsecase contracts.UserUsecase,
	invoiceUsecase contracts.InvoiceUsecase,
	logger *zap.Logger,
) contracts.OrderUsecase {
	return &orderUsecase{
		Transactor:      transactor,
		OrderRepository: orderRepository,
		UserUsecase:     userUsecase,
		InvoiceUsecase:  invoiceUsecase,
		Log:             logger,
	}
}

// Checkout records the pharmacy order and its invoice in one transaction.
func (uc *orderUsecase) Checkout(ctx context.Context, input contracts.CheckoutInput) (*contracts.CheckoutResult, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("orderUsecase.Checkout called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPatientIDKey, input.PatientID),
		zap.Int(constvars.LoggingCountKey, len(input.Lines)),
	)

	lines, err := validateLines(input.Lines)
	if err != nil {
		return nil, err
	}

	if _, err := uc.UserUsecase.FindPatient(ctx, input.PatientID); err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		PatientID:    input.PatientID,
		PharmacistID: input.PharmacistID,
		Status:       models.OrderStatusPending,
		Lines:        lines,
	}
	order.SetCreatedAtUpdatedAt(now)

	var invoice *models.Invoice
	err = uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := uc.OrderRepository.Create(ctx, order); err != nil {
			return err
		}
		generated, err := uc.InvoiceUsecase.GenerateForOrder(ctx, order)
		if err != nil {
			return err
		}
		invoice = generated
		return nil
	})
	if err != nil {
		uc.Log.Error("orderUsecase.Checkout error creating order",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "pharmacy_order_checked_out", requestID,
		zap.Int64(constvars.LoggingOrderIDKey, order.ID),
		zap.Int64(constvars.LoggingPatientIDKey, order.PatientID),
		zap.Int64(constvars.LoggingInvoiceIDKey, invoice.ID),
		zap.String(constvars.LoggingAmountKey, invoice.Total.StringFixed(2)),
	)
	return &contracts.CheckoutResult{Order: order, Invoice: invoice}, nil
}

func validateLines(input []contracts.CheckoutLine) ([]models.OrderLine, error) {
	if len(input) == 0 {
		return nil, exceptions.ErrInvalidFormat(fmt.Errorf("order has no lines"), "pharmacy order")
	}
	lines := make([]models.OrderLine, 0, len(input))
	for idx, line := range input {
		medicine := strings.TrimSpace(line.Medicine)
		if medicine == "" {
			return nil, exceptions.ErrInvalidFormat(fmt.Errorf("line %d has no medicine", idx+1), "pharmacy order")
		}
		if line.Quantity < 1 {
			return nil, exceptions.ErrInvalidFormat(fmt.Errorf("line %d quantity %d must be at least 1", idx+1, line.Quantity), "pharmacy order")
		}
		if line.UnitPrice.IsNegative() {
			return nil, exceptions.ErrInvalidAmount(line.UnitPrice.StringFixed(2), fmt.Sprintf("line %d unit price must not be negative", idx+1))
		}
		lines = append(lines, models.OrderLine{
			Medicine:  medicine,
			Quantity:  line.Quantity,
			UnitPrice: models.RoundMoney(line.UnitPrice),
		})
	}
	return lines, nil
}

func (uc *orderUsecase) Get(ctx context.Context, orderID int64) (*models.Order, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("orderUsecase.Get called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingOrderIDKey, orderID),
	)
	return uc.OrderRepository.FindByID(ctx, orderID)
}
