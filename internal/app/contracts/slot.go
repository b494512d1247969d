package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"time"
)

type SlotUsecase interface {
	// FreeSlots lists the unbooked slot starts of a doctor's window in ascending order.
	// A missing or disabled window yields an empty slice, not an error.
	FreeSlots(ctx context.Context, doctorID int64, date time.Time) ([]models.TimeOfDay, error)
}
