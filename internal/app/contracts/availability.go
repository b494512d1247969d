package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"time"
)

type AvailabilityRepository interface {
	Create(ctx context.Context, availability *models.DoctorAvailability) error
	FindByID(ctx context.Context, availabilityID int64) (*models.DoctorAvailability, error)
	FindByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) (*models.DoctorAvailability, error)
	// FindByDoctorAndDateForUpdate locks the row until the surrounding transaction ends.
	FindByDoctorAndDateForUpdate(ctx context.Context, doctorID int64, date time.Time) (*models.DoctorAvailability, error)
	ListByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]models.DoctorAvailability, error)
	UpdateBookedCount(ctx context.Context, availabilityID int64, bookedCount int) error
	UpdateAvailable(ctx context.Context, availabilityID int64, available bool) error
	CreateTemplate(ctx context.Context, template *models.AvailabilityTemplate) error
	ListActiveTemplates(ctx context.Context) ([]models.AvailabilityTemplate, error)
}

type CreateAvailabilityInput struct {
	DoctorID  int64
	Date      time.Time
	StartTime models.TimeOfDay
	EndTime   models.TimeOfDay
	MaxSlots  int
}

type CreateAvailabilityTemplateInput struct {
	DoctorID  int64
	Weekday   time.Weekday
	StartTime models.TimeOfDay
	EndTime   models.TimeOfDay
	MaxSlots  int
}

type AvailabilityUsecase interface {
	CreateAvailability(ctx context.Context, input CreateAvailabilityInput) (*models.DoctorAvailability, error)
	SetAvailable(ctx context.Context, availabilityID int64, available bool) (*models.DoctorAvailability, error)
	Get(ctx context.Context, availabilityID int64) (*models.DoctorAvailability, error)
	ListByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]models.DoctorAvailability, error)
	CreateTemplate(ctx context.Context, input CreateAvailabilityTemplateInput) (*models.AvailabilityTemplate, error)
	MaterializeWindow(ctx context.Context, from time.Time, days int) (int, error)
}
