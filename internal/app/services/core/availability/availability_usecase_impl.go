package availability

import (
	"context"
	"fmt"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

type availabilityUsecase struct {
	AvailabilityRepository contracts.AvailabilityRepository
	UserUsecase            contracts.UserUsecase
	Log                    *zap.Logger
}

func NewAvailabilityUsecase(
	availabilityRepository contracts.AvailabilityRepository,
	userUsecase contracts.UserUsecase,
	logger *zap.Logger,
) contracts.AvailabilityUsecase {
	return &availabilityUsecase{
		AvailabilityRepository: availabilityRepository,
		UserUsecase:            userUsecase,
		Log:                    logger,
	}
}

func (uc *availabilityUsecase) CreateAvailability(ctx context.Context, input contracts.CreateAvailabilityInput) (*models.DoctorAvailability, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("availabilityUsecase.CreateAvailability called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingDoctorIDKey, input.DoctorID),
		zap.String(constvars.LoggingDateKey, input.Date.Format(constvars.DateFormat)),
	)

	if err := validateWindow(input.StartTime, input.EndTime, input.MaxSlots); err != nil {
		return nil, err
	}
	if _, err := uc.UserUsecase.FindDoctor(ctx, input.DoctorID); err != nil {
		return nil, err
	}

	availability := &models.DoctorAvailability{
		DoctorID:  input.DoctorID,
		Date:      models.DateOf(input.Date),
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		MaxSlots:  input.MaxSlots,
		Available: true,
	}
	availability.SetCreatedAtUpdatedAt(time.Now())

	if err := uc.AvailabilityRepository.Create(ctx, availability); err != nil {
		uc.Log.Error("availabilityUsecase.CreateAvailability error creating availability",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "availability_created", requestID,
		zap.Int64(constvars.LoggingAvailabilityIDKey, availability.ID),
		zap.Int64(constvars.LoggingDoctorIDKey, availability.DoctorID),
		zap.String(constvars.LoggingDateKey, availability.Date.Format(constvars.DateFormat)),
	)
	return availability, nil
}

// SetAvailable toggles the window. Disabling keeps the row and its booked count.
func (uc *availabilityUsecase) SetAvailable(ctx context.Context, availabilityID int64, available bool) (*models.DoctorAvailability, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("availabilityUsecase.SetAvailable called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAvailabilityIDKey, availabilityID),
		zap.Bool(constvars.LoggingStatusKey, available),
	)

	if err := uc.AvailabilityRepository.UpdateAvailable(ctx, availabilityID, available); err != nil {
		return nil, err
	}
	return uc.AvailabilityRepository.FindByID(ctx, availabilityID)
}

func (uc *availabilityUsecase) Get(ctx context.Context, availabilityID int64) (*models.DoctorAvailability, error) {
	return uc.AvailabilityRepository.FindByID(ctx, availabilityID)
}

func (uc *availabilityUsecase) ListByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]models.DoctorAvailability, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("availabilityUsecase.ListByDoctor called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingDoctorIDKey, doctorID),
	)
	return uc.AvailabilityRepository.ListByDoctor(ctx, doctorID, from, to)
}

func (uc *availabilityUsecase) CreateTemplate(ctx context.Context, input contracts.CreateAvailabilityTemplateInput) (*models.AvailabilityTemplate, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("availabilityUsecase.CreateTemplate called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingDoctorIDKey, input.DoctorID),
		zap.String("weekday", input.Weekday.String()),
	)

	if err := validateWindow(input.StartTime, input.EndTime, input.MaxSlots); err != nil {
		return nil, err
	}
	if _, err := uc.UserUsecase.FindDoctor(ctx, input.DoctorID); err != nil {
		return nil, err
	}

	template := &models.AvailabilityTemplate{
		DoctorID:  input.DoctorID,
		Weekday:   input.Weekday,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		MaxSlots:  input.MaxSlots,
		Active:    true,
	}
	template.SetCreatedAtUpdatedAt(time.Now())

	if err := uc.AvailabilityRepository.CreateTemplate(ctx, template); err != nil {
		uc.Log.Error("availabilityUsecase.CreateTemplate error creating template",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	return template, nil
}

// MaterializeWindow creates the dated window of every active template for each matching
// day in [from, from+days). Dates that already have a window are left untouched.
func (uc *availabilityUsecase) MaterializeWindow(ctx context.Context, from time.Time, days int) (int, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("availabilityUsecase.MaterializeWindow called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingDateKey, from.Format(constvars.DateFormat)),
		zap.Int("days", days),
	)

	templates, err := uc.AvailabilityRepository.ListActiveTemplates(ctx)
	if err != nil {
		return 0, err
	}

	created := 0
	start := models.DateOf(from)
	for offset := 0; offset < days; offset++ {
		date := start.AddDate(0, 0, offset)
		for idx := range templates {
			template := &templates[idx]
			if template.Weekday != date.Weekday() {
				continue
			}

			existing, err := uc.AvailabilityRepository.FindByDoctorAndDate(ctx, template.DoctorID, date)
			if err != nil {
				return created, err
			}
			if existing != nil {
				continue
			}

			availability := template.ForDate(date)
			availability.SetCreatedAtUpdatedAt(time.Now())
			if err := uc.AvailabilityRepository.Create(ctx, availability); err != nil {
				uc.Log.Error("availabilityUsecase.MaterializeWindow error creating availability",
					zap.String(constvars.LoggingRequestIDKey, requestID),
					zap.Int64(constvars.LoggingDoctorIDKey, template.DoctorID),
					zap.String(constvars.LoggingDateKey, date.Format(constvars.DateFormat)),
					zap.Error(err),
				)
				return created, err
			}
			created++
		}
	}

	uc.Log.Info("availabilityUsecase.MaterializeWindow completed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, created),
	)
	return created, nil
}

func validateWindow(start, end models.TimeOfDay, maxSlots int) error {
	if start >= end {
		return exceptions.ErrInvalidFormat(fmt.Errorf("start %s must be before end %s", start, end), "availability window")
	}
	if maxSlots < 1 {
		return exceptions.ErrInvalidFormat(fmt.Errorf("max slots %d must be at least 1", maxSlots), "availability window")
	}
	return nil
}
