package slot

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"time"

	"go.uber.org/zap"
)

type slotUsecase struct {
	AvailabilityRepository contracts.AvailabilityRepository
	AppointmentRepository  contracts.AppointmentRepository
	InternalConfig         *config.InternalConfig
	Log                    *zap.Logger
}

func NewSlotUsecase(
	availabilityRepository contracts.AvailabilityRepository,
	appointmentRepository contracts.AppointmentRepository,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.SlotUsecase {
	return &slotUsecase{
		AvailabilityRepository: availabilityRepository,
		AppointmentRepository:  appointmentRepository,
		InternalConfig:         internalConfig,
		Log:                    logger,
	}
}

func (uc *slotUsecase) FreeSlots(ctx context.Context, doctorID int64, date time.Time) ([]models.TimeOfDay, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	date = models.DateOf(date)
	uc.Log.Info("slotUsecase.FreeSlots called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingDoctorIDKey, doctorID),
		zap.String(constvars.LoggingDateKey, date.Format(constvars.DateFormat)),
	)

	availability, err := uc.AvailabilityRepository.FindByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		uc.Log.Error("slotUsecase.FreeSlots error fetching availability",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}
	if availability == nil || !availability.Available {
		uc.Log.Info("slotUsecase.FreeSlots no open availability window",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingDoctorIDKey, doctorID),
		)
		return []models.TimeOfDay{}, nil
	}

	appointments, err := uc.AppointmentRepository.ListActiveByDoctorAndDate(ctx, doctorID, date)
	if err != nil {
		uc.Log.Error("slotUsecase.FreeSlots error fetching appointments",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(err),
		)
		return nil, err
	}

	free := FreeSlots(availability, appointments, uc.InternalConfig.SlotDuration())
	uc.Log.Info("slotUsecase.FreeSlots computed free slots",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, len(free)),
	)
	return free, nil
}
