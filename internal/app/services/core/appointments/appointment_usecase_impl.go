package appointments

import (
	"context"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/core/slot"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"time"

	"go.uber.org/zap"
)

type appointmentUsecase struct {
	Transactor             contracts.Transactor
	AppointmentRepository  contracts.AppointmentRepository
	AvailabilityRepository contracts.AvailabilityRepository
	UserUsecase            contracts.UserUsecase
	InvoiceUsecase         contracts.InvoiceUsecase
	DocumentRenderer       contracts.DocumentRenderer
	NotificationSink       contracts.NotificationSink
	InternalConfig         *config.InternalConfig
	Log                    *zap.Logger
}

func NewAppointmentUsecase(
	transactor contracts.Transactor,
	appointmentRepository contracts.AppointmentRepository,
	availabilityRepository contracts.AvailabilityRepository,
	userUsecase contracts.UserUsecase,
	invoiceUsecase contracts.InvoiceUsecase,
	documentRenderer contracts.DocumentRenderer,
	notificationSink contracts.NotificationSink,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.AppointmentUsecase {
	return &appointmentUsecase{
		Transactor:             transactor,
		AppointmentRepository:  appointmentRepository,
		AvailabilityRepository: availabilityRepository,
		UserUsecase:            userUsecase,
		InvoiceUsecase:         invoiceUsecase,
		DocumentRenderer:       documentRenderer,
		NotificationSink:       notificationSink,
		InternalConfig:         internalConfig,
		Log:                    logger,
	}
}

// Book claims one unit of the doctor's capacity, stores the appointment and generates its
// invoice in a single transaction. Confirmation documents are produced after commit.
func (uc *appointmentUsecase) Book(ctx context.Context, input contracts.BookAppointmentInput) (*contracts.BookingResult, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	date := models.DateOf(input.Date)
	uc.Log.Info("appointmentUsecase.Book called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPatientIDKey, input.PatientID),
		zap.Int64(constvars.LoggingDoctorIDKey, input.DoctorID),
		zap.String(constvars.LoggingDateKey, date.Format(constvars.DateFormat)),
		zap.String(constvars.LoggingTimeKey, input.Time.String()),
	)

	patient, err := uc.UserUsecase.FindPatient(ctx, input.PatientID)
	if err != nil {
		return nil, err
	}
	doctor, err := uc.UserUsecase.FindDoctor(ctx, input.DoctorID)
	if err != nil {
		return nil, err
	}

	result := &contracts.BookingResult{}
	err = uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		availability, err := uc.AvailabilityRepository.FindByDoctorAndDateForUpdate(ctx, doctor.ID, date)
		if err != nil {
			return err
		}
		if availability == nil || !availability.Available {
			return exceptions.ErrDoctorUnavailable(doctor.ID, date.Format(constvars.DateFormat))
		}
		if !slot.IsSlotStart(availability, input.Time, uc.InternalConfig.SlotDuration()) {
			return exceptions.ErrSlotOutsideWindow(doctor.ID, date.Format(constvars.DateFormat), input.Time.String())
		}

		booked, err := uc.AppointmentRepository.ListActiveByDoctorAndDate(ctx, doctor.ID, date)
		if err != nil {
			return err
		}
		for _, existing := range booked {
			if existing.Time == input.Time {
				return exceptions.ErrSlotTaken(nil, doctor.ID, date.Format(constvars.DateFormat), input.Time.String())
			}
		}

		if !availability.Claim() {
			return exceptions.ErrSlotFull(availability.ID, availability.BookedCount, availability.MaxSlots)
		}
		if err := uc.AvailabilityRepository.UpdateBookedCount(ctx, availability.ID, availability.BookedCount); err != nil {
			return err
		}

		appointment := &models.Appointment{
			PatientID: patient.ID,
			DoctorID:  doctor.ID,
			Date:      date,
			Time:      input.Time,
			Reason:    input.Reason,
			Status:    models.AppointmentStatusScheduled,
		}
		appointment.SetCreatedAtUpdatedAt(time.Now())
		if err := uc.AppointmentRepository.Create(ctx, appointment); err != nil {
			return err
		}

		invoice, err := uc.InvoiceUsecase.GenerateForAppointment(ctx, patient, doctor, appointment)
		if err != nil {
			return err
		}

		result.Appointment = appointment
		result.Invoice = invoice
		return nil
	})
	if err != nil {
		uc.Log.Warn("appointmentUsecase.Book booking rejected",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingDoctorIDKey, input.DoctorID),
			zap.Error(err),
		)
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "appointment_booked", requestID,
		zap.Int64(constvars.LoggingAppointmentIDKey, result.Appointment.ID),
		zap.Int64(constvars.LoggingPatientIDKey, patient.ID),
		zap.Int64(constvars.LoggingDoctorIDKey, doctor.ID),
		zap.Int64(constvars.LoggingInvoiceIDKey, result.Invoice.ID),
		zap.String(constvars.LoggingDateKey, date.Format(constvars.DateFormat)),
		zap.String(constvars.LoggingTimeKey, input.Time.String()),
	)

	uc.confirmBooking(ctx, patient, result)
	return result, nil
}

// confirmBooking renders the invoice and notifies the patient. Failures are only logged.
func (uc *appointmentUsecase) confirmBooking(ctx context.Context, patient *models.User, result *contracts.BookingResult) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	pdf, err := uc.DocumentRenderer.RenderInvoicePdf(result.Invoice)
	if err != nil {
		uc.Log.Warn("appointmentUsecase.Book failed to render invoice pdf",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingInvoiceIDKey, result.Invoice.ID),
			zap.Error(err),
		)
	}

	if err := uc.NotificationSink.NotifyBookingConfirmed(ctx, patient, result.Appointment, result.Invoice, pdf); err != nil {
		uc.Log.Warn("appointmentUsecase.Book failed to send booking confirmation",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, result.Appointment.ID),
			zap.Error(err),
		)
	}
}

// Cancel releases the slot. Cancelling twice succeeds without releasing capacity again.
func (uc *appointmentUsecase) Cancel(ctx context.Context, appointmentID int64) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.Cancel called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
	)

	var appointment *models.Appointment
	released := false
	err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := uc.AppointmentRepository.FindByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}
		appointment = locked

		switch locked.Status {
		case models.AppointmentStatusCancelled:
			return nil
		case models.AppointmentStatusScheduled:
		default:
			return exceptions.ErrInvalidStatusChange(constvars.ResourceAppointment, string(locked.Status), string(models.AppointmentStatusCancelled))
		}

		if err := uc.AppointmentRepository.UpdateStatus(ctx, locked.ID, models.AppointmentStatusCancelled); err != nil {
			return err
		}
		locked.Status = models.AppointmentStatusCancelled
		locked.SetUpdatedAt(time.Now())

		availability, err := uc.AvailabilityRepository.FindByDoctorAndDateForUpdate(ctx, locked.DoctorID, locked.Date)
		if err != nil {
			return err
		}
		if availability != nil {
			availability.Release()
			if err := uc.AvailabilityRepository.UpdateBookedCount(ctx, availability.ID, availability.BookedCount); err != nil {
				return err
			}
		}
		released = true

		return uc.InvoiceUsecase.CancelForAppointment(ctx, locked.ID)
	})
	if err != nil {
		uc.Log.Error("appointmentUsecase.Cancel error cancelling appointment",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
			zap.Error(err),
		)
		return nil, err
	}

	if released {
		utils.LogBusinessEvent(uc.Log, "appointment_cancelled", requestID,
			zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
			zap.Int64(constvars.LoggingDoctorIDKey, appointment.DoctorID),
			zap.String(constvars.LoggingDateKey, appointment.Date.Format(constvars.DateFormat)),
			zap.String(constvars.LoggingTimeKey, appointment.Time.String()),
		)
	}
	return appointment, nil
}

func (uc *appointmentUsecase) Complete(ctx context.Context, appointmentID int64) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.Complete called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
	)
	return uc.closeScheduled(ctx, appointmentID, models.AppointmentStatusCompleted)
}

func (uc *appointmentUsecase) MarkNoShow(ctx context.Context, appointmentID int64) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.MarkNoShow called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
	)
	return uc.closeScheduled(ctx, appointmentID, models.AppointmentStatusNoShow)
}

// closeScheduled moves a SCHEDULED appointment to a terminal status. Capacity is kept.
func (uc *appointmentUsecase) closeScheduled(ctx context.Context, appointmentID int64, status models.AppointmentStatus) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	var appointment *models.Appointment
	err := uc.Transactor.WithinTransaction(ctx, func(ctx context.Context) error {
		locked, err := uc.AppointmentRepository.FindByIDForUpdate(ctx, appointmentID)
		if err != nil {
			return err
		}
		if locked.Status != models.AppointmentStatusScheduled {
			return exceptions.ErrInvalidStatusChange(constvars.ResourceAppointment, string(locked.Status), string(status))
		}
		if err := uc.AppointmentRepository.UpdateStatus(ctx, locked.ID, status); err != nil {
			return err
		}
		locked.Status = status
		locked.SetUpdatedAt(time.Now())
		appointment = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	utils.LogBusinessEvent(uc.Log, "appointment_status_changed", requestID,
		zap.Int64(constvars.LoggingAppointmentIDKey, appointment.ID),
		zap.String(constvars.LoggingStatusKey, string(status)),
	)
	return appointment, nil
}

func (uc *appointmentUsecase) Get(ctx context.Context, appointmentID int64) (*models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.Get called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingAppointmentIDKey, appointmentID),
	)
	return uc.AppointmentRepository.FindByID(ctx, appointmentID)
}

func (uc *appointmentUsecase) ListByPatient(ctx context.Context, patientID int64) ([]models.Appointment, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("appointmentUsecase.ListByPatient called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingPatientIDKey, patientID),
	)
	return uc.AppointmentRepository.ListByPatient(ctx, patientID)
}
