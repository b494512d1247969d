package contracts

import (
	"context"
	"hospital-service/internal/app/models"
	"time"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *models.Appointment) error
	FindByID(ctx context.Context, appointmentID int64) (*models.Appointment, error)
	FindByIDForUpdate(ctx context.Context, appointmentID int64) (*models.Appointment, error)
	ListActiveByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) ([]models.Appointment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, appointmentID int64, status models.AppointmentStatus) error
}

type BookAppointmentInput struct {
	PatientID int64
	DoctorID  int64
	Date      time.Time
	Time      models.TimeOfDay
	Reason    string
}

type BookingResult struct {
	Appointment *models.Appointment `json:"appointment"`
	Invoice     *models.Invoice     `json:"invoice"`
}

type AppointmentUsecase interface {
	Book(ctx context.Context, input BookAppointmentInput) (*BookingResult, error)
	Cancel(ctx context.Context, appointmentID int64) (*models.Appointment, error)
	Complete(ctx context.Context, appointmentID int64) (*models.Appointment, error)
	MarkNoShow(ctx context.Context, appointmentID int64) (*models.Appointment, error)
	Get(ctx context.Context, appointmentID int64) (*models.Appointment, error)
	ListByPatient(ctx context.Context, patientID int64) ([]models.Appointment, error)
}
