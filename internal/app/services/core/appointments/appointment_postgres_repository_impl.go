package appointments

import (
	"context"
	"database/sql"
	"errors"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/drivers/database"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/queries"
	"time"
)

type appointmentPostgresRepository struct {
	DB *sql.DB
}

func NewAppointmentPostgresRepository(db *sql.DB) contracts.AppointmentRepository {
	return &appointmentPostgresRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAppointment(row rowScanner, appointment *models.Appointment) error {
	err := row.Scan(
		&appointment.ID,
		&appointment.PatientID,
		&appointment.DoctorID,
		&appointment.Date,
		&appointment.Time,
		&appointment.Reason,
		&appointment.Status,
		&appointment.MedicalRecordID,
		&appointment.CreatedAt,
		&appointment.UpdatedAt,
	)
	appointment.Date = models.DateOf(appointment.Date)
	return err
}

// Create relies on the partial unique index over active (doctor, date, time) rows.
func (repo *appointmentPostgresRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	err := database.Executor(ctx, repo.DB).QueryRowContext(ctx, queries.CreateAppointment,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.Date,
		appointment.Time,
		appointment.Reason,
		appointment.Status,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	).Scan(&appointment.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return exceptions.ErrSlotTaken(err, appointment.DoctorID, appointment.Date.Format(constvars.DateFormat), appointment.Time.String())
		}
		return exceptions.ErrSQLQuery(err, "CreateAppointment")
	}
	return nil
}

func (repo *appointmentPostgresRepository) FindByID(ctx context.Context, appointmentID int64) (*models.Appointment, error) {
	return repo.findOne(ctx, "GetAppointmentByID", queries.GetAppointmentByID, appointmentID)
}

func (repo *appointmentPostgresRepository) FindByIDForUpdate(ctx context.Context, appointmentID int64) (*models.Appointment, error) {
	return repo.findOne(ctx, "GetAppointmentByIDForUpdate", queries.GetAppointmentByIDForUpdate, appointmentID)
}

func (repo *appointmentPostgresRepository) findOne(ctx context.Context, name, query string, appointmentID int64) (*models.Appointment, error) {
	var appointment models.Appointment
	row := database.Executor(ctx, repo.DB).QueryRowContext(ctx, query, appointmentID)
	if err := scanAppointment(row, &appointment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, exceptions.ErrNotFound(err, constvars.ResourceAppointment, appointmentID)
		}
		return nil, exceptions.ErrSQLQuery(err, name)
	}
	return &appointment, nil
}

func (repo *appointmentPostgresRepository) ListActiveByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) ([]models.Appointment, error) {
	return repo.list(ctx, "ListActiveAppointmentsByDoctorAndDate", queries.ListActiveAppointmentsByDoctorAndDate, doctorID, models.DateOf(date))
}

func (repo *appointmentPostgresRepository) ListByPatient(ctx context.Context, patientID int64) ([]models.Appointment, error) {
	return repo.list(ctx, "ListAppointmentsByPatient", queries.ListAppointmentsByPatient, patientID)
}

func (repo *appointmentPostgresRepository) list(ctx context.Context, name, query string, args ...interface{}) ([]models.Appointment, error) {
	rows, err := database.Executor(ctx, repo.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, exceptions.ErrSQLQuery(err, name)
	}
	defer rows.Close()

	var appointments []models.Appointment
	for rows.Next() {
		var appointment models.Appointment
		if err := scanAppointment(rows, &appointment); err != nil {
			return nil, exceptions.ErrSQLScan(err, name)
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrSQLScan(err, name)
	}
	return appointments, nil
}

func (repo *appointmentPostgresRepository) UpdateStatus(ctx context.Context, appointmentID int64, status models.AppointmentStatus) error {
	result, err := database.Executor(ctx, repo.DB).ExecContext(ctx, queries.UpdateAppointmentStatus, appointmentID, status)
	if err != nil {
		return exceptions.ErrSQLQuery(err, "UpdateAppointmentStatus")
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return exceptions.ErrNotFound(nil, constvars.ResourceAppointment, appointmentID)
	}
	return nil
}
