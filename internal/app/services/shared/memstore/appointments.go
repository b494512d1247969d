package memstore

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"sort"
	"time"
)

type AppointmentRepository struct {
	store *Store
}

// Create enforces the (doctor, date, time) uniqueness of non-cancelled appointments.
func (r *AppointmentRepository) Create(ctx context.Context, appointment *models.Appointment) error {
	return r.store.do(ctx, func(st *state) error {
		for _, existing := range st.appointments {
			if existing.IsActive() &&
				existing.DoctorID == appointment.DoctorID &&
				existing.Date.Equal(appointment.Date) &&
				existing.Time == appointment.Time {
				return exceptions.ErrSlotTaken(nil, appointment.DoctorID, appointment.Date.Format(constvars.DateFormat), appointment.Time.String())
			}
		}
		appointment.ID = st.next("appointments")
		st.appointments[appointment.ID] = *appointment
		return nil
	})
}

func (r *AppointmentRepository) FindByID(ctx context.Context, appointmentID int64) (*models.Appointment, error) {
	var appointment models.Appointment
	err := r.store.do(ctx, func(st *state) error {
		found, ok := st.appointments[appointmentID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourceAppointment, appointmentID)
		}
		appointment = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &appointment, nil
}

func (r *AppointmentRepository) FindByIDForUpdate(ctx context.Context, appointmentID int64) (*models.Appointment, error) {
	return r.FindByID(ctx, appointmentID)
}

func (r *AppointmentRepository) ListActiveByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.store.do(ctx, func(st *state) error {
		date = models.DateOf(date)
		for _, existing := range st.appointments {
			if existing.IsActive() && existing.DoctorID == doctorID && existing.Date.Equal(date) {
				appointments = append(appointments, existing)
			}
		}
		return nil
	})
	sort.Slice(appointments, func(i, j int) bool { return appointments[i].Time < appointments[j].Time })
	return appointments, err
}

func (r *AppointmentRepository) ListByPatient(ctx context.Context, patientID int64) ([]models.Appointment, error) {
	var appointments []models.Appointment
	err := r.store.do(ctx, func(st *state) error {
		for _, existing := range st.appointments {
			if existing.PatientID == patientID {
				appointments = append(appointments, existing)
			}
		}
		return nil
	})
	sort.Slice(appointments, func(i, j int) bool {
		if !appointments[i].Date.Equal(appointments[j].Date) {
			return appointments[i].Date.Before(appointments[j].Date)
		}
		return appointments[i].Time < appointments[j].Time
	})
	return appointments, err
}

func (r *AppointmentRepository) UpdateStatus(ctx context.Context, appointmentID int64, status models.AppointmentStatus) error {
	return r.store.do(ctx, func(st *state) error {
		existing, ok := st.appointments[appointmentID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourceAppointment, appointmentID)
		}
		existing.Status = status
		existing.SetUpdatedAt(time.Now())
		st.appointments[appointmentID] = existing
		return nil
	})
}
