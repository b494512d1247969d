package models

import "time"

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "SCHEDULED"
	AppointmentStatusCompleted AppointmentStatus = "COMPLETED"
	AppointmentStatusCancelled AppointmentStatus = "CANCELLED"
	AppointmentStatusNoShow    AppointmentStatus = "NO_SHOW"
)

// Appointment is unique on (DoctorID, Date, Time) among non-cancelled rows.
type Appointment struct {
	ID              int64             `json:"id"`
	PatientID       int64             `json:"patientId"`
	DoctorID        int64             `json:"doctorId"`
	Date            time.Time         `json:"date"`
	Time            TimeOfDay         `json:"time"`
	Reason          string            `json:"reason,omitempty"`
	Status          AppointmentStatus `json:"status"`
	MedicalRecordID *int64            `json:"medicalRecordId,omitempty"`
	TimeModel
}

func (a *Appointment) IsActive() bool {
	return a.Status != AppointmentStatusCancelled
}
