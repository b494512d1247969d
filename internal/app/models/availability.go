package models

import "time"

// DoctorAvailability is a per-doctor, per-date capacity window.
// Invariant: 0 <= BookedCount <= MaxSlots.
type DoctorAvailability struct {
	ID          int64     `json:"id"`
	DoctorID    int64     `json:"doctorId"`
	Date        time.Time `json:"date"`
	StartTime   TimeOfDay `json:"startTime"`
	EndTime     TimeOfDay `json:"endTime"`
	MaxSlots    int       `json:"maxSlots"`
	BookedCount int       `json:"bookedCount"`
	Available   bool      `json:"available"`
	TemplateID  *int64    `json:"templateId,omitempty"`
	TimeModel
}

func (a *DoctorAvailability) HasCapacity() bool {
	return a.BookedCount < a.MaxSlots
}

// Claim takes one unit of capacity. It reports false when the window is full.
func (a *DoctorAvailability) Claim() bool {
	if !a.HasCapacity() {
		return false
	}
	a.BookedCount++
	return true
}

// Release returns one unit of capacity, never going below zero.
func (a *DoctorAvailability) Release() {
	if a.BookedCount > 0 {
		a.BookedCount--
	}
}

// AvailabilityTemplate is a fixed weekday record that the availability worker
// materializes into dated DoctorAvailability rows.
type AvailabilityTemplate struct {
	ID        int64        `json:"id"`
	DoctorID  int64        `json:"doctorId"`
	Weekday   time.Weekday `json:"weekday"`
	StartTime TimeOfDay    `json:"startTime"`
	EndTime   TimeOfDay    `json:"endTime"`
	MaxSlots  int          `json:"maxSlots"`
	Active    bool         `json:"active"`
	TimeModel
}

// ForDate builds the dated availability record described by the template.
func (t *AvailabilityTemplate) ForDate(date time.Time) *DoctorAvailability {
	templateID := t.ID
	return &DoctorAvailability{
		DoctorID:   t.DoctorID,
		Date:       DateOf(date),
		StartTime:  t.StartTime,
		EndTime:    t.EndTime,
		MaxSlots:   t.MaxSlots,
		Available:  true,
		TemplateID: &templateID,
	}
}
