package slot

import (
	"hospital-service/internal/app/models"
	"time"
)

// GenerateSlots lists every stride start from start while the start is strictly before end.
// A trailing partial slot is dropped.
func GenerateSlots(start, end models.TimeOfDay, stride time.Duration) []models.TimeOfDay {
	if stride <= 0 || start >= end {
		return []models.TimeOfDay{}
	}
	slots := make([]models.TimeOfDay, 0, int(end.Sub(start)/stride))
	for current := start; current < end; current = current.Add(stride) {
		if current.Add(stride) > end {
			break
		}
		slots = append(slots, current)
	}
	return slots
}

// FreeSlots removes the times held by active appointments from the window's slots.
func FreeSlots(availability *models.DoctorAvailability, appointments []models.Appointment, stride time.Duration) []models.TimeOfDay {
	if availability == nil || !availability.Available {
		return []models.TimeOfDay{}
	}

	taken := make(map[models.TimeOfDay]struct{}, len(appointments))
	for _, appointment := range appointments {
		if appointment.IsActive() {
			taken[appointment.Time] = struct{}{}
		}
	}

	all := GenerateSlots(availability.StartTime, availability.EndTime, stride)
	free := make([]models.TimeOfDay, 0, len(all))
	for _, slot := range all {
		if _, ok := taken[slot]; !ok {
			free = append(free, slot)
		}
	}
	return free
}

// IsSlotStart reports whether t is one of the generated slot starts of the window.
func IsSlotStart(availability *models.DoctorAvailability, t models.TimeOfDay, stride time.Duration) bool {
	for _, slot := range GenerateSlots(availability.StartTime, availability.EndTime, stride) {
		if slot == t {
			return true
		}
	}
	return false
}
