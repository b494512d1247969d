package slot

import (
	"hospital-service/internal/app/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func tod(hour, minute int) models.TimeOfDay {
	return models.NewTimeOfDay(hour, minute)
}

func TestGenerateSlots(t *testing.T) {
	tests := []struct {
		name   string
		start  models.TimeOfDay
		end    models.TimeOfDay
		stride time.Duration
		want   []models.TimeOfDay
	}{
		{
			name:   "one hour in half hour slots",
			start:  tod(9, 0),
			end:    tod(10, 0),
			stride: 30 * time.Minute,
			want:   []models.TimeOfDay{tod(9, 0), tod(9, 30)},
		},
		{
			name:   "trailing partial slot is dropped",
			start:  tod(9, 0),
			end:    tod(10, 15),
			stride: 30 * time.Minute,
			want:   []models.TimeOfDay{tod(9, 0), tod(9, 30)},
		},
		{
			name:   "window shorter than a slot",
			start:  tod(9, 0),
			end:    tod(9, 20),
			stride: 30 * time.Minute,
			want:   []models.TimeOfDay{},
		},
		{
			name:   "inverted window",
			start:  tod(11, 0),
			end:    tod(9, 0),
			stride: 30 * time.Minute,
			want:   []models.TimeOfDay{},
		},
		{
			name:   "zero stride",
			start:  tod(9, 0),
			end:    tod(10, 0),
			stride: 0,
			want:   []models.TimeOfDay{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GenerateSlots(tt.start, tt.end, tt.stride))
		})
	}
}

func TestFreeSlots_SkipsActiveAppointmentsOnly(t *testing.T) {
	availability := &models.DoctorAvailability{
		StartTime: tod(9, 0),
		EndTime:   tod(11, 0),
		MaxSlots:  4,
		Available: true,
	}
	appointments := []models.Appointment{
		{Time: tod(9, 30), Status: models.AppointmentStatusScheduled},
		{Time: tod(10, 0), Status: models.AppointmentStatusCancelled},
		{Time: tod(10, 30), Status: models.AppointmentStatusCompleted},
	}

	free := FreeSlots(availability, appointments, 30*time.Minute)

	assert.Equal(t, []models.TimeOfDay{tod(9, 0), tod(10, 0)}, free)
}

func TestFreeSlots_DisabledWindow(t *testing.T) {
	availability := &models.DoctorAvailability{StartTime: tod(9, 0), EndTime: tod(10, 0), MaxSlots: 2}

	assert.Empty(t, FreeSlots(availability, nil, 30*time.Minute))
	assert.Empty(t, FreeSlots(nil, nil, 30*time.Minute))
}

func TestIsSlotStart(t *testing.T) {
	availability := &models.DoctorAvailability{StartTime: tod(9, 0), EndTime: tod(10, 0), Available: true}

	assert.True(t, IsSlotStart(availability, tod(9, 30), 30*time.Minute))
	assert.False(t, IsSlotStart(availability, tod(9, 15), 30*time.Minute))
	assert.False(t, IsSlotStart(availability, tod(10, 0), 30*time.Minute))
}
