package slot_test

import (
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/core/coretest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeSlots_OpenWindowWithoutBookings(t *testing.T) {
	f := coretest.New(t)
	doctor := f.CreateDoctor(t, "50.00")
	date := coretest.Date(t, "2030-03-04")
	f.OpenWindow(t, doctor.ID, date, "09:00", "10:00", 2)

	free, err := f.Slots.FreeSlots(context.Background(), doctor.ID, date)

	require.NoError(t, err)
	assert.Equal(t, []models.TimeOfDay{models.NewTimeOfDay(9, 0), models.NewTimeOfDay(9, 30)}, free)
}

func TestFreeSlots_RepeatedCallsAgree(t *testing.T) {
	f := coretest.New(t)
	doctor := f.CreateDoctor(t, "50.00")
	patient := f.CreatePatient(t)
	date := coretest.Date(t, "2030-03-04")
	f.OpenWindow(t, doctor.ID, date, "09:00", "12:00", 6)

	_, err := f.Appointments.Book(context.Background(), contracts.BookAppointmentInput{
		PatientID: patient.ID,
		DoctorID:  doctor.ID,
		Date:      date,
		Time:      coretest.Time(t, "10:00"),
	})
	require.NoError(t, err)

	first, err := f.Slots.FreeSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	second, err := f.Slots.FreeSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 5)
	assert.NotContains(t, first, coretest.Time(t, "10:00"))
}

func TestFreeSlots_MissingOrDisabledWindow(t *testing.T) {
	f := coretest.New(t)
	doctor := f.CreateDoctor(t, "50.00")
	date := coretest.Date(t, "2030-03-04")

	free, err := f.Slots.FreeSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	assert.Empty(t, free)

	window := f.OpenWindow(t, doctor.ID, date, "09:00", "10:00", 2)
	_, err = f.Availability.SetAvailable(context.Background(), window.ID, false)
	require.NoError(t, err)

	free, err = f.Slots.FreeSlots(context.Background(), doctor.ID, date)
	require.NoError(t, err)
	assert.NotNil(t, free)
	assert.Empty(t, free)
}
