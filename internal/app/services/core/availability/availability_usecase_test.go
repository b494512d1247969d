package availability_test

import (
	"context"
	"errors"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/services/core/coretest"
	"hospital-service/internal/pkg/exceptions"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAvailability(t *testing.T) {
	ctx := context.Background()
	f := coretest.New(t)
	doctor := f.CreateDoctor(t, "80.00")
	patient := f.CreatePatient(t)
	date := coretest.Date(t, "2030-03-04")

	availability := f.OpenWindow(t, doctor.ID, date, "09:00", "12:00", 4)
	assert.True(t, availability.Available)
	assert.Zero(t, availability.BookedCount)

	tests := []struct {
		name   string
		input  contracts.CreateAvailabilityInput
		kind   error
		status int
	}{
		{
			name:   "second window on the same date",
			input:  contracts.CreateAvailabilityInput{DoctorID: doctor.ID, Date: date, StartTime: coretest.Time(t, "13:00"), EndTime: coretest.Time(t, "15:00"), MaxSlots: 2},
			kind:   exceptions.ErrKindDuplicate,
			status: 409,
		},
		{
			name:   "end before start",
			input:  contracts.CreateAvailabilityInput{DoctorID: doctor.ID, Date: date.AddDate(0, 0, 1), StartTime: coretest.Time(t, "12:00"), EndTime: coretest.Time(t, "09:00"), MaxSlots: 2},
			status: 400,
		},
		{
			name:   "no capacity",
			input:  contracts.CreateAvailabilityInput{DoctorID: doctor.ID, Date: date.AddDate(0, 0, 1), StartTime: coretest.Time(t, "09:00"), EndTime: coretest.Time(t, "12:00")},
			status: 400,
		},
		{
			name:   "patient is not a doctor",
			input:  contracts.CreateAvailabilityInput{DoctorID: patient.ID, Date: date.AddDate(0, 0, 1), StartTime: coretest.Time(t, "09:00"), EndTime: coretest.Time(t, "12:00"), MaxSlots: 1},
			kind:   exceptions.ErrKindNotFound,
			status: 404,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.Availability.CreateAvailability(ctx, tc.input)
			require.Error(t, err)
			if tc.kind != nil {
				assert.True(t, errors.Is(err, tc.kind))
			}
			assert.Equal(t, tc.status, exceptions.StatusCodeOf(err))
		})
	}
}

func TestSetAvailable_HidesSlotsAndKeepsCount(t *testing.T) {
	ctx := context.Background()
	f := coretest.New(t)
	doctor := f.CreateDoctor(t, "80.00")
	date := coretest.Date(t, "2030-03-04")
	availability := f.OpenWindow(t, doctor.ID, date, "09:00", "10:00", 2)

	disabled, err := f.Availability.SetAvailable(ctx, availability.ID, false)
	require.NoError(t, err)
	assert.False(t, disabled.Available)

	free, err := f.Slots.FreeSlots(ctx, doctor.ID, date)
	require.NoError(t, err)
	assert.Empty(t, free)

	enabled, err := f.Availability.SetAvailable(ctx, availability.ID, true)
	require.NoError(t, err)
	assert.True(t, enabled.Available)

	_, err = f.Availability.SetAvailable(ctx, 999, true)
	assert.True(t, errors.Is(err, exceptions.ErrKindNotFound))
}

func TestListByDoctor_RangeIsInclusive(t *testing.T) {
	ctx := context.Background()
	f := coretest.New(t)
	doctor := f.CreateDoctor(t, "80.00")
	other := f.CreateDoctor(t, "60.00")

	for _, day := range []string{"2030-03-03", "2030-03-04", "2030-03-05", "2030-03-06"} {
		f.OpenWindow(t, doctor.ID, coretest.Date(t, day), "09:00", "10:00", 1)
	}
	f.OpenWindow(t, other.ID, coretest.Date(t, "2030-03-04"), "09:00", "10:00", 1)

	listed, err := f.Availability.ListByDoctor(ctx, doctor.ID, coretest.Date(t, "2030-03-04"), coretest.Date(t, "2030-03-05"))
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, coretest.Date(t, "2030-03-04"), listed[0].Date)
	assert.Equal(t, coretest.Date(t, "2030-03-05"), listed[1].Date)
}

func TestMaterializeWindow(t *testing.T) {
	ctx := context.Background()
	f := coretest.New(t)
	doctor := f.CreateDoctor(t, "80.00")

	template, err := f.Availability.CreateTemplate(ctx, contracts.CreateAvailabilityTemplateInput{
		DoctorID:  doctor.ID,
		Weekday:   time.Monday,
		StartTime: coretest.Time(t, "08:00"),
		EndTime:   coretest.Time(t, "11:00"),
		MaxSlots:  5,
	})
	require.NoError(t, err)
	assert.True(t, template.Active)

	// 2030-03-11 already has a hand-made window and must not be overwritten
	manual := f.OpenWindow(t, doctor.ID, coretest.Date(t, "2030-03-11"), "14:00", "15:00", 1)

	created, err := f.Availability.MaterializeWindow(ctx, coretest.Date(t, "2030-03-01"), 21)
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	listed, err := f.Availability.ListByDoctor(ctx, doctor.ID, coretest.Date(t, "2030-03-01"), coretest.Date(t, "2030-03-21"))
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, coretest.Date(t, "2030-03-04"), listed[0].Date)
	assert.Equal(t, 5, listed[0].MaxSlots)
	require.NotNil(t, listed[0].TemplateID)
	assert.Equal(t, template.ID, *listed[0].TemplateID)
	assert.Equal(t, manual.ID, listed[1].ID)
	assert.Equal(t, 1, listed[1].MaxSlots)
	assert.Equal(t, coretest.Date(t, "2030-03-18"), listed[2].Date)

	again, err := f.Availability.MaterializeWindow(ctx, coretest.Date(t, "2030-03-01"), 21)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestCreateTemplate_Rejections(t *testing.T) {
	ctx := context.Background()
	f := coretest.New(t)
	doctor := f.CreateDoctor(t, "80.00")

	_, err := f.Availability.CreateTemplate(ctx, contracts.CreateAvailabilityTemplateInput{
		DoctorID: doctor.ID, Weekday: time.Friday, StartTime: coretest.Time(t, "10:00"), EndTime: coretest.Time(t, "10:00"), MaxSlots: 1,
	})
	assert.Equal(t, 400, exceptions.StatusCodeOf(err))

	_, err = f.Availability.CreateTemplate(ctx, contracts.CreateAvailabilityTemplateInput{
		DoctorID: 404, Weekday: time.Friday, StartTime: coretest.Time(t, "09:00"), EndTime: coretest.Time(t, "10:00"), MaxSlots: 1,
	})
	assert.True(t, errors.Is(err, exceptions.ErrKindNotFound))
}
