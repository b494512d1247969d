package appointments_test

import (
	"context"
	"errors"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/app/services/core/coretest"
	"hospital-service/internal/app/services/shared/notification"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookingSetup struct {
	f       *coretest.Fixture
	doctor  *models.User
	patient *models.User
	date    time.Time
	window  *models.DoctorAvailability
}

func newBookingSetup(t *testing.T, start, end string, maxSlots int, opts ...coretest.Option) *bookingSetup {
	f := coretest.New(t, opts...)
	doctor := f.CreateDoctor(t, "75.50")
	date := coretest.Date(t, "2030-05-06")
	return &bookingSetup{
		f:       f,
		doctor:  doctor,
		patient: f.CreatePatient(t),
		date:    date,
		window:  f.OpenWindow(t, doctor.ID, date, start, end, maxSlots),
	}
}

func (s *bookingSetup) book(t *testing.T, at string) (*contracts.BookingResult, error) {
	return s.f.Appointments.Book(context.Background(), contracts.BookAppointmentInput{
		PatientID: s.patient.ID,
		DoctorID:  s.doctor.ID,
		Date:      s.date,
		Time:      coretest.Time(t, at),
		Reason:    "Persistent cough",
	})
}

func (s *bookingSetup) bookedCount(t *testing.T) int {
	availability, err := s.f.Availability.Get(context.Background(), s.window.ID)
	require.NoError(t, err)
	return availability.BookedCount
}

func TestBook_CreatesAppointmentAndInvoice(t *testing.T) {
	s := newBookingSetup(t, "09:00", "10:00", 2)

	result, err := s.book(t, "09:30")

	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusScheduled, result.Appointment.Status)
	assert.Equal(t, s.patient.ID, result.Appointment.PatientID)
	require.NotNil(t, result.Invoice.AppointmentID)
	assert.Equal(t, result.Appointment.ID, *result.Invoice.AppointmentID)
	assert.Equal(t, models.InvoiceStatusPending, result.Invoice.Status)
	assert.True(t, coretest.Money("75.50").Equal(result.Invoice.Total))
	assert.True(t, result.Invoice.Total.Equal(result.Invoice.BalanceDue))
	assert.Regexp(t, `^INV-\d{6}-\d{5}$`, result.Invoice.InvoiceNumber)
	assert.Equal(t, 1, s.bookedCount(t))
	assert.Equal(t, 1, s.f.Sink.BookingCount())
}

func TestBook_ConfirmationFailuresDoNotFailBooking(t *testing.T) {
	notifier := &notification.RecordingSink{Err: errors.New("smtp unreachable")}
	s := newBookingSetup(t, "09:00", "10:00", 2,
		coretest.WithNotifier(notifier),
		coretest.WithRenderer(&coretest.FailingRenderer{Err: errors.New("font missing")}),
	)

	result, err := s.book(t, "09:00")

	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusScheduled, result.Appointment.Status)
	assert.Equal(t, models.InvoiceStatusPending, result.Invoice.Status)
	assert.Equal(t, 1, notifier.BookingCount())
	assert.Equal(t, 1, s.bookedCount(t))

	stored, err := s.f.Appointments.Get(context.Background(), result.Appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusScheduled, stored.Status)
}

func TestBook_ThirdBookingOnFullWindowFails(t *testing.T) {
	s := newBookingSetup(t, "09:00", "10:00", 2)

	_, err := s.book(t, "09:00")
	require.NoError(t, err)
	_, err = s.book(t, "09:30")
	require.NoError(t, err)

	_, err = s.book(t, "09:30")

	assert.ErrorIs(t, err, exceptions.ErrKindSlotFull)
	assert.Equal(t, constvars.StatusConflict, exceptions.StatusCodeOf(err))
	assert.Equal(t, 2, s.bookedCount(t))
}

func TestBook_ConcurrentBookingsNeverExceedCapacity(t *testing.T) {
	s := newBookingSetup(t, "09:00", "13:00", 3)
	times := []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30", "12:00", "12:30"}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		full      int
	)
	for _, at := range times {
		wg.Add(1)
		go func(at string) {
			defer wg.Done()
			_, err := s.book(t, at)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case assert.ErrorIs(t, err, exceptions.ErrKindSlotFull):
				full++
			}
		}(at)
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, len(times)-3, full)
	assert.Equal(t, 3, s.bookedCount(t))
}

func TestBook_SameTimeTwiceIsTaken(t *testing.T) {
	s := newBookingSetup(t, "09:00", "10:00", 2)
	_, err := s.book(t, "09:00")
	require.NoError(t, err)

	_, err = s.book(t, "09:00")

	assert.ErrorIs(t, err, exceptions.ErrKindSlotTaken)
	assert.Equal(t, 1, s.bookedCount(t))
}

func TestBook_RejectsTimesOutsideTheWindow(t *testing.T) {
	s := newBookingSetup(t, "09:00", "10:00", 2)

	for _, at := range []string{"08:30", "09:15", "10:00"} {
		_, err := s.book(t, at)
		assert.ErrorIs(t, err, exceptions.ErrKindDoctorUnavailable, at)
	}
	assert.Equal(t, 0, s.bookedCount(t))
}

func TestBook_DisabledOrMissingWindow(t *testing.T) {
	s := newBookingSetup(t, "09:00", "10:00", 2)
	_, err := s.f.Availability.SetAvailable(context.Background(), s.window.ID, false)
	require.NoError(t, err)

	_, err = s.book(t, "09:00")
	assert.ErrorIs(t, err, exceptions.ErrKindDoctorUnavailable)

	_, err = s.f.Appointments.Book(context.Background(), contracts.BookAppointmentInput{
		PatientID: s.patient.ID,
		DoctorID:  s.doctor.ID,
		Date:      s.date.AddDate(0, 0, 1),
		Time:      coretest.Time(t, "09:00"),
	})
	assert.ErrorIs(t, err, exceptions.ErrKindDoctorUnavailable)
}

func TestBook_UnknownParticipants(t *testing.T) {
	s := newBookingSetup(t, "09:00", "10:00", 2)

	_, err := s.f.Appointments.Book(context.Background(), contracts.BookAppointmentInput{
		PatientID: s.doctor.ID,
		DoctorID:  s.doctor.ID,
		Date:      s.date,
		Time:      coretest.Time(t, "09:00"),
	})
	assert.ErrorIs(t, err, exceptions.ErrKindNotFound)

	_, err = s.f.Appointments.Book(context.Background(), contracts.BookAppointmentInput{
		PatientID: s.patient.ID,
		DoctorID:  s.patient.ID,
		Date:      s.date,
		Time:      coretest.Time(t, "09:00"),
	})
	assert.ErrorIs(t, err, exceptions.ErrKindNotFound)
}

func TestCancel_RestoresCapacityOnce(t *testing.T) {
	s := newBookingSetup(t, "09:00", "10:00", 2)
	before := s.bookedCount(t)
	result, err := s.book(t, "09:00")
	require.NoError(t, err)

	cancelled, err := s.f.Appointments.Cancel(context.Background(), result.Appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, cancelled.Status)
	assert.Equal(t, before, s.bookedCount(t))

	again, err := s.f.Appointments.Cancel(context.Background(), result.Appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCancelled, again.Status)
	assert.Equal(t, before, s.bookedCount(t))

	free, err := s.f.Slots.FreeSlots(context.Background(), s.doctor.ID, s.date)
	require.NoError(t, err)
	assert.Contains(t, free, coretest.Time(t, "09:00"))

	_, err = s.book(t, "09:00")
	assert.NoError(t, err)
}

func TestCancel_InvoicePolicy(t *testing.T) {
	t.Run("keep", func(t *testing.T) {
		s := newBookingSetup(t, "09:00", "10:00", 2)
		result, err := s.book(t, "09:00")
		require.NoError(t, err)

		_, err = s.f.Appointments.Cancel(context.Background(), result.Appointment.ID)
		require.NoError(t, err)

		assert.Equal(t, models.InvoiceStatusPending, s.f.ReloadInvoice(t, result.Invoice.ID).Status)
	})

	t.Run("cancel unpaid", func(t *testing.T) {
		cfg := coretest.NewConfig()
		cfg.Billing.CancelledAppointmentInvoicePolicy = constvars.CancelledInvoicePolicyCancelUnpaid
		f := coretest.NewWithConfig(t, cfg)
		doctor := f.CreateDoctor(t, "40.00")
		patient := f.CreatePatient(t)
		date := coretest.Date(t, "2030-05-06")
		f.OpenWindow(t, doctor.ID, date, "09:00", "10:00", 2)

		result, err := f.Appointments.Book(context.Background(), contracts.BookAppointmentInput{
			PatientID: patient.ID, DoctorID: doctor.ID, Date: date, Time: coretest.Time(t, "09:00"),
		})
		require.NoError(t, err)

		_, err = f.Appointments.Cancel(context.Background(), result.Appointment.ID)
		require.NoError(t, err)

		assert.Equal(t, models.InvoiceStatusCancelled, f.ReloadInvoice(t, result.Invoice.ID).Status)
	})
}

func TestCompleteAndNoShow(t *testing.T) {
	s := newBookingSetup(t, "09:00", "10:00", 2)
	first, err := s.book(t, "09:00")
	require.NoError(t, err)
	second, err := s.book(t, "09:30")
	require.NoError(t, err)

	completed, err := s.f.Appointments.Complete(context.Background(), first.Appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusCompleted, completed.Status)

	noShow, err := s.f.Appointments.MarkNoShow(context.Background(), second.Appointment.ID)
	require.NoError(t, err)
	assert.Equal(t, models.AppointmentStatusNoShow, noShow.Status)

	_, err = s.f.Appointments.Cancel(context.Background(), first.Appointment.ID)
	assert.Equal(t, constvars.StatusConflict, exceptions.StatusCodeOf(err))
	_, err = s.f.Appointments.Complete(context.Background(), second.Appointment.ID)
	assert.Equal(t, constvars.StatusConflict, exceptions.StatusCodeOf(err))

	assert.Equal(t, 2, s.bookedCount(t))
}

func TestListByPatient(t *testing.T) {
	s := newBookingSetup(t, "09:00", "10:00", 2)
	_, err := s.book(t, "09:30")
	require.NoError(t, err)
	_, err = s.book(t, "09:00")
	require.NoError(t, err)

	list, err := s.f.Appointments.ListByPatient(context.Background(), s.patient.ID)

	require.NoError(t, err)
	assert.Len(t, list, 2)
}
