package memstore

import (
	"context"
	"fmt"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"sort"
	"time"
)

type AvailabilityRepository struct {
	store *Store
}

func (r *AvailabilityRepository) Create(ctx context.Context, availability *models.DoctorAvailability) error {
	return r.store.do(ctx, func(st *state) error {
		for _, existing := range st.availabilities {
			if existing.DoctorID == availability.DoctorID && existing.Date.Equal(availability.Date) {
				key := fmt.Sprintf("doctor %d on %s", availability.DoctorID, availability.Date.Format(constvars.DateFormat))
				return exceptions.ErrDuplicate(nil, constvars.ResourceAvailability, key)
			}
		}
		availability.ID = st.next("doctor_availability")
		st.availabilities[availability.ID] = *availability
		return nil
	})
}

func (r *AvailabilityRepository) FindByID(ctx context.Context, availabilityID int64) (*models.DoctorAvailability, error) {
	var availability models.DoctorAvailability
	err := r.store.do(ctx, func(st *state) error {
		found, ok := st.availabilities[availabilityID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourceAvailability, availabilityID)
		}
		availability = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &availability, nil
}

func (r *AvailabilityRepository) FindByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) (*models.DoctorAvailability, error) {
	var availability *models.DoctorAvailability
	err := r.store.do(ctx, func(st *state) error {
		date = models.DateOf(date)
		for _, existing := range st.availabilities {
			if existing.DoctorID == doctorID && existing.Date.Equal(date) {
				found := existing
				availability = &found
				return nil
			}
		}
		return nil
	})
	return availability, err
}

func (r *AvailabilityRepository) FindByDoctorAndDateForUpdate(ctx context.Context, doctorID int64, date time.Time) (*models.DoctorAvailability, error) {
	return r.FindByDoctorAndDate(ctx, doctorID, date)
}

func (r *AvailabilityRepository) ListByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]models.DoctorAvailability, error) {
	var availabilities []models.DoctorAvailability
	err := r.store.do(ctx, func(st *state) error {
		from, to = models.DateOf(from), models.DateOf(to)
		for _, existing := range st.availabilities {
			if existing.DoctorID != doctorID || existing.Date.Before(from) || existing.Date.After(to) {
				continue
			}
			availabilities = append(availabilities, existing)
		}
		return nil
	})
	sort.Slice(availabilities, func(i, j int) bool {
		return availabilities[i].Date.Before(availabilities[j].Date)
	})
	return availabilities, err
}

func (r *AvailabilityRepository) UpdateBookedCount(ctx context.Context, availabilityID int64, bookedCount int) error {
	return r.store.do(ctx, func(st *state) error {
		existing, ok := st.availabilities[availabilityID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourceAvailability, availabilityID)
		}
		existing.BookedCount = bookedCount
		existing.SetUpdatedAt(time.Now())
		st.availabilities[availabilityID] = existing
		return nil
	})
}

func (r *AvailabilityRepository) UpdateAvailable(ctx context.Context, availabilityID int64, available bool) error {
	return r.store.do(ctx, func(st *state) error {
		existing, ok := st.availabilities[availabilityID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourceAvailability, availabilityID)
		}
		existing.Available = available
		existing.SetUpdatedAt(time.Now())
		st.availabilities[availabilityID] = existing
		return nil
	})
}

func (r *AvailabilityRepository) CreateTemplate(ctx context.Context, template *models.AvailabilityTemplate) error {
	return r.store.do(ctx, func(st *state) error {
		template.ID = st.next("availability_templates")
		st.templates[template.ID] = *template
		return nil
	})
}

func (r *AvailabilityRepository) ListActiveTemplates(ctx context.Context) ([]models.AvailabilityTemplate, error) {
	var templates []models.AvailabilityTemplate
	err := r.store.do(ctx, func(st *state) error {
		for _, template := range st.templates {
			if template.Active {
				templates = append(templates, template)
			}
		}
		return nil
	})
	sort.Slice(templates, func(i, j int) bool { return templates[i].ID < templates[j].ID })
	return templates, err
}
