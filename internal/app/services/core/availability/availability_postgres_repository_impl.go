package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/drivers/database"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/queries"
	"time"
)

type availabilityPostgresRepository struct {
	DB *sql.DB
}

func NewAvailabilityPostgresRepository(db *sql.DB) contracts.AvailabilityRepository {
	return &availabilityPostgresRepository{
		DB: db,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanAvailability(row rowScanner, availability *models.DoctorAvailability) error {
	err := row.Scan(
		&availability.ID,
		&availability.DoctorID,
		&availability.Date,
		&availability.StartTime,
		&availability.EndTime,
		&availability.MaxSlots,
		&availability.BookedCount,
		&availability.Available,
		&availability.TemplateID,
		&availability.CreatedAt,
		&availability.UpdatedAt,
	)
	availability.Date = models.DateOf(availability.Date)
	return err
}

func (repo *availabilityPostgresRepository) Create(ctx context.Context, availability *models.DoctorAvailability) error {
	err := database.Executor(ctx, repo.DB).QueryRowContext(ctx, queries.CreateAvailability,
		availability.DoctorID,
		availability.Date,
		availability.StartTime,
		availability.EndTime,
		availability.MaxSlots,
		availability.BookedCount,
		availability.Available,
		availability.TemplateID,
		availability.CreatedAt,
		availability.UpdatedAt,
	).Scan(&availability.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			key := fmt.Sprintf("doctor %d on %s", availability.DoctorID, availability.Date.Format(constvars.DateFormat))
			return exceptions.ErrDuplicate(err, constvars.ResourceAvailability, key)
		}
		return exceptions.ErrSQLQuery(err, "CreateAvailability")
	}
	return nil
}

func (repo *availabilityPostgresRepository) FindByID(ctx context.Context, availabilityID int64) (*models.DoctorAvailability, error) {
	var availability models.DoctorAvailability
	row := database.Executor(ctx, repo.DB).QueryRowContext(ctx, queries.GetAvailabilityByID, availabilityID)
	if err := scanAvailability(row, &availability); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, exceptions.ErrNotFound(err, constvars.ResourceAvailability, availabilityID)
		}
		return nil, exceptions.ErrSQLQuery(err, "GetAvailabilityByID")
	}
	return &availability, nil
}

func (repo *availabilityPostgresRepository) FindByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) (*models.DoctorAvailability, error) {
	return repo.findByDoctorAndDate(ctx, queries.GetAvailabilityByDoctorAndDate, doctorID, date)
}

func (repo *availabilityPostgresRepository) FindByDoctorAndDateForUpdate(ctx context.Context, doctorID int64, date time.Time) (*models.DoctorAvailability, error) {
	return repo.findByDoctorAndDate(ctx, queries.GetAvailabilityByDoctorAndDateForUpdate, doctorID, date)
}

// findByDoctorAndDate returns nil without error when the doctor has no window that day.
func (repo *availabilityPostgresRepository) findByDoctorAndDate(ctx context.Context, query string, doctorID int64, date time.Time) (*models.DoctorAvailability, error) {
	var availability models.DoctorAvailability
	row := database.Executor(ctx, repo.DB).QueryRowContext(ctx, query, doctorID, models.DateOf(date))
	if err := scanAvailability(row, &availability); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, exceptions.ErrSQLQuery(err, "GetAvailabilityByDoctorAndDate")
	}
	return &availability, nil
}

func (repo *availabilityPostgresRepository) ListByDoctor(ctx context.Context, doctorID int64, from, to time.Time) ([]models.DoctorAvailability, error) {
	rows, err := database.Executor(ctx, repo.DB).QueryContext(ctx, queries.ListAvailabilityByDoctor, doctorID, models.DateOf(from), models.DateOf(to))
	if err != nil {
		return nil, exceptions.ErrSQLQuery(err, "ListAvailabilityByDoctor")
	}
	defer rows.Close()

	var availabilities []models.DoctorAvailability
	for rows.Next() {
		var availability models.DoctorAvailability
		if err := scanAvailability(rows, &availability); err != nil {
			return nil, exceptions.ErrSQLScan(err, "ListAvailabilityByDoctor")
		}
		availabilities = append(availabilities, availability)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrSQLScan(err, "ListAvailabilityByDoctor")
	}
	return availabilities, nil
}

func (repo *availabilityPostgresRepository) UpdateBookedCount(ctx context.Context, availabilityID int64, bookedCount int) error {
	return repo.exec(ctx, "UpdateAvailabilityBookedCount", queries.UpdateAvailabilityBookedCount, availabilityID, bookedCount)
}

func (repo *availabilityPostgresRepository) UpdateAvailable(ctx context.Context, availabilityID int64, available bool) error {
	return repo.exec(ctx, "UpdateAvailabilityAvailable", queries.UpdateAvailabilityAvailable, availabilityID, available)
}

func (repo *availabilityPostgresRepository) exec(ctx context.Context, name, query string, availabilityID int64, value interface{}) error {
	result, err := database.Executor(ctx, repo.DB).ExecContext(ctx, query, availabilityID, value)
	if err != nil {
		return exceptions.ErrSQLQuery(err, name)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return exceptions.ErrSQLQuery(err, name)
	}
	if affected == 0 {
		return exceptions.ErrNotFound(nil, constvars.ResourceAvailability, availabilityID)
	}
	return nil
}

func (repo *availabilityPostgresRepository) CreateTemplate(ctx context.Context, template *models.AvailabilityTemplate) error {
	err := database.Executor(ctx, repo.DB).QueryRowContext(ctx, queries.CreateAvailabilityTemplate,
		template.DoctorID,
		int(template.Weekday),
		template.StartTime,
		template.EndTime,
		template.MaxSlots,
		template.Active,
		template.CreatedAt,
		template.UpdatedAt,
	).Scan(&template.ID)
	if err != nil {
		return exceptions.ErrSQLQuery(err, "CreateAvailabilityTemplate")
	}
	return nil
}

func (repo *availabilityPostgresRepository) ListActiveTemplates(ctx context.Context) ([]models.AvailabilityTemplate, error) {
	rows, err := database.Executor(ctx, repo.DB).QueryContext(ctx, queries.ListActiveAvailabilityTemplates)
	if err != nil {
		return nil, exceptions.ErrSQLQuery(err, "ListActiveAvailabilityTemplates")
	}
	defer rows.Close()

	var templates []models.AvailabilityTemplate
	for rows.Next() {
		var (
			template models.AvailabilityTemplate
			weekday  int
		)
		if err := rows.Scan(
			&template.ID,
			&template.DoctorID,
			&weekday,
			&template.StartTime,
			&template.EndTime,
			&template.MaxSlots,
			&template.Active,
			&template.CreatedAt,
			&template.UpdatedAt,
		); err != nil {
			return nil, exceptions.ErrSQLScan(err, "ListActiveAvailabilityTemplates")
		}
		template.Weekday = time.Weekday(weekday)
		templates = append(templates, template)
	}
	if err := rows.Err(); err != nil {
		return nil, exceptions.ErrSQLScan(err, "ListActiveAvailabilityTemplates")
	}
	return templates, nil
}
