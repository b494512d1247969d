package users

import (
	"context"
	"database/sql"
	"errors"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/drivers/database"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/queries"
	"time"

	"github.com/shopspring/decimal"
)

type userPostgresRepository struct {
	DB *sql.DB
}

func NewUserPostgresRepository(db *sql.DB) contracts.UserRepository {
	return &userPostgresRepository{
		DB: db,
	}
}

func (repo *userPostgresRepository) Create(ctx context.Context, user *models.User) error {
	var (
		specialization, licenseNumber, bloodGroup, address sql.NullString
		consultationFee                                    decimal.NullDecimal
		dateOfBirth                                        *time.Time
	)
	switch {
	case user.Doctor != nil:
		specialization = sql.NullString{String: user.Doctor.Specialization, Valid: true}
		licenseNumber = sql.NullString{String: user.Doctor.LicenseNumber, Valid: user.Doctor.LicenseNumber != ""}
		consultationFee = decimal.NullDecimal{Decimal: user.Doctor.ConsultationFee, Valid: true}
	case user.Patient != nil:
		dateOfBirth = user.Patient.DateOfBirth
		bloodGroup = sql.NullString{String: user.Patient.BloodGroup, Valid: user.Patient.BloodGroup != ""}
		address = sql.NullString{String: user.Patient.Address, Valid: user.Patient.Address != ""}
	case user.Pharmacist != nil:
		licenseNumber = sql.NullString{String: user.Pharmacist.LicenseNumber, Valid: user.Pharmacist.LicenseNumber != ""}
	}

	err := database.Executor(ctx, repo.DB).QueryRowContext(ctx, queries.CreateUser,
		user.Role,
		user.FirstName,
		user.LastName,
		user.Email,
		sql.NullString{String: user.Phone, Valid: user.Phone != ""},
		user.Active,
		specialization,
		licenseNumber,
		consultationFee,
		dateOfBirth,
		bloodGroup,
		address,
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return exceptions.ErrDuplicate(err, constvars.ResourceUser, user.Email)
		}
		return exceptions.ErrSQLQuery(err, "CreateUser")
	}
	return nil
}

func (repo *userPostgresRepository) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	var (
		user                                               models.User
		specialization, licenseNumber, bloodGroup, address sql.NullString
		consultationFee                                    decimal.NullDecimal
		dateOfBirth                                        *time.Time
	)
	err := database.Executor(ctx, repo.DB).QueryRowContext(ctx, queries.GetUserByID, userID).Scan(
		&user.ID,
		&user.Role,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.Phone,
		&user.Active,
		&specialization,
		&licenseNumber,
		&consultationFee,
		&dateOfBirth,
		&bloodGroup,
		&address,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, exceptions.ErrNotFound(err, constvars.ResourceUser, userID)
		}
		return nil, exceptions.ErrSQLQuery(err, "GetUserByID")
	}

	switch user.Role {
	case models.RoleDoctor:
		user.Doctor = &models.DoctorProfile{
			Specialization:  specialization.String,
			LicenseNumber:   licenseNumber.String,
			ConsultationFee: consultationFee.Decimal,
		}
	case models.RolePatient:
		user.Patient = &models.PatientProfile{
			DateOfBirth: dateOfBirth,
			BloodGroup:  bloodGroup.String,
			Address:     address.String,
		}
	case models.RolePharmacist:
		user.Pharmacist = &models.PharmacistProfile{
			LicenseNumber: licenseNumber.String,
		}
	}
	return &user, nil
}
