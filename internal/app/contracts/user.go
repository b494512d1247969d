package contracts

import (
	"context"
	"hospital-service/internal/app/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID int64) (*models.User, error)
}

type UserUsecase interface {
	FindDoctor(ctx context.Context, doctorID int64) (*models.User, error)
	FindPatient(ctx context.Context, patientID int64) (*models.User, error)
	FindByID(ctx context.Context, userID int64) (*models.User, error)
}
