package users

import (
	"context"
	"hospital-service/internal/app/contracts"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"

	"go.uber.org/zap"
)

type userUsecase struct {
	UserRepository contracts.UserRepository
	Log            *zap.Logger
}

func NewUserUsecase(userRepository contracts.UserRepository, logger *zap.Logger) contracts.UserUsecase {
	return &userUsecase{
		UserRepository: userRepository,
		Log:            logger,
	}
}

func (uc *userUsecase) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Debug("userUsecase.FindByID called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int64(constvars.LoggingEntityIDKey, userID),
	)
	return uc.UserRepository.FindByID(ctx, userID)
}

// FindDoctor resolves an active user holding the doctor profile.
func (uc *userUsecase) FindDoctor(ctx context.Context, doctorID int64) (*models.User, error) {
	return uc.findWithRole(ctx, doctorID, models.RoleDoctor, constvars.ResourceDoctor)
}

// FindPatient resolves an active user holding the patient profile.
func (uc *userUsecase) FindPatient(ctx context.Context, patientID int64) (*models.User, error) {
	return uc.findWithRole(ctx, patientID, models.RolePatient, constvars.ResourcePatient)
}

func (uc *userUsecase) findWithRole(ctx context.Context, userID int64, role models.Role, resource string) (*models.User, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

	user, err := uc.UserRepository.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	matches := (role == models.RoleDoctor && user.IsDoctor()) || (role == models.RolePatient && user.IsPatient())
	if !matches || !user.Active {
		uc.Log.Warn("userUsecase.findWithRole user does not hold the requested role",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Int64(constvars.LoggingEntityIDKey, userID),
			zap.String(constvars.LoggingCallerRoleKey, string(user.Role)),
		)
		return nil, exceptions.ErrNotFound(nil, resource, userID)
	}
	return user, nil
}
