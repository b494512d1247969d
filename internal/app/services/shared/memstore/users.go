package memstore

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
)

type UserRepository struct {
	store *Store
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.store.do(ctx, func(st *state) error {
		for _, existing := range st.users {
			if existing.Email == user.Email {
				return exceptions.ErrDuplicate(nil, constvars.ResourceUser, user.Email)
			}
		}
		user.ID = st.next("users")
		st.users[user.ID] = *user
		return nil
	})
}

func (r *UserRepository) FindByID(ctx context.Context, userID int64) (*models.User, error) {
	var user models.User
	err := r.store.do(ctx, func(st *state) error {
		found, ok := st.users[userID]
		if !ok {
			return exceptions.ErrNotFound(nil, constvars.ResourceUser, userID)
		}
		user = found
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
