package queries

import (
	"context"

	"github.com/google/uuid"

	"github.com/gilanghuda/crewhub-backend/app/models"
	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
	"github.com/gilanghuda/crewhub-backend/pkg/database"
)

type UserQueries struct {
	DB *database.DB
}

func (q *UserQueries) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := q.DB.Conn(ctx).Where("id = ?", id).First(user).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperror.NotFound("user not found")
		}
		return nil, dbError(err, "unable to get user")
	}
	return user, nil
}

func (q *UserQueries) GetUserEmailByID(ctx context.Context, id uuid.UUID) (string, error) {
	user, err := q.GetUserByID(ctx, id)
	if err != nil {
		return "", err
	}
	if user.Email == "" {
		return "", apperror.NotFound("user has no email address")
	}
	return user.Email, nil
}

func (q *UserQueries) GetUsersByRole(ctx context.Context, role string) ([]models.User, error) {
	var users []models.User
	if err := q.DB.Conn(ctx).Where("user_role = ?", role).Find(&users).Error; err != nil {
		return nil, dbError(err, "unable to get users")
	}
	return users, nil
}
