// Package users stores identity rows: email, password hash and the
// confirmation timestamp.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/rentable/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	// ConfirmEmail sets email_confirmed_at if it is still null and returns
	// the updated row.
	ConfirmEmail(ctx context.Context, id string, at time.Time) (*models.User, error)
}
