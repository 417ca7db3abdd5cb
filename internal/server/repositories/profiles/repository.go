// Package profiles stores the public profile rows created after signup.
package profiles

import (
	"context"

	"github.com/dmitrijs2005/rentable/internal/server/models"
)

// Filterable columns for Select.
const (
	ColumnID    = "id"
	ColumnEmail = "email"
)

type Repository interface {
	// Select returns the rows whose column equals value. Only ColumnID and
	// ColumnEmail are accepted; anything else is common.ErrorValidation.
	Select(ctx context.Context, column, value string) ([]models.Profile, error)
	// Insert fails with common.ErrorConflict when the id or email is taken.
	Insert(ctx context.Context, p *models.Profile) error
	// Update applies the non-nil fields of patch and returns the number of
	// rows changed.
	Update(ctx context.Context, id string, patch models.ProfilePatch) (int64, error)
}
