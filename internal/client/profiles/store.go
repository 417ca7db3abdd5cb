// Package profiles is the client adapter for the profiles table.
package profiles

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/rentable/internal/client/models"
)

var (
	ErrNotFound     = errors.New("profile not found")
	ErrMultipleRows = errors.New("more than one profile matched")
	ErrConflict     = errors.New("duplicate key value violates unique constraint")
)

// Store queries profiles by column equality. Single fails with ErrNotFound
// or ErrMultipleRows unless exactly one row matches; Insert reports a
// duplicate row as ErrConflict.
type Store interface {
	Select(ctx context.Context, column, value string) ([]models.Profile, error)
	Single(ctx context.Context, column, value string) (*models.Profile, error)
	Insert(ctx context.Context, p models.Profile) error
	Update(ctx context.Context, id string, patch models.ProfilePatch) error
}
