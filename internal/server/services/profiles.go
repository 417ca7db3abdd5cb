package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/server/models"
	profilesrepo "github.com/dmitrijs2005/rentable/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/rentable/internal/server/repositories/repomanager"
)

// ProfileService serves the profiles table with row-level rules: anyone may
// read, a user may only insert or update their own row.
type ProfileService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewProfileService(db *sql.DB, m repomanager.RepositoryManager) *ProfileService {
	return &ProfileService{db: db, repomanager: m, now: time.Now}
}

// Select returns rows where column equals value.
func (s *ProfileService) Select(ctx context.Context, column, value string) ([]models.Profile, error) {
	if column == profilesrepo.ColumnEmail {
		value = common.NormalizeEmail(value)
	}
	rows, err := s.repomanager.Profiles(s.db).Select(ctx, column, value)
	if err != nil {
		return nil, fmt.Errorf("error selecting profiles: %w", err)
	}
	return rows, nil
}

// Insert creates callerID's profile. A row for another user is forbidden.
func (s *ProfileService) Insert(ctx context.Context, callerID string, p *models.Profile) error {
	if p.ID == "" || p.ID != callerID {
		return common.ErrorForbidden
	}
	if p.UserType == "" {
		p.UserType = models.UserTypeTenant
	}
	if p.UserType != models.UserTypeTenant && p.UserType != models.UserTypeLandlord {
		return fmt.Errorf("%w: unknown user type %q", common.ErrorValidation, p.UserType)
	}
	p.Email = common.NormalizeEmail(p.Email)
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now().UTC()
	}
	if err := s.repomanager.Profiles(s.db).Insert(ctx, p); err != nil {
		return fmt.Errorf("error inserting profile: %w", err)
	}
	return nil
}

// Update applies patch to callerID's own row and reports how many rows
// changed.
func (s *ProfileService) Update(ctx context.Context, callerID, id string, patch models.ProfilePatch) (int64, error) {
	if id != callerID {
		return 0, common.ErrorForbidden
	}
	if patch.UserType != nil && *patch.UserType != models.UserTypeTenant && *patch.UserType != models.UserTypeLandlord {
		return 0, fmt.Errorf("%w: unknown user type %q", common.ErrorValidation, *patch.UserType)
	}
	if patch.Empty() {
		return 0, nil
	}
	n, err := s.repomanager.Profiles(s.db).Update(ctx, id, patch)
	if err != nil {
		return 0, fmt.Errorf("error updating profile: %w", err)
	}
	return n, nil
}
