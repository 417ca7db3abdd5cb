package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/server/models"
	profilesrepo "github.com/dmitrijs2005/rentable/internal/server/repositories/profiles"
	"github.com/stretchr/testify/require"
)

func newProfileService(t *testing.T) (*ProfileService, *fakeProfilesRepo) {
	t.Helper()
	db, _ := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })
	repo := &fakeProfilesRepo{}
	return NewProfileService(db, &fakeRepoManager{p: repo}), repo
}

func strPtr(s string) *string { return &s }

func TestProfileSelect(t *testing.T) {
	svc, repo := newProfileService(t)
	repo.rows = []models.Profile{{ID: "u1", Email: "a@b.com"}}

	rows, err := svc.Select(context.Background(), profilesrepo.ColumnEmail, " A@B.com")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "a@b.com", repo.value)

	repo.selectErr = common.ErrorValidation
	_, err = svc.Select(context.Background(), "password", "x")
	require.ErrorIs(t, err, common.ErrorValidation)
}

func TestProfileInsert(t *testing.T) {
	svc, repo := newProfileService(t)
	ctx := context.Background()

	err := svc.Insert(ctx, "u1", &models.Profile{ID: "u2", Email: "a@b.com"})
	require.ErrorIs(t, err, common.ErrorForbidden)

	err = svc.Insert(ctx, "u1", &models.Profile{ID: "u1", Email: "a@b.com", UserType: "admin"})
	require.ErrorIs(t, err, common.ErrorValidation)

	require.NoError(t, svc.Insert(ctx, "u1", &models.Profile{ID: "u1", Email: "A@b.com"}))
	require.Len(t, repo.inserted, 1)
	require.Equal(t, models.UserTypeTenant, repo.inserted[0].UserType)
	require.Equal(t, "a@b.com", repo.inserted[0].Email)
	require.False(t, repo.inserted[0].CreatedAt.IsZero())

	repo.insertErr = common.ErrorConflict
	err = svc.Insert(ctx, "u1", &models.Profile{ID: "u1", Email: "a@b.com"})
	require.ErrorIs(t, err, common.ErrorConflict)
}

func TestProfileUpdate(t *testing.T) {
	svc, repo := newProfileService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, "u1", "u2", models.ProfilePatch{FullName: strPtr("Ann")})
	require.ErrorIs(t, err, common.ErrorForbidden)

	_, err = svc.Update(ctx, "u1", "u1", models.ProfilePatch{UserType: strPtr("admin")})
	require.ErrorIs(t, err, common.ErrorValidation)

	n, err := svc.Update(ctx, "u1", "u1", models.ProfilePatch{})
	require.NoError(t, err)
	require.Zero(t, n)
	require.Empty(t, repo.patches)

	n, err = svc.Update(ctx, "u1", "u1", models.ProfilePatch{UserType: strPtr(models.UserTypeLandlord)})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}
