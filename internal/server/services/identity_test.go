package services

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/cryptox"
	"github.com/dmitrijs2005/rentable/internal/logging"
	"github.com/dmitrijs2005/rentable/internal/server/auth"
	"github.com/dmitrijs2005/rentable/internal/server/config"
	"github.com/dmitrijs2005/rentable/internal/server/models"
	"github.com/dmitrijs2005/rentable/internal/server/otp"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	cryptox.PasswordCost = bcrypt.MinCost
}

type identityFixture struct {
	svc      *IdentityService
	mock     sqlmock.Sqlmock
	users    *fakeUsersRepo
	refresh  *fakeRefreshRepo
	otps     *otp.MemoryStore
	notifier *fakeNotifier
}

func newIdentityFixture(t *testing.T, users ...*models.User) *identityFixture {
	t.Helper()
	db, mock := newSQLMockDB(t)
	t.Cleanup(func() { db.Close() })

	f := &identityFixture{
		mock:     mock,
		users:    newFakeUsersRepo(users...),
		refresh:  &fakeRefreshRepo{},
		otps:     otp.NewMemoryStore(time.Hour),
		notifier: newFakeNotifier(),
	}
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
		OTPLength:                    6,
		OTPValidityDuration:          time.Hour,
	}
	rm := &fakeRepoManager{u: f.users, r: f.refresh, p: &fakeProfilesRepo{}}
	f.svc = NewIdentityService(db, rm, f.otps, f.notifier, cfg, logging.Discard())
	return f
}

func hashed(t *testing.T, password string) []byte {
	t.Helper()
	h, err := cryptox.HashPassword([]byte(password))
	require.NoError(t, err)
	return h
}

func confirmedUser(t *testing.T, id, email, password string) *models.User {
	now := time.Now().Add(-time.Hour)
	return &models.User{ID: id, Email: email, PasswordHash: hashed(t, password), EmailConfirmedAt: &now}
}

func pendingUser(t *testing.T, id, email, password string) *models.User {
	return &models.User{ID: id, Email: email, PasswordHash: hashed(t, password)}
}

func TestSignUp_NewUser(t *testing.T) {
	f := newIdentityFixture(t)

	u, err := f.svc.SignUp(context.Background(), "  Ann@Example.com ", "secret1")
	require.NoError(t, err)
	require.Equal(t, "ann@example.com", u.Email)
	require.False(t, u.Confirmed())
	require.True(t, cryptox.CheckPassword(u.PasswordHash, []byte("secret1")))

	code := f.notifier.signup["ann@example.com"]
	require.Len(t, code, 6)
	ok, err := f.otps.Take(context.Background(), otp.PurposeSignup, "ann@example.com", code)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestSignUp_ExistingUsers(t *testing.T) {
	f := newIdentityFixture(t,
		confirmedUser(t, "u1", "done@example.com", "secret1"),
		pendingUser(t, "u2", "pending@example.com", "secret1"),
	)
	ctx := context.Background()

	_, err := f.svc.SignUp(ctx, "done@example.com", "other-pass")
	require.ErrorIs(t, err, ErrUserAlreadyRegistered)
	require.Empty(t, f.notifier.signup)

	u, err := f.svc.SignUp(ctx, "pending@example.com", "other-pass")
	require.NoError(t, err)
	require.Equal(t, "u2", u.ID)
	require.Zero(t, f.users.created)
	require.NotEmpty(t, f.notifier.signup["pending@example.com"])
}

func TestSignUp_Errors(t *testing.T) {
	ctx := context.Background()

	f := newIdentityFixture(t)
	_, err := f.svc.SignUp(ctx, "not-an-email", "secret1")
	require.ErrorIs(t, err, ErrInvalidEmail)
	require.ErrorIs(t, err, common.ErrorValidation)

	_, err = f.svc.SignUp(ctx, "Ann <a@b.com>", "secret1")
	require.ErrorIs(t, err, ErrInvalidEmail)

	_, err = f.svc.SignUp(ctx, "a@b.com", "12345")
	require.ErrorIs(t, err, ErrWeakPassword)

	f.users.createErr = common.ErrorConflict
	_, err = f.svc.SignUp(ctx, "a@b.com", "secret1")
	require.ErrorIs(t, err, ErrUserAlreadyRegistered)

	f.users.createErr = errBoom{}
	_, err = f.svc.SignUp(ctx, "a@b.com", "secret1")
	require.ErrorContains(t, err, "error creating user: boom")

	f.users.createErr = nil
	f.users.getErr = errBoom{}
	_, err = f.svc.SignUp(ctx, "a@b.com", "secret1")
	require.ErrorContains(t, err, "error searching user: boom")

	f2 := newIdentityFixture(t)
	f2.notifier.err = errors.New("smtp down")
	_, err = f2.svc.SignUp(ctx, "a@b.com", "secret1")
	require.ErrorIs(t, err, ErrEmailDelivery)
}

func TestSignIn(t *testing.T) {
	f := newIdentityFixture(t,
		confirmedUser(t, "u1", "done@example.com", "secret1"),
		pendingUser(t, "u2", "pending@example.com", "secret1"),
	)
	ctx := context.Background()

	_, err := f.svc.SignIn(ctx, "nobody@example.com", "secret1")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.SignIn(ctx, "done@example.com", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.SignIn(ctx, "pending@example.com", "wrong-pass")
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.SignIn(ctx, "pending@example.com", "secret1")
	require.ErrorIs(t, err, ErrEmailNotConfirmed)

	s, err := f.svc.SignIn(ctx, "DONE@example.com", "secret1")
	require.NoError(t, err)
	require.Equal(t, "u1", s.User.ID)
	require.Equal(t, time.Hour, s.ExpiresIn)
	require.Len(t, f.refresh.created, 1)
	require.Equal(t, cryptox.TokenDigest(s.RefreshToken), f.refresh.created[0])

	claims, err := auth.ParseToken(s.AccessToken, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, "u1", claims.UserID)
	require.Equal(t, "done@example.com", claims.Email)

	f.users.getErr = errBoom{}
	_, err = f.svc.SignIn(ctx, "done@example.com", "secret1")
	require.ErrorIs(t, err, common.ErrorInternal)
}

func TestVerifyOTP_SignupConfirms(t *testing.T) {
	f := newIdentityFixture(t, pendingUser(t, "u2", "pending@example.com", "secret1"))
	ctx := context.Background()
	require.NoError(t, f.svc.Resend(ctx, "pending@example.com"))
	code := f.notifier.signup["pending@example.com"]

	// a wrong code does not burn the right one
	_, err := f.svc.VerifyOTP(ctx, "pending@example.com", "000000x", TypeSignup)
	require.ErrorIs(t, err, ErrOTPInvalid)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	s, err := f.svc.VerifyOTP(ctx, "pending@example.com", code, TypeSignup)
	require.NoError(t, err)
	require.True(t, s.User.Confirmed())
	require.Equal(t, 1, f.users.confirmed)
	require.NoError(t, f.mock.ExpectationsWereMet())

	_, err = f.svc.VerifyOTP(ctx, "pending@example.com", code, TypeSignup)
	require.ErrorIs(t, err, ErrOTPInvalid)
}

func TestVerifyOTP_Types(t *testing.T) {
	f := newIdentityFixture(t, confirmedUser(t, "u1", "done@example.com", "secret1"))
	ctx := context.Background()

	require.NoError(t, f.svc.SignInWithOTP(ctx, "done@example.com"))
	code := f.notifier.magic["done@example.com"]
	require.NotEmpty(t, code)

	_, err := f.svc.VerifyOTP(ctx, "done@example.com", code, TypeSignup)
	require.ErrorIs(t, err, ErrOTPInvalid)

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	s, err := f.svc.VerifyOTP(ctx, "done@example.com", code, TypeEmail)
	require.NoError(t, err)
	require.Equal(t, "u1", s.User.ID)
	require.Zero(t, f.users.confirmed)

	_, err = f.svc.VerifyOTP(ctx, "done@example.com", code, "recovery")
	require.ErrorIs(t, err, ErrInvalidOTPType)
}

func TestVerifyOTP_SessionFailureRollsBack(t *testing.T) {
	f := newIdentityFixture(t, pendingUser(t, "u2", "pending@example.com", "secret1"))
	ctx := context.Background()
	require.NoError(t, f.otps.Put(ctx, otp.PurposeSignup, "pending@example.com", "123456", time.Minute))

	f.refresh.createErr = errBoom{}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	_, err := f.svc.VerifyOTP(ctx, "pending@example.com", "123456", TypeSignup)
	require.ErrorIs(t, err, common.ErrorInternal)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestResendAndMagicLink_Silent(t *testing.T) {
	f := newIdentityFixture(t,
		confirmedUser(t, "u1", "done@example.com", "secret1"),
		pendingUser(t, "u2", "pending@example.com", "secret1"),
	)
	ctx := context.Background()

	require.NoError(t, f.svc.Resend(ctx, "nobody@example.com"))
	require.NoError(t, f.svc.Resend(ctx, "done@example.com"))
	require.Empty(t, f.notifier.signup)

	require.NoError(t, f.svc.SignInWithOTP(ctx, "nobody@example.com"))
	require.NoError(t, f.svc.SignInWithOTP(ctx, "pending@example.com"))
	require.Empty(t, f.notifier.magic)

	require.ErrorIs(t, f.svc.Resend(ctx, "bad"), ErrInvalidEmail)
	require.ErrorIs(t, f.svc.SignInWithOTP(ctx, "bad"), ErrInvalidEmail)
}

func TestRefreshToken_Success(t *testing.T) {
	f := newIdentityFixture(t, confirmedUser(t, "u1", "done@example.com", "secret1"))
	f.refresh.findOut = &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(10 * time.Minute)}
	f.mock.ExpectBegin()
	f.mock.ExpectCommit()

	s, err := f.svc.RefreshToken(context.Background(), "refresh-xyz")
	require.NoError(t, err)
	require.NotEmpty(t, s.AccessToken)
	require.NotEqual(t, "refresh-xyz", s.RefreshToken)
	require.Equal(t, []string{cryptox.TokenDigest("refresh-xyz")}, f.refresh.deleted)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRefreshToken_Expired(t *testing.T) {
	f := newIdentityFixture(t)
	f.refresh.findOut = &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(-time.Minute)}

	_, err := f.svc.RefreshToken(context.Background(), "r")
	require.ErrorIs(t, err, common.ErrRefreshTokenExpired)
}

func TestRefreshToken_FindErr(t *testing.T) {
	f := newIdentityFixture(t)
	f.refresh.findErr = common.ErrorNotFound
	_, err := f.svc.RefreshToken(context.Background(), "r")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)

	f.refresh.findErr = errBoom{}
	_, err = f.svc.RefreshToken(context.Background(), "r")
	require.Regexp(t, regexp.MustCompile(`error searching refresh token: .*boom`), err.Error())
}

func TestRefreshToken_DeleteErr(t *testing.T) {
	f := newIdentityFixture(t, confirmedUser(t, "u1", "done@example.com", "secret1"))
	f.refresh.findOut = &models.RefreshToken{UserID: "u1", Expires: time.Now().Add(10 * time.Minute)}
	f.refresh.delErr = errBoom{}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.RefreshToken(context.Background(), "r")
	require.Regexp(t, regexp.MustCompile(`error deleting refresh token: .*boom`), err.Error())
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestRefreshToken_UserGone(t *testing.T) {
	f := newIdentityFixture(t)
	f.refresh.findOut = &models.RefreshToken{UserID: "ghost", Expires: time.Now().Add(10 * time.Minute)}
	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.svc.RefreshToken(context.Background(), "r")
	require.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestSignOutAndGetUser(t *testing.T) {
	f := newIdentityFixture(t, confirmedUser(t, "u1", "done@example.com", "secret1"))
	ctx := context.Background()

	require.NoError(t, f.svc.SignOut(ctx, "u1"))
	require.Equal(t, []string{"u1"}, f.refresh.deletedUsers)

	f.refresh.delErr = errBoom{}
	require.ErrorContains(t, f.svc.SignOut(ctx, "u1"), "boom")

	u, err := f.svc.GetUser(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "done@example.com", u.Email)

	_, err = f.svc.GetUser(ctx, "ghost")
	require.ErrorIs(t, err, common.ErrorUnauthorized)
}
