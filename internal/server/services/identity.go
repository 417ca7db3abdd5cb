// Package services contains server-side business logic. This file implements
// IdentityService: signup with emailed one-time codes, password and magic
// link sign-in, and issuing/refreshing JWTs plus server-stored refresh tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"time"

	"github.com/dmitrijs2005/rentable/internal/common"
	"github.com/dmitrijs2005/rentable/internal/cryptox"
	"github.com/dmitrijs2005/rentable/internal/dbx"
	"github.com/dmitrijs2005/rentable/internal/logging"
	"github.com/dmitrijs2005/rentable/internal/server/auth"
	"github.com/dmitrijs2005/rentable/internal/server/config"
	"github.com/dmitrijs2005/rentable/internal/server/models"
	"github.com/dmitrijs2005/rentable/internal/server/otp"
	"github.com/dmitrijs2005/rentable/internal/server/repositories/repomanager"
)

// MinPasswordLength is the shortest password SignUp accepts.
const MinPasswordLength = 6

// OTP verification types accepted by VerifyOTP. TypeEmail accepts a code
// issued for either flow.
const (
	TypeSignup    = "signup"
	TypeMagicLink = "magiclink"
	TypeEmail     = "email"
)

// Notifier delivers one-time codes.
type Notifier interface {
	SendSignupCode(ctx context.Context, email, code string) error
	SendMagicLink(ctx context.Context, email, code string) error
}

// Session is a freshly minted token pair and the user it belongs to.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    time.Duration
	ExpiresAt    time.Time
	User         *models.User
}

// IdentityService owns users, credentials and sessions.
type IdentityService struct {
	db                           *sql.DB
	repomanager                  repomanager.RepositoryManager
	otps                         otp.Store
	notifier                     Notifier
	logger                       logging.Logger
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
	otpLength                    int
	otpValidityDuration          time.Duration
	now                          func() time.Time
}

// NewIdentityService constructs an IdentityService using repositories, the
// OTP store, a notifier and server config.
func NewIdentityService(db *sql.DB, m repomanager.RepositoryManager, otps otp.Store, notifier Notifier,
	cfg *config.Config, logger logging.Logger) *IdentityService {
	return &IdentityService{
		db:                           db,
		repomanager:                  m,
		otps:                         otps,
		notifier:                     notifier,
		logger:                       logger,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
		otpLength:                    cfg.OTPLength,
		otpValidityDuration:          cfg.OTPValidityDuration,
		now:                          time.Now,
	}
}

// SignUp registers email with password and mails a confirmation code. An
// unconfirmed account is not an error: a new code is issued and the stored
// password is kept.
func (s *IdentityService) SignUp(ctx context.Context, email, password string) (*models.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if user.Confirmed() {
			return nil, ErrUserAlreadyRegistered
		}
	case errors.Is(err, common.ErrorNotFound):
		hash, err := cryptox.HashPassword([]byte(password))
		if err != nil {
			return nil, common.ErrorInternal
		}
		user, err = repo.Create(ctx, &models.User{Email: email, PasswordHash: hash})
		if err != nil {
			if errors.Is(err, common.ErrorConflict) {
				return nil, ErrUserAlreadyRegistered
			}
			return nil, fmt.Errorf("error creating user: %w", err)
		}
	default:
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if err := s.issueCode(ctx, otp.PurposeSignup, email); err != nil {
		return nil, err
	}
	return user, nil
}

// SignIn checks the password and mints a session. Unknown emails and wrong
// passwords are indistinguishable to the caller.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	email = common.NormalizeEmail(email)

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.CheckPassword(nil, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}
	if !cryptox.CheckPassword(user.PasswordHash, []byte(password)) {
		return nil, ErrInvalidCredentials
	}
	if !user.Confirmed() {
		return nil, ErrEmailNotConfirmed
	}

	return s.generateSession(ctx, user, s.db)
}

// VerifyOTP consumes a code and signs the user in. Any successful
// verification confirms the email.
func (s *IdentityService) VerifyOTP(ctx context.Context, email, token, otpType string) (*Session, error) {
	email = common.NormalizeEmail(email)

	var purposes []otp.Purpose
	switch otpType {
	case TypeSignup:
		purposes = []otp.Purpose{otp.PurposeSignup}
	case TypeMagicLink:
		purposes = []otp.Purpose{otp.PurposeMagicLink}
	case TypeEmail:
		purposes = []otp.Purpose{otp.PurposeSignup, otp.PurposeMagicLink}
	default:
		return nil, ErrInvalidOTPType
	}

	ok := false
	for _, p := range purposes {
		taken, err := s.otps.Take(ctx, p, email, token)
		if err != nil {
			return nil, fmt.Errorf("error checking code: %w", err)
		}
		if taken {
			ok = true
			break
		}
	}
	if !ok {
		return nil, ErrOTPInvalid
	}

	var session *Session
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)
		user, err := repo.GetByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrOTPInvalid
			}
			return fmt.Errorf("error searching user: %w", err)
		}
		if !user.Confirmed() {
			if user, err = repo.ConfirmEmail(ctx, user.ID, s.now().UTC()); err != nil {
				return fmt.Errorf("error confirming email: %w", err)
			}
		}
		session, err = s.generateSession(ctx, user, tx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Resend issues a new signup code. Unknown and already confirmed addresses
// get no mail and no error.
func (s *IdentityService) Resend(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "resend for unknown email")
			return nil
		}
		return fmt.Errorf("error searching user: %w", err)
	}
	if user.Confirmed() {
		s.logger.Debug(ctx, "resend for confirmed email", "user_id", user.ID)
		return nil
	}
	return s.issueCode(ctx, otp.PurposeSignup, email)
}

// SignInWithOTP mails a magic link to a confirmed user. Other addresses get
// no mail and no error.
func (s *IdentityService) SignInWithOTP(ctx context.Context, email string) error {
	email, err := normalizeEmail(email)
	if err != nil {
		return err
	}
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.logger.Debug(ctx, "magic link for unknown email")
			return nil
		}
		return fmt.Errorf("error searching user: %w", err)
	}
	if !user.Confirmed() {
		s.logger.Debug(ctx, "magic link for unconfirmed email", "user_id", user.ID)
		return nil
	}
	return s.issueCode(ctx, otp.PurposeMagicLink, email)
}

// RefreshToken validates a refresh token, rotates it transactionally, and
// returns a fresh session. Expired tokens yield ErrRefreshTokenExpired.
func (s *IdentityService) RefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	digest := cryptox.TokenDigest(refreshToken)
	token, err := s.repomanager.RefreshTokens(s.db).Find(ctx, digest)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("error searching refresh token: %w", err)
	}
	if token.Expires.Before(s.now()) {
		return nil, common.ErrRefreshTokenExpired
	}

	var session *Session
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.RefreshTokens(tx).Delete(ctx, digest); err != nil {
			return fmt.Errorf("error deleting refresh token: %w", err)
		}
		user, err := s.repomanager.Users(tx).GetByID(ctx, token.UserID)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return ErrInvalidRefreshToken
			}
			return fmt.Errorf("error searching user: %w", err)
		}
		session, err = s.generateSession(ctx, user, tx)
		return err
	}); err != nil {
		return nil, err
	}
	return session, nil
}

// SignOut revokes every refresh token of userID. Outstanding access tokens
// stay valid until they expire.
func (s *IdentityService) SignOut(ctx context.Context, userID string) error {
	n, err := s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("error revoking refresh tokens: %w", err)
	}
	s.logger.Debug(ctx, "signed out", "user_id", userID, "revoked", n)
	return nil
}

// GetUser returns the user behind an access token.
func (s *IdentityService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}

// --- helpers below ---

func normalizeEmail(email string) (string, error) {
	email = common.NormalizeEmail(email)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}

func (s *IdentityService) issueCode(ctx context.Context, purpose otp.Purpose, email string) error {
	code, err := otp.Generate(s.otpLength)
	if err != nil {
		return common.ErrorInternal
	}
	if err := s.otps.Put(ctx, purpose, email, code, s.otpValidityDuration); err != nil {
		return fmt.Errorf("error storing code: %w", err)
	}

	switch purpose {
	case otp.PurposeMagicLink:
		err = s.notifier.SendMagicLink(ctx, email, code)
	default:
		err = s.notifier.SendSignupCode(ctx, email, code)
	}
	if err != nil {
		s.logger.Error(ctx, "code delivery failed", "purpose", string(purpose), "error", err)
		return ErrEmailDelivery
	}
	return nil
}

func (s *IdentityService) generateAccessToken(user *models.User) (string, error) {
	return auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.accessTokenValidityDuration)
}

func (s *IdentityService) generateRefreshToken() (string, error) {
	return common.MakeRandHexString(32)
}

func (s *IdentityService) generateSession(ctx context.Context, user *models.User, tx dbx.DBTX) (*Session, error) {
	access, err := s.generateAccessToken(user)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := s.generateRefreshToken()
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, user.ID, cryptox.TokenDigest(refresh), s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.accessTokenValidityDuration,
		ExpiresAt:    s.now().Add(s.accessTokenValidityDuration),
		User:         user,
	}, nil
}
