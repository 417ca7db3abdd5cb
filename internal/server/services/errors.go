package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/rentable/internal/common"
)

// Identity errors. The transport layer turns them into status codes and the
// provider-style messages clients match on.
var (
	ErrUserAlreadyRegistered = errors.New("user already registered")
	ErrInvalidCredentials    = errors.New("invalid login credentials")
	ErrEmailNotConfirmed     = errors.New("email not confirmed")
	ErrOTPInvalid            = errors.New("token has expired or is invalid")
	ErrInvalidRefreshToken   = errors.New("invalid refresh token")
	ErrEmailDelivery         = errors.New("error sending email")

	ErrInvalidEmail   = fmt.Errorf("%w: unable to validate email address", common.ErrorValidation)
	ErrWeakPassword   = fmt.Errorf("%w: password should be at least %d characters", common.ErrorValidation, MinPasswordLength)
	ErrInvalidOTPType = fmt.Errorf("%w: unsupported verification type", common.ErrorValidation)
)

// Storage errors.
var (
	ErrObjectExists  = fmt.Errorf("%w: the resource already exists", common.ErrorConflict)
	ErrUnknownBucket = fmt.Errorf("%w: bucket not found", common.ErrorNotFound)
)
