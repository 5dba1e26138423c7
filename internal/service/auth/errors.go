package auth

import "errors"

// Token validation errors. Middleware maps all of them to 401.
var (
	ErrMissingToken     = errors.New("authentication token is missing")
	ErrInvalidToken     = errors.New("invalid authentication token")
	ErrExpiredToken     = errors.New("authentication token has expired")
	ErrTokenNotYetValid = errors.New("authentication token not yet valid")
	// ErrInvalidSubject means the signature checked out but sub is not an owner UUID.
	ErrInvalidSubject = errors.New("token subject is not a valid owner id")
)

// ErrWeakSecret is returned by the constructors when the signing secret is
// shorter than MinSecretLength.
var ErrWeakSecret = errors.New("jwt secret is too short")
