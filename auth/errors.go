package auth

import "errors"

// Credential errors.
var (
	// ErrInvalidToken indicates the token is malformed or has an invalid signature.
	ErrInvalidToken = errors.New("invalid token")

	// ErrTokenExpired indicates the token has expired.
	ErrTokenExpired = errors.New("token expired")

	// ErrSecretTooShort indicates the signing secret is too short.
	ErrSecretTooShort = errors.New("signing secret must be at least 32 bytes")

	// ErrMalformedKey indicates the gateway key format is invalid.
	ErrMalformedKey = errors.New("malformed gateway key")
)
