// Package common contains shared constants and sentinel errors used across
// Filehaven components.
package common

import "errors"

var (

	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// service specific errors
	ErrorInternal           = errors.New("internal error")
	ErrorUnauthorized       = errors.New("unauthorized")
	ErrorEmailTaken         = errors.New("email already taken")
	ErrorNameTaken          = errors.New("name already taken")
	ErrorInvalidCredentials = errors.New("invalid credentials")
	ErrorCaptchaFailed      = errors.New("captcha verification failed")
)
