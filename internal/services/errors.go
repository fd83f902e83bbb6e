// internal/services/errors.go
package services

import "errors"

var (
	ErrProductNotFound    = errors.New("product not found")
	ErrSNSContentNotFound = errors.New("sns content not found")
	ErrImportJobNotFound  = errors.New("import job not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username or email already exists")
	ErrUnknownPlatform    = errors.New("unsupported platform")
)
