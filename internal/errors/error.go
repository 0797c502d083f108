package errors

import (
	"errors"
)

var (
	ErrEmptyAuth        = errors.New("missing authorization")
	ErrEmptySubject     = errors.New("missing subject")
	ErrTokenInvalid     = errors.New("invalid token")
	ErrForbidden        = errors.New("insufficient role")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExist        = errors.New("user already exist")
	ErrPasswordMismatch = errors.New("password mismatch")
	ErrProductExist     = errors.New("product already exist")
	ErrProductNotFound  = errors.New("product not found")
	ErrOutOfStock       = errors.New("product is out of stock")
)
