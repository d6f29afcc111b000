package db

import "errors"

// Terminal error kinds. Handlers classify these with errors.Is and
// translate them into HTTP responses; none of them is retryable.
var (
	ErrValidation      = errors.New("missing or malformed input")
	ErrNotFound        = errors.New("not found")
	ErrForbidden       = errors.New("not authorized for this operation")
	ErrAlreadyReported = errors.New("post already reported by this user")
	ErrInvalidState    = errors.New("after image requires a resolved post")
)
