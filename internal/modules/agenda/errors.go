package agenda

import "errors"

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("agenda not found")
	ErrForbidden  = errors.New("actor does not own this agenda")
)
