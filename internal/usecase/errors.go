package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNoEntities            = errors.New("no entities extracted from any source")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
