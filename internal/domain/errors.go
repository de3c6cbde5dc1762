package domain

import "errors"

var (
	// ErrInvalidArgument marks input rejected by validation.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidOperation marks a request that cannot be served with the stored data,
	// such as assigning a variant for an experiment that has none.
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
)
