package service

import "errors"

var (
	// ErrNotFound covers a missing member or task and a task that is not in
	// the state the operation needs, such as completing one already done.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for bad input such as an empty description.
	ErrValidation = errors.New("validation failed")

	ErrAlreadyExists     = errors.New("already exists")
	ErrLastMember        = errors.New("cannot remove the last member")
	ErrInsufficientStars = errors.New("not enough stars")
	ErrUnknownItem       = errors.New("unknown item")
)
