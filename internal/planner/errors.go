package planner

import "errors"

var (
	// ErrNotFound indicates the requested entity does not exist for this user.
	ErrNotFound = errors.New("not found")

	// ErrTitleRequired indicates a title was empty or whitespace-only.
	ErrTitleRequired = errors.New("title is required")

	// ErrTitleTooLong indicates a title exceeded MaxTitleLength runes.
	ErrTitleTooLong = errors.New("title too long")
)
