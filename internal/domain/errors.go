package domain

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or belongs to a
	// different operation than requested.
	ErrNotFound = errors.New("record not found")

	// ErrInvalidStateTransition is returned when a draft is confirmed or
	// rejected after leaving the PENDING state.
	ErrInvalidStateTransition = errors.New("invalid draft state transition")

	// ErrRouteTooShort is returned when a spatial computation needs a route
	// with at least two waypoints.
	ErrRouteTooShort = errors.New("route needs at least two waypoints")
)
