package domain

import "errors"

var (
	// ErrUnknownSelector is returned when an event's selector does not map
	// to any known event kind for its contract.
	ErrUnknownSelector = errors.New("unknown event selector")

	// ErrMalformedEvent is returned when an event's keys or data do not
	// match the expected shape for its selector.
	ErrMalformedEvent = errors.New("malformed event payload")
)
