package gateway

import "errors"

var (
	// ErrNetwork means no usable response arrived at all.
	ErrNetwork = errors.New("cinema api unreachable")

	// ErrNotFound maps a 404 from the cinema api.
	ErrNotFound = errors.New("not found")

	// ErrSeatConflict maps a 409 from the booking endpoint: a selected
	// seat was reserved by another client after the occupancy fetch.
	ErrSeatConflict = errors.New("seat already booked")

	// ErrUpstream covers every other non-2xx response.
	ErrUpstream = errors.New("cinema api error")
)
