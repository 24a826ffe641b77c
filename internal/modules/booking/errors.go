package booking

import "errors"

var (
	// ErrEmptySelection is a precondition failure: the submit action must
	// be disabled while no seat is selected.
	ErrEmptySelection = errors.New("no seats selected")

	// ErrFetch means the page load failed before Ready; blocking.
	ErrFetch = errors.New("booking page load failed")

	// ErrSeatConflict means the server rejected the booking because a
	// selected seat was taken by another client. Recoverable: the visitor
	// deselects the seat and retries.
	ErrSeatConflict = errors.New("selected seat is no longer available")

	// ErrBooking is any other booking rejection. Recoverable by resubmit.
	ErrBooking = errors.New("booking submission failed")

	// ErrCheckout means the booking was created but payment could not
	// start. The booking id stays available for a payment retry.
	ErrCheckout = errors.New("payment could not be started")
)
