package domain

import "errors"

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUserNotFound      = errors.New("user not found")
	ErrFlightNotFound    = errors.New("flight not found or is not active")
	ErrNoSeatsAvailable  = errors.New("no seats available on this flight")
	ErrSeatAlreadyBooked = errors.New("seat already booked")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrAlreadyCancelled  = errors.New("booking is already cancelled")
	ErrSeatLockTimeout   = errors.New("timed out waiting for seat lock")
)
