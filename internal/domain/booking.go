package domain

import (
	"regexp"
	"time"
)

type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

type Booking struct {
	ID         int64         `json:"bookingId"`
	UserID     int64         `json:"userId"`
	FlightID   int64         `json:"flightId"`
	SeatNumber string        `json:"seatNumber"`
	Status     BookingStatus `json:"bookingStatus"`
	TotalPrice float64       `json:"totalPrice"`
	CreatedAt  time.Time     `json:"bookingDate"`
	UpdatedAt  time.Time     `json:"-"`
}

// BookingDetail is a booking joined with its flight, as returned to callers.
type BookingDetail struct {
	BookingID     int64         `json:"bookingId"`
	UserID        int64         `json:"userId"`
	FlightID      int64         `json:"flightId"`
	FlightNumber  string        `json:"flightNumber"`
	AirlineName   string        `json:"airlineName"`
	DepartureCity string        `json:"departureCity"`
	ArrivalCity   string        `json:"arrivalCity"`
	DepartureTime time.Time     `json:"departureTime"`
	ArrivalTime   time.Time     `json:"arrivalTime"`
	SeatNumber    string        `json:"seatNumber"`
	Status        BookingStatus `json:"bookingStatus"`
	TotalPrice    float64       `json:"totalPrice"`
	BookingDate   time.Time     `json:"bookingDate"`
}

type BookingStats struct {
	TotalBookings     int `json:"totalBookings"`
	ConfirmedBookings int `json:"confirmedBookings"`
	CancelledBookings int `json:"cancelledBookings"`
	PendingBookings   int `json:"pendingBookings"`
}

// seatNumberRe matches one uppercase letter followed by digits, e.g. A1, B12.
var seatNumberRe = regexp.MustCompile(`^[A-Z]\d+$`)

func ValidSeatNumber(seat string) bool {
	return seatNumberRe.MatchString(seat)
}
