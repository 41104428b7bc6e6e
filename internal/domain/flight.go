package domain

import "time"

type FlightStatus string

const (
	FlightStatusActive    FlightStatus = "ACTIVE"
	FlightStatusCancelled FlightStatus = "CANCELLED"
	FlightStatusDelayed   FlightStatus = "DELAYED"
)

type Flight struct {
	ID             int64        `json:"flightId"`
	FlightNumber   string       `json:"flightNumber"`
	AirlineName    string       `json:"airlineName"`
	DepartureCity  string       `json:"departureCity"`
	ArrivalCity    string       `json:"arrivalCity"`
	DepartureTime  time.Time    `json:"departureTime"`
	ArrivalTime    time.Time    `json:"arrivalTime"`
	TotalSeats     int          `json:"totalSeats"`
	AvailableSeats int          `json:"availableSeats"`
	Price          float64      `json:"price"`
	Status         FlightStatus `json:"status"`
	CreatedAt      time.Time    `json:"-"`
	UpdatedAt      time.Time    `json:"-"`
}
