package flights

import (
	"context"
	"fmt"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
)

type FlightUseCase interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, input SearchInput) ([]domain.Flight, error)
	Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error)
	Update(ctx context.Context, id int64, input UpdateFlightInput) (*domain.Flight, error)
	BookedSeats(ctx context.Context, flightID int64) ([]string, error)
}

type Cache interface {
	GetFlights(ctx context.Context) ([]domain.Flight, error)
	SetFlights(ctx context.Context, flights []domain.Flight) error
	InvalidateFlights(ctx context.Context) error
}

type SearchInput struct {
	DepartureCity string     `json:"departureCity"`
	ArrivalCity   string     `json:"arrivalCity"`
	DepartureDate *time.Time `json:"departureDate,omitempty"`
}

type CreateFlightInput struct {
	FlightNumber  string    `json:"flightNumber"`
	AirlineName   string    `json:"airlineName"`
	DepartureCity string    `json:"departureCity"`
	ArrivalCity   string    `json:"arrivalCity"`
	DepartureTime time.Time `json:"departureTime"`
	ArrivalTime   time.Time `json:"arrivalTime"`
	TotalSeats    int       `json:"totalSeats"`
	Price         float64   `json:"price"`
}

type UpdateFlightInput struct {
	AirlineName *string  `json:"airlineName,omitempty"`
	Price       *float64 `json:"price,omitempty"`
	Status      *string  `json:"status,omitempty"`
}

type FlightService struct {
	repo  repository.FlightRepository
	cache Cache
}

func NewFlightService(repo repository.FlightRepository, cache Cache) *FlightService {
	return &FlightService{repo: repo, cache: cache}
}

func (s *FlightService) List(ctx context.Context) ([]domain.Flight, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetFlights(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	flights, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetFlights(ctx, flights)
	}
	return flights, nil
}

func (s *FlightService) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) Search(ctx context.Context, input SearchInput) ([]domain.Flight, error) {
	if input.DepartureCity == "" || input.ArrivalCity == "" {
		return nil, fmt.Errorf("%w: departure and arrival cities are required", domain.ErrInvalidInput)
	}
	return s.repo.Search(ctx, repository.FlightSearch{
		DepartureCity: input.DepartureCity,
		ArrivalCity:   input.ArrivalCity,
		DepartureDate: input.DepartureDate,
	})
}

func (s *FlightService) Create(ctx context.Context, input CreateFlightInput) (*domain.Flight, error) {
	if input.FlightNumber == "" || input.AirlineName == "" || input.DepartureCity == "" ||
		input.ArrivalCity == "" || input.DepartureTime.IsZero() || input.ArrivalTime.IsZero() {
		return nil, fmt.Errorf("%w: all flight fields are required", domain.ErrInvalidInput)
	}
	if input.TotalSeats <= 0 {
		return nil, fmt.Errorf("%w: total seats must be greater than 0", domain.ErrInvalidInput)
	}
	if input.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be greater than 0", domain.ErrInvalidInput)
	}

	exists, err := s.repo.ExistsByNumber(ctx, input.FlightNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("%w: flight number already exists", domain.ErrInvalidInput)
	}

	flight := &domain.Flight{
		FlightNumber:  input.FlightNumber,
		AirlineName:   input.AirlineName,
		DepartureCity: input.DepartureCity,
		ArrivalCity:   input.ArrivalCity,
		DepartureTime: input.DepartureTime,
		ArrivalTime:   input.ArrivalTime,
		TotalSeats:    input.TotalSeats,
		Price:         input.Price,
	}
	if err := s.repo.Create(ctx, flight); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	return flight, nil
}

func (s *FlightService) Update(ctx context.Context, id int64, input UpdateFlightInput) (*domain.Flight, error) {
	upd := repository.FlightUpdate{AirlineName: input.AirlineName, Price: input.Price}
	if input.Price != nil && *input.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be greater than 0", domain.ErrInvalidInput)
	}
	if input.Status != nil {
		status := domain.FlightStatus(*input.Status)
		switch status {
		case domain.FlightStatusActive, domain.FlightStatusCancelled, domain.FlightStatusDelayed:
			upd.Status = &status
		default:
			return nil, fmt.Errorf("%w: invalid flight status", domain.ErrInvalidInput)
		}
	}
	if upd.AirlineName == nil && upd.Price == nil && upd.Status == nil {
		return nil, fmt.Errorf("%w: no fields to update", domain.ErrInvalidInput)
	}

	if err := s.repo.Update(ctx, id, upd); err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateFlights(ctx)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *FlightService) BookedSeats(ctx context.Context, flightID int64) ([]string, error) {
	return s.repo.BookedSeats(ctx, flightID)
}

var _ FlightUseCase = (*FlightService)(nil)
