package booking

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/kafka"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type BookingUseCase interface {
	CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.BookingDetail, error)
	GetBooking(ctx context.Context, bookingID, userID int64) (*domain.BookingDetail, error)
	ListUserBookings(ctx context.Context, userID int64) ([]domain.BookingDetail, error)
	CancelBooking(ctx context.Context, bookingID, userID int64) error
	FlightStats(ctx context.Context, flightID int64) (*domain.BookingStats, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateBookingInput struct {
	UserID     int64  `json:"userId"`
	FlightID   int64  `json:"flightId"`
	SeatNumber string `json:"seatNumber"`
}

type BookingService struct {
	tx                 repository.TxRunner
	bookings           repository.BookingRepository
	flights            repository.FlightRepository
	users              repository.UserRepository
	producer           Producer
	eventsTopic        string
	notificationsTopic string
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

func NewBookingService(
	tx repository.TxRunner,
	bookings repository.BookingRepository,
	flights repository.FlightRepository,
	users repository.UserRepository,
	producer Producer,
	eventsTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		tx:          tx,
		bookings:    bookings,
		flights:     flights,
		users:       users,
		producer:    producer,
		eventsTopic: eventsTopic,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// CreateBooking books one seat on a flight. The whole check-and-mutate
// sequence runs inside a single transaction holding the flight row lock,
// so concurrent attempts on the same flight serialize and at most one
// wins a contested seat.
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*domain.BookingDetail, error) {
	if input.UserID == 0 || input.FlightID == 0 || input.SeatNumber == "" {
		return nil, fmt.Errorf("%w: user id, flight id and seat number are required", domain.ErrInvalidInput)
	}
	if !domain.ValidSeatNumber(input.SeatNumber) {
		return nil, fmt.Errorf("%w: invalid seat number format (e.g. A1, B12)", domain.ErrInvalidInput)
	}

	var booking domain.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		exists, err := s.users.ExistsTx(ctx, tx, input.UserID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.ErrUserNotFound
		}

		// Serialization point: every booking attempt on this flight queues
		// behind the row lock until the holder commits or rolls back.
		flight, err := s.flights.LockActiveTx(ctx, tx, input.FlightID)
		if err != nil {
			return err
		}
		if flight.AvailableSeats <= 0 {
			return domain.ErrNoSeatsAvailable
		}

		taken, err := s.bookings.SeatTakenTx(ctx, tx, input.FlightID, input.SeatNumber)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrSeatAlreadyBooked
		}

		booking = domain.Booking{
			UserID:     input.UserID,
			FlightID:   input.FlightID,
			SeatNumber: input.SeatNumber,
			TotalPrice: flight.Price,
		}
		if err := s.bookings.InsertConfirmedTx(ctx, tx, &booking); err != nil {
			return err
		}
		return s.flights.DecrementSeatsTx(ctx, tx, input.FlightID)
	})
	if err != nil {
		return nil, translateLockErr(err)
	}

	detail, err := s.bookings.GetDetail(ctx, booking.ID, input.UserID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, "booking_created", &booking)
	return detail, nil
}

func (s *BookingService) GetBooking(ctx context.Context, bookingID, userID int64) (*domain.BookingDetail, error) {
	return s.bookings.GetDetail(ctx, bookingID, userID)
}

func (s *BookingService) ListUserBookings(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// CancelBooking flips a CONFIRMED booking to CANCELLED and restores the
// seat. The booking row is locked for the duration; the flight increment
// is a single atomic column update and needs no flight lock.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, userID int64) error {
	var cancelled domain.Booking
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx pgx.Tx) error {
		booking, err := s.bookings.LockByIDTx(ctx, tx, bookingID, userID)
		if err != nil {
			return err
		}
		if booking.Status == domain.BookingStatusCancelled {
			return domain.ErrAlreadyCancelled
		}
		if err := s.bookings.MarkCancelledTx(ctx, tx, booking.ID); err != nil {
			return err
		}
		if err := s.flights.RestoreSeatTx(ctx, tx, booking.FlightID); err != nil {
			return err
		}
		cancelled = *booking
		cancelled.Status = domain.BookingStatusCancelled
		return nil
	})
	if err != nil {
		return translateLockErr(err)
	}

	s.publish(ctx, "booking_cancelled", &cancelled)
	return nil
}

func (s *BookingService) FlightStats(ctx context.Context, flightID int64) (*domain.BookingStats, error) {
	return s.bookings.StatsByFlight(ctx, flightID)
}

func (s *BookingService) publish(ctx context.Context, eventType string, booking *domain.Booking) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.BookingEvent{
		Type:       eventType,
		BookingID:  booking.ID,
		UserID:     booking.UserID,
		FlightID:   booking.FlightID,
		SeatNumber: booking.SeatNumber,
		Status:     string(booking.Status),
		TotalPrice: booking.TotalPrice,
	}
	key := fmt.Sprintf("booking-%d", booking.ID)
	if err := s.producer.Publish(ctx, s.eventsTopic, key, event); err != nil {
		log.Printf("publish %s event for booking %d: %v", eventType, booking.ID, err)
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
			log.Printf("publish %s notification for booking %d: %v", eventType, booking.ID, err)
		}
	}
}

// translateLockErr maps postgres lock-wait failures (statement timeout,
// NOWAIT lock denial) to the caller-facing timeout error.
func translateLockErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "57014", "55P03":
			return domain.ErrSeatLockTimeout
		}
	}
	return err
}

var _ BookingUseCase = (*BookingService)(nil)
