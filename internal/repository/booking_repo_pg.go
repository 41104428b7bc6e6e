package repository

import (
	"context"
	"errors"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// SeatTakenTx reports whether a CONFIRMED booking already holds the
	// given seat on the flight. Only meaningful while the caller holds the
	// flight row lock.
	SeatTakenTx(ctx context.Context, tx pgx.Tx, flightID int64, seatNumber string) (bool, error)
	InsertConfirmedTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error
	// LockByIDTx reads the booking with FOR UPDATE, scoped to the owning
	// user. Returns domain.ErrBookingNotFound for a missing id or an
	// ownership mismatch alike.
	LockByIDTx(ctx context.Context, tx pgx.Tx, bookingID, userID int64) (*domain.Booking, error)
	MarkCancelledTx(ctx context.Context, tx pgx.Tx, bookingID int64) error

	GetDetail(ctx context.Context, bookingID, userID int64) (*domain.BookingDetail, error)
	ListByUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error)
	StatsByFlight(ctx context.Context, flightID int64) (*domain.BookingStats, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) SeatTakenTx(ctx context.Context, tx pgx.Tx, flightID int64, seatNumber string) (bool, error) {
	var taken bool
	err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE flight_id=$1 AND seat_number=$2 AND status='CONFIRMED')`, flightID, seatNumber).Scan(&taken)
	return taken, err
}

func (r *PGBookingRepository) InsertConfirmedTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	booking.Status = domain.BookingStatusConfirmed
	return tx.QueryRow(ctx, `INSERT INTO bookings (user_id, flight_id, seat_number, status, total_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		booking.UserID, booking.FlightID, booking.SeatNumber, booking.Status, booking.TotalPrice).
		Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)
}

func (r *PGBookingRepository) LockByIDTx(ctx context.Context, tx pgx.Tx, bookingID, userID int64) (*domain.Booking, error) {
	var b domain.Booking
	err := tx.QueryRow(ctx, `SELECT id, user_id, flight_id, seat_number, status, total_price, created_at, updated_at
		FROM bookings WHERE id=$1 AND user_id=$2 FOR UPDATE`, bookingID, userID).
		Scan(&b.ID, &b.UserID, &b.FlightID, &b.SeatNumber, &b.Status, &b.TotalPrice, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *PGBookingRepository) MarkCancelledTx(ctx context.Context, tx pgx.Tx, bookingID int64) error {
	_, err := tx.Exec(ctx, `UPDATE bookings SET status='CANCELLED', updated_at = now() WHERE id=$1`, bookingID)
	return err
}

const bookingDetailQuery = `SELECT b.id, b.user_id, b.flight_id, b.seat_number, b.status, b.total_price, b.created_at,
		f.flight_number, f.airline_name, f.departure_city, f.arrival_city, f.departure_time, f.arrival_time
	FROM bookings b
	JOIN flights f ON f.id = b.flight_id`

func scanBookingDetail(row pgx.Row) (*domain.BookingDetail, error) {
	var d domain.BookingDetail
	err := row.Scan(&d.BookingID, &d.UserID, &d.FlightID, &d.SeatNumber, &d.Status, &d.TotalPrice, &d.BookingDate,
		&d.FlightNumber, &d.AirlineName, &d.DepartureCity, &d.ArrivalCity, &d.DepartureTime, &d.ArrivalTime)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *PGBookingRepository) GetDetail(ctx context.Context, bookingID, userID int64) (*domain.BookingDetail, error) {
	d, err := scanBookingDetail(r.db.QueryRow(ctx, bookingDetailQuery+` WHERE b.id=$1 AND b.user_id=$2`, bookingID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	return d, err
}

func (r *PGBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	rows, err := r.db.Query(ctx, bookingDetailQuery+` WHERE b.user_id=$1 ORDER BY b.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]domain.BookingDetail, 0)
	for rows.Next() {
		d, err := scanBookingDetail(rows)
		if err != nil {
			return nil, err
		}
		details = append(details, *d)
	}
	return details, rows.Err()
}

func (r *PGBookingRepository) StatsByFlight(ctx context.Context, flightID int64) (*domain.BookingStats, error) {
	var s domain.BookingStats
	err := r.db.QueryRow(ctx, `SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'CONFIRMED'),
			COUNT(*) FILTER (WHERE status = 'CANCELLED'),
			COUNT(*) FILTER (WHERE status = 'PENDING')
		FROM bookings WHERE flight_id=$1`, flightID).
		Scan(&s.TotalBookings, &s.ConfirmedBookings, &s.CancelledBookings, &s.PendingBookings)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
