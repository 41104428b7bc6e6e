package repository

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type FlightSearch struct {
	DepartureCity string
	ArrivalCity   string
	DepartureDate *time.Time
}

type FlightUpdate struct {
	AirlineName *string
	Price       *float64
	Status      *domain.FlightStatus
}

type FlightRepository interface {
	List(ctx context.Context) ([]domain.Flight, error)
	GetByID(ctx context.Context, id int64) (*domain.Flight, error)
	Search(ctx context.Context, criteria FlightSearch) ([]domain.Flight, error)
	Create(ctx context.Context, flight *domain.Flight) error
	Update(ctx context.Context, id int64, upd FlightUpdate) error
	ExistsByNumber(ctx context.Context, flightNumber string) (bool, error)
	BookedSeats(ctx context.Context, flightID int64) ([]string, error)

	// LockActiveTx reads the flight row with FOR UPDATE, restricted to
	// ACTIVE flights. Returns domain.ErrFlightNotFound when no row matches.
	LockActiveTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Flight, error)
	DecrementSeatsTx(ctx context.Context, tx pgx.Tx, id int64) error
	RestoreSeatTx(ctx context.Context, tx pgx.Tx, id int64) error
}

type PGFlightRepository struct {
	db *pgxpool.Pool
}

func NewFlightRepository(db *pgxpool.Pool) FlightRepository {
	return &PGFlightRepository{db: db}
}

const flightColumns = `id, flight_number, airline_name, departure_city, arrival_city, departure_time, arrival_time, total_seats, available_seats, price, status, created_at, updated_at`

func scanFlight(row pgx.Row) (*domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(&f.ID, &f.FlightNumber, &f.AirlineName, &f.DepartureCity, &f.ArrivalCity,
		&f.DepartureTime, &f.ArrivalTime, &f.TotalSeats, &f.AvailableSeats, &f.Price, &f.Status,
		&f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func collectFlights(rows pgx.Rows) ([]domain.Flight, error) {
	defer rows.Close()
	flights := make([]domain.Flight, 0)
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, *f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	rows, err := r.db.Query(ctx, `SELECT `+flightColumns+` FROM flights WHERE status = 'ACTIVE' ORDER BY departure_time ASC`)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	f, err := scanFlight(r.db.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFlightNotFound
	}
	return f, err
}

func (r *PGFlightRepository) Search(ctx context.Context, criteria FlightSearch) ([]domain.Flight, error) {
	query := `SELECT ` + flightColumns + ` FROM flights
		WHERE status = 'ACTIVE'
		  AND available_seats > 0
		  AND LOWER(departure_city) = LOWER($1)
		  AND LOWER(arrival_city) = LOWER($2)`
	args := []any{criteria.DepartureCity, criteria.ArrivalCity}
	if criteria.DepartureDate != nil {
		query += ` AND departure_time::date = $3::date`
		args = append(args, *criteria.DepartureDate)
	}
	query += ` ORDER BY departure_time ASC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return collectFlights(rows)
}

func (r *PGFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	return r.db.QueryRow(ctx, `INSERT INTO flights (flight_number, airline_name, departure_city, arrival_city, departure_time, arrival_time, total_seats, available_seats, price, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7, $8, 'ACTIVE')
		RETURNING id, available_seats, status, created_at, updated_at`,
		flight.FlightNumber, flight.AirlineName, flight.DepartureCity, flight.ArrivalCity,
		flight.DepartureTime, flight.ArrivalTime, flight.TotalSeats, flight.Price).
		Scan(&flight.ID, &flight.AvailableSeats, &flight.Status, &flight.CreatedAt, &flight.UpdatedAt)
}

func (r *PGFlightRepository) Update(ctx context.Context, id int64, upd FlightUpdate) error {
	sets := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if upd.AirlineName != nil {
		args = append(args, *upd.AirlineName)
		sets = append(sets, "airline_name = $"+strconv.Itoa(len(args)))
	}
	if upd.Price != nil {
		args = append(args, *upd.Price)
		sets = append(sets, "price = $"+strconv.Itoa(len(args)))
	}
	if upd.Status != nil {
		args = append(args, *upd.Status)
		sets = append(sets, "status = $"+strconv.Itoa(len(args)))
	}
	if len(sets) == 0 {
		return errors.New("no fields to update")
	}
	args = append(args, id)
	res, err := r.db.Exec(ctx, `UPDATE flights SET `+strings.Join(sets, ", ")+`, updated_at = now() WHERE id = $`+strconv.Itoa(len(args)), args...)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

func (r *PGFlightRepository) ExistsByNumber(ctx context.Context, flightNumber string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM flights WHERE flight_number=$1)`, flightNumber).Scan(&exists)
	return exists, err
}

func (r *PGFlightRepository) BookedSeats(ctx context.Context, flightID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT seat_number FROM bookings WHERE flight_id=$1 AND status='CONFIRMED' ORDER BY seat_number`, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seats := make([]string, 0)
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}

func (r *PGFlightRepository) LockActiveTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Flight, error) {
	f, err := scanFlight(tx.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE id=$1 AND status='ACTIVE' FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFlightNotFound
	}
	return f, err
}

func (r *PGFlightRepository) DecrementSeatsTx(ctx context.Context, tx pgx.Tx, id int64) error {
	res, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats - 1, updated_at = now() WHERE id=$1 AND available_seats > 0`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNoSeatsAvailable
	}
	return nil
}

// RestoreSeatTx is a single atomic column update; cancellation relies on it
// instead of locking the flight row.
func (r *PGFlightRepository) RestoreSeatTx(ctx context.Context, tx pgx.Tx, id int64) error {
	res, err := tx.Exec(ctx, `UPDATE flights SET available_seats = available_seats + 1, updated_at = now() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrFlightNotFound
	}
	return nil
}

var _ FlightRepository = (*PGFlightRepository)(nil)
