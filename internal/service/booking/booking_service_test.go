package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock структуры

type MockTxRunner struct {
	mock.Mock
}

func (m *MockTxRunner) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	args := m.Called(ctx, fn)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(ctx, nil)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) SeatTakenTx(ctx context.Context, tx pgx.Tx, flightID int64, seatNumber string) (bool, error) {
	args := m.Called(ctx, tx, flightID, seatNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockBookingRepository) InsertConfirmedTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	args := m.Called(ctx, tx, booking)
	if args.Error(0) == nil {
		booking.ID = 1
		booking.Status = domain.BookingStatusConfirmed
	}
	return args.Error(0)
}

func (m *MockBookingRepository) LockByIDTx(ctx context.Context, tx pgx.Tx, bookingID, userID int64) (*domain.Booking, error) {
	args := m.Called(ctx, tx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) MarkCancelledTx(ctx context.Context, tx pgx.Tx, bookingID int64) error {
	args := m.Called(ctx, tx, bookingID)
	return args.Error(0)
}

func (m *MockBookingRepository) GetDetail(ctx context.Context, bookingID, userID int64) (*domain.BookingDetail, error) {
	args := m.Called(ctx, bookingID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingDetail), args.Error(1)
}

func (m *MockBookingRepository) ListByUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.BookingDetail), args.Error(1)
}

func (m *MockBookingRepository) StatsByFlight(ctx context.Context, flightID int64) (*domain.BookingStats, error) {
	args := m.Called(ctx, flightID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingStats), args.Error(1)
}

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) List(ctx context.Context) ([]domain.Flight, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Search(ctx context.Context, criteria repository.FlightSearch) ([]domain.Flight, error) {
	args := m.Called(ctx, criteria)
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) Create(ctx context.Context, flight *domain.Flight) error {
	args := m.Called(ctx, flight)
	return args.Error(0)
}

func (m *MockFlightRepository) Update(ctx context.Context, id int64, upd repository.FlightUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockFlightRepository) ExistsByNumber(ctx context.Context, flightNumber string) (bool, error) {
	args := m.Called(ctx, flightNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockFlightRepository) BookedSeats(ctx context.Context, flightID int64) ([]string, error) {
	args := m.Called(ctx, flightID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockFlightRepository) LockActiveTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Flight, error) {
	args := m.Called(ctx, tx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) DecrementSeatsTx(ctx context.Context, tx pgx.Tx, id int64) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

func (m *MockFlightRepository) RestoreSeatTx(ctx context.Context, tx pgx.Tx, id int64) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByLogin(ctx context.Context, login string) (*domain.User, error) {
	args := m.Called(ctx, login)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id int64, upd repository.UserUpdate) error {
	args := m.Called(ctx, id, upd)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) ExistsTx(ctx context.Context, tx pgx.Tx, id int64) (bool, error) {
	args := m.Called(ctx, tx, id)
	return args.Bool(0), args.Error(1)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newTestService() (*BookingService, *MockTxRunner, *MockBookingRepository, *MockFlightRepository, *MockUserRepository, *MockProducer) {
	tx := &MockTxRunner{}
	bookings := &MockBookingRepository{}
	flights := &MockFlightRepository{}
	users := &MockUserRepository{}
	producer := &MockProducer{}
	service := NewBookingService(tx, bookings, flights, users, producer, "booking_events")
	return service, tx, bookings, flights, users, producer
}

// ============================ Тесты для BookingService ============================

// Тест 1: Создание бронирования - успешный сценарий
func TestBookingService_CreateBooking_Success(t *testing.T) {
	service, tx, bookings, flights, users, producer := newTestService()

	ctx := context.Background()
	input := CreateBookingInput{UserID: 7, FlightID: 4, SeatNumber: "A1"}

	flight := &domain.Flight{ID: 4, AvailableSeats: 3, Price: 250.50, Status: domain.FlightStatusActive}
	detail := &domain.BookingDetail{BookingID: 1, UserID: 7, FlightID: 4, SeatNumber: "A1", Status: domain.BookingStatusConfirmed, TotalPrice: 250.50}

	// Настройка моков
	tx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	users.On("ExistsTx", ctx, mock.Anything, int64(7)).Return(true, nil).Once()
	flights.On("LockActiveTx", ctx, mock.Anything, int64(4)).Return(flight, nil).Once()
	bookings.On("SeatTakenTx", ctx, mock.Anything, int64(4), "A1").Return(false, nil).Once()
	bookings.On("InsertConfirmedTx", ctx, mock.Anything, mock.AnythingOfType("*domain.Booking")).Return(nil).Once()
	flights.On("DecrementSeatsTx", ctx, mock.Anything, int64(4)).Return(nil).Once()
	bookings.On("GetDetail", ctx, int64(1), int64(7)).Return(detail, nil).Once()
	producer.On("Publish", ctx, "booking_events", "booking-1", mock.Anything).Return(nil).Once()

	got, err := service.CreateBooking(ctx, input)

	assert.NoError(t, err)
	assert.NotNil(t, got)
	assert.Equal(t, domain.BookingStatusConfirmed, got.Status)
	assert.Equal(t, 250.50, got.TotalPrice)

	tx.AssertExpectations(t)
	bookings.AssertExpectations(t)
	flights.AssertExpectations(t)
	users.AssertExpectations(t)
	producer.AssertExpectations(t)
}

// Тест 2: Создание бронирования - ошибка валидации, транзакция не открывается
func TestBookingService_CreateBooking_ValidationErrors(t *testing.T) {
	service, tx, _, _, _, _ := newTestService()
	ctx := context.Background()

	testCases := []struct {
		name  string
		input CreateBookingInput
	}{
		{
			name:  "Missing user id",
			input: CreateBookingInput{FlightID: 4, SeatNumber: "A1"},
		},
		{
			name:  "Missing flight id",
			input: CreateBookingInput{UserID: 7, SeatNumber: "A1"},
		},
		{
			name:  "Empty seat number",
			input: CreateBookingInput{UserID: 7, FlightID: 4},
		},
		{
			name:  "Lowercase seat letter",
			input: CreateBookingInput{UserID: 7, FlightID: 4, SeatNumber: "a1"},
		},
		{
			name:  "Seat without row number",
			input: CreateBookingInput{UserID: 7, FlightID: 4, SeatNumber: "A"},
		},
		{
			name:  "Seat with trailing letter",
			input: CreateBookingInput{UserID: 7, FlightID: 4, SeatNumber: "A12B"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			booking, err := service.CreateBooking(ctx, tc.input)
			assert.Error(t, err)
			assert.Nil(t, booking)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}

	tx.AssertNotCalled(t, "WithTx")
}

// Тест 3: Создание бронирования - пользователь не найден
func TestBookingService_CreateBooking_UserNotFound(t *testing.T) {
	service, tx, bookings, flights, users, producer := newTestService()
	ctx := context.Background()

	tx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	users.On("ExistsTx", ctx, mock.Anything, int64(99)).Return(false, nil).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{UserID: 99, FlightID: 4, SeatNumber: "A1"})

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	flights.AssertNotCalled(t, "LockActiveTx")
	bookings.AssertNotCalled(t, "InsertConfirmedTx")
	producer.AssertNotCalled(t, "Publish")
}

// Тест 4: Создание бронирования - рейс не найден или не активен
func TestBookingService_CreateBooking_FlightNotFound(t *testing.T) {
	service, tx, bookings, flights, users, _ := newTestService()
	ctx := context.Background()

	tx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	users.On("ExistsTx", ctx, mock.Anything, int64(7)).Return(true, nil).Once()
	flights.On("LockActiveTx", ctx, mock.Anything, int64(4)).Return(nil, domain.ErrFlightNotFound).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{UserID: 7, FlightID: 4, SeatNumber: "A1"})

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrFlightNotFound)
	bookings.AssertNotCalled(t, "SeatTakenTx")
}

// Тест 5: Создание бронирования - свободных мест нет
func TestBookingService_CreateBooking_NoSeatsAvailable(t *testing.T) {
	service, tx, bookings, flights, users, _ := newTestService()
	ctx := context.Background()

	full := &domain.Flight{ID: 4, AvailableSeats: 0, Status: domain.FlightStatusActive}

	tx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	users.On("ExistsTx", ctx, mock.Anything, int64(7)).Return(true, nil).Once()
	flights.On("LockActiveTx", ctx, mock.Anything, int64(4)).Return(full, nil).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{UserID: 7, FlightID: 4, SeatNumber: "A1"})

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrNoSeatsAvailable)
	bookings.AssertNotCalled(t, "SeatTakenTx")
	bookings.AssertNotCalled(t, "InsertConfirmedTx")
}

// Тест 6: Создание бронирования - место уже занято
func TestBookingService_CreateBooking_SeatAlreadyBooked(t *testing.T) {
	service, tx, bookings, flights, users, _ := newTestService()
	ctx := context.Background()

	flight := &domain.Flight{ID: 4, AvailableSeats: 5, Status: domain.FlightStatusActive}

	tx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	users.On("ExistsTx", ctx, mock.Anything, int64(7)).Return(true, nil).Once()
	flights.On("LockActiveTx", ctx, mock.Anything, int64(4)).Return(flight, nil).Once()
	bookings.On("SeatTakenTx", ctx, mock.Anything, int64(4), "A1").Return(true, nil).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{UserID: 7, FlightID: 4, SeatNumber: "A1"})

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrSeatAlreadyBooked)
	bookings.AssertNotCalled(t, "InsertConfirmedTx")
	flights.AssertNotCalled(t, "DecrementSeatsTx")
}

// Тест 7: Создание бронирования - таймаут ожидания блокировки строки
func TestBookingService_CreateBooking_LockTimeout(t *testing.T) {
	service, tx, _, flights, users, _ := newTestService()
	ctx := context.Background()

	pgErr := &pgconn.PgError{Code: "55P03", Message: "could not obtain lock on row"}

	tx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	users.On("ExistsTx", ctx, mock.Anything, int64(7)).Return(true, nil).Once()
	flights.On("LockActiveTx", ctx, mock.Anything, int64(4)).Return(nil, fmt.Errorf("lock flight: %w", pgErr)).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{UserID: 7, FlightID: 4, SeatNumber: "A1"})

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrSeatLockTimeout)
}

// Тест 8: Создание бронирования - отмена statement по таймауту
func TestBookingService_CreateBooking_StatementTimeout(t *testing.T) {
	service, tx, _, _, _, _ := newTestService()
	ctx := context.Background()

	pgErr := &pgconn.PgError{Code: "57014", Message: "canceling statement due to statement timeout"}
	tx.On("WithTx", ctx, mock.Anything).Return(pgErr).Once()

	booking, err := service.CreateBooking(ctx, CreateBookingInput{UserID: 7, FlightID: 4, SeatNumber: "A1"})

	assert.Nil(t, booking)
	assert.ErrorIs(t, err, domain.ErrSeatLockTimeout)
}

// Тест 9: Отмена бронирования - успешный сценарий
func TestBookingService_CancelBooking_Success(t *testing.T) {
	service, tx, bookings, flights, _, producer := newTestService()
	ctx := context.Background()

	existing := &domain.Booking{
		ID:         12,
		UserID:     7,
		FlightID:   4,
		SeatNumber: "B3",
		Status:     domain.BookingStatusConfirmed,
		TotalPrice: 99.90,
	}

	tx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	bookings.On("LockByIDTx", ctx, mock.Anything, int64(12), int64(7)).Return(existing, nil).Once()
	bookings.On("MarkCancelledTx", ctx, mock.Anything, int64(12)).Return(nil).Once()
	flights.On("RestoreSeatTx", ctx, mock.Anything, int64(4)).Return(nil).Once()
	producer.On("Publish", ctx, "booking_events", "booking-12", mock.Anything).Return(nil).Once()

	err := service.CancelBooking(ctx, 12, 7)

	assert.NoError(t, err)
	tx.AssertExpectations(t)
	bookings.AssertExpectations(t)
	flights.AssertExpectations(t)
	producer.AssertExpectations(t)
}

// Тест 10: Отмена бронирования - уже отменено
func TestBookingService_CancelBooking_AlreadyCancelled(t *testing.T) {
	service, tx, bookings, flights, _, producer := newTestService()
	ctx := context.Background()

	cancelled := &domain.Booking{ID: 12, UserID: 7, FlightID: 4, Status: domain.BookingStatusCancelled}

	tx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	bookings.On("LockByIDTx", ctx, mock.Anything, int64(12), int64(7)).Return(cancelled, nil).Once()

	err := service.CancelBooking(ctx, 12, 7)

	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)
	bookings.AssertNotCalled(t, "MarkCancelledTx")
	flights.AssertNotCalled(t, "RestoreSeatTx")
	producer.AssertNotCalled(t, "Publish")
}

// Тест 11: Отмена бронирования - чужое или несуществующее бронирование
func TestBookingService_CancelBooking_NotFound(t *testing.T) {
	service, tx, bookings, _, _, _ := newTestService()
	ctx := context.Background()

	tx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	bookings.On("LockByIDTx", ctx, mock.Anything, int64(12), int64(7)).Return(nil, domain.ErrBookingNotFound).Once()

	err := service.CancelBooking(ctx, 12, 7)

	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
	bookings.AssertNotCalled(t, "MarkCancelledTx")
}

// Тест 12: Ошибка публикации события не ломает запрос
func TestBookingService_CreateBooking_PublishFailureIgnored(t *testing.T) {
	service, tx, bookings, flights, users, producer := newTestService()
	ctx := context.Background()

	flight := &domain.Flight{ID: 4, AvailableSeats: 3, Price: 100, Status: domain.FlightStatusActive}
	detail := &domain.BookingDetail{BookingID: 1, UserID: 7, FlightID: 4, SeatNumber: "A1", Status: domain.BookingStatusConfirmed}

	tx.On("WithTx", ctx, mock.Anything).Return(nil).Once()
	users.On("ExistsTx", ctx, mock.Anything, int64(7)).Return(true, nil).Once()
	flights.On("LockActiveTx", ctx, mock.Anything, int64(4)).Return(flight, nil).Once()
	bookings.On("SeatTakenTx", ctx, mock.Anything, int64(4), "A1").Return(false, nil).Once()
	bookings.On("InsertConfirmedTx", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	flights.On("DecrementSeatsTx", ctx, mock.Anything, int64(4)).Return(nil).Once()
	bookings.On("GetDetail", ctx, int64(1), int64(7)).Return(detail, nil).Once()
	producer.On("Publish", ctx, "booking_events", "booking-1", mock.Anything).Return(errors.New("kafka down")).Once()

	got, err := service.CreateBooking(ctx, CreateBookingInput{UserID: 7, FlightID: 4, SeatNumber: "A1"})

	assert.NoError(t, err)
	assert.NotNil(t, got)
	producer.AssertExpectations(t)
}

// Тест 13: Статистика по рейсу
func TestBookingService_FlightStats(t *testing.T) {
	service, _, bookings, _, _, _ := newTestService()
	ctx := context.Background()

	stats := &domain.BookingStats{TotalBookings: 5, ConfirmedBookings: 3, CancelledBookings: 2}
	bookings.On("StatsByFlight", ctx, int64(4)).Return(stats, nil).Once()

	got, err := service.FlightStats(ctx, 4)

	assert.NoError(t, err)
	assert.Equal(t, stats, got)
	bookings.AssertExpectations(t)
}

// ============================ Конкурентные сценарии ============================

// seatStore - потокобезопасное in-memory хранилище. WithTx сериализует
// транзакции мьютексом так же, как строковая блокировка рейса в postgres.
type seatStore struct {
	mu             sync.Mutex
	flight         domain.Flight
	bookedSeats    map[string]int64
	bookingsByID   map[int64]domain.Booking
	nextID         int64
	lockAcquisions int
}

func newSeatStore(availableSeats int) *seatStore {
	return &seatStore{
		flight: domain.Flight{
			ID:             4,
			FlightNumber:   "SU100",
			AvailableSeats: availableSeats,
			TotalSeats:     availableSeats,
			Price:          150,
			Status:         domain.FlightStatusActive,
		},
		bookedSeats:  make(map[string]int64),
		bookingsByID: make(map[int64]domain.Booking),
	}
}

func (s *seatStore) WithTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(ctx, nil)
}

func (s *seatStore) LockActiveTx(ctx context.Context, tx pgx.Tx, id int64) (*domain.Flight, error) {
	if id != s.flight.ID || s.flight.Status != domain.FlightStatusActive {
		return nil, domain.ErrFlightNotFound
	}
	s.lockAcquisions++
	flight := s.flight
	return &flight, nil
}

func (s *seatStore) DecrementSeatsTx(ctx context.Context, tx pgx.Tx, id int64) error {
	if s.flight.AvailableSeats <= 0 {
		return domain.ErrNoSeatsAvailable
	}
	s.flight.AvailableSeats--
	return nil
}

func (s *seatStore) RestoreSeatTx(ctx context.Context, tx pgx.Tx, id int64) error {
	s.flight.AvailableSeats++
	return nil
}

func (s *seatStore) SeatTakenTx(ctx context.Context, tx pgx.Tx, flightID int64, seatNumber string) (bool, error) {
	_, taken := s.bookedSeats[seatNumber]
	return taken, nil
}

func (s *seatStore) InsertConfirmedTx(ctx context.Context, tx pgx.Tx, booking *domain.Booking) error {
	s.nextID++
	booking.ID = s.nextID
	booking.Status = domain.BookingStatusConfirmed
	booking.CreatedAt = time.Now()
	s.bookedSeats[booking.SeatNumber] = booking.ID
	s.bookingsByID[booking.ID] = *booking
	return nil
}

func (s *seatStore) LockByIDTx(ctx context.Context, tx pgx.Tx, bookingID, userID int64) (*domain.Booking, error) {
	booking, ok := s.bookingsByID[bookingID]
	if !ok || booking.UserID != userID {
		return nil, domain.ErrBookingNotFound
	}
	return &booking, nil
}

func (s *seatStore) MarkCancelledTx(ctx context.Context, tx pgx.Tx, bookingID int64) error {
	booking := s.bookingsByID[bookingID]
	booking.Status = domain.BookingStatusCancelled
	s.bookingsByID[bookingID] = booking
	delete(s.bookedSeats, booking.SeatNumber)
	return nil
}

func (s *seatStore) GetDetail(ctx context.Context, bookingID, userID int64) (*domain.BookingDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	booking, ok := s.bookingsByID[bookingID]
	if !ok || booking.UserID != userID {
		return nil, domain.ErrBookingNotFound
	}
	return &domain.BookingDetail{
		BookingID:    booking.ID,
		UserID:       booking.UserID,
		FlightID:     booking.FlightID,
		FlightNumber: s.flight.FlightNumber,
		SeatNumber:   booking.SeatNumber,
		Status:       booking.Status,
		TotalPrice:   booking.TotalPrice,
		BookingDate:  booking.CreatedAt,
	}, nil
}

func (s *seatStore) ListByUser(ctx context.Context, userID int64) ([]domain.BookingDetail, error) {
	return nil, nil
}

func (s *seatStore) StatsByFlight(ctx context.Context, flightID int64) (*domain.BookingStats, error) {
	return &domain.BookingStats{}, nil
}

// Неиспользуемые в этих тестах методы FlightRepository.
func (s *seatStore) List(ctx context.Context) ([]domain.Flight, error) { return nil, nil }
func (s *seatStore) GetByID(ctx context.Context, id int64) (*domain.Flight, error) {
	return nil, domain.ErrFlightNotFound
}
func (s *seatStore) Search(ctx context.Context, criteria repository.FlightSearch) ([]domain.Flight, error) {
	return nil, nil
}
func (s *seatStore) Create(ctx context.Context, flight *domain.Flight) error { return nil }
func (s *seatStore) Update(ctx context.Context, id int64, upd repository.FlightUpdate) error {
	return nil
}
func (s *seatStore) ExistsByNumber(ctx context.Context, flightNumber string) (bool, error) {
	return false, nil
}
func (s *seatStore) BookedSeats(ctx context.Context, flightID int64) ([]string, error) {
	return nil, nil
}

// Тест 14: Гонка за последнее место - побеждает ровно один
func TestBookingService_CreateBooking_ConcurrentLastSeat(t *testing.T) {
	store := newSeatStore(1)
	users := &MockUserRepository{}
	users.On("ExistsTx", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	service := NewBookingService(store, store, store, users, nil, "")

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.CreateBooking(context.Background(), CreateBookingInput{
				UserID:     int64(i + 1),
				FlightID:   4,
				SeatNumber: fmt.Sprintf("A%d", i+1),
			})
		}(i)
	}
	wg.Wait()

	won, lost := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domain.ErrNoSeatsAvailable):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, won)
	assert.Equal(t, attempts-1, lost)
	assert.Equal(t, 0, store.flight.AvailableSeats)
	assert.Len(t, store.bookedSeats, 1)
}

// Тест 15: Гонка за одно и то же место - побеждает ровно один
func TestBookingService_CreateBooking_ConcurrentSameSeat(t *testing.T) {
	store := newSeatStore(30)
	users := &MockUserRepository{}
	users.On("ExistsTx", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	service := NewBookingService(store, store, store, users, nil, "")

	const attempts = 16
	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.CreateBooking(context.Background(), CreateBookingInput{
				UserID:     int64(i + 1),
				FlightID:   4,
				SeatNumber: "C7",
			})
		}(i)
	}
	wg.Wait()

	won, lost := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			won++
		case errors.Is(err, domain.ErrSeatAlreadyBooked):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	assert.Equal(t, 1, won)
	assert.Equal(t, attempts-1, lost)
	assert.Equal(t, 29, store.flight.AvailableSeats)
	assert.Equal(t, attempts, store.lockAcquisions)
}

// Тест 16: Отмена возвращает место, повторная бронь того же места проходит
func TestBookingService_CancelThenRebook(t *testing.T) {
	store := newSeatStore(1)
	users := &MockUserRepository{}
	users.On("ExistsTx", mock.Anything, mock.Anything, mock.Anything).Return(true, nil)

	service := NewBookingService(store, store, store, users, nil, "")
	ctx := context.Background()

	first, err := service.CreateBooking(ctx, CreateBookingInput{UserID: 1, FlightID: 4, SeatNumber: "A1"})
	assert.NoError(t, err)

	_, err = service.CreateBooking(ctx, CreateBookingInput{UserID: 2, FlightID: 4, SeatNumber: "A2"})
	assert.ErrorIs(t, err, domain.ErrNoSeatsAvailable)

	err = service.CancelBooking(ctx, first.BookingID, 1)
	assert.NoError(t, err)
	assert.Equal(t, 1, store.flight.AvailableSeats)

	err = service.CancelBooking(ctx, first.BookingID, 1)
	assert.ErrorIs(t, err, domain.ErrAlreadyCancelled)

	second, err := service.CreateBooking(ctx, CreateBookingInput{UserID: 2, FlightID: 4, SeatNumber: "A1"})
	assert.NoError(t, err)
	assert.Equal(t, "A1", second.SeatNumber)
	assert.Equal(t, 0, store.flight.AvailableSeats)
}
