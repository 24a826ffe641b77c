package booking

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"moviehouse/internal/domain"
	"moviehouse/internal/gateway"
	"moviehouse/internal/modules/contact"
)

// Mock gateways

type MockSessionGateway struct {
	mock.Mock
}

func (m *MockSessionGateway) GetSession(ctx context.Context, sessionID int64) (*domain.Session, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

type MockMovieGateway struct {
	mock.Mock
}

func (m *MockMovieGateway) GetMovie(ctx context.Context, movieID int64) (*domain.Movie, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movie), args.Error(1)
}

type MockOccupancyGateway struct {
	mock.Mock
}

func (m *MockOccupancyGateway) GetOccupancy(ctx context.Context, sessionID int64) ([]domain.Seat, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Seat), args.Error(1)
}

type MockBookingGateway struct {
	mock.Mock
}

func (m *MockBookingGateway) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) CreateCheckoutSession(ctx context.Context, req gateway.CheckoutSessionRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

type MockRecordStore struct {
	mock.Mock
}

func (m *MockRecordStore) Save(ctx context.Context, rec *domain.BookingRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockRecordStore) GetByBookingID(ctx context.Context, bookingID int64) (*domain.BookingRecord, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRecord), args.Error(1)
}

func (m *MockRecordStore) SetPaymentState(ctx context.Context, bookingID int64, state domain.PaymentState) (*domain.BookingRecord, error) {
	args := m.Called(ctx, bookingID, state)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BookingRecord), args.Error(1)
}

// Fixtures

type flowMocks struct {
	sessions  *MockSessionGateway
	movies    *MockMovieGateway
	occupancy *MockOccupancyGateway
	bookings  *MockBookingGateway
	payments  *MockPaymentGateway
}

func newFlowMocks() flowMocks {
	return flowMocks{
		sessions:  new(MockSessionGateway),
		movies:    new(MockMovieGateway),
		occupancy: new(MockOccupancyGateway),
		bookings:  new(MockBookingGateway),
		payments:  new(MockPaymentGateway),
	}
}

func (fm flowMocks) gateways() Gateways {
	return Gateways{
		Sessions:  fm.sessions,
		Movies:    fm.movies,
		Occupancy: fm.occupancy,
		Bookings:  fm.bookings,
		Payments:  fm.payments,
	}
}

var (
	testSession = &domain.Session{ID: 7, MovieID: 3, HallID: 1, Price: 10.0}
	testMovie   = &domain.Movie{ID: 3, Title: "Heat", Duration: 170}
	validInfo   = contact.Info{Name: "Ann", Email: "ann@example.com", Phone: "+14155552671"}
)

func (fm flowMocks) expectLoad(occ []domain.Seat) {
	fm.sessions.On("GetSession", mock.Anything, int64(7)).Return(testSession, nil)
	fm.movies.On("GetMovie", mock.Anything, int64(3)).Return(testMovie, nil)
	fm.occupancy.On("GetOccupancy", mock.Anything, int64(7)).Return(occ, nil)
}

func testConfig() Config {
	return Config{PublicURL: "http://localhost:5173"}
}

// Tests

func TestFlow_LoadEntersReady(t *testing.T) {
	fm := newFlowMocks()
	fm.expectLoad([]domain.Seat{
		{ID: 1, RowNumber: 1, SeatNumber: 1, Status: domain.SeatAvailable},
		{ID: 2, RowNumber: 1, SeatNumber: 2, Status: domain.SeatAvailable},
		{ID: 3, RowNumber: 2, SeatNumber: 1, Status: domain.SeatAvailable},
	})

	flow := NewFlow(fm.gateways(), nil, testConfig(), nil)
	err := flow.Load(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, StateReady, flow.State())
	assert.Equal(t, testMovie, flow.Movie())
	assert.Equal(t, 2, flow.RowWidth())
	assert.Len(t, flow.SeatsByRow(), 2)
}

func TestFlow_LoadFailsWhenSessionFetchFails(t *testing.T) {
	fm := newFlowMocks()
	fm.sessions.On("GetSession", mock.Anything, int64(7)).
		Return(nil, fmt.Errorf("get session 7: %w", gateway.ErrNotFound))

	flow := NewFlow(fm.gateways(), nil, testConfig(), nil)
	err := flow.Load(context.Background(), 7)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.ErrorIs(t, err, gateway.ErrNotFound)
	assert.Equal(t, StateFailed, flow.State())
}

func TestFlow_LoadFailsWhenOccupancyFetchFails(t *testing.T) {
	fm := newFlowMocks()
	fm.sessions.On("GetSession", mock.Anything, int64(7)).Return(testSession, nil)
	fm.movies.On("GetMovie", mock.Anything, int64(3)).Return(testMovie, nil)
	fm.occupancy.On("GetOccupancy", mock.Anything, int64(7)).
		Return(nil, fmt.Errorf("get occupancy for session 7: %w", gateway.ErrNetwork))

	flow := NewFlow(fm.gateways(), nil, testConfig(), nil)
	err := flow.Load(context.Background(), 7)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	// partial data is never applied
	assert.Nil(t, flow.Seats())
	assert.Nil(t, flow.Movie())
}

func TestFlow_AbandonedLoadDiscardsResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	fm := newFlowMocks()
	fm.sessions.On("GetSession", mock.Anything, int64(7)).Return(testSession, nil)
	fm.movies.On("GetMovie", mock.Anything, int64(3)).Return(testMovie, nil)
	fm.occupancy.On("GetOccupancy", mock.Anything, int64(7)).
		Run(func(mock.Arguments) { cancel() }).
		Return([]domain.Seat{{ID: 1, RowNumber: 1, SeatNumber: 1, Status: domain.SeatAvailable}}, nil)

	flow := NewFlow(fm.gateways(), nil, testConfig(), nil)
	err := flow.Load(ctx, 7)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotEqual(t, StateReady, flow.State())
	assert.Nil(t, flow.Seats())
}

// Scenario: a reserved seat never reaches the booking request.
func TestFlow_SubmitSkipsReservedSeat(t *testing.T) {
	fm := newFlowMocks()
	fm.expectLoad([]domain.Seat{
		{ID: 1, RowNumber: 1, SeatNumber: 1, Status: domain.SeatAvailable},
		{ID: 2, RowNumber: 1, SeatNumber: 2, Status: domain.SeatReserved},
	})

	fm.bookings.On("CreateBooking", mock.Anything, mock.MatchedBy(func(req domain.BookingRequest) bool {
		return len(req.SeatIDs) == 1 && req.SeatIDs[0] == 1 &&
			req.SessionID == 7 && req.Phone == "+14155552671"
	})).Return(&domain.Booking{BookingID: 42, SessionID: 7, SeatIDs: []int64{1}, TotalAmount: 10.0}, nil)
	fm.payments.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return("https://pay.example.com/cs_1", nil)

	flow := NewFlow(fm.gateways(), nil, testConfig(), nil)
	require.NoError(t, flow.Load(context.Background(), 7))

	assert.False(t, flow.Toggle(2)) // reserved: no-op
	assert.True(t, flow.Toggle(1))
	assert.Equal(t, []int64{1}, flow.Selected())
	assert.Equal(t, 10.0, flow.PreviewTotal())

	res, err := flow.Submit(context.Background(), validInfo)

	require.NoError(t, err)
	assert.Nil(t, res.FieldErrors)
	assert.Equal(t, int64(42), res.BookingID)
	assert.Equal(t, "https://pay.example.com/cs_1", res.PaymentURL)
	assert.Equal(t, StatePaymentRedirectSent, flow.State())
	assert.Empty(t, flow.Selected())
	fm.bookings.AssertExpectations(t)
}

func TestFlow_SubmitSendsRedirectTargets(t *testing.T) {
	fm := newFlowMocks()
	fm.expectLoad([]domain.Seat{{ID: 1, RowNumber: 1, SeatNumber: 1, Status: domain.SeatAvailable}})
	fm.bookings.On("CreateBooking", mock.Anything, mock.Anything).
		Return(&domain.Booking{BookingID: 42, SessionID: 7, SeatIDs: []int64{1}, TotalAmount: 10.0}, nil)
	fm.payments.On("CreateCheckoutSession", mock.Anything, gateway.CheckoutSessionRequest{
		BookingID:  42,
		SuccessURL: "http://localhost:5173/booking/42/success",
		CancelURL:  "http://localhost:5173/booking/cancel",
	}).Return("https://pay.example.com/cs_1", nil)

	flow := NewFlow(fm.gateways(), nil, testConfig(), nil)
	require.NoError(t, flow.Load(context.Background(), 7))
	flow.Toggle(1)

	_, err := flow.Submit(context.Background(), validInfo)

	require.NoError(t, err)
	fm.payments.AssertExpectations(t)
}

func TestFlow_SubmitEmptySelection(t *testing.T) {
	fm := newFlowMocks()
	fm.expectLoad([]domain.Seat{{ID: 1, RowNumber: 1, SeatNumber: 1, Status: domain.SeatAvailable}})

	flow := NewFlow(fm.gateways(), nil, testConfig(), nil)
	require.NoError(t, flow.Load(context.Background(), 7))

	_, err := flow.Submit(context.Background(), validInfo)

	assert.ErrorIs(t, err, ErrEmptySelection)
	fm.bookings.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestFlow_SubmitInvalidContactMakesNoNetworkCall(t *testing.T) {
	fm := newFlowMocks()
	fm.expectLoad([]domain.Seat{{ID: 1, RowNumber: 1, SeatNumber: 1, Status: domain.SeatAvailable}})

	flow := NewFlow(fm.gateways(), nil, testConfig(), nil)
	require.NoError(t, flow.Load(context.Background(), 7))
	flow.Toggle(1)

	res, err := flow.Submit(context.Background(), contact.Info{
		Name: "Ann", Email: "not-an-email", Phone: "+14155552671",
	})

	require.NoError(t, err)
	require.NotNil(t, res.FieldErrors)
	assert.Len(t, res.FieldErrors, 1)
	assert.Contains(t, res.FieldErrors, "email")
	assert.Equal(t, StateReady, flow.State())
	assert.Equal(t, []int64{1}, flow.Selected())
	fm.bookings.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

// Scenario: the one race this design must make recoverable. Another
// client booked seat 5 between the occupancy fetch and submission.
func TestFlow_SeatConflictKeepsSelection(t *testing.T) {
	fm := newFlowMocks()
	fm.expectLoad([]domain.Seat{{ID: 5, RowNumber: 1, SeatNumber: 5, Status: domain.SeatAvailable}})
	fm.bookings.On("CreateBooking", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("create booking: %w: Seats [5] are already booked", gateway.ErrSeatConflict))

	flow := NewFlow(fm.gateways(), nil, testConfig(), nil)
	require.NoError(t, flow.Load(context.Background(), 7))
	flow.Toggle(5)

	_, err := flow.Submit(context.Background(), validInfo)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSeatConflict)
	assert.NotErrorIs(t, err, ErrBooking)
	assert.Equal(t, StateFailed, flow.State())
	assert.Equal(t, []int64{5}, flow.Selected()) // not silently cleared

	// the visitor deselects the lost seat and the flow can retry
	assert.True(t, flow.Resume())
	assert.Equal(t, StateReady, flow.State())
	assert.True(t, flow.Toggle(5))
	assert.Empty(t, flow.Selected())
}

func TestFlow_GenericBookingRejection(t *testing.T) {
	fm := newFlowMocks()
	fm.expectLoad([]domain.Seat{{ID: 1, RowNumber: 1, SeatNumber: 1, Status: domain.SeatAvailable}})
	fm.bookings.On("CreateBooking", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("create booking: %w", gateway.ErrUpstream))

	flow := NewFlow(fm.gateways(), nil, testConfig(), nil)
	require.NoError(t, flow.Load(context.Background(), 7))
	flow.Toggle(1)

	_, err := flow.Submit(context.Background(), validInfo)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBooking)
	assert.NotErrorIs(t, err, ErrSeatConflict)
	assert.Equal(t, []int64{1}, flow.Selected())
}

// Scenario: checkout fails after the booking was created. The booking id
// must survive for support and payment retry, and the error class must
// differ from a booking failure.
func TestFlow_CheckoutFailureKeepsBookingID(t *testing.T) {
	fm := newFlowMocks()
	fm.expectLoad([]domain.Seat{{ID: 1, RowNumber: 1, SeatNumber: 1, Status: domain.SeatAvailable}})
	fm.bookings.On("CreateBooking", mock.Anything, mock.Anything).
		Return(&domain.Booking{BookingID: 42, SessionID: 7, SeatIDs: []int64{1}, TotalAmount: 10.0}, nil)
	fm.payments.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return("", errors.New("payment provider is down"))

	records := new(MockRecordStore)
	records.On("Save", mock.Anything, mock.MatchedBy(func(rec *domain.BookingRecord) bool {
		return rec.BookingID == 42 && rec.PaymentState == domain.PaymentPending
	})).Return(nil)

	flow := NewFlow(fm.gateways(), records, testConfig(), nil)
	require.NoError(t, flow.Load(context.Background(), 7))
	flow.Toggle(1)

	res, err := flow.Submit(context.Background(), validInfo)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCheckout)
	assert.NotErrorIs(t, err, ErrBooking)
	require.NotNil(t, res)
	assert.Equal(t, int64(42), res.BookingID)
	assert.Equal(t, 10.0, res.TotalAmount)
	assert.Empty(t, res.PaymentURL)
	assert.Equal(t, StateFailed, flow.State())
	records.AssertExpectations(t)
}

func TestFlow_RecordSaveFailureDoesNotFailSubmit(t *testing.T) {
	fm := newFlowMocks()
	fm.expectLoad([]domain.Seat{{ID: 1, RowNumber: 1, SeatNumber: 1, Status: domain.SeatAvailable}})
	fm.bookings.On("CreateBooking", mock.Anything, mock.Anything).
		Return(&domain.Booking{BookingID: 42, SessionID: 7, SeatIDs: []int64{1}, TotalAmount: 10.0}, nil)
	fm.payments.On("CreateCheckoutSession", mock.Anything, mock.Anything).
		Return("https://pay.example.com/cs_1", nil)

	records := new(MockRecordStore)
	records.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	flow := NewFlow(fm.gateways(), records, testConfig(), nil)
	require.NoError(t, flow.Load(context.Background(), 7))
	flow.Toggle(1)

	res, err := flow.Submit(context.Background(), validInfo)

	require.NoError(t, err)
	assert.Equal(t, StatePaymentRedirectSent, flow.State())
	assert.Equal(t, int64(42), res.BookingID)
}
