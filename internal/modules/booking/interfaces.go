package booking

import (
	"context"

	"moviehouse/internal/domain"
	"moviehouse/internal/gateway"
)

// Collaborator contracts consumed by the flow. The cinema API client
// satisfies all of them; tests substitute mocks.

type SessionGateway interface {
	GetSession(ctx context.Context, sessionID int64) (*domain.Session, error)
}

type MovieGateway interface {
	GetMovie(ctx context.Context, movieID int64) (*domain.Movie, error)
}

type OccupancyGateway interface {
	GetOccupancy(ctx context.Context, sessionID int64) ([]domain.Seat, error)
}

type BookingGateway interface {
	CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error)
}

type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, req gateway.CheckoutSessionRequest) (string, error)
}

type Gateways struct {
	Sessions  SessionGateway
	Movies    MovieGateway
	Occupancy OccupancyGateway
	Bookings  BookingGateway
	Payments  PaymentGateway
}

// GatewaysFrom wires every contract to the one cinema API client.
func GatewaysFrom(c *gateway.Client) Gateways {
	return Gateways{
		Sessions:  c,
		Movies:    c,
		Occupancy: c,
		Bookings:  c,
		Payments:  c,
	}
}

// RecordStore keeps the kiosk's local copy of submitted bookings so the
// payment redirect landings can resolve them later.
type RecordStore interface {
	Save(ctx context.Context, rec *domain.BookingRecord) error
	GetByBookingID(ctx context.Context, bookingID int64) (*domain.BookingRecord, error)
	SetPaymentState(ctx context.Context, bookingID int64, state domain.PaymentState) (*domain.BookingRecord, error)
}
