package domain

import "time"

type PaymentState string

const (
	PaymentPending   PaymentState = "pending"
	PaymentPaid      PaymentState = "paid"
	PaymentCancelled PaymentState = "cancelled"
)

// BookingRequest is the payload sent to the booking service. Phone is
// normalized to digits and a leading plus before submission.
type BookingRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	SessionID int64   `json:"sessionId"`
	SeatIDs   []int64 `json:"seatIds"`
}

// Booking echoes the accepted request back from the server. TotalAmount
// is server-computed and is the only figure trusted for settlement.
type Booking struct {
	BookingID   int64     `json:"bookingId"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	SessionID   int64     `json:"sessionId"`
	SeatIDs     []int64   `json:"seatIds"`
	TotalAmount float64   `json:"totalAmount"`
	CreatedAt   time.Time `json:"createdAt"`
}

// BookingRecord is the kiosk's local copy of a submitted booking, kept so
// the payment redirect landings and support lookups can resolve a booking
// after the handoff to the payment provider.
type BookingRecord struct {
	BookingID    int64        `json:"bookingId"`
	SessionID    int64        `json:"sessionId"`
	Name         string       `json:"name"`
	Email        string       `json:"email"`
	Phone        string       `json:"phone"`
	SeatIDs      []int64      `json:"seatIds"`
	TotalAmount  float64      `json:"totalAmount"`
	PaymentState PaymentState `json:"paymentState"`
	CreatedAt    time.Time    `json:"createdAt"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}
