package booking

// Visitor is the explicitly injected user context for one booking page:
// contact prefill instead of ambient session globals.
type Visitor struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Config scopes one flow instance.
type Config struct {
	// PublicURL is the base for the success/cancel redirect targets
	// handed to the payment provider.
	PublicURL string

	// DefaultPhoneRegion is the dialing region assumed for phone numbers
	// entered without a country code. Empty means E.164 input only.
	DefaultPhoneRegion string

	Visitor Visitor
}

// SubmitResult is the outcome of a booking attempt. Exactly one of
// FieldErrors or BookingID is meaningful: field errors mean validation
// stopped the attempt before any network call.
type SubmitResult struct {
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`

	// BookingID is set as soon as the server accepts the booking, even
	// when the later checkout step fails.
	BookingID   int64   `json:"bookingId,omitempty"`
	TotalAmount float64 `json:"totalAmount,omitempty"`
	PaymentURL  string  `json:"paymentUrl,omitempty"`
}

type createBookingRequest struct {
	Name      string  `json:"name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	SessionID int64   `json:"sessionId" binding:"required"`
	SeatIDs   []int64 `json:"seatIds" binding:"required"`
}
