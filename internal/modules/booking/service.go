package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"moviehouse/internal/domain"
	"moviehouse/internal/gateway"
	"moviehouse/internal/modules/contact"
	"moviehouse/internal/modules/selection"
)

// State of one booking page flow.
type State string

const (
	StateIdle                State = "idle"
	StateLoading             State = "loading"
	StateReady               State = "ready"
	StateValidating          State = "validating"
	StateSubmitting          State = "submitting"
	StateAwaitingPayment     State = "awaiting_payment"
	StatePaymentRedirectSent State = "payment_redirect_sent"
	StateFailed              State = "failed"
)

// Flow drives one booking page: fetch session, movie and occupancy,
// collect a seat selection, validate contact info, submit the booking
// and hand off to payment. The client never holds a lock on a seat:
// submission is optimistic and the server's transactional check is the
// only authority, so a rejection is an expected outcome, not a bug.
//
// A Flow is a single cooperative sequence. It is not safe for
// concurrent use; create one per page instance.
type Flow struct {
	gw        Gateways
	records   RecordStore
	cfg       Config
	validator *contact.Validator
	log       *slog.Logger

	state    State
	lastErr  error
	session  *domain.Session
	movie    *domain.Movie
	seats    []domain.Seat
	rowWidth int
	sel      *selection.Selection
}

func NewFlow(gw Gateways, records RecordStore, cfg Config, log *slog.Logger) *Flow {
	if log == nil {
		log = slog.Default()
	}
	return &Flow{
		gw:        gw,
		records:   records,
		cfg:       cfg,
		validator: contact.NewValidator(cfg.DefaultPhoneRegion),
		log:       log,
		state:     StateIdle,
	}
}

func (f *Flow) State() State { return f.state }

// Err returns the failure that put the flow into StateFailed.
func (f *Flow) Err() error { return f.lastErr }

func (f *Flow) Session() *domain.Session { return f.session }
func (f *Flow) Movie() *domain.Movie     { return f.movie }
func (f *Flow) Seats() []domain.Seat     { return f.seats }

// RowWidth is the seat count of the first row, used to size the screen arc.
func (f *Flow) RowWidth() int { return f.rowWidth }

func (f *Flow) SeatsByRow() map[int][]domain.Seat {
	return domain.GroupSeatsByRow(f.seats)
}

// Prefill returns the injected visitor's contact data for the form.
func (f *Flow) Prefill() contact.Info {
	return contact.Info{
		Name:  f.cfg.Visitor.Name,
		Email: f.cfg.Visitor.Email,
		Phone: f.cfg.Visitor.Phone,
	}
}

// Load fetches session details, then movie details and seat occupancy
// concurrently, and enters Ready only once both have resolved. Partial
// data is never applied: any failure leaves the flow Failed, and a
// cancelled context discards results instead of applying them to a
// torn-down page.
func (f *Flow) Load(ctx context.Context, sessionID int64) error {
	if f.state != StateIdle {
		return fmt.Errorf("load is only valid from idle state, got %s", f.state)
	}
	f.state = StateLoading

	sess, err := f.gw.Sessions.GetSession(ctx, sessionID)
	if err != nil {
		return f.fail(fmt.Errorf("%w: %w", ErrFetch, err))
	}

	var (
		movie *domain.Movie
		seats []domain.Seat
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := f.gw.Movies.GetMovie(gctx, sess.MovieID)
		if err != nil {
			return err
		}
		movie = m
		return nil
	})
	g.Go(func() error {
		occ, err := f.gw.Occupancy.GetOccupancy(gctx, sessionID)
		if err != nil {
			return err
		}
		seats = occ
		return nil
	})
	if err := g.Wait(); err != nil {
		return f.fail(fmt.Errorf("%w: %w", ErrFetch, err))
	}

	// Page abandoned mid-flight: drop the results.
	if err := ctx.Err(); err != nil {
		return err
	}

	f.session = sess
	f.movie = movie
	f.seats = seats
	f.rowWidth = domain.RowWidth(seats)
	f.sel = selection.New(seats)
	f.state = StateReady

	f.log.Info("booking page ready",
		"session_id", sess.ID, "movie_id", sess.MovieID, "seats", len(seats))
	return nil
}

// Toggle flips a seat in or out of the selection. Reserved seats never
// enter the set, even when a stale button renders them clickable.
func (f *Flow) Toggle(seatID int64) bool {
	if f.state != StateReady && f.state != StateFailed {
		return false
	}
	if f.sel == nil {
		return false
	}
	return f.sel.Toggle(seatID)
}

func (f *Flow) Selected() []int64 {
	if f.sel == nil {
		return nil
	}
	return f.sel.IDs()
}

func (f *Flow) HasSelected(seatID int64) bool {
	return f.sel != nil && f.sel.Has(seatID)
}

// PreviewTotal is the display price: seat count times session price.
// The settled amount is always the server's.
func (f *Flow) PreviewTotal() float64 {
	if f.sel == nil || f.session == nil {
		return 0
	}
	return selection.Total(f.sel.Count(), f.session.Price)
}

// Resume re-enters Ready after a recoverable failure so the visitor can
// adjust the selection and retry. No-op unless the page has loaded.
func (f *Flow) Resume() bool {
	if f.state != StateFailed || f.session == nil {
		return false
	}
	f.state = StateReady
	f.lastErr = nil
	return true
}

// Submit validates contact info, submits the booking and creates the
// checkout session. On any failure the selection is preserved so the
// visitor can retry; it is cleared only once the payment redirect is
// out. There are no automatic retries anywhere in this path.
func (f *Flow) Submit(ctx context.Context, info contact.Info) (*SubmitResult, error) {
	if f.state != StateReady {
		return nil, fmt.Errorf("submit is only valid from ready state, got %s", f.state)
	}
	if f.sel.Count() == 0 {
		return nil, ErrEmptySelection
	}

	f.state = StateValidating
	res := f.validator.Validate(info)
	if !res.Valid {
		f.state = StateReady
		return &SubmitResult{FieldErrors: res.Errors}, nil
	}

	phone := res.Phone
	if phone == "" {
		phone = contact.NormalizePhone(info.Phone)
	}

	f.state = StateSubmitting
	req := domain.BookingRequest{
		Name:      info.Name,
		Email:     info.Email,
		Phone:     phone,
		SessionID: f.session.ID,
		SeatIDs:   f.sel.IDs(),
	}

	b, err := f.gw.Bookings.CreateBooking(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if errors.Is(err, gateway.ErrSeatConflict) {
			return nil, f.fail(fmt.Errorf("%w: %w", ErrSeatConflict, err))
		}
		return nil, f.fail(fmt.Errorf("%w: %w", ErrBooking, err))
	}

	f.saveRecord(ctx, b)

	f.state = StateAwaitingPayment
	checkout := gateway.CheckoutSessionRequest{
		BookingID:  b.BookingID,
		SuccessURL: fmt.Sprintf("%s/booking/%d/success", f.cfg.PublicURL, b.BookingID),
		CancelURL:  f.cfg.PublicURL + "/booking/cancel",
	}

	paymentURL, err := f.gw.Payments.CreateCheckoutSession(ctx, checkout)
	if err != nil {
		partial := &SubmitResult{BookingID: b.BookingID, TotalAmount: b.TotalAmount}
		if ctx.Err() != nil {
			return partial, ctx.Err()
		}
		// The booking exists server-side with no payment in flight. The
		// caller keeps the booking id; the remedy is retrying payment,
		// not re-submitting seats.
		return partial, f.fail(fmt.Errorf("%w: %w", ErrCheckout, err))
	}

	f.sel.Clear()
	f.state = StatePaymentRedirectSent

	f.log.Info("payment redirect sent",
		"booking_id", b.BookingID, "total", b.TotalAmount)
	return &SubmitResult{
		BookingID:   b.BookingID,
		TotalAmount: b.TotalAmount,
		PaymentURL:  paymentURL,
	}, nil
}

func (f *Flow) fail(err error) error {
	f.state = StateFailed
	f.lastErr = err
	f.log.Warn("booking flow failed", "error", err)
	return err
}

// saveRecord is best effort: a failed local write must not lose a
// booking the server already accepted.
func (f *Flow) saveRecord(ctx context.Context, b *domain.Booking) {
	if f.records == nil {
		return
	}
	rec := &domain.BookingRecord{
		BookingID:    b.BookingID,
		SessionID:    b.SessionID,
		Name:         b.Name,
		Email:        b.Email,
		Phone:        b.Phone,
		SeatIDs:      b.SeatIDs,
		TotalAmount:  b.TotalAmount,
		PaymentState: domain.PaymentPending,
		CreatedAt:    b.CreatedAt,
	}
	if err := f.records.Save(ctx, rec); err != nil {
		f.log.Warn("failed to save booking record", "booking_id", b.BookingID, "error", err)
	}
}
