package booking

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"moviehouse/internal/domain"
	"moviehouse/internal/gateway"
	"moviehouse/internal/modules/contact"
	"moviehouse/internal/pkg/response"
)

type Handler struct {
	gw      Gateways
	records RecordStore
	cfg     Config
	log     *slog.Logger
}

func NewHandler(gw Gateways, records RecordStore, cfg Config, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{gw: gw, records: records, cfg: cfg, log: log}
}

func (h *Handler) newFlow() *Flow {
	return NewFlow(h.gw, h.records, h.cfg, h.log)
}

// LoadBookingPage aggregates everything the seat picker needs: session,
// movie, occupancy grouped by row, and the screen-arc row width.
func (h *Handler) LoadBookingPage(c *gin.Context) {
	sessionID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_SESSION_ID", "Session id must be numeric")
		return
	}

	flow := h.newFlow()
	if err := flow.Load(c.Request.Context(), sessionID); err != nil {
		h.renderLoadError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session":    flow.Session(),
		"movie":      flow.Movie(),
		"seatsByRow": flow.SeatsByRow(),
		"rowWidth":   flow.RowWidth(),
		"prefill":    flow.Prefill(),
	})
}

// CreateBooking runs the whole submit path: re-fetch occupancy, restore
// the requested selection against it, validate contact info, book, and
// create the checkout session. The payment URL in the response is where
// the caller navigates next.
func (h *Handler) CreateBooking(c *gin.Context) {
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	flow := h.newFlow()
	if err := flow.Load(c.Request.Context(), req.SessionID); err != nil {
		h.renderLoadError(c, err)
		return
	}

	// A requested seat that cannot enter the selection was reserved (or
	// removed) between the browser's occupancy view and this request.
	// That is the same race a rejected submit reports, so it gets the
	// same conflict answer instead of a silent partial booking.
	seen := make(map[int64]struct{}, len(req.SeatIDs))
	var lost []int64
	for _, seatID := range req.SeatIDs {
		if _, ok := seen[seatID]; ok {
			continue
		}
		seen[seatID] = struct{}{}
		if !flow.Toggle(seatID) {
			lost = append(lost, seatID)
		}
	}
	if len(lost) > 0 {
		response.ErrorWithDetails(c, http.StatusConflict, "SEAT_CONFLICT",
			"Some selected seats are no longer available; please pick different seats",
			gin.H{"seatIds": lost})
		return
	}

	res, err := flow.Submit(c.Request.Context(), contact.Info{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptySelection):
			response.Error(c, http.StatusBadRequest, "EMPTY_SELECTION",
				"No seats selected")

		case errors.Is(err, ErrSeatConflict):
			response.Error(c, http.StatusConflict, "SEAT_CONFLICT",
				"A selected seat was just booked by someone else; please pick different seats")

		case errors.Is(err, ErrCheckout):
			// the reservation exists; only payment needs retrying
			response.ErrorWithDetails(c, http.StatusBadGateway, "CHECKOUT_FAILED",
				"Your reservation was created but payment could not start",
				gin.H{"bookingId": res.BookingID, "totalAmount": res.TotalAmount})

		case errors.Is(err, ErrBooking):
			response.Error(c, http.StatusBadGateway, "BOOKING_FAILED",
				"Booking could not be completed; please try again")

		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR",
				"Failed to create booking")
		}
		return
	}

	if res.FieldErrors != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR",
			"Contact info is invalid", res.FieldErrors)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"bookingId":   res.BookingID,
		"totalAmount": res.TotalAmount,
		"paymentUrl":  res.PaymentURL,
	})
}

// PaymentSuccess is the landing the payment provider redirects back to.
// It carries a booking id but no cryptographic proof of the outcome;
// the server learns the authoritative result through its own webhook.
func (h *Handler) PaymentSuccess(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BOOKING_ID", "Booking id must be numeric")
		return
	}

	rec, err := h.records.SetPaymentState(c.Request.Context(), bookingID, domain.PaymentPaid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Unknown booking")
			return
		}
		h.log.Error("failed to update booking record", "booking_id", bookingID, "error", err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load booking")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": rec})
}

// GetBookingRecord returns the kiosk's local copy of a submitted
// booking, for support lookups after the payment handoff.
func (h *Handler) GetBookingRecord(c *gin.Context) {
	bookingID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BOOKING_ID", "Booking id must be numeric")
		return
	}

	rec, err := h.records.GetByBookingID(c.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Unknown booking")
			return
		}
		h.log.Error("failed to load booking record", "booking_id", bookingID, "error", err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load booking")
		return
	}

	response.Success(c, http.StatusOK, gin.H{"booking": rec})
}

func (h *Handler) PaymentCancel(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"message": "Payment was cancelled. Your seats were not reserved.",
	})
}

func (h *Handler) renderLoadError(c *gin.Context, err error) {
	if errors.Is(err, gateway.ErrNotFound) {
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Session or movie not found")
		return
	}
	response.Error(c, http.StatusBadGateway, "UPSTREAM_ERROR", "Failed to load booking data")
}
