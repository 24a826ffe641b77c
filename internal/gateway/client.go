package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"moviehouse/internal/domain"
)

// Client talks to the cinema API, the single source of truth for
// sessions, movies, seat occupancy and bookings. Every booking
// submission is speculative until the server accepts it.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

func New(baseURL string, log *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     log,
	}
}

// apiError is the cinema API's error body.
type apiError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

func (c *Client) GetSession(ctx context.Context, sessionID int64) (*domain.Session, error) {
	var s domain.Session
	if err := c.getJSON(ctx, fmt.Sprintf("/sessions/%d", sessionID), &s); err != nil {
		return nil, fmt.Errorf("get session %d: %w", sessionID, err)
	}
	return &s, nil
}

func (c *Client) GetMovie(ctx context.Context, movieID int64) (*domain.Movie, error) {
	var m domain.Movie
	if err := c.getJSON(ctx, fmt.Sprintf("/movies/%d", movieID), &m); err != nil {
		return nil, fmt.Errorf("get movie %d: %w", movieID, err)
	}
	return &m, nil
}

// GetOccupancy returns the per-seat status snapshot for a session, in
// the server's order. The snapshot is authoritative only at fetch time.
func (c *Client) GetOccupancy(ctx context.Context, sessionID int64) ([]domain.Seat, error) {
	var seats []domain.Seat
	if err := c.getJSON(ctx, fmt.Sprintf("/sessions/%d/occupancy", sessionID), &seats); err != nil {
		return nil, fmt.Errorf("get occupancy for session %d: %w", sessionID, err)
	}
	return seats, nil
}

func (c *Client) CreateBooking(ctx context.Context, req domain.BookingRequest) (*domain.Booking, error) {
	resp, err := c.postJSON(ctx, "/bookings", req)
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("create booking: %w", c.errorFrom(resp))
	}

	var b domain.Booking
	if err := json.NewDecoder(resp.Body).Decode(&b); err != nil {
		return nil, fmt.Errorf("create booking: decode response: %w", err)
	}

	c.log.Info("booking accepted", "booking_id", b.BookingID, "session_id", b.SessionID, "seats", len(b.SeatIDs))
	return &b, nil
}

type CheckoutSessionRequest struct {
	BookingID  int64  `json:"bookingId"`
	SuccessURL string `json:"successUrl"`
	CancelURL  string `json:"cancelUrl"`
}

// CreateCheckoutSession exchanges a booking for a single-use payment
// redirect URL. The response body is the URL as plain text.
func (c *Client) CreateCheckoutSession(ctx context.Context, req CheckoutSessionRequest) (string, error) {
	resp, err := c.postJSON(ctx, "/payments/checkout-session", req)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("create checkout session: %w", c.errorFrom(resp))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("create checkout session: read response: %w", err)
	}

	paymentURL := strings.TrimSpace(string(raw))
	c.log.Debug("checkout session created", "booking_id", req.BookingID)
	return paymentURL, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.errorFrom(resp)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) postJSON(ctx context.Context, path string, body any) (*http.Response, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return resp, nil
}

// errorFrom maps a non-2xx response to the gateway error taxonomy,
// keeping the server's message when the body decodes.
func (c *Client) errorFrom(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err == nil && len(raw) > 0 {
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			msg = apiErr.Message
		}
	}

	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", ErrSeatConflict, msg)
	default:
		return fmt.Errorf("%w: %s (status %d)", ErrUpstream, msg, resp.StatusCode)
	}
}
