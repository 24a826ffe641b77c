package selection

import (
	"math"
	"sort"

	"moviehouse/internal/domain"
)

// Selection is the set of seats the visitor has picked on one booking
// page. It is bound to the occupancy snapshot the page was loaded with:
// a seat whose last-known status is RESERVED can never enter the set.
// Not safe for concurrent use; a booking page is a single flow.
type Selection struct {
	status map[int64]domain.SeatStatus
	chosen map[int64]struct{}
}

func New(seats []domain.Seat) *Selection {
	status := make(map[int64]domain.SeatStatus, len(seats))
	for _, seat := range seats {
		status[seat.ID] = seat.Status
	}
	return &Selection{
		status: status,
		chosen: make(map[int64]struct{}),
	}
}

// Toggle adds the seat if absent and removes it if present. Toggling a
// RESERVED or unknown seat is a no-op, whatever the prior state. It
// reports whether the set changed.
func (s *Selection) Toggle(seatID int64) bool {
	if s.status[seatID] != domain.SeatAvailable {
		return false
	}

	if _, ok := s.chosen[seatID]; ok {
		delete(s.chosen, seatID)
	} else {
		s.chosen[seatID] = struct{}{}
	}
	return true
}

func (s *Selection) Has(seatID int64) bool {
	_, ok := s.chosen[seatID]
	return ok
}

func (s *Selection) Count() int { return len(s.chosen) }

// IDs returns the chosen seat identifiers in ascending order, so equal
// selections always produce the same booking request.
func (s *Selection) IDs() []int64 {
	ids := make([]int64, 0, len(s.chosen))
	for id := range s.chosen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Selection) Clear() {
	s.chosen = make(map[int64]struct{})
}

// Total returns the display price for count seats: count times the
// session's unit price, rounded to two decimals. Preview only; the
// settled amount is always the server's.
func Total(count int, unitPrice float64) float64 {
	return math.Round(float64(count)*unitPrice*100) / 100
}
