package domain

type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatReserved  SeatStatus = "RESERVED"
)

// Seat is one entry of a session's occupancy snapshot. Status is
// authoritative only at fetch time; the server re-checks at booking.
type Seat struct {
	ID         int64      `json:"seatId"`
	RowNumber  int        `json:"rowNumber"`
	SeatNumber int        `json:"seatNumber"`
	Status     SeatStatus `json:"status"`
}

// GroupSeatsByRow groups an occupancy snapshot by row number, preserving
// the server's seat order within each row. Rows absent from the input do
// not appear as keys; an empty snapshot yields an empty map.
func GroupSeatsByRow(seats []Seat) map[int][]Seat {
	grouped := make(map[int][]Seat, len(seats))
	for _, seat := range seats {
		grouped[seat.RowNumber] = append(grouped[seat.RowNumber], seat)
	}
	return grouped
}

// RowWidth returns the number of seats sharing the first seat's row.
// The booking page uses it to size the screen arc.
func RowWidth(seats []Seat) int {
	if len(seats) == 0 {
		return 0
	}

	first := seats[0].RowNumber
	count := 0
	for _, seat := range seats {
		if seat.RowNumber == first {
			count++
		}
	}
	return count
}
