package entities

// Reservation statuses are owned by the server; the client only reads them
// and proposes transitions.
const (
	StatusConfirmed = "CONFIRMED"
	StatusModified  = "MODIFIED"
	StatusCancelled = "CANCELLED"
	StatusCompleted = "COMPLETED"
)

type Reservation struct {
	ID           string `json:"id"`
	RoomUnitID   string `json:"roomUnitId"`
	UserID       string `json:"userId,omitempty"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	NumGuests    int    `json:"numGuests"`
	Status       string `json:"status"`
	TotalCents   int64  `json:"totalCents,omitempty"`
	// CheckoutSessionID links the reservation to the payment that funded
	// its deposit, for refunds on cancellation.
	CheckoutSessionID string `json:"checkoutSessionId,omitempty"`
}

// Range parses the reservation's wire dates into a DateRange.
func (r Reservation) Range() (DateRange, error) {
	start, err := ParseDay(r.CheckInDate)
	if err != nil {
		return DateRange{}, err
	}
	end, err := ParseDay(r.CheckOutDate)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: start, End: end}, nil
}

// AvailabilityRecord marks one calendar day of one room as occupied by a
// specific reservation. The server owns its lifecycle invariants.
type AvailabilityRecord struct {
	ID            string `json:"id"`
	RoomUnitID    string `json:"roomUnitId"`
	ReservationID string `json:"reservationId"`
	Date          string `json:"date"`
}
