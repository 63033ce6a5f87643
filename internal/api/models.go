package api

// Auth
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
type LoginResponse struct {
	Token string `json:"token"`
}
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// Reservations
type CreateReservationRequest struct {
	RoomUnitID   string `json:"roomUnitId"`
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	NumGuests    int    `json:"numGuests"`
}
type UpdateReservationRequest struct {
	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`
	NumGuests    int    `json:"numGuests"`
	Status       string `json:"status"`
}

// Availability
type CreateAvailabilityRequest struct {
	RoomUnitID    string `json:"roomUnitId"`
	ReservationID string `json:"reservationId"`
	Date          string `json:"date"`
}

// Users
type UpdateUserRoleRequest struct {
	Role string `json:"role"`
}

type errorResponse struct {
	Message string `json:"message"`
	Err     string `json:"error"`
}
