package entities

// DashboardMetrics is the admin dashboard aggregate the server computes.
type DashboardMetrics struct {
	TotalRooms         int     `json:"totalRooms"`
	OccupiedRooms      int     `json:"occupiedRooms"`
	OccupancyRate      float64 `json:"occupancyRate"`
	ActiveReservations int     `json:"activeReservations"`
	IncomeCentsMonth   int64   `json:"incomeCentsMonth"`
	IncomeCentsTotal   int64   `json:"incomeCentsTotal"`
}
