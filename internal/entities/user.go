package entities

const (
	RoleGuest = "GUEST"
	RoleAdmin = "ADMIN"
)

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	Role  string `json:"role"`
}
