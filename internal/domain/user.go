package domain

const (
	RoleCashier = "cashier"
	RoleAdmin   = "admin"
)

type User struct {
	ID     int64  `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Role   string `db:"role" json:"role"`
	Status string `db:"status" json:"status"`
}

func (u *User) Active() bool { return u != nil && u.Status == StatusActive }
