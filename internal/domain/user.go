package domain

const (
	RoleAdmin = "ADMIN"
	RoleStaff = "STAFF"
)

type User struct {
	ID       string `db:"id"`
	Username string `db:"username"`
	Name     string `db:"name"`
	Hash     string `db:"password_hash"`
	Role     string `db:"role"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
