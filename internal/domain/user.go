package domain

// User mirrors a row of the users table. Password holds either a bcrypt hash
// or, for legacy rows, the plaintext value; it never leaves the process.
// Role, Name and Status are nil for NULL columns and serialise as null.
type User struct {
	ID       int64   `db:"id" json:"id"`
	Email    string  `db:"email" json:"email"`
	Role     *string `db:"role" json:"role"`
	Name     *string `db:"name" json:"name"`
	Status   *string `db:"status" json:"status"`
	Password string  `db:"password" json:"-"`
}
