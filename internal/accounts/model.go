package accounts

import (
	"database/sql"
	"time"
)

// User is one row of the users table. Role is fixed after registration.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	ClassID      sql.NullString
	MajorID      sql.NullString
	AvatarURL    sql.NullString
	CreatedAt    time.Time
}

type UserFilter struct {
	Role   string
	Search string
	Limit  int
	Offset int
}
