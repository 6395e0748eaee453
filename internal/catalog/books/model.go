package books

import (
	"database/sql"
	"time"
)

// Book is one row of the books table. available_stock never leaves
// [0, total_stock]; the loans package moves it inside row-locked
// transactions, this package only sets it through create/update.
type Book struct {
	ID             string
	Title          string
	Author         string
	Publisher      sql.NullString
	Year           sql.NullInt64
	ISBN           sql.NullString
	Synopsis       sql.NullString
	CoverURL       sql.NullString
	CategoryID     sql.NullString
	TotalStock     int
	AvailableStock int
	AverageRating  float64
	TotalReviews   int
	CreatedAt      time.Time

	// joined
	CategoryName sql.NullString
}

type Filter struct {
	CategoryID string
	Search     string
	Limit      int
	Offset     int
}
