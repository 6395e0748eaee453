package categories

import (
	"database/sql"
	"time"
)

type Category struct {
	ID          string
	Name        string
	Description sql.NullString
	CreatedAt   time.Time
	BookCount   int
}

type UpsertCategoryRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description,omitempty"`
}

type CategoryResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	BookCount   int       `json:"book_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCategoryResponse(c *Category) CategoryResponse {
	r := CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		BookCount: c.BookCount,
		CreatedAt: c.CreatedAt,
	}
	if c.Description.Valid {
		r.Description = &c.Description.String
	}
	return r
}
