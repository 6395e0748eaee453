package books

import "time"

type UpsertBookRequest struct {
	Title      string  `json:"title" binding:"required"`
	Author     string  `json:"author" binding:"required"`
	Publisher  *string `json:"publisher,omitempty"`
	Year       *int    `json:"year,omitempty"`
	ISBN       *string `json:"isbn,omitempty"`
	Synopsis   *string `json:"synopsis,omitempty"`
	CoverURL   *string `json:"cover_url,omitempty"`
	CategoryID *string `json:"category_id,omitempty"`
	TotalStock int     `json:"total_stock"`
}

type BookResponse struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Author         string    `json:"author"`
	Publisher      *string   `json:"publisher,omitempty"`
	Year           *int      `json:"year,omitempty"`
	ISBN           *string   `json:"isbn,omitempty"`
	Synopsis       *string   `json:"synopsis,omitempty"`
	CoverURL       *string   `json:"cover_url,omitempty"`
	CategoryID     *string   `json:"category_id,omitempty"`
	CategoryName   *string   `json:"category_name,omitempty"`
	TotalStock     int       `json:"total_stock"`
	AvailableStock int       `json:"available_stock"`
	AverageRating  float64   `json:"average_rating"`
	TotalReviews   int       `json:"total_reviews"`
	StockBadge     Badge     `json:"stock_badge"`
	CreatedAt      time.Time `json:"created_at"`
}

func toBookResponse(b *Book) BookResponse {
	r := BookResponse{
		ID:             b.ID,
		Title:          b.Title,
		Author:         b.Author,
		TotalStock:     b.TotalStock,
		AvailableStock: b.AvailableStock,
		AverageRating:  b.AverageRating,
		TotalReviews:   b.TotalReviews,
		StockBadge:     StockBadge(b.AvailableStock),
		CreatedAt:      b.CreatedAt,
	}
	if b.Publisher.Valid {
		r.Publisher = &b.Publisher.String
	}
	if b.Year.Valid {
		y := int(b.Year.Int64)
		r.Year = &y
	}
	if b.ISBN.Valid {
		r.ISBN = &b.ISBN.String
	}
	if b.Synopsis.Valid {
		r.Synopsis = &b.Synopsis.String
	}
	if b.CoverURL.Valid {
		r.CoverURL = &b.CoverURL.String
	}
	if b.CategoryID.Valid {
		r.CategoryID = &b.CategoryID.String
	}
	if b.CategoryName.Valid {
		r.CategoryName = &b.CategoryName.String
	}
	return r
}
