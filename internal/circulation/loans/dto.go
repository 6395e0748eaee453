package loans

import (
	"time"

	"pustaka-backend/internal/circulation/loanview"
)

type CreateLoanRequest struct {
	BookID       string `json:"book_id" binding:"required"`
	DurationDays int    `json:"duration_days" binding:"required"`
}

type DecisionRequest struct {
	Notes *string `json:"notes,omitempty"`
}

type ReturnRequest struct {
	Condition Condition `json:"condition" binding:"required"`
}

type LoanResponse struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	UserName        string     `json:"user_name,omitempty"`
	UserEmail       string     `json:"user_email,omitempty"`
	BookID          string     `json:"book_id"`
	BookTitle       string     `json:"book_title,omitempty"`
	BookAuthor      string     `json:"book_author,omitempty"`
	BookCover       *string    `json:"book_cover,omitempty"`
	Status          string     `json:"status"`
	StatusLabel     string     `json:"status_label"`
	StatusColor     string     `json:"status_color"`
	LoanDate        time.Time  `json:"loan_date"`
	DueDate         time.Time  `json:"due_date"`
	ReturnDate      *time.Time `json:"return_date,omitempty"`
	ReturnCondition *string    `json:"return_condition,omitempty"`
	AdminNotes      *string    `json:"admin_notes,omitempty"`
	DaysRemaining   int        `json:"days_remaining"`
	CanReturn       bool       `json:"can_return"`
	CreatedAt       time.Time  `json:"created_at"`
}

type ListResponse struct {
	Loans []LoanResponse `json:"loans"`
	Tabs  []TabResponse  `json:"tabs"`
}

type TabResponse struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Count int    `json:"count"`
}

func toLoanResponse(l *Loan, today time.Time) LoanResponse {
	r := LoanResponse{
		ID:            l.ID,
		UserID:        l.UserID,
		UserName:      l.UserName,
		UserEmail:     l.UserEmail,
		BookID:        l.BookID,
		BookTitle:     l.BookTitle,
		BookAuthor:    l.BookAuthor,
		Status:        string(l.Status),
		StatusLabel:   loanview.Label(l.Status),
		StatusColor:   loanview.Color(l.Status),
		LoanDate:      l.LoanDate,
		DueDate:       l.DueDate,
		DaysRemaining: loanview.DaysRemaining(l.DueDate, today),
		CanReturn:     loanview.CanReturn(l.Status, l.DueDate, today),
		CreatedAt:     l.CreatedAt,
	}
	if l.BookCover.Valid {
		r.BookCover = &l.BookCover.String
	}
	if l.ReturnDate.Valid {
		r.ReturnDate = &l.ReturnDate.Time
	}
	if l.ReturnCondition.Valid {
		r.ReturnCondition = &l.ReturnCondition.String
	}
	if l.AdminNotes.Valid {
		r.AdminNotes = &l.AdminNotes.String
	}
	return r
}
