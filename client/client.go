// Package client is the Go SDK for the portal API. Every call takes a
// context so callers can tie requests to a view's lifetime and abandon
// them on navigation instead of leaking them.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"pustaka-backend/internal/accounts"
	"pustaka-backend/internal/catalog/books"
	"pustaka-backend/internal/catalog/categories"
	"pustaka-backend/internal/circulation/loans"
	"pustaka-backend/internal/master"
	"pustaka-backend/internal/messaging"
	"pustaka-backend/internal/platform/httpx"
	"pustaka-backend/internal/reviews"
	"pustaka-backend/internal/stats"
)

type Client struct {
	baseURL string
	http    *http.Client
	session *Session

	reconnectMin time.Duration
	reconnectMax time.Duration
	streamErr    func(error)
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		http:         &http.Client{Timeout: 15 * time.Second},
		session:      NewSession(),
		reconnectMin: backoffInitial,
		reconnectMax: backoffMax,
	}
}

// Session exposes the shared auth state: one writer (the login flow),
// many readers.
func (c *Client) Session() *Session { return c.session }

type dataEnvelope struct {
	Data  json.RawMessage `json:"data"`
	Error *httpx.APIError `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.session.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var env dataEnvelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("decode response (%d): %w", resp.StatusCode, err)
		}
	}
	if env.Error != nil {
		return env.Error
	}
	if resp.StatusCode >= 400 {
		return &httpx.APIError{Code: httpx.CodeInternal, Message: fmt.Sprintf("http %d", resp.StatusCode)}
	}
	if out != nil && env.Data != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ---- auth ----

// Login authenticates and installs the session; it is the single
// writer of the auth state.
func (c *Client) Login(ctx context.Context, email, password string) (*accounts.UserResponse, error) {
	var res accounts.LoginResponse
	err := c.post(ctx, "/api/v1/auth/login", accounts.LoginRequest{Email: email, Password: password}, &res)
	if err != nil {
		return nil, err
	}
	c.session.Set(res.Token, &res.User)
	return &res.User, nil
}

func (c *Client) Register(ctx context.Context, req accounts.RegisterRequest) (*accounts.UserResponse, error) {
	var res accounts.UserResponse
	if err := c.post(ctx, "/api/v1/auth/register", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Me re-checks the session against the server, refreshing the cached
// user on success and clearing the session on a 401.
func (c *Client) Me(ctx context.Context) (*accounts.UserResponse, error) {
	var res accounts.UserResponse
	if err := c.get(ctx, "/api/v1/auth/me", &res); err != nil {
		if api, ok := err.(*httpx.APIError); ok && api.Code == httpx.CodeUnauthorized {
			c.session.Clear()
		}
		return nil, err
	}
	c.session.SetUser(&res)
	return &res, nil
}

func (c *Client) Logout() { c.session.Clear() }

func (c *Client) UpdateProfile(ctx context.Context, req accounts.UpdateMemberRequest) (*accounts.UserResponse, error) {
	var res accounts.UserResponse
	if err := c.put(ctx, "/api/v1/auth/profile", req, &res); err != nil {
		return nil, err
	}
	c.session.SetUser(&res)
	return &res, nil
}

// AdminContacts lists the librarians available as message recipients;
// open to any signed-in user.
func (c *Client) AdminContacts(ctx context.Context) ([]accounts.ContactResponse, error) {
	var res []accounts.ContactResponse
	return res, c.get(ctx, "/api/v1/contacts/admins", &res)
}

// ---- members (admin) ----

func (c *Client) ListMembers(ctx context.Context, role, search string) ([]accounts.UserResponse, error) {
	q := url.Values{}
	if role != "" {
		q.Set("role", role)
	}
	if search != "" {
		q.Set("search", search)
	}
	var res []accounts.UserResponse
	return res, c.get(ctx, "/api/v1/users?"+q.Encode(), &res)
}

func (c *Client) CreateMember(ctx context.Context, req accounts.CreateMemberRequest) (*accounts.UserResponse, error) {
	var res accounts.UserResponse
	return &res, c.post(ctx, "/api/v1/users", req, &res)
}

func (c *Client) UpdateMember(ctx context.Context, id string, req accounts.UpdateMemberRequest) (*accounts.UserResponse, error) {
	var res accounts.UserResponse
	return &res, c.put(ctx, "/api/v1/users/"+id, req, &res)
}

func (c *Client) DeleteMember(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/v1/users/"+id)
}

// ---- catalog ----

func (c *Client) ListBooks(ctx context.Context, categoryID, search string) ([]books.BookResponse, error) {
	q := url.Values{}
	if categoryID != "" {
		q.Set("category_id", categoryID)
	}
	if search != "" {
		q.Set("search", search)
	}
	var res []books.BookResponse
	return res, c.get(ctx, "/api/v1/books?"+q.Encode(), &res)
}

func (c *Client) GetBook(ctx context.Context, id string) (*books.BookResponse, error) {
	var res books.BookResponse
	return &res, c.get(ctx, "/api/v1/books/"+id, &res)
}

func (c *Client) CreateBook(ctx context.Context, req books.UpsertBookRequest) (*books.BookResponse, error) {
	var res books.BookResponse
	return &res, c.post(ctx, "/api/v1/books", req, &res)
}

func (c *Client) UpdateBook(ctx context.Context, id string, req books.UpsertBookRequest) (*books.BookResponse, error) {
	var res books.BookResponse
	return &res, c.put(ctx, "/api/v1/books/"+id, req, &res)
}

func (c *Client) DeleteBook(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/v1/books/"+id)
}

func (c *Client) ListCategories(ctx context.Context) ([]categories.CategoryResponse, error) {
	var res []categories.CategoryResponse
	return res, c.get(ctx, "/api/v1/categories", &res)
}

func (c *Client) CreateCategory(ctx context.Context, req categories.UpsertCategoryRequest) (*categories.CategoryResponse, error) {
	var res categories.CategoryResponse
	return &res, c.post(ctx, "/api/v1/categories", req, &res)
}

func (c *Client) UpdateCategory(ctx context.Context, id string, req categories.UpsertCategoryRequest) (*categories.CategoryResponse, error) {
	var res categories.CategoryResponse
	return &res, c.put(ctx, "/api/v1/categories/"+id, req, &res)
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	return c.delete(ctx, "/api/v1/categories/"+id)
}

// ---- master data ----

func (c *Client) ListMasterData(ctx context.Context, kind master.Kind) ([]master.EntryResponse, error) {
	var res []master.EntryResponse
	return res, c.get(ctx, "/api/v1/"+masterPath(kind), &res)
}

func (c *Client) CreateMasterData(ctx context.Context, kind master.Kind, name string) (*master.EntryResponse, error) {
	var res master.EntryResponse
	return &res, c.post(ctx, "/api/v1/"+masterPath(kind), master.UpsertRequest{Name: name}, &res)
}

func (c *Client) UpdateMasterData(ctx context.Context, kind master.Kind, id, name string) (*master.EntryResponse, error) {
	var res master.EntryResponse
	return &res, c.put(ctx, "/api/v1/"+masterPath(kind)+"/"+id, master.UpsertRequest{Name: name}, &res)
}

func (c *Client) DeleteMasterData(ctx context.Context, kind master.Kind, id string) error {
	return c.delete(ctx, "/api/v1/"+masterPath(kind)+"/"+id)
}

func masterPath(kind master.Kind) string {
	if kind == master.KindClass {
		return "classes"
	}
	return "majors"
}

// ---- loans ----

func (c *Client) CreateLoan(ctx context.Context, bookID string, durationDays int) (*loans.LoanResponse, error) {
	var res loans.LoanResponse
	return &res, c.post(ctx, "/api/v1/loans", loans.CreateLoanRequest{BookID: bookID, DurationDays: durationDays}, &res)
}

func (c *Client) MyLoans(ctx context.Context) (*loans.ListResponse, error) {
	var res loans.ListResponse
	return &res, c.get(ctx, "/api/v1/loans/mine", &res)
}

func (c *Client) ListLoans(ctx context.Context, status string) (*loans.ListResponse, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	var res loans.ListResponse
	return &res, c.get(ctx, "/api/v1/loans?"+q.Encode(), &res)
}

func (c *Client) LoanReport(ctx context.Context, status, from, to string) ([]loans.LoanResponse, error) {
	q := url.Values{}
	if status != "" {
		q.Set("status", status)
	}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	var res []loans.LoanResponse
	return res, c.get(ctx, "/api/v1/loans/report?"+q.Encode(), &res)
}

func (c *Client) ApproveLoan(ctx context.Context, loanID string, notes *string) (*loans.LoanResponse, error) {
	var res loans.LoanResponse
	return &res, c.post(ctx, "/api/v1/loans/"+loanID+"/approve", loans.DecisionRequest{Notes: notes}, &res)
}

func (c *Client) RejectLoan(ctx context.Context, loanID string, notes *string) (*loans.LoanResponse, error) {
	var res loans.LoanResponse
	return &res, c.post(ctx, "/api/v1/loans/"+loanID+"/reject", loans.DecisionRequest{Notes: notes}, &res)
}

func (c *Client) PickupLoan(ctx context.Context, loanID string) (*loans.LoanResponse, error) {
	var res loans.LoanResponse
	return &res, c.post(ctx, "/api/v1/loans/"+loanID+"/pickup", nil, &res)
}

func (c *Client) RequestReturn(ctx context.Context, loanID string, condition loans.Condition) (*loans.LoanResponse, error) {
	var res loans.LoanResponse
	return &res, c.post(ctx, "/api/v1/loans/"+loanID+"/return", loans.ReturnRequest{Condition: condition}, &res)
}

func (c *Client) VerifyReturn(ctx context.Context, loanID string, notes *string) (*loans.LoanResponse, error) {
	var res loans.LoanResponse
	return &res, c.post(ctx, "/api/v1/loans/"+loanID+"/verify-return", loans.DecisionRequest{Notes: notes}, &res)
}

// ---- messaging ----

func (c *Client) Conversations(ctx context.Context) ([]messaging.ConversationResponse, error) {
	var res []messaging.ConversationResponse
	return res, c.get(ctx, "/api/v1/conversations", &res)
}

func (c *Client) Messages(ctx context.Context, conversationID string) ([]messaging.MessageResponse, error) {
	var res []messaging.MessageResponse
	return res, c.get(ctx, "/api/v1/conversations/"+conversationID+"/messages", &res)
}

// SendMessage refuses blank content before any request goes out, the
// same guard the send button applies.
func (c *Client) SendMessage(ctx context.Context, recipientID, content string) (*messaging.MessageResponse, error) {
	if strings.TrimSpace(content) == "" {
		return nil, httpx.ErrInvalid("Pesan tidak boleh kosong")
	}
	var res messaging.MessageResponse
	return &res, c.post(ctx, "/api/v1/messages", messaging.SendMessageRequest{
		RecipientID: recipientID,
		Content:     content,
	}, &res)
}

func (c *Client) EditMessage(ctx context.Context, messageID, content string) (*messaging.MessageResponse, error) {
	var res messaging.MessageResponse
	return &res, c.put(ctx, "/api/v1/messages/"+messageID, messaging.EditMessageRequest{Content: content}, &res)
}

func (c *Client) DeleteMessage(ctx context.Context, messageID string) error {
	return c.delete(ctx, "/api/v1/messages/"+messageID)
}

func (c *Client) MarkAllAsRead(ctx context.Context, conversationID string) error {
	return c.post(ctx, "/api/v1/conversations/"+conversationID+"/read", nil, nil)
}

func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var res struct {
		Unread int `json:"unread"`
	}
	return res.Unread, c.get(ctx, "/api/v1/messages/unread-count", &res)
}

// ---- reviews ----

func (c *Client) BookReviews(ctx context.Context, bookID string) ([]reviews.ReviewResponse, error) {
	var res []reviews.ReviewResponse
	return res, c.get(ctx, "/api/v1/books/"+bookID+"/reviews", &res)
}

func (c *Client) CreateReview(ctx context.Context, req reviews.CreateReviewRequest) (*reviews.ReviewResponse, error) {
	var res reviews.ReviewResponse
	return &res, c.post(ctx, "/api/v1/reviews", req, &res)
}

func (c *Client) DeleteReview(ctx context.Context, reviewID string) error {
	return c.delete(ctx, "/api/v1/reviews/"+reviewID)
}

// ---- favorites ----

func (c *Client) ListFavorites(ctx context.Context) ([]string, error) {
	var res []string
	return res, c.get(ctx, "/api/v1/favorites", &res)
}

func (c *Client) CheckFavorite(ctx context.Context, bookID string) (bool, error) {
	var res struct {
		Favorited bool `json:"favorited"`
	}
	return res.Favorited, c.get(ctx, "/api/v1/favorites/"+bookID, &res)
}

func (c *Client) AddFavorite(ctx context.Context, bookID string) error {
	return c.post(ctx, "/api/v1/favorites/"+bookID, nil, nil)
}

func (c *Client) RemoveFavorite(ctx context.Context, bookID string) error {
	return c.delete(ctx, "/api/v1/favorites/"+bookID)
}

// ---- stats ----

func (c *Client) AdminStats(ctx context.Context) (*stats.AdminStats, error) {
	var res stats.AdminStats
	return &res, c.get(ctx, "/api/v1/stats/admin", &res)
}

func (c *Client) StudentStats(ctx context.Context) (*stats.StudentStats, error) {
	var res stats.StudentStats
	return &res, c.get(ctx, "/api/v1/stats/student", &res)
}
