package accounts

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"pustaka-backend/internal/platform/auth"
	"pustaka-backend/internal/platform/httpx"
	"pustaka-backend/internal/platform/ident"
)

const minPasswordLen = 6

type Service struct {
	store    UserStore
	id       ident.IDGen
	secret   []byte
	tokenTTL time.Duration
}

func NewService(db *sql.DB, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{
		store:    NewStore(db),
		id:       ident.ULIDGen{},
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := s.store.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, httpx.ErrUnauthorized("Email atau password salah")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, httpx.ErrUnauthorized("Email atau password salah")
	}

	token, err := auth.IssueToken(s.secret, u.ID, u.Role, s.tokenTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResponse{Token: token, User: toUserResponse(u)}, nil
}

// Register is the student self-registration path; role is always STUDENT.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	return s.create(ctx, CreateMemberRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		ClassID:  req.ClassID,
		MajorID:  req.MajorID,
	}, auth.RoleStudent)
}

// CreateMember is the admin-side create; defaults to STUDENT when role
// is not given.
func (s *Service) CreateMember(ctx context.Context, req CreateMemberRequest) (*UserResponse, error) {
	role := auth.RoleStudent
	if req.Role != nil && *req.Role != "" {
		if *req.Role != auth.RoleAdmin && *req.Role != auth.RoleStudent {
			return nil, httpx.ErrInvalid("role must be ADMIN or STUDENT")
		}
		role = *req.Role
	}
	return s.create(ctx, req, role)
}

func (s *Service) create(ctx context.Context, req CreateMemberRequest, role string) (*UserResponse, error) {
	email := strings.TrimSpace(strings.ToLower(req.Email))
	if err := ValidateNewPassword(req.Password); err != nil {
		return nil, err
	}
	if !strings.Contains(email, "@") {
		return nil, httpx.ErrInvalid("invalid email")
	}

	exists, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if exists != nil {
		return nil, httpx.ErrConflict("Email sudah terdaftar")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	id, err := s.id.New()
	if err != nil {
		return nil, err
	}

	u := &User{
		ID:           id,
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}
	setNullString(&u.ClassID, req.ClassID)
	setNullString(&u.MajorID, req.MajorID)

	if err := s.store.Insert(ctx, u); err != nil {
		return nil, err
	}
	resp := toUserResponse(u)
	return &resp, nil
}

// UpdateMember keeps the stored password when req.Password is empty.
func (s *Service) UpdateMember(ctx context.Context, id string, req UpdateMemberRequest) (*UserResponse, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, httpx.ErrNotFound("user not found")
	}

	if req.Password != nil && *req.Password != "" {
		if err := ValidateNewPassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = string(hash)
	}

	u.Name = strings.TrimSpace(req.Name)
	u.Email = strings.TrimSpace(strings.ToLower(req.Email))
	setNullString(&u.ClassID, req.ClassID)
	setNullString(&u.MajorID, req.MajorID)
	setNullString(&u.AvatarURL, req.Avatar)

	n, err := s.store.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, httpx.ErrNotFound("user not found")
	}
	resp := toUserResponse(u)
	return &resp, nil
}

func (s *Service) DeleteMember(ctx context.Context, id string) error {
	n, err := s.store.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return httpx.ErrNotFound("user not found")
	}
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*UserResponse, error) {
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, httpx.ErrNotFound("user not found")
	}
	resp := toUserResponse(u)
	return &resp, nil
}

func (s *Service) List(ctx context.Context, f UserFilter) ([]UserResponse, error) {
	users, err := s.store.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out, nil
}

// AdminContacts lists the librarians a student can start a conversation
// with. Open to every signed-in user, unlike the member listing.
func (s *Service) AdminContacts(ctx context.Context) ([]ContactResponse, error) {
	users, err := s.store.List(ctx, UserFilter{Role: auth.RoleAdmin})
	if err != nil {
		return nil, err
	}
	out := make([]ContactResponse, 0, len(users))
	for i := range users {
		out = append(out, toContactResponse(&users[i]))
	}
	return out, nil
}

// ValidateNewPassword applies the create-time rule. Edits that leave the
// password blank skip it entirely.
func ValidateNewPassword(pw string) error {
	if len(pw) < minPasswordLen {
		return httpx.ErrInvalid("Password minimal 6 karakter")
	}
	return nil
}

func setNullString(dst *sql.NullString, v *string) {
	if v != nil && *v != "" {
		dst.String = *v
		dst.Valid = true
	} else {
		dst.String = ""
		dst.Valid = false
	}
}
