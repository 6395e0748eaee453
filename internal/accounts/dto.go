package accounts

import "time"

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type RegisterRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password" binding:"required"`
	ClassID  *string `json:"class_id,omitempty"`
	MajorID  *string `json:"major_id,omitempty"`
}

// CreateMemberRequest is the admin-side create. Role may be ADMIN here,
// self-registration is always STUDENT.
type CreateMemberRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required"`
	Password string  `json:"password" binding:"required"`
	Role     *string `json:"role,omitempty"`
	ClassID  *string `json:"class_id,omitempty"`
	MajorID  *string `json:"major_id,omitempty"`
}

// UpdateMemberRequest leaves the password optional; empty means keep.
type UpdateMemberRequest struct {
	Name     string  `json:"name" binding:"required"`
	Email    string  `json:"email" binding:"required"`
	Password *string `json:"password,omitempty"`
	ClassID  *string `json:"class_id,omitempty"`
	MajorID  *string `json:"major_id,omitempty"`
	Avatar   *string `json:"avatar,omitempty"`
}

type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	ClassID   *string   `json:"class_id,omitempty"`
	MajorID   *string   `json:"major_id,omitempty"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ContactResponse is the minimal card shown when picking a message
// recipient; no email, no role internals.
type ContactResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Avatar *string `json:"avatar,omitempty"`
}

func toContactResponse(u *User) ContactResponse {
	c := ContactResponse{ID: u.ID, Name: u.Name}
	if u.AvatarURL.Valid {
		c.Avatar = &u.AvatarURL.String
	}
	return c
}

func toUserResponse(u *User) UserResponse {
	r := UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
	if u.ClassID.Valid {
		r.ClassID = &u.ClassID.String
	}
	if u.MajorID.Valid {
		r.MajorID = &u.MajorID.String
	}
	if u.AvatarURL.Valid {
		r.Avatar = &u.AvatarURL.String
	}
	return r
}
