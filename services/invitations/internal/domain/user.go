package domain

import (
	"time"

	"github.com/cris-imc/invitaciones-sub002/pkg/textutil"
)

const MinPasswordLength = 8

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type UserInfo struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (u *User) ToUserInfo() *UserInfo {
	return &UserInfo{ID: u.ID, Email: u.Email, Name: u.Name}
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = textutil.NormalizeEmail(r.Email)
	r.Name = textutil.NormalizeString(r.Name)
}

func (r RegisterRequest) Validate() error {
	if !textutil.IsValidEmail(r.Email) {
		return Invalid("email", "is not a valid email address")
	}
	if len(r.Password) < MinPasswordLength {
		return Invalid("password", "must be at least 8 characters")
	}
	if r.Name == "" {
		return Invalid("name", "is required")
	}
	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *LoginRequest) Normalize() {
	r.Email = textutil.NormalizeEmail(r.Email)
}

func (r LoginRequest) Validate() error {
	if r.Email == "" || r.Password == "" {
		return Invalid("", "email and password are required")
	}
	return nil
}

type LoginResponse struct {
	AccessToken string    `json:"accessToken"`
	ExpiresIn   int64     `json:"expiresIn"`
	User        *UserInfo `json:"user"`
}
