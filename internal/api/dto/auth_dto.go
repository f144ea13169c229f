package dto

import "time"

// RegisterRequest payload.
type RegisterRequest struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	CPF      *string `json:"cpf,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public account projection.
type UserResponse struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	CPF                 *string    `json:"cpf,omitempty"`
	Phone               *string    `json:"phone,omitempty"`
	Admin               bool       `json:"admin"`
	CreatedAt           time.Time  `json:"created_at"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	NotificationsSeenAt *time.Time `json:"notifications_seen_at,omitempty"`
}

// LoginResponse bundles token and account.
type LoginResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}

// UpdateProfileRequest payload.
type UpdateProfileRequest struct {
	Phone *string `json:"phone"`
}

// PasswordResetRequest payload.
type PasswordResetRequest struct {
	Email string `json:"email"`
}

// PasswordResetConfirmRequest payload.
type PasswordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}
