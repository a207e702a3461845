package dto

import "time"

type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email" example:"student@example.com"`
	Username string `json:"username" validate:"required,min=3,max=30,alphanum" example:"satgrinder"`
	Password string `json:"password" validate:"required,strong_password" example:"SecurePass123!"`
}

func (r RegisterRequest) Validate() error {
	return GetValidator().Struct(r)
}

type RegisterResponse struct {
	UserID   string    `json:"user_id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
	Tokens   TokenPair `json:"tokens"`
}

type LoginRequest struct {
	EmailOrUsername string `json:"email_or_username" validate:"required" example:"student@example.com"`
	Password        string `json:"password" validate:"required" example:"SecurePass123!"`
	DeviceID        string `json:"device_id,omitempty" example:"device_12345"`
}

func (l LoginRequest) Validate() error {
	return GetValidator().Struct(l)
}

type LoginResponse struct {
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	TokenPair TokenPair `json:"tokens"`
	LoginAt   time.Time `json:"login_at"`
}

type UsernameAvailabilityResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
}
