package types

import (
	"encoding/json"
	"time"
)

// RegisterRequest is the body sent to the auth API's POST /register.
// The profile fields seed the first CV draft.
type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,min=2,max=100"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=8"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
	CargoDeseado         string `json:"cargo_deseado,omitempty"`
	ExperienciaLaboral   string `json:"experiencia_laboral,omitempty"`
	Educacion            string `json:"educacion,omitempty"`
	Habilidades          string `json:"habilidades,omitempty"`
	Idiomas              string `json:"idiomas,omitempty"`
}

// LoginRequest is the body sent to the auth API's POST /login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// User is the account returned by the auth API.
type User struct {
	ID        json.Number `json:"id,omitempty"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	CreatedAt *time.Time  `json:"created_at,omitempty"`
}

// LoginResponse is the auth API's login/register reply. Token is empty for
// cookie-only sessions.
type LoginResponse struct {
	User    *User  `json:"user,omitempty"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
}

// Validate validates the RegisterRequest using the validator.
func (r *RegisterRequest) Validate() error {
	return validateStruct(r)
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	return validateStruct(r)
}
