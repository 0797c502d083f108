package request

import (
	"encoding/json"

	"github.com/rs/zerolog"
)

type Register struct {
	Name     string `validate:"required,min=3,max=100" json:"name"`
	Email    string `validate:"required,email"         json:"email"`
	Password string `validate:"required,min=6,max=128" json:"password"`
}

func (r Register) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", r.Email).Str("name", r.Name)
}

func (r Register) MarshalJSON() ([]byte, error) {
	r.Password = "***"
	type R Register
	return json.Marshal(R(r))
}

type ForgotPassword struct {
	Email       string `validate:"required,email"         json:"email"`
	NewPassword string `validate:"required,min=6,max=128" json:"newPassword"`
}

func (f ForgotPassword) MarshalZerologObject(e *zerolog.Event) {
	e.Str("email", f.Email).Str("newPassword", "***")
}

func (f ForgotPassword) MarshalJSON() ([]byte, error) {
	f.NewPassword = "***"
	type F ForgotPassword
	return json.Marshal(F(f))
}
