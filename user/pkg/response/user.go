package response

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopique/storefront/internal/repository"
)

type User struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func NewUser(u repository.User) User {
	return User{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type Login struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
