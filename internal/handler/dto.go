package handler

import "github.com/gameforge/gameforge/internal/domain"

// UserDTO is the JSON representation of a user. It is built from the
// public projection, so it cannot carry a password hash.
type UserDTO struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserDTO(u *domain.PublicUser) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}
