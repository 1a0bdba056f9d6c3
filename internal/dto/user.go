package dto

import (
	"github.com/google/uuid"
	"github.com/yukikurage/project-collab-api/internal/models"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID    uuid.UUID   `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// AuthResponse is returned by signup and login
type AuthResponse struct {
	User  UserDTO `json:"user"`
	Token string  `json:"token,omitempty"`
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	return UserDTO{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	}
}

// toUserRef returns nil for a relation that was not loaded
func toUserRef(user models.User) *UserDTO {
	if user.ID == uuid.Nil {
		return nil
	}
	u := ToUserDTO(user)
	return &u
}
