package handlers

import (
	"time"

	"moodwall/internal/models"
)

// UserDTO is the profile as returned to its owner.
type UserDTO struct {
	ID          string             `json:"id"`
	DisplayName *string            `json:"display_name,omitempty"`
	Email       string             `json:"email,omitempty"`
	Preferences models.Preferences `json:"preferences"`
	IsGuest     bool               `json:"is_guest"`
	IsAdmin     bool               `json:"is_admin"`
	CreatedAt   string             `json:"created_at"`
}

func toDateTimeString(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func ToUserDTO(u models.User) UserDTO {
	prefs := u.Preferences
	if prefs == nil {
		prefs = models.Preferences{}
	}
	return UserDTO{
		ID:          u.ID,
		DisplayName: u.DisplayName,
		Preferences: prefs,
		IsGuest:     u.IsGuest(),
		IsAdmin:     u.IsAdmin,
		CreatedAt:   toDateTimeString(u.CreatedAt),
	}
}

type tokenResponse struct {
	Token   string  `json:"token"`
	GuestID string  `json:"guest_id,omitempty"`
	User    UserDTO `json:"user"`
}
