package dto

import "roomsense/internal/domains/user/model"

// UserSummary is the public part of a user attached to bookings.
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *UserSummary) FromModel(model model.User) {
	u.ID = model.ID
	u.Name = model.Name
	u.Email = model.Email
}
