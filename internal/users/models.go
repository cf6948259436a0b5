package users

import (
	"jobpilot-admin/internal/session"
)

// FilterKeys are the list filters the users endpoint understands
var FilterKeys = []string{"role"}

// User is a JobPilot account as the users endpoints return it
type User struct {
	ID              string `json:"id,omitempty"`
	MongoID         string `json:"_id,omitempty"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
	FullName        string `json:"fullName,omitempty"`
	Email           string `json:"email"`
	PhoneNumber     string `json:"phoneNumber,omitempty"`
	Role            string `json:"role"`
	Designation     string `json:"Designation,omitempty"`
	Address         string `json:"address,omitempty"`
	ProfileImage    string `json:"profileImage,omitempty"`
	CV              string `json:"CV,omitempty"`
	IsBlocked       bool   `json:"isBlocked"`
	IsEmailVerified bool   `json:"isEmailVerified,omitempty"`
	IsSubscription  bool   `json:"isSubscription,omitempty"`
	CreatedAt       string `json:"createdAt,omitempty"`
}

// Identifier returns whichever id the API populated
func (u User) Identifier() string {
	if u.ID != "" {
		return u.ID
	}
	return u.MongoID
}

// SessionUser converts u into the identity a session keeps
func (u User) SessionUser() session.User {
	return session.User{
		ID:             u.ID,
		MongoID:        u.MongoID,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		FullName:       u.FullName,
		Email:          u.Email,
		PhoneNumber:    u.PhoneNumber,
		Role:           u.Role,
		Designation:    u.Designation,
		ProfileImage:   u.ProfileImage,
		IsBlocked:      u.IsBlocked,
		IsSubscription: u.IsSubscription,
		CreatedAt:      u.CreatedAt,
	}
}
