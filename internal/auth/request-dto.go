package auth

import "jobpilot-admin/internal/forms"

// Bodies sent upstream. Confirmation fields are checked locally and never
// forwarded.

type registerRequest struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	Designation string `json:"Designation"`
	Password    string `json:"password"`
}

func newRegisterRequest(f *forms.RegisterForm) registerRequest {
	return registerRequest{
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		Email:       f.Email,
		PhoneNumber: f.PhoneNumber,
		Designation: f.Designation,
		Password:    f.Password,
	}
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type resetPasswordRequest struct {
	Email           string `json:"email"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"ConfirmPassword"`
}

type refreshTokenRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	RefreshToken string `json:"refreshToken,omitempty"`
}
