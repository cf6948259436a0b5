package users

import "jobpilot-admin/internal/forms"

// updateRequest is the JSON body of a user update. Empty fields are left
// out so they do not overwrite stored values.
type updateRequest struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Designation string `json:"Designation,omitempty"`
	Address     string `json:"address,omitempty"`
}

func newUpdateRequest(f *forms.UpdateUserForm) updateRequest {
	return updateRequest{
		FirstName:   f.FirstName,
		LastName:    f.LastName,
		Email:       f.Email,
		PhoneNumber: f.PhoneNumber,
		Designation: f.Designation,
		Address:     f.Address,
	}
}
