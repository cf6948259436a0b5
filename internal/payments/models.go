package payments

import (
	"bytes"
	"encoding/json"
	"strings"

	"jobpilot-admin/internal/forms"
)

// Gateways are the payment channels the API accepts
var Gateways = []string{"JobPilot", "PayPal", "Bank", "Payonner"}

// UserRef is the payer. The API sends either the bare user id or the
// populated user, keyed by id or _id.
type UserRef struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	FullName  string `json:"fullName,omitempty"`
	Email     string `json:"email,omitempty"`
}

// DisplayName prefers the API's full name and falls back to first and
// last name.
func (u UserRef) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *UserRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		*u = UserRef{}
		return json.Unmarshal(data, &u.ID)
	}

	type plain UserRef
	var p struct {
		plain
		AltID string `json:"id"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*u = UserRef(p.plain)
	if u.ID == "" {
		u.ID = p.AltID
	}
	return nil
}

// MarshalJSON always carries the display name as fullName
func (u UserRef) MarshalJSON() ([]byte, error) {
	type plain UserRef
	p := plain(u)
	p.FullName = u.DisplayName()
	return json.Marshal(p)
}

type Payment struct {
	ID            string       `json:"id,omitempty"`
	MongoID       string       `json:"_id,omitempty"`
	User          *UserRef     `json:"userId,omitempty"`
	Amount        forms.Amount `json:"amount"`
	TransactionID string       `json:"transactionId,omitempty"`
	Gateway       string       `json:"gateway"`
	Status        string       `json:"status,omitempty"`
	Date          string       `json:"date,omitempty"`
	CreatedAt     string       `json:"createdAt,omitempty"`
}

func (p Payment) Identifier() string {
	if p.ID != "" {
		return p.ID
	}
	return p.MongoID
}

// DisplayAmount is the amount as the payments table shows it
func (p Payment) DisplayAmount() string {
	return p.Amount.Display()
}
