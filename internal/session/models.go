package session

import (
	"time"

	"jobpilot-admin/internal/roles"
)

// State is the authentication state of one dashboard session
type State int

const (
	Unauthenticated State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// User is the identity returned by the JobPilot API on login. The API is
// inconsistent about id naming, so both id and _id are accepted.
type User struct {
	ID             string `json:"id,omitempty"`
	MongoID        string `json:"_id,omitempty"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	FullName       string `json:"fullName,omitempty"`
	Email          string `json:"email,omitempty"`
	PhoneNumber    string `json:"phoneNumber,omitempty"`
	Role           string `json:"role,omitempty"`
	Designation    string `json:"Designation,omitempty"`
	ProfileImage   string `json:"profileImage,omitempty"`
	IsBlocked      bool   `json:"isBlocked,omitempty"`
	IsSubscription bool   `json:"isSubscription,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
}

// Identifier returns whichever id the API populated
func (u User) Identifier() string {
	if u.ID != "" {
		return u.ID
	}
	return u.MongoID
}

// Snapshot is a read-only copy of a session's state
type Snapshot struct {
	ID              string            `json:"id"`
	State           string            `json:"state"`
	Authenticated   bool              `json:"authenticated"`
	User            *User             `json:"user,omitempty"`
	Role            roles.Role        `json:"role"`
	Permissions     roles.Permissions `json:"permissions"`
	HasRefreshToken bool              `json:"hasRefreshToken"`
}

// Record is what a Storage persists for one session: field name to value,
// using the field names from constants.SessionFields.
type Record map[string]string

// SessionEntry is one persisted session field in Postgres
type SessionEntry struct {
	SessionID string     `json:"session_id" gorm:"primaryKey;size:64"`
	Field     string     `json:"field" gorm:"primaryKey;size:32"`
	Value     string     `json:"-" gorm:"type:text;not null"`
	ExpiresAt *time.Time `json:"expires_at" gorm:"index"`
	CreatedAt time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (SessionEntry) TableName() string {
	return "session_entries"
}
