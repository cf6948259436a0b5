package auth

import (
	"encoding/json"
	"time"

	"jobpilot-admin/internal/roles"
	"jobpilot-admin/internal/session"
)

// LoginResponse is what the dashboard keeps after logging in. The JobPilot
// tokens stay in the session; only the service token is handed out.
type LoginResponse struct {
	Token       string            `json:"token"`
	TokenType   string            `json:"tokenType"`
	ExpiresAt   time.Time         `json:"expiresAt"`
	User        *session.User     `json:"user"`
	Role        roles.Role        `json:"role"`
	Permissions roles.Permissions `json:"permissions"`
}

// Result is an upstream answer relayed as is
type Result struct {
	Message string          `json:"-"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// PermissionsResponse drives which action buttons the dashboard shows
type PermissionsResponse struct {
	Authenticated bool              `json:"authenticated"`
	Role          roles.Role        `json:"role"`
	Permissions   roles.Permissions `json:"permissions"`
}
