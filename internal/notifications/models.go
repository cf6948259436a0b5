package notifications

// FilterKeys are the list filters the notifications endpoint understands
var FilterKeys = []string{"type", "read"}

// Types are the notification kinds the API emits
var Types = []string{"applied", "shortlisted", "interview", "offer", "system"}

type Notification struct {
	ID        string                 `json:"id,omitempty"`
	MongoID   string                 `json:"_id,omitempty"`
	Title     string                 `json:"title"`
	Text      string                 `json:"text"`
	Type      string                 `json:"type"`
	Read      bool                   `json:"read"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt string                 `json:"createdAt,omitempty"`
}

func (n Notification) Identifier() string {
	if n.ID != "" {
		return n.ID
	}
	return n.MongoID
}

type UnreadCount struct {
	Count int `json:"count"`
}

// MarkAllResult reports how many notifications a mark-all-read touched
type MarkAllResult struct {
	ModifiedCount int `json:"modifiedCount"`
}

type markAllRequest struct {
	Type string `json:"type,omitempty" form:"type"`
}
