package reports

type Person struct {
	Name string `json:"name"`
}

// Report is a content report filed by a user against another user's post
type Report struct {
	ID          string `json:"id,omitempty"`
	MongoID     string `json:"_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Author      Person `json:"author"`
	ReportBy    Person `json:"reportBy"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

func (r Report) Identifier() string {
	if r.ID != "" {
		return r.ID
	}
	return r.MongoID
}
