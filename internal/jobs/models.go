package jobs

import (
	"jobpilot-admin/internal/library"
)

// FilterKeys are the list filters the job endpoint understands
var FilterKeys = []string{"status"}

// RecentLimit is how many applications the dashboard shows
const RecentLimit = 5

// Job is one tracked job application
type Job struct {
	ID          string `json:"id,omitempty"`
	MongoID     string `json:"_id,omitempty"`
	CompanyName string `json:"companyName"`
	JobTitle    string `json:"jobTitle"`
	JdLink      string `json:"jdLink,omitempty"`
	Status      string `json:"status"`
	AppliedDate string `json:"appliedDate,omitempty"`
	UserID      string `json:"userId,omitempty"`
	AdminID     string `json:"adminId,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

func (j Job) Identifier() string {
	if j.ID != "" {
		return j.ID
	}
	return j.MongoID
}

// Stats is the upstream dashboard aggregate, passed through untouched
type Stats map[string]interface{}

// Dashboard is the home screen: counters, the latest applications and
// a few library items.
type Dashboard struct {
	Stats      Stats          `json:"stats"`
	RecentJobs []Job          `json:"recentJobs"`
	Library    []library.Item `json:"library"`
}
