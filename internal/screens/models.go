package screens

import (
	"sort"

	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/session"
)

// Resource is one list the dashboard can open as a screen
type Resource struct {
	FilterKeys []string
	Source     func(sess *session.Store) listview.Source
}

// Catalog maps resource names ("users", "jobs", ...) to their lists
type Catalog map[string]Resource

// Names returns the resource names, sorted
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type OpenRequest struct {
	Resource string         `json:"resource" binding:"required"`
	State    listview.State `json:"state"`
}

// ScreenResponse is returned when a screen is opened or changed
type ScreenResponse struct {
	ID       string         `json:"id"`
	Resource string         `json:"resource"`
	State    listview.State `json:"state"`
	Frame    listview.Frame `json:"frame"`
}

func responseFor(s *listview.Screen) ScreenResponse {
	return ScreenResponse{ID: s.ID(), Resource: s.Resource(), State: s.State(), Frame: s.Last()}
}
