// Package listview implements the dashboard's paginated list screens: the
// paging state, the "Showing x–y of n" summary and live screens that follow
// a query-cache subscription.
package listview

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"jobpilot-admin/internal/normalize"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100

	// MaxPage keeps (Page-1)*PageSize within int for every allowed page size
	MaxPage = math.MaxInt / MaxPageSize
)

// State is the paging, search and filter input of one list
type State struct {
	Page     int               `json:"page" form:"page"`
	PageSize int               `json:"pageSize" form:"limit"`
	Search   string            `json:"search,omitempty" form:"search"`
	Filters  map[string]string `json:"filters,omitempty"`
}

// DefaultState is page 1 of 10 with no search or filters
func DefaultState() State {
	return State{Page: DefaultPage, PageSize: DefaultPageSize}
}

// Normalized fills defaults and clamps the page size
func (s State) Normalized() State {
	if s.Page < 1 {
		s.Page = DefaultPage
	}
	if s.Page > MaxPage {
		s.Page = MaxPage
	}
	if s.PageSize < 1 {
		s.PageSize = DefaultPageSize
	}
	if s.PageSize > MaxPageSize {
		s.PageSize = MaxPageSize
	}
	s.Search = strings.TrimSpace(s.Search)

	if len(s.Filters) > 0 {
		filters := make(map[string]string, len(s.Filters))
		for k, v := range s.Filters {
			if v = strings.TrimSpace(v); k != "" && v != "" {
				filters[k] = v
			}
		}
		s.Filters = filters
	}
	if len(s.Filters) == 0 {
		s.Filters = nil
	}
	return s
}

// Params renders the state as the query string the list endpoints accept
func (s State) Params() url.Values {
	s = s.Normalized()
	v := url.Values{}
	v.Set("page", strconv.Itoa(s.Page))
	v.Set("limit", strconv.Itoa(s.PageSize))
	if s.Search != "" {
		v.Set("search", s.Search)
	}
	for k, val := range s.Filters {
		v.Set(k, val)
	}
	return v
}

// Equal compares two states after normalization
func (s State) Equal(o State) bool {
	a, b := s.Normalized(), o.Normalized()
	if a.Page != b.Page || a.PageSize != b.PageSize || a.Search != b.Search || len(a.Filters) != len(b.Filters) {
		return false
	}
	for k, v := range a.Filters {
		if b.Filters[k] != v {
			return false
		}
	}
	return true
}

// FromQuery reads page, limit, search and the allowed filter keys from a
// request query string.
func FromQuery(q url.Values, filterKeys ...string) State {
	s := DefaultState()
	if n, err := strconv.Atoi(q.Get("page")); err == nil {
		s.Page = n
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil {
		s.PageSize = n
	}
	s.Search = q.Get("search")
	for _, k := range filterKeys {
		if v := q.Get(k); v != "" {
			if s.Filters == nil {
				s.Filters = map[string]string{}
			}
			s.Filters[k] = v
		}
	}
	return s.Normalized()
}

// Patch is a partial state change. Nil fields are left alone.
type Patch struct {
	Page     *int              `json:"page,omitempty"`
	PageSize *int              `json:"pageSize,omitempty"`
	Search   *string           `json:"search,omitempty"`
	Filters  map[string]string `json:"filters,omitempty"`
}

// Apply returns the patched state. A new search or filter value sends the
// list back to page 1 unless the patch also sets the page.
func (s State) Apply(p Patch) State {
	next := s
	resetPage := false

	if p.PageSize != nil {
		next.PageSize = *p.PageSize
	}
	if p.Search != nil && strings.TrimSpace(*p.Search) != s.Search {
		next.Search = *p.Search
		resetPage = true
	}
	if p.Filters != nil {
		filters := make(map[string]string, len(s.Filters)+len(p.Filters))
		for k, v := range s.Filters {
			filters[k] = v
		}
		for k, v := range p.Filters {
			if v == "" {
				delete(filters, k)
			} else {
				filters[k] = v
			}
			if s.Filters[k] != strings.TrimSpace(v) {
				resetPage = true
			}
		}
		next.Filters = filters
	}

	if p.Page != nil {
		next.Page = *p.Page
	} else if resetPage {
		next.Page = DefaultPage
	}
	return next.Normalized()
}

// OnlySearch reports whether p changes nothing but the search text
func (p Patch) OnlySearch() bool {
	return p.Search != nil && p.Page == nil && p.PageSize == nil && len(p.Filters) == 0
}

// Summary renders "Showing 1–10 of 25" for the page s is on
func Summary(s State, total int) string {
	s = s.Normalized()
	if total <= 0 {
		return "Showing 0 of 0"
	}

	start := (s.Page-1)*s.PageSize + 1
	if start > total {
		return fmt.Sprintf("Showing 0 of %d", total)
	}
	end := start + s.PageSize - 1
	if end > total {
		end = total
	}
	return fmt.Sprintf("Showing %d–%d of %d", start, end, total)
}

// Paginate slices one page out of a full collection
func Paginate[T any](items []T, page, limit int) []T {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if page-1 >= len(items)/limit+1 {
		return []T{}
	}

	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// Fit pages a result client-side when the API ignored page and limit and
// returned the whole collection. A collection that fits on page 1 is left
// as is; later pages of it are empty.
func Fit[T any](p normalize.Page[T], s State) normalize.Page[T] {
	s = s.Normalized()
	if p.Total > len(p.Items) || (len(p.Items) <= s.PageSize && s.Page == 1) {
		return p
	}
	return normalize.Page[T]{
		Items: Paginate(p.Items, s.Page, s.PageSize),
		Total: len(p.Items),
		Page:  s.Page,
		Limit: s.PageSize,
	}
}

// filterKeys returns sorted filter names, for stable logs
func (s State) filterKeys() []string {
	keys := make([]string, 0, len(s.Filters))
	for k := range s.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
