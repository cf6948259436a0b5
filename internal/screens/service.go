package screens

import (
	"fmt"
	"strings"
	"time"

	"jobpilot-admin/internal/forms"
	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/querycache"
	"jobpilot-admin/internal/roles"
	"jobpilot-admin/internal/session"
)

type Service interface {
	Open(sess *session.Store, req OpenRequest) (*listview.Screen, error)
	Get(sess *session.Store, id string) (*listview.Screen, error)
	Update(sess *session.Store, id string, patch listview.Patch) (*listview.Screen, error)
	Retry(sess *session.Store, id string) (*listview.Screen, error)
	Close(sess *session.Store, id string) error
}

type service struct {
	catalog  Catalog
	registry *listview.Registry
	cache    *querycache.Cache
	debounce time.Duration
}

func NewService(catalog Catalog, registry *listview.Registry, cache *querycache.Cache, debounce time.Duration) Service {
	return &service{catalog: catalog, registry: registry, cache: cache, debounce: debounce}
}

// Open subscribes a new screen to the first page of a resource. Filters the
// resource does not support are dropped.
func (s *service) Open(sess *session.Store, req OpenRequest) (*listview.Screen, error) {
	res, ok := s.catalog[req.Resource]
	if !ok {
		return nil, forms.ValidationErrors{{
			Field:   "resource",
			Rule:    "oneof",
			Message: fmt.Sprintf("Resource must be one of: %s", strings.Join(s.catalog.Names(), ", ")),
		}}
	}

	state := req.State
	state.Filters = allowed(state.Filters, res.FilterKeys)

	return s.registry.Open(listview.ScreenConfig{
		Scope:       sess.ID(),
		Resource:    req.Resource,
		Cache:       s.cache,
		Source:      res.Source(sess),
		Permissions: roles.PermissionsFor(sess.Role()),
		State:       state,
		Debounce:    s.debounce,
	})
}

func (s *service) Get(sess *session.Store, id string) (*listview.Screen, error) {
	return s.registry.Get(id, sess.ID())
}

func (s *service) Update(sess *session.Store, id string, patch listview.Patch) (*listview.Screen, error) {
	screen, err := s.registry.Get(id, sess.ID())
	if err != nil {
		return nil, err
	}
	if patch.Filters != nil {
		patch.Filters = allowedPatch(patch.Filters, s.catalog[screen.Resource()].FilterKeys)
	}
	if _, err := screen.Update(patch); err != nil {
		return nil, err
	}
	return screen, nil
}

func (s *service) Retry(sess *session.Store, id string) (*listview.Screen, error) {
	screen, err := s.registry.Get(id, sess.ID())
	if err != nil {
		return nil, err
	}
	return screen, screen.Retry()
}

func (s *service) Close(sess *session.Store, id string) error {
	return s.registry.Close(id, sess.ID())
}

func allowed(filters map[string]string, keys []string) map[string]string {
	if len(filters) == 0 {
		return nil
	}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := filters[k]; ok && v != "" {
			out[k] = v
		}
	}
	return out
}

// allowedPatch keeps empty values, which clear a filter
func allowedPatch(filters map[string]string, keys []string) map[string]string {
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v, ok := filters[k]; ok {
			out[k] = v
		}
	}
	return out
}
