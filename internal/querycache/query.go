package querycache

import (
	"context"
	"errors"
	"net/url"
	"time"

	"jobpilot-admin/internal/shared/constants"
)

var (
	ErrUnknownQuery       = errors.New("query is not declared in the tag graph")
	ErrUnknownMutation    = errors.New("mutation is not declared in the tag graph")
	ErrSubscriptionClosed = errors.New("subscription closed")
	ErrCacheClosed        = errors.New("query cache closed")
	ErrFetchPanicked      = errors.New("query fetch panicked")
)

// Status of a cached result
type Status int

const (
	StatusPending Status = iota
	StatusFulfilled
	StatusRejected
)

func (s Status) String() string {
	switch s {
	case StatusFulfilled:
		return "fulfilled"
	case StatusRejected:
		return "rejected"
	default:
		return "pending"
	}
}

// Result is what subscribers see. A rejected result keeps the data of the
// last successful fetch so a screen can show it next to the error.
type Result struct {
	Status    Status
	Data      interface{}
	Err       error
	Stale     bool // a newer fetch has been requested
	Version   uint64
	UpdatedAt time.Time
}

// Settled reports whether the result is final for the current data
func (r Result) Settled() bool {
	return r.Status != StatusPending && !r.Stale
}

// FetchFunc loads a query's data. The context is cancelled when the last
// subscriber leaves.
type FetchFunc func(ctx context.Context) (interface{}, error)

// Query identifies one cacheable read. Scope separates sessions, Name picks
// the tags from the static graph and Params complete the key.
type Query struct {
	Scope  string
	Name   constants.QueryName
	Params url.Values
	Fetch  FetchFunc
}

// Key returns the cache key within the query's scope
func (q Query) Key() string {
	return constants.BuildQueryKey(q.Name, q.Params)
}

func (q Query) entryID() string {
	return q.Scope + "|" + q.Key()
}
