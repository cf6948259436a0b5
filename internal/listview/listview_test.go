package listview

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-admin/internal/apiclient"
	"jobpilot-admin/internal/normalize"
	"jobpilot-admin/internal/querycache"
	"jobpilot-admin/internal/roles"
	"jobpilot-admin/internal/shared/constants"
	"jobpilot-admin/pkg/logger"
)

const waitFor = 2 * time.Second

func quietLogger() *logger.Logger {
	return logger.NewWithHandler(slog.NewTextHandler(io.Discard, nil))
}

func intsUpTo(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name  string
		state State
		total int
		want  string
	}{
		{"first page", State{Page: 1, PageSize: 10}, 25, "Showing 1–10 of 25"},
		{"last partial page", State{Page: 3, PageSize: 10}, 25, "Showing 21–25 of 25"},
		{"empty", State{Page: 1, PageSize: 10}, 0, "Showing 0 of 0"},
		{"past the end", State{Page: 9, PageSize: 10}, 25, "Showing 0 of 25"},
		{"defaults", State{}, 3, "Showing 1–3 of 3"},
		{"huge page", State{Page: math.MaxInt, PageSize: 100}, 25, "Showing 0 of 25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.state, tt.total))
		})
	}
}

func TestPaginate(t *testing.T) {
	items := intsUpTo(25)

	assert.Equal(t, intsUpTo(10), Paginate(items, 1, 10))
	assert.Equal(t, []int{21, 22, 23, 24, 25}, Paginate(items, 3, 10))
	assert.Empty(t, Paginate(items, 4, 10))
	assert.Len(t, Paginate(items, 0, 0), 10)
	assert.Empty(t, Paginate(items, math.MaxInt, 10))
}

func TestNormalized_CapsPage(t *testing.T) {
	s := State{Page: math.MaxInt, PageSize: MaxPageSize}.Normalized()
	assert.Equal(t, MaxPage, s.Page)
	assert.Positive(t, (s.Page-1)*s.PageSize)
}

func TestFit(t *testing.T) {
	full := normalize.Page[int]{Items: intsUpTo(25), Total: 25}
	got := Fit(full, State{Page: 3, PageSize: 10})
	assert.Equal(t, []int{21, 22, 23, 24, 25}, got.Items)
	assert.Equal(t, 25, got.Total)

	paged := normalize.Page[int]{Items: intsUpTo(10), Total: 25}
	assert.Equal(t, paged, Fit(paged, State{Page: 1, PageSize: 10}))
}

func TestFit_ShortUnpagedCollection(t *testing.T) {
	short := normalize.Page[int]{Items: intsUpTo(8), Total: 8}

	assert.Equal(t, short, Fit(short, State{Page: 1, PageSize: 10}))

	second := Fit(short, State{Page: 2, PageSize: 10})
	assert.Empty(t, second.Items)
	assert.Equal(t, 8, second.Total)
	assert.Equal(t, "Showing 0 of 8", Summary(State{Page: 2, PageSize: 10}, second.Total))
}

func TestState_Apply(t *testing.T) {
	s := State{Page: 3, PageSize: 10, Search: "ada"}

	next := s.Apply(Patch{Search: strPtr("grace")})
	assert.Equal(t, 1, next.Page, "new search goes back to page 1")
	assert.Equal(t, "grace", next.Search)

	next = s.Apply(Patch{Filters: map[string]string{"role": "analyst"}})
	assert.Equal(t, 1, next.Page)
	assert.Equal(t, map[string]string{"role": "analyst"}, next.Filters)

	next = next.Apply(Patch{Filters: map[string]string{"role": ""}})
	assert.Nil(t, next.Filters)

	next = s.Apply(Patch{Page: intPtr(2), Search: strPtr("grace")})
	assert.Equal(t, 2, next.Page, "explicit page wins")

	next = s.Apply(Patch{Search: strPtr("ada")})
	assert.Equal(t, 3, next.Page, "unchanged search keeps the page")
}

func TestFromQueryAndParams(t *testing.T) {
	q := url.Values{"page": {"2"}, "limit": {"500"}, "search": {" ada "}, "role": {"admin"}, "ignored": {"x"}}
	s := FromQuery(q, "role")

	assert.Equal(t, State{Page: 2, PageSize: MaxPageSize, Search: "ada", Filters: map[string]string{"role": "admin"}}, s)
	assert.Equal(t, url.Values{
		"page":   {"2"},
		"limit":  {strconv.Itoa(MaxPageSize)},
		"search": {"ada"},
		"role":   {"admin"},
	}, s.Params())

	assert.True(t, FromQuery(url.Values{}).Equal(DefaultState()))
}

// fakeUsers serves 25 ids filtered by search length and records every load
type fakeUsers struct {
	mu       sync.Mutex
	searches []string
	loads    atomic.Int32
	err      error
}

func (f *fakeUsers) source(scope string) Source {
	return func(state State) querycache.Query {
		return querycache.Query{
			Scope:  scope,
			Name:   constants.QueryUsersList,
			Params: state.Params(),
			Fetch: func(ctx context.Context) (interface{}, error) {
				f.loads.Add(1)
				f.mu.Lock()
				f.searches = append(f.searches, state.Search)
				err := f.err
				f.mu.Unlock()
				if err != nil {
					return nil, err
				}
				full := normalize.Page[int]{Items: intsUpTo(25), Total: 25}
				return Fit(full, state), nil
			},
		}
	}
}

func (f *fakeUsers) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searches...)
}

func newTestScreen(t *testing.T, f *fakeUsers, debounce time.Duration) (*Screen, *querycache.Cache) {
	t.Helper()
	cache := querycache.New(querycache.Config{Logger: quietLogger()})
	t.Cleanup(cache.Close)

	s, err := NewScreen(ScreenConfig{
		ID:          "screen-1",
		Scope:       "session-1",
		Resource:    "users",
		Cache:       cache,
		Source:      f.source("session-1"),
		Permissions: roles.PermissionsFor(roles.RoleAnalyst),
		State:       DefaultState(),
		Debounce:    debounce,
		Logger:      quietLogger(),
	})
	require.NoError(t, err)
	t.Cleanup(s.Close)
	return s, cache
}

func waitFrame(t *testing.T, ch <-chan Frame, match func(Frame) bool) Frame {
	t.Helper()
	deadline := time.After(waitFor)
	for {
		select {
		case f, ok := <-ch:
			require.True(t, ok, "frame channel closed")
			if match(f) {
				return f
			}
		case <-deadline:
			t.Fatal("timed out waiting for frame")
		}
	}
}

func fulfilled(f Frame) bool {
	return f.Status == querycache.StatusFulfilled.String() && !f.Stale
}

func TestScreen_RendersFirstPage(t *testing.T) {
	f := &fakeUsers{}
	s, _ := newTestScreen(t, f, 0)

	frames, stop := s.Watch()
	defer stop()

	frame := waitFrame(t, frames, fulfilled)
	assert.Equal(t, "users", frame.Resource)
	assert.Len(t, frame.Items, 10)
	assert.Equal(t, 25, frame.Total)
	assert.Equal(t, "Showing 1–10 of 25", frame.Summary)
	assert.Equal(t, roles.Permissions{CanView: true}, frame.Permissions)
	assert.Nil(t, frame.Error)
}

func TestScreen_PageChangeResubscribes(t *testing.T) {
	f := &fakeUsers{}
	s, _ := newTestScreen(t, f, 0)

	frames, stop := s.Watch()
	defer stop()
	waitFrame(t, frames, fulfilled)

	state, err := s.Update(Patch{Page: intPtr(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, state.Page)

	frame := waitFrame(t, frames, func(f Frame) bool { return fulfilled(f) && f.State.Page == 3 })
	assert.Len(t, frame.Items, 5)
	assert.Equal(t, "Showing 21–25 of 25", frame.Summary)
}

func TestScreen_RefreshesOnInvalidation(t *testing.T) {
	f := &fakeUsers{}
	s, cache := newTestScreen(t, f, 0)

	frames, stop := s.Watch()
	defer stop()
	first := waitFrame(t, frames, fulfilled)

	cache.Invalidate(context.Background(), constants.TagUsers)

	next := waitFrame(t, frames, func(fr Frame) bool { return fulfilled(fr) && fr.Seq > first.Seq })
	assert.Equal(t, 25, next.Total)
	assert.EqualValues(t, 2, f.loads.Load())
}

func TestScreen_DebouncesSearch(t *testing.T) {
	f := &fakeUsers{}
	s, _ := newTestScreen(t, f, 50*time.Millisecond)

	frames, stop := s.Watch()
	defer stop()
	waitFrame(t, frames, fulfilled)

	for _, q := range []string{"a", "ad", "ada"} {
		_, err := s.Update(Patch{Search: strPtr(q)})
		require.NoError(t, err)
	}
	assert.Equal(t, "", s.State().Search, "search is applied after the debounce")

	waitFrame(t, frames, func(fr Frame) bool { return fulfilled(fr) && fr.State.Search == "ada" })
	assert.Equal(t, []string{"", "ada"}, f.seen())
}

func TestScreen_NonSearchChangeFlushesPendingSearch(t *testing.T) {
	f := &fakeUsers{}
	s, _ := newTestScreen(t, f, time.Hour)

	frames, stop := s.Watch()
	defer stop()
	waitFrame(t, frames, fulfilled)

	_, err := s.Update(Patch{Search: strPtr("ada")})
	require.NoError(t, err)
	state, err := s.Update(Patch{Filters: map[string]string{"role": "admin"}})
	require.NoError(t, err)

	assert.Equal(t, "ada", state.Search)
	waitFrame(t, frames, func(fr Frame) bool {
		return fulfilled(fr) && fr.State.Search == "ada" && fr.State.Filters["role"] == "admin"
	})
}

func TestScreen_ErrorFrames(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		kind   string
		status int
		msg    string
	}{
		{"api", &apiclient.APIError{Status: 500, Message: "database down"}, ErrorKindAPI, 500, "database down"},
		{"transport", &apiclient.TransportError{Method: "GET", Path: "/user"}, ErrorKindTransport, 0, "Something went wrong. Please try again."},
		{"parse", &normalize.ParseError{Reason: "items is not an array"}, ErrorKindParse, 0, "Could not read the server response. Please try again."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &fakeUsers{err: tt.err}
			s, _ := newTestScreen(t, f, 0)

			frames, stop := s.Watch()
			defer stop()

			frame := waitFrame(t, frames, func(fr Frame) bool { return fr.Error != nil })
			assert.Equal(t, querycache.StatusRejected.String(), frame.Status)
			assert.Equal(t, tt.kind, frame.Error.Kind)
			assert.Equal(t, tt.status, frame.Error.Status)
			assert.Equal(t, tt.msg, frame.Error.Message)
			assert.Equal(t, "Showing 0 of 0", frame.Summary)
		})
	}
}

func TestScreen_Retry(t *testing.T) {
	f := &fakeUsers{}
	s, _ := newTestScreen(t, f, 0)

	frames, stop := s.Watch()
	defer stop()
	first := waitFrame(t, frames, fulfilled)

	require.NoError(t, s.Retry())
	waitFrame(t, frames, func(fr Frame) bool { return fulfilled(fr) && fr.Seq > first.Seq })
	assert.EqualValues(t, 2, f.loads.Load())
}

func TestScreen_CloseEndsWatchers(t *testing.T) {
	f := &fakeUsers{}
	s, _ := newTestScreen(t, f, 0)

	frames, _ := s.Watch()
	s.Close()

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-frames:
			return !ok
		default:
			return false
		}
	}, waitFor, time.Millisecond)

	_, err := s.Update(Patch{Page: intPtr(2)})
	assert.ErrorIs(t, err, ErrScreenClosed)
	assert.ErrorIs(t, s.Retry(), ErrScreenClosed)
}

func TestRegistry(t *testing.T) {
	cache := querycache.New(querycache.Config{Logger: quietLogger()})
	defer cache.Close()
	reg := NewRegistry(time.Minute, quietLogger())
	defer reg.CloseAll()

	f := &fakeUsers{}
	open := func(scope string) *Screen {
		s, err := reg.Open(ScreenConfig{Scope: scope, Resource: "users", Cache: cache, Source: f.source(scope)})
		require.NoError(t, err)
		return s
	}

	a := open("session-a")
	b := open("session-b")
	assert.NotEmpty(t, a.ID())
	assert.Equal(t, 2, reg.Len())

	got, err := reg.Get(a.ID(), "session-a")
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = reg.Get(a.ID(), "session-b")
	assert.ErrorIs(t, err, ErrScreenNotFound, "screens are private to their session")
	assert.ErrorIs(t, reg.Close(a.ID(), "session-b"), ErrScreenNotFound)

	assert.Equal(t, 1, reg.DropScope("session-a"))
	_, err = reg.Get(a.ID(), "session-a")
	assert.ErrorIs(t, err, ErrScreenNotFound)

	_, stop := b.Watch()
	assert.Equal(t, 0, reg.Sweep(time.Now().Add(time.Hour)), "watched screens are kept")
	stop()
	assert.Equal(t, 1, reg.Sweep(time.Now().Add(time.Hour)))
	assert.Equal(t, 0, reg.Len())
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
