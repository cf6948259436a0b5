package screens

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/querycache"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/testutil"
	"jobpilot-admin/internal/users"
)

func newScreensEnv(t *testing.T) (*testutil.Env, *gin.Engine, string) {
	t.Helper()
	env := testutil.NewEnv(t)
	registry := listview.NewRegistry(time.Minute, nil)
	t.Cleanup(registry.CloseAll)

	usersService := users.NewService(env.Gateway, testutil.Uploads())
	catalog := Catalog{
		"users": {FilterKeys: users.FilterKeys, Source: usersService.ListSource},
	}

	engine := testutil.Engine()
	api := engine.Group("/api/v1")
	NewRouter(NewController(NewService(catalog, registry, env.Cache, 0)), env.Auth()).SetupRoutes(api)
	users.NewRouter(users.NewController(usersService), env.Auth()).SetupRoutes(api)

	_, token := env.Login(t)
	return env, engine, token
}

func openScreen(t *testing.T, engine *gin.Engine, token string, body gin.H) ScreenResponse {
	t.Helper()
	w := testutil.Do(engine, http.MethodPost, "/api/v1/screens", token, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var out ScreenResponse
	testutil.DecodeData(t, w, &out)
	return out
}

// settled polls the screen until its latest frame matches ok
func settled(t *testing.T, engine *gin.Engine, token, id string, ok func(listview.Frame) bool) listview.Frame {
	t.Helper()
	var frame listview.Frame
	require.Eventually(t, func() bool {
		w := testutil.Do(engine, http.MethodGet, "/api/v1/screens/"+id, token, nil)
		if w.Code != http.StatusOK {
			return false
		}
		var out ScreenResponse
		testutil.DecodeData(t, w, &out)
		frame = out.Frame
		return frame.Status == querycache.StatusFulfilled.String() && ok(frame)
	}, 2*time.Second, 10*time.Millisecond)
	return frame
}

func anyFrame(listview.Frame) bool { return true }

func TestOpenScreen_UnknownResource(t *testing.T) {
	_, engine, token := newScreensEnv(t)

	w := testutil.Do(engine, http.MethodPost, "/api/v1/screens", token, gin.H{"resource": "invoices"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, testutil.Decode(t, w).Message, "users")
}

func TestScreen_FollowsStateAndInvalidation(t *testing.T) {
	_, engine, token := newScreensEnv(t)

	opened := openScreen(t, engine, token, gin.H{
		"resource": "users",
		"state":    gin.H{"page": 1, "pageSize": 10, "filters": gin.H{"role": "analyst", "shoeSize": "44"}},
	})
	assert.Equal(t, map[string]string{"role": "analyst"}, opened.State.Filters)

	frame := settled(t, engine, token, opened.ID, anyFrame)
	require.NotZero(t, frame.Total)
	assert.True(t, frame.Permissions.CanDelete)

	w := testutil.Do(engine, http.MethodPatch, "/api/v1/screens/"+opened.ID, token, gin.H{"filters": gin.H{"role": ""}, "page": 3})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	frame = settled(t, engine, token, opened.ID, func(f listview.Frame) bool { return f.State.Page == 3 })
	assert.Len(t, frame.Items, 5)
	assert.Equal(t, "Showing 21–25 of 25", frame.Summary)

	w = testutil.DoMultipart(engine, http.MethodPost, "/api/v1/user/create-user", token, map[string]string{
		"firstName":       "Grace",
		"lastName":        "Hopper",
		"email":           "grace@example.com",
		"phoneNumber":     "+1 212 555 0100",
		"password":        "secret12",
		"ConfirmPassword": "secret12",
		"role":            "admin",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	frame = settled(t, engine, token, opened.ID, func(f listview.Frame) bool { return f.Total == 26 })
	assert.Equal(t, "Showing 21–26 of 26", frame.Summary)
}

func TestScreen_PrivateToSession(t *testing.T) {
	env, engine, token := newScreensEnv(t)
	opened := openScreen(t, engine, token, gin.H{"resource": "users"})

	_, other := env.LoginAs(t, env.Mock.EmailsWithRole("analyst")[0])
	w := testutil.Do(engine, http.MethodGet, "/api/v1/screens/"+opened.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = testutil.Do(engine, http.MethodDelete, "/api/v1/screens/"+opened.ID, other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = testutil.Do(engine, http.MethodDelete, "/api/v1/screens/"+opened.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = testutil.Do(engine, http.MethodGet, "/api/v1/screens/"+opened.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScreen_RetryAfterFailure(t *testing.T) {
	env, engine, token := newScreensEnv(t)
	env.Intercept(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}, "GET /api/v1/user")

	opened := openScreen(t, engine, token, gin.H{"resource": "users"})
	require.Eventually(t, func() bool {
		w := testutil.Do(engine, http.MethodGet, "/api/v1/screens/"+opened.ID, token, nil)
		var out ScreenResponse
		testutil.DecodeData(t, w, &out)
		return out.Frame.Error != nil && out.Frame.Error.Kind == listview.ErrorKindAPI
	}, 2*time.Second, 10*time.Millisecond)

	env.Intercept(nil)
	w := testutil.Do(engine, http.MethodPost, "/api/v1/screens/"+opened.ID+"/retry", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	frame := settled(t, engine, token, opened.ID, func(f listview.Frame) bool { return f.Error == nil })
	assert.Equal(t, 25, frame.Total)
}

type sseEvent struct {
	name string
	data string
}

func readEvent(t *testing.T, r *bufio.Reader) sseEvent {
	t.Helper()
	var ev sseEvent
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event:"):
			ev.name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			ev.data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "" && ev.name != "":
			return ev
		}
	}
}

func TestEvents_StreamsFramesUntilClosed(t *testing.T) {
	_, engine, token := newScreensEnv(t)
	srv := httptest.NewServer(engine)
	defer srv.Close()

	opened := openScreen(t, engine, token, gin.H{"resource": "users"})
	settled(t, engine, token, opened.ID, anyFrame)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/screens/"+opened.ID+"/events", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	ev := readEvent(t, reader)
	require.Equal(t, "frame", ev.name)
	var frame listview.Frame
	require.NoError(t, json.Unmarshal([]byte(ev.data), &frame))
	assert.Equal(t, 25, frame.Total)
	assert.Len(t, frame.Items, 10)

	w := testutil.Do(engine, http.MethodDelete, "/api/v1/screens/"+opened.ID, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	for {
		ev = readEvent(t, reader)
		if ev.name != "frame" {
			break
		}
	}
	assert.Equal(t, "closed", ev.name)
}

func TestCatalog_Names(t *testing.T) {
	noop := func(*session.Store) listview.Source { return nil }
	c := Catalog{"users": {Source: noop}, "faq": {Source: noop}, "jobs": {Source: noop}}
	assert.Equal(t, []string{"faq", "jobs", "users"}, c.Names())
}
