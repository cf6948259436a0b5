package notifications

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-admin/internal/shared/testutil"
)

type notificationPage struct {
	Items   []Notification `json:"items"`
	Total   int            `json:"total"`
	Summary string         `json:"summary"`
}

func newNotificationsEnv(t *testing.T) (*testutil.Env, *gin.Engine, string) {
	t.Helper()
	env := testutil.NewEnv(t)
	engine := testutil.Engine()
	NewRouter(NewController(NewService(env.Gateway)), env.Auth()).
		SetupRoutes(engine.Group("/api/v1"))
	_, token := env.Login(t)
	return env, engine, token
}

func listNotifications(t *testing.T, engine *gin.Engine, token, query string) notificationPage {
	t.Helper()
	w := testutil.Do(engine, http.MethodGet, "/api/v1/notifications"+query, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page notificationPage
	testutil.DecodeData(t, w, &page)
	return page
}

func unread(t *testing.T, engine *gin.Engine, token, query string) int {
	t.Helper()
	w := testutil.Do(engine, http.MethodGet, "/api/v1/notifications/unread-count"+query, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out UnreadCount
	testutil.DecodeData(t, w, &out)
	return out.Count
}

func TestListNotifications_NestedPage(t *testing.T) {
	_, engine, token := newNotificationsEnv(t)

	page := listNotifications(t, engine, token, "?page=2&limit=10")
	assert.Equal(t, 15, page.Total)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, "Showing 11–15 of 15", page.Summary)
}

func TestListNotifications_Filters(t *testing.T) {
	_, engine, token := newNotificationsEnv(t)

	page := listNotifications(t, engine, token, "?type=interview&read=false&limit=100")
	require.NotEmpty(t, page.Items)
	for _, n := range page.Items {
		assert.Equal(t, "interview", n.Type)
		assert.False(t, n.Read)
	}
}

func TestMarkRead(t *testing.T) {
	env, engine, token := newNotificationsEnv(t)
	assert.Equal(t, 10, unread(t, engine, token, ""))

	target := listNotifications(t, engine, token, "?read=false").Items[0]
	w := testutil.Do(engine, http.MethodPatch, "/api/v1/notifications/"+target.Identifier()+"/read", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var marked Notification
	testutil.DecodeData(t, w, &marked)
	assert.True(t, marked.Read)

	assert.Equal(t, 9, unread(t, engine, token, ""))
	assert.Equal(t, 2, env.Mock.Hits(http.MethodGet, "/api/v1/notifications/unread-count"))

	w = testutil.Do(engine, http.MethodPatch, "/api/v1/notifications/missing/read", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMarkAllRead(t *testing.T) {
	_, engine, token := newNotificationsEnv(t)
	interview := unread(t, engine, token, "?type=interview")
	require.Positive(t, interview)

	w := testutil.Do(engine, http.MethodPatch, "/api/v1/notifications/mark-all-read", token, gin.H{"type": "interview"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result MarkAllResult
	testutil.DecodeData(t, w, &result)
	assert.Equal(t, interview, result.ModifiedCount)
	assert.Equal(t, 0, unread(t, engine, token, "?type=interview"))
	assert.Equal(t, 10-interview, unread(t, engine, token, ""))

	w = testutil.Do(engine, http.MethodPatch, "/api/v1/notifications/mark-all-read", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, 0, unread(t, engine, token, ""))
}
