package routes

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/shared/config"
	"jobpilot-admin/internal/shared/database"
	"jobpilot-admin/internal/shared/testutil"
	"jobpilot-admin/pkg/logger"
)

func newTestEngine(t *testing.T) (*testutil.Env, *gin.Engine) {
	t.Helper()
	env := testutil.NewEnv(t)

	registry := listview.NewRegistry(time.Minute, logger.GetDefault())
	t.Cleanup(registry.CloseAll)

	cfg := &config.Config{
		APIPrefix:      "/api",
		APIVersion:     "v1",
		MetricsEnabled: true,
		Upload:         config.UploadConfig{UserImageMaxSize: 2 << 20, ProfileImageMax: 5 << 20, CVMaxSize: 5 << 20, LibraryFileMax: 10 << 20, LibraryThumbMax: 5 << 20},
		Upstream:       config.UpstreamConfig{BaseURL: env.Upstream.URL, APIPath: "/api/v1"},
	}

	engine := testutil.Engine()
	NewRouter(Dependencies{
		Config:   cfg,
		DB:       &database.DB{},
		Gateway:  env.Gateway,
		Sessions: env.Sessions,
		Tokens:   env.Tokens,
		Registry: registry,
	}).SetupRoutes(engine)
	return env, engine
}

func TestHealthRoutes(t *testing.T) {
	_, engine := newTestEngine(t)

	w := testutil.Do(engine, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"healthy"`)

	w = testutil.Do(engine, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")

	w = testutil.Do(engine, http.MethodGet, "/status", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"operational"`)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	_, engine := newTestEngine(t)

	for _, path := range []string{
		"/api/v1/user",
		"/api/v1/job/get-all",
		"/api/v1/dashboard",
		"/api/v1/library/get-all",
		"/api/v1/payment/read-all",
		"/api/v1/faq/read-all",
		"/api/v1/notifications",
		"/api/v1/report",
	} {
		w := testutil.Do(engine, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestLoginThenBrowse(t *testing.T) {
	env, engine := newTestEngine(t)

	w := testutil.Do(engine, http.MethodPost, "/api/v1/auth/login", "",
		gin.H{"email": env.Mock.AdminEmail(), "password": "password123"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var login struct {
		Token string `json:"token"`
	}
	testutil.DecodeData(t, w, &login)
	require.NotEmpty(t, login.Token)

	w = testutil.Do(engine, http.MethodGet, "/api/v1/dashboard", login.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, resource := range []string{"users", "jobs", "library", "payments", "faq", "notifications", "reports"} {
		w = testutil.Do(engine, http.MethodPost, "/api/v1/screens", login.Token, gin.H{"resource": resource})
		assert.Equal(t, http.StatusCreated, w.Code, resource+": "+w.Body.String())
	}

	w = testutil.Do(engine, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "jobpilot_query_fetches_total"))
}
