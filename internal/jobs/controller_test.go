package jobs

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-admin/internal/library"
	"jobpilot-admin/internal/shared/testutil"
)

type jobPage struct {
	Items   []Job  `json:"items"`
	Total   int    `json:"total"`
	Summary string `json:"summary"`
}

func newJobsEnv(t *testing.T) (*testutil.Env, *gin.Engine, string) {
	t.Helper()
	env := testutil.NewEnv(t)
	engine := testutil.Engine()
	lib := library.NewService(env.Gateway, testutil.Uploads())
	NewRouter(NewController(NewService(env.Gateway, lib)), env.Auth()).
		SetupRoutes(engine.Group("/api/v1"))
	_, token := env.Login(t)
	return env, engine, token
}

func listJobs(t *testing.T, engine *gin.Engine, token, query string) jobPage {
	t.Helper()
	w := testutil.Do(engine, http.MethodGet, "/api/v1/job/get-all"+query, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page jobPage
	testutil.DecodeData(t, w, &page)
	return page
}

func dashboard(t *testing.T, engine *gin.Engine, token string) Dashboard {
	t.Helper()
	w := testutil.Do(engine, http.MethodGet, "/api/v1/dashboard", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out Dashboard
	testutil.DecodeData(t, w, &out)
	return out
}

func TestListJobs_ServerPaging(t *testing.T) {
	_, engine, token := newJobsEnv(t)

	page := listJobs(t, engine, token, "?page=3&limit=10")
	assert.Equal(t, 30, page.Total)
	assert.Len(t, page.Items, 10)
	assert.Equal(t, "Showing 21–30 of 30", page.Summary)
}

func TestListJobs_StatusFilter(t *testing.T) {
	_, engine, token := newJobsEnv(t)

	page := listJobs(t, engine, token, "?status=Interview&limit=100")
	require.NotEmpty(t, page.Items)
	for _, j := range page.Items {
		assert.Equal(t, "Interview", j.Status)
	}
}

func TestCreateJob(t *testing.T) {
	env, engine, token := newJobsEnv(t)

	t.Run("bad status never reaches the API", func(t *testing.T) {
		w := testutil.Do(engine, http.MethodPost, "/api/v1/job/create", token, gin.H{
			"companyName": "Acme",
			"jobTitle":    "Engineer",
			"status":      "Ghosted",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, env.Mock.Hits(http.MethodPost, "/api/v1/job/create"))
	})

	t.Run("created job refreshes list and counters", func(t *testing.T) {
		before := dashboard(t, engine, token)
		assert.EqualValues(t, 30, before.Stats["totalApplied"])

		w := testutil.Do(engine, http.MethodPost, "/api/v1/job/create", token, gin.H{
			"companyName": "Acme",
			"jobTitle":    "Platform Engineer",
			"jdLink":      "https://acme.example/jobs/1",
			"appliedDate": "2026-10-01",
		})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		var created Job
		testutil.DecodeData(t, w, &created)
		assert.Equal(t, "Applied", created.Status)

		after := dashboard(t, engine, token)
		assert.EqualValues(t, 31, after.Stats["totalApplied"])
		require.NotEmpty(t, after.RecentJobs)
		assert.Equal(t, created.Identifier(), after.RecentJobs[0].Identifier())
		assert.Equal(t, 31, listJobs(t, engine, token, "").Total)
	})
}

func TestUpdateStatusAndDelete(t *testing.T) {
	_, engine, token := newJobsEnv(t)
	target := listJobs(t, engine, token, "?status=Applied").Items[0]
	id := target.Identifier()

	w := testutil.Do(engine, http.MethodPatch, "/api/v1/job/update-status/"+id, token, gin.H{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.Do(engine, http.MethodPatch, "/api/v1/job/update-status/"+id, token, gin.H{"status": "Offer"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = testutil.Do(engine, http.MethodGet, "/api/v1/job/get-single/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched Job
	testutil.DecodeData(t, w, &fetched)
	assert.Equal(t, "Offer", fetched.Status)

	w = testutil.Do(engine, http.MethodDelete, "/api/v1/job/delete/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 29, listJobs(t, engine, token, "").Total)

	w = testutil.Do(engine, http.MethodGet, "/api/v1/job/get-single/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDashboard(t *testing.T) {
	env, engine, token := newJobsEnv(t)

	t.Run("sections load together", func(t *testing.T) {
		out := dashboard(t, engine, token)
		assert.Len(t, out.RecentJobs, RecentLimit)
		assert.Len(t, out.Library, RecentLimit)
		assert.EqualValues(t, 25, out.Stats["totalUsers"])
	})

	t.Run("sections are cached", func(t *testing.T) {
		dashboard(t, engine, token)
		assert.Equal(t, 1, env.Mock.Hits(http.MethodGet, "/api/v1/job/dashboard-data"))
		assert.Equal(t, 1, env.Mock.Hits(http.MethodGet, "/api/v1/library/get-all"))
	})
}

func TestDashboard_FailingSectionFailsScreen(t *testing.T) {
	env, engine, token := newJobsEnv(t)
	env.Intercept(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"code":503,"message":"Library is offline"}`))
	}, "GET /api/v1/library/get-all")

	w := testutil.Do(engine, http.MethodGet, "/api/v1/dashboard", token, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "Library is offline", testutil.Decode(t, w).Message)
}
