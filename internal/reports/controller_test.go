package reports

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-admin/internal/shared/testutil"
)

type reportPage struct {
	Items []Report `json:"items"`
	Total int      `json:"total"`
}

func newReportsEnv(t *testing.T) (*testutil.Env, *gin.Engine, string) {
	t.Helper()
	env := testutil.NewEnv(t)
	engine := testutil.Engine()
	NewRouter(NewController(NewService(env.Gateway)), env.Auth()).
		SetupRoutes(engine.Group("/api/v1"))
	_, token := env.Login(t)
	return env, engine, token
}

func listReports(t *testing.T, engine *gin.Engine, token, query string) reportPage {
	t.Helper()
	w := testutil.Do(engine, http.MethodGet, "/api/v1/report"+query, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page reportPage
	testutil.DecodeData(t, w, &page)
	return page
}

func TestListReports(t *testing.T) {
	_, engine, token := newReportsEnv(t)

	all := listReports(t, engine, token, "")
	assert.Equal(t, 6, all.Total)
	require.NotEmpty(t, all.Items)
	assert.NotEmpty(t, all.Items[0].ReportBy.Name)

	word := strings.Fields(all.Items[0].Title)[0]
	found := listReports(t, engine, token, "?search="+word)
	require.NotEmpty(t, found.Items)
	for _, r := range found.Items {
		assert.Contains(t, strings.ToLower(r.Title), strings.ToLower(word))
	}
}

func TestGetReport(t *testing.T) {
	env, engine, token := newReportsEnv(t)
	target := listReports(t, engine, token, "").Items[0]

	for i := 0; i < 2; i++ {
		w := testutil.Do(engine, http.MethodGet, "/api/v1/report/"+target.Identifier(), token, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var got Report
		testutil.DecodeData(t, w, &got)
		assert.Equal(t, target.Title, got.Title)
	}
	assert.Equal(t, 1, env.Mock.Hits(http.MethodGet, "/api/v1/report/:id"))

	w := testutil.Do(engine, http.MethodGet, "/api/v1/report/missing", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
