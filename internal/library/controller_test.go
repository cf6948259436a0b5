package library

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-admin/internal/shared/testutil"
)

type itemPage struct {
	Items   []Item `json:"items"`
	Total   int    `json:"total"`
	Summary string `json:"summary"`
}

func newLibraryEnv(t *testing.T) (*testutil.Env, *gin.Engine, string) {
	t.Helper()
	env := testutil.NewEnv(t)
	engine := testutil.Engine()
	NewRouter(NewController(NewService(env.Gateway, testutil.Uploads())), env.Auth()).
		SetupRoutes(engine.Group("/api/v1"))
	_, token := env.Login(t)
	return env, engine, token
}

func listItems(t *testing.T, engine *gin.Engine, token, query string) itemPage {
	t.Helper()
	w := testutil.Do(engine, http.MethodGet, "/api/v1/library/get-all"+query, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page itemPage
	testutil.DecodeData(t, w, &page)
	return page
}

func TestListItems_PaginatesBareDataArray(t *testing.T) {
	_, engine, token := newLibraryEnv(t)

	page := listItems(t, engine, token, "?page=2&limit=5")
	assert.Equal(t, 12, page.Total)
	assert.Len(t, page.Items, 5)
	assert.Equal(t, "Showing 6–10 of 12", page.Summary)
}

func TestCreateItem(t *testing.T) {
	env, engine, token := newLibraryEnv(t)
	fields := map[string]string{
		"title":       "Resume checklist",
		"description": "Twelve things to fix",
		"category":    "Resume",
		"fileType":    "pdf",
	}

	t.Run("file is required", func(t *testing.T) {
		w := testutil.DoMultipart(engine, http.MethodPost, "/api/v1/library/create", token, fields)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, env.Mock.Hits(http.MethodPost, "/api/v1/library/create"))
	})

	t.Run("file must match the declared type", func(t *testing.T) {
		w := testutil.DoMultipart(engine, http.MethodPost, "/api/v1/library/create", token, fields,
			testutil.File{Field: "fileUrl", Name: "photo.png", Content: testutil.PNG})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Please select a PDF file for PDF type", testutil.Decode(t, w).Message)
		assert.Equal(t, 0, env.Mock.Hits(http.MethodPost, "/api/v1/library/create"))
	})

	t.Run("created item leads the list", func(t *testing.T) {
		w := testutil.DoMultipart(engine, http.MethodPost, "/api/v1/library/create", token, fields,
			testutil.File{Field: "fileUrl", Name: "checklist.pdf", Content: testutil.PDF},
			testutil.File{Field: "thumbnailUrl", Name: "cover.png", Content: testutil.PNG})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created Item
		testutil.DecodeData(t, w, &created)
		assert.Equal(t, "/uploads/library/checklist.pdf", created.FileURL)
		assert.Equal(t, "/uploads/library/thumbs/cover.png", created.ThumbnailURL)

		page := listItems(t, engine, token, "?limit=100")
		assert.Equal(t, 13, page.Total)
		assert.Equal(t, created.Identifier(), page.Items[0].Identifier())
	})
}

func TestUpdateAndDeleteItem(t *testing.T) {
	_, engine, token := newLibraryEnv(t)
	target := listItems(t, engine, token, "").Items[0]
	id := target.Identifier()

	w := testutil.DoMultipart(engine, http.MethodPut, "/api/v1/library/update/"+id, token, map[string]string{
		"title":    "Renamed",
		"category": target.Category,
		"fileType": target.FileType,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated Item
	testutil.DecodeData(t, w, &updated)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, target.FileURL, updated.FileURL)

	w = testutil.Do(engine, http.MethodDelete, "/api/v1/library/delete/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Library item deleted successfully", testutil.Decode(t, w).Message)

	page := listItems(t, engine, token, "?limit=100")
	assert.Equal(t, 11, page.Total)
	for _, item := range page.Items {
		assert.NotEqual(t, id, item.Identifier())
	}
}
