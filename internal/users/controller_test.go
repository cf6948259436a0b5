package users

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-admin/internal/shared/testutil"
	"jobpilot-admin/internal/shared/utils/response"
)

type userPage struct {
	Items   []User `json:"items"`
	Total   int    `json:"total"`
	Page    int    `json:"page"`
	Limit   int    `json:"limit"`
	Summary string `json:"summary"`
}

func newUsersEnv(t *testing.T) (*testutil.Env, *gin.Engine, string) {
	t.Helper()
	env := testutil.NewEnv(t)
	engine := testutil.Engine()
	NewRouter(NewController(NewService(env.Gateway, testutil.Uploads())), env.Auth()).
		SetupRoutes(engine.Group("/api/v1"))
	_, token := env.Login(t)
	return env, engine, token
}

func listUsers(t *testing.T, engine *gin.Engine, token, query string) userPage {
	t.Helper()
	w := testutil.Do(engine, http.MethodGet, "/api/v1/user"+query, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var page userPage
	testutil.DecodeData(t, w, &page)
	return page
}

func TestListUsers_PaginatesLocally(t *testing.T) {
	_, engine, token := newUsersEnv(t)

	first := listUsers(t, engine, token, "?page=1&limit=10")
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 25, first.Total)
	assert.Equal(t, "Showing 1–10 of 25", first.Summary)

	third := listUsers(t, engine, token, "?page=3&limit=10")
	assert.Len(t, third.Items, 5)
	assert.Equal(t, "Showing 21–25 of 25", third.Summary)
}

func TestListUsers_HugePageIsEmpty(t *testing.T) {
	_, engine, token := newUsersEnv(t)

	page := listUsers(t, engine, token, "?page=922337203685477582&limit=10")
	assert.Empty(t, page.Items)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, "Showing 0 of 25", page.Summary)

	// the service is still up
	assert.Len(t, listUsers(t, engine, token, "?page=1&limit=10").Items, 10)
}

func TestListUsers_RoleFilter(t *testing.T) {
	_, engine, token := newUsersEnv(t)

	page := listUsers(t, engine, token, "?role=analyst&limit=100")
	require.NotEmpty(t, page.Items)
	for _, u := range page.Items {
		assert.Equal(t, "analyst", u.Role)
	}
}

func TestListUsers_RequiresSession(t *testing.T) {
	_, engine, _ := newUsersEnv(t)

	w := testutil.Do(engine, http.MethodGet, "/api/v1/user", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestListUsers_CachedUntilInvalidated(t *testing.T) {
	env, engine, token := newUsersEnv(t)

	listUsers(t, engine, token, "")
	listUsers(t, engine, token, "")
	assert.Equal(t, 1, env.Mock.Hits(http.MethodGet, "/api/v1/user"))
}

func TestCreateUser(t *testing.T) {
	env, engine, token := newUsersEnv(t)
	before := listUsers(t, engine, token, "")

	fields := map[string]string{
		"firstName":       "Linus",
		"lastName":        "Torvalds",
		"email":           "linus@example.com",
		"phoneNumber":     "+358 40 123 4567",
		"password":        "secret12",
		"ConfirmPassword": "secret12",
		"role":            "analyst",
	}

	t.Run("password mismatch never reaches the API", func(t *testing.T) {
		bad := map[string]string{}
		for k, v := range fields {
			bad[k] = v
		}
		bad["ConfirmPassword"] = "secret13"

		w := testutil.DoMultipart(engine, http.MethodPost, "/api/v1/user/create-user", token, bad)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, 0, env.Mock.Hits(http.MethodPost, "/api/v1/user/create-user"))
	})

	t.Run("image field must hold an image", func(t *testing.T) {
		w := testutil.DoMultipart(engine, http.MethodPost, "/api/v1/user/create-user", token, fields,
			testutil.File{Field: "profileImage", Name: "me.pdf", Content: testutil.PDF})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "You can only upload image files!", testutil.Decode(t, w).Message)
		assert.Equal(t, 0, env.Mock.Hits(http.MethodPost, "/api/v1/user/create-user"))
	})

	t.Run("created user shows up in the list", func(t *testing.T) {
		w := testutil.DoMultipart(engine, http.MethodPost, "/api/v1/user/create-user", token, fields,
			testutil.File{Field: "profileImage", Name: "me.png", Content: testutil.PNG},
			testutil.File{Field: "CV", Name: "cv.pdf", Content: testutil.PDF})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

		var created User
		testutil.DecodeData(t, w, &created)
		assert.Equal(t, "Linus Torvalds", created.FullName)
		assert.Equal(t, "/uploads/users/me.png", created.ProfileImage)
		assert.Equal(t, "/uploads/cv/cv.pdf", created.CV)

		after := listUsers(t, engine, token, "")
		assert.Equal(t, before.Total+1, after.Total)
		assert.Equal(t, "linus@example.com", after.Items[0].Email)
	})

	t.Run("duplicate email shows the server message", func(t *testing.T) {
		w := testutil.DoMultipart(engine, http.MethodPost, "/api/v1/user/create-user", token, fields)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "Email already taken", testutil.Decode(t, w).Message)
	})
}

func TestUpdateBlockAndDeleteUser(t *testing.T) {
	_, engine, token := newUsersEnv(t)
	target := listUsers(t, engine, token, "?page=2").Items[0]
	id := target.Identifier()

	w := testutil.Do(engine, http.MethodPatch, "/api/v1/user/profile-update/"+id, token, gin.H{"Designation": "Staff Engineer"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = testutil.Do(engine, http.MethodGet, "/api/v1/user/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched User
	testutil.DecodeData(t, w, &fetched)
	assert.Equal(t, "Staff Engineer", fetched.Designation)

	w = testutil.Do(engine, http.MethodPatch, "/api/v1/user/"+id+"/block", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var blocked User
	env := testutil.DecodeData(t, w, &blocked)
	assert.True(t, blocked.IsBlocked)
	assert.Equal(t, "User blocked successfully", env.Message)

	w = testutil.Do(engine, http.MethodDelete, "/api/v1/user/"+id, token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	page := listUsers(t, engine, token, "?limit=100")
	assert.Equal(t, 24, page.Total)
	for _, u := range page.Items {
		assert.NotEqual(t, id, u.Identifier())
	}

	w = testutil.Do(engine, http.MethodGet, "/api/v1/user/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	var failure response.ErrorDetail
	require.NoError(t, json.Unmarshal(testutil.Decode(t, w).Errors, &failure))
	assert.Equal(t, "api", failure.Kind)
}
