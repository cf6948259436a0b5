package profile

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/testutil"
	"jobpilot-admin/internal/users"
)

func newProfileEnv(t *testing.T) (*testutil.Env, *gin.Engine, *session.Store, string) {
	t.Helper()
	env := testutil.NewEnv(t)
	engine := testutil.Engine()
	NewRouter(NewController(NewService(env.Gateway, testutil.Uploads())), env.Auth()).
		SetupRoutes(engine.Group("/api/v1"))
	sess, token := env.Login(t)
	return env, engine, sess, token
}

func TestGetProfile(t *testing.T) {
	env, engine, _, token := newProfileEnv(t)

	w := testutil.Do(engine, http.MethodGet, "/api/v1/user/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var me users.User
	testutil.DecodeData(t, w, &me)
	assert.Equal(t, env.Mock.AdminEmail(), me.Email)
	assert.Equal(t, "admin", me.Role)
}

func TestUpdateProfile_RefreshesSessionUser(t *testing.T) {
	_, engine, sess, token := newProfileEnv(t)

	w := testutil.Do(engine, http.MethodGet, "/api/v1/user/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.Do(engine, http.MethodPatch, "/api/v1/user/profile", token, gin.H{"firstName": "Augusta", "lastName": "King"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Augusta King", sess.Snapshot().User.FullName)
	assert.Equal(t, "admin", string(sess.Role()))

	w = testutil.Do(engine, http.MethodGet, "/api/v1/user/profile", token, nil)
	var me users.User
	testutil.DecodeData(t, w, &me)
	assert.Equal(t, "Augusta", me.FirstName)
}

func TestUpdateProfile_InvalidPhone(t *testing.T) {
	env, engine, _, token := newProfileEnv(t)

	w := testutil.Do(engine, http.MethodPatch, "/api/v1/user/profile", token, gin.H{"phoneNumber": "call me"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Please enter a valid phone number", testutil.Decode(t, w).Message)
	assert.Equal(t, 0, env.Mock.Hits(http.MethodPatch, "/api/v1/user/profile"))
}

func TestUploadImage(t *testing.T) {
	env, engine, sess, token := newProfileEnv(t)

	t.Run("missing file", func(t *testing.T) {
		w := testutil.DoMultipart(engine, http.MethodPost, "/api/v1/user/upload-profile-image", token, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Image is required", testutil.Decode(t, w).Message)
	})

	t.Run("not an image", func(t *testing.T) {
		w := testutil.DoMultipart(engine, http.MethodPost, "/api/v1/user/upload-profile-image", token, nil,
			testutil.File{Field: "profileImage", Name: "avatar.png", Content: testutil.PDF})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Please select a valid image file", testutil.Decode(t, w).Message)
	})

	t.Run("uploaded", func(t *testing.T) {
		w := testutil.DoMultipart(engine, http.MethodPost, "/api/v1/user/upload-profile-image", token, nil,
			testutil.File{Field: "profileImage", Name: "avatar.png", Content: testutil.PNG})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "/uploads/users/avatar.png", sess.Snapshot().User.ProfileImage)
	})

	assert.Equal(t, 1, env.Mock.Hits(http.MethodPost, "/api/v1/user/upload-profile-image"))
}
