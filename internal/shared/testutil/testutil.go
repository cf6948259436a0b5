// Package testutil wires the fake JobPilot API to a real client, query
// cache and session manager for controller tests.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"jobpilot-admin/internal/apiclient"
	"jobpilot-admin/internal/forms"
	"jobpilot-admin/internal/mockapi"
	"jobpilot-admin/internal/querycache"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/config"
	"jobpilot-admin/internal/shared/middleware"
	"jobpilot-admin/internal/shared/upstream"
	"jobpilot-admin/pkg/logger"
)

// Options tunes NewEnv
type Options struct {
	Mock         mockapi.Options
	RemoteLogout func(*apiclient.Client) session.RemoteLogoutFunc
}

// Env is one isolated service stack in front of a fresh fake API
type Env struct {
	Mock     *mockapi.Server
	Upstream *httptest.Server
	Client   *apiclient.Client
	Cache    *querycache.Cache
	Gateway  *upstream.Gateway
	Sessions *session.Manager
	Tokens   *middleware.TokenIssuer

	mu        sync.Mutex
	intercept http.HandlerFunc
	paths     map[string]bool
}

// Quiet silences the default logger and puts gin in test mode
func Quiet() {
	gin.SetMode(gin.TestMode)
	logger.SetDefault(logger.NewWithHandler(slog.NewTextHandler(io.Discard, nil)))
}

func NewEnv(t testing.TB) *Env {
	return NewEnvWith(t, Options{Mock: mockapi.DefaultOptions()})
}

func NewEnvWith(t testing.TB, opts Options) *Env {
	t.Helper()
	Quiet()

	env := &Env{Mock: mockapi.New(opts.Mock), paths: map[string]bool{}}
	mockHandler := env.Mock.Handler()
	env.Upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.mu.Lock()
		hook, hit := env.intercept, env.paths[r.Method+" "+r.URL.Path]
		env.mu.Unlock()
		if hook != nil && hit {
			hook(w, r)
			return
		}
		mockHandler.ServeHTTP(w, r)
	}))
	t.Cleanup(env.Upstream.Close)

	client, err := apiclient.New(apiclient.Config{
		BaseURL: env.Upstream.URL + "/api/v1",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	env.Client = client

	env.Cache = querycache.New(querycache.Config{KeepUnused: time.Minute})
	t.Cleanup(env.Cache.Close)
	env.Gateway = upstream.NewGateway(client, env.Cache)

	sessOpts := []session.Option{
		session.WithLogoutHook(func(ctx context.Context, id string) { env.Cache.Forget(id) }),
	}
	if opts.RemoteLogout != nil {
		sessOpts = append(sessOpts, session.WithRemoteLogout(opts.RemoteLogout(client)))
	}
	env.Sessions = session.NewManager(session.NewMemoryStorage(), sessOpts...)
	env.Tokens = middleware.NewTokenIssuer("test-secret", time.Hour)
	return env
}

// Intercept answers the given "METHOD /api/v1/path" requests with h instead
// of the fake API.
func (e *Env) Intercept(h http.HandlerFunc, routes ...string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.intercept = h
	for _, r := range routes {
		e.paths[r] = true
	}
}

// Login authenticates a new session as the seeded admin and returns it with
// a service token.
func (e *Env) Login(t testing.TB) (*session.Store, string) {
	t.Helper()
	return e.LoginAs(t, e.Mock.AdminEmail())
}

func (e *Env) LoginAs(t testing.TB, email string) (*session.Store, string) {
	t.Helper()

	raw, ok := e.Mock.LoginResponse(email)
	require.True(t, ok, "no seeded user %s", email)

	store := e.Sessions.New()
	user, err := store.Login(context.Background(), raw)
	require.NoError(t, err)

	token, _, err := e.Tokens.Issue(store.ID(), user.Email, user.Role)
	require.NoError(t, err)
	return store, token
}

// Auth is the SessionAuth middleware bound to this env
func (e *Env) Auth() gin.HandlerFunc {
	return middleware.SessionAuth(e.Tokens, e.Sessions)
}

// Uploads returns the default upload limits
func Uploads() forms.UploadRules {
	return forms.NewUploadRules(config.UploadConfig{
		UserImageMaxSize: 2 << 20,
		ProfileImageMax:  5 << 20,
		CVMaxSize:        5 << 20,
		LibraryFileMax:   10 << 20,
		LibraryThumbMax:  5 << 20,
	})
}

// Engine returns a gin engine with request ids, ready for routes
func Engine() *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID())
	return engine
}

// Do sends a JSON request; a nil body sends none
func Do(h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// File is one part of a multipart request
type File struct {
	Field   string
	Name    string
	Content []byte
}

// DoMultipart sends a multipart form
func DoMultipart(h http.Handler, method, path, token string, fields map[string]string, files ...File) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.Field, f.Name)
		if err != nil {
			panic(err)
		}
		_, _ = part.Write(f.Content)
	}
	_ = mw.Close()

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// Envelope is the decoded response wrapper
type Envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Message    string          `json:"message"`
	Data       json.RawMessage `json:"data"`
	Errors     json.RawMessage `json:"errors"`
}

func Decode(t testing.TB, w *httptest.ResponseRecorder) Envelope {
	t.Helper()
	var env Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

// DecodeData decodes the envelope's data into v
func DecodeData(t testing.TB, w *httptest.ResponseRecorder, v interface{}) Envelope {
	t.Helper()
	env := Decode(t, w)
	require.NoError(t, json.Unmarshal(env.Data, v), string(env.Data))
	return env
}

// PNG is a minimal valid image for upload tests
var PNG = []byte{
	0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A,
	0x00, 0x00, 0x00, 0x0D, 0x49, 0x48, 0x44, 0x52,
	0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1F, 0x15, 0xC4,
	0x89, 0x00, 0x00, 0x00, 0x0A, 0x49, 0x44, 0x41,
	0x54, 0x78, 0x9C, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0D, 0x0A, 0x2D, 0xB4, 0x00,
	0x00, 0x00, 0x00, 0x49, 0x45, 0x4E, 0x44, 0xAE,
	0x42, 0x60, 0x82,
}

// PDF is a minimal document mimetype recognises as application/pdf
var PDF = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")
