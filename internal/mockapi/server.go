// Package mockapi is an in-memory stand-in for the JobPilot REST API. It
// answers the endpoints the admin service consumes, deliberately mixing the
// response layouts the real API uses, and is used for local development
// (cmd/mockapi) and by the controller tests.
package mockapi

import (
	"net/http"
	"strings"
	"sync"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/gin-gonic/gin"

	"jobpilot-admin/pkg/logger"
)

// Options configures the seeded data set
type Options struct {
	Seed          uint64
	Users         int
	Jobs          int
	Library       int
	Payments      int
	FAQs          int
	Notifications int
	Reports       int

	AdminEmail    string
	AdminPassword string
	OTP           string

	Logger *logger.Logger
}

// DefaultOptions seeds a small but complete data set
func DefaultOptions() Options {
	return Options{
		Seed:          42,
		Users:         25,
		Jobs:          30,
		Library:       12,
		Payments:      8,
		FAQs:          5,
		Notifications: 15,
		Reports:       6,
		AdminEmail:    "admin@jobpilot.dev",
		AdminPassword: "password123",
		OTP:           "123456",
	}
}

// Server holds the fake API state
type Server struct {
	opts  Options
	faker *gofakeit.Faker
	log   *logger.Logger

	mu            sync.Mutex
	users         []*user
	jobs          []*job
	library       []*libraryItem
	payments      []*payment
	faqs          []*faq
	notifications []*notification
	reports       []*report
	privacy       *privacyPolicy
	pages         map[string]*contentPage
	accessTokens  map[string]string // token -> user id
	refreshTokens map[string]string
	pendingOTP    map[string]string // email -> code
	hits          map[string]int
	nextID        int
}

func New(opts Options) *Server {
	if opts.OTP == "" {
		opts.OTP = "123456"
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetDefault()
	}

	s := &Server{
		opts:          opts,
		faker:         gofakeit.New(opts.Seed),
		log:           opts.Logger,
		pages:         make(map[string]*contentPage),
		accessTokens:  make(map[string]string),
		refreshTokens: make(map[string]string),
		pendingOTP:    make(map[string]string),
		hits:          make(map[string]int),
	}
	s.seed()
	return s
}

// Handler returns the HTTP handler serving /api/v1
func (s *Server) Handler() http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery(), s.countHits())

	v1 := engine.Group("/api/v1")

	auth := v1.Group("/auth")
	{
		auth.POST("/login", s.login)
		auth.POST("/register", s.register)
		auth.POST("/logout", s.logout)
		auth.POST("/resend-otp", s.resendOTP)
		auth.POST("/verify-otp", s.verifyOTP)
		auth.POST("/verify-email", s.verifyOTP)
		auth.POST("/reset-password", s.resetPassword)
		auth.POST("/refresh-token", s.refreshToken)
		auth.PATCH("/change-password", s.requireAuth(), s.changePassword)
	}

	api := v1.Group("")
	api.Use(s.requireAuth())
	{
		api.GET("/user/profile", s.getProfile)
		api.PATCH("/user/profile", s.updateProfile)
		api.POST("/user/upload-profile-image", s.uploadProfileImage)

		api.GET("/user", s.listUsers)
		api.GET("/user/:id", s.getUser)
		api.POST("/user/create-user", s.createUser)
		api.PATCH("/user/profile-update/:id", s.updateUser)
		api.DELETE("/user/:id", s.deleteUser)
		api.PATCH("/user/:id/block", s.toggleBlock)

		api.GET("/job/get-all", s.listJobs)
		api.GET("/job/get-single/:id", s.getJob)
		api.GET("/job/dashboard-data", s.dashboardData)
		api.POST("/job/create", s.createJob)
		api.PATCH("/job/update/:id", s.updateJob)
		api.DELETE("/job/delete/:id", s.deleteJob)

		api.GET("/library/get-all", s.listLibrary)
		api.POST("/library/create", s.createLibraryItem)
		api.PUT("/library/update/:id", s.updateLibraryItem)
		api.DELETE("/library/delete/:id", s.deleteLibraryItem)

		api.GET("/payment/read-all", s.listPayments)
		api.POST("/payment/create", s.createPayment)
		api.PATCH("/payment/update/:id", s.updatePayment)
		api.DELETE("/payment/delete/:id", s.deletePayment)

		api.GET("/faq/read-all", s.listFAQs)
		api.POST("/faq/create", s.createFAQ)
		api.PATCH("/faq/update/:id", s.updateFAQ)
		api.DELETE("/faq/delete/:id", s.deleteFAQ)

		api.GET("/privacy-policy/read", s.getPrivacyPolicy)
		api.POST("/privacy-policy/create", s.createPrivacyPolicy)
		api.PATCH("/privacy-policy/update/:id", s.updatePrivacyPolicy)

		api.GET("/notifications", s.listNotifications)
		api.GET("/notifications/unread-count", s.unreadCount)
		api.PATCH("/notifications/mark-all-read", s.markAllRead)
		api.PATCH("/notifications/:id/read", s.markRead)

		api.GET("/report", s.listReports)
		api.GET("/report/:id", s.getReport)

		for _, page := range []string{pageAbout, pageTerms, pageLegal} {
			api.GET("/"+page, s.getContentPage(page))
			api.POST("/"+page, s.saveContentPage(page))
		}
	}

	return engine
}

// Hits returns how many times a route was called, keyed like "GET /api/v1/user"
func (s *Server) Hits(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[method+" "+route]
}

// Login returns a fresh access token for email, bypassing the password.
// Tests use it to prepare an authenticated session.
func (s *Server) Login(email string) (access, refresh string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUserByEmailLocked(email)
	if u == nil {
		return "", "", false
	}
	access, refresh = s.issueTokensLocked(u.ID)
	return access, refresh, true
}

// LoginResponse renders the login payload the real API returns for email
func (s *Server) LoginResponse(email string) ([]byte, bool) {
	access, refresh, ok := s.Login(email)
	if !ok {
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.findUserByEmailLocked(email)
	return mustJSON(envelope(http.StatusOK, "Login successful", gin.H{
		"user":   u,
		"tokens": gin.H{"accessToken": access, "refreshToken": refresh},
	})), true
}

// AdminEmail is the seeded admin account
func (s *Server) AdminEmail() string {
	return s.opts.AdminEmail
}

func (s *Server) countHits() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		s.mu.Lock()
		s.hits[c.Request.Method+" "+route]++
		s.mu.Unlock()
	}
}

func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
		if token == "" || token == header {
			fail(c, http.StatusUnauthorized, "Please authenticate")
			c.Abort()
			return
		}

		s.mu.Lock()
		userID, ok := s.accessTokens[token]
		s.mu.Unlock()
		if !ok {
			fail(c, http.StatusUnauthorized, "Please authenticate")
			c.Abort()
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

// EmailsWithRole lists seeded accounts with role, in seed order
func (s *Server) EmailsWithRole(role string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []string
	for _, u := range s.users {
		if u.Role == role {
			out = append(out, u.Email)
		}
	}
	return out
}
