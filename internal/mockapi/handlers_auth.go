package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

func (s *Server) login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUserByEmailLocked(req.Email)
	if u == nil || u.password != req.Password {
		fail(c, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if u.IsBlocked {
		fail(c, http.StatusForbidden, "Your account has been blocked")
		return
	}

	access, refresh := s.issueTokensLocked(u.ID)
	ok(c, http.StatusOK, "Login successful", gin.H{
		"user":   u,
		"tokens": gin.H{"accessToken": access, "refreshToken": refresh},
	})
}

func (s *Server) register(c *gin.Context) {
	var req struct {
		FirstName   string `json:"firstName"`
		LastName    string `json:"lastName"`
		Email       string `json:"email"`
		PhoneNumber string `json:"phoneNumber"`
		Designation string `json:"Designation"`
		Password    string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" || req.Password == "" {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserByEmailLocked(req.Email) != nil {
		fail(c, http.StatusConflict, "Email already taken")
		return
	}
	u := &user{
		ID:          s.newIDLocked(),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		FullName:    strings.TrimSpace(req.FirstName + " " + req.LastName),
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Designation: req.Designation,
		Role:        "user",
		CreatedAt:   time.Now().UTC(),
		password:    req.Password,
	}
	s.users = append(s.users, u)
	s.pendingOTP[strings.ToLower(u.Email)] = s.opts.OTP

	ok(c, http.StatusCreated, "Registration successful. Please verify your email.", gin.H{"user": u})
}

func (s *Server) logout(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	_ = c.ShouldBindJSON(&req)

	token := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))

	s.mu.Lock()
	delete(s.accessTokens, token)
	delete(s.refreshTokens, req.RefreshToken)
	s.mu.Unlock()

	ok(c, http.StatusOK, "Logged out", nil)
}

func (s *Server) resendOTP(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Email == "" {
		fail(c, http.StatusBadRequest, "Email is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserByEmailLocked(req.Email) == nil {
		fail(c, http.StatusNotFound, "No account found with this email")
		return
	}
	s.pendingOTP[strings.ToLower(req.Email)] = s.opts.OTP
	ok(c, http.StatusOK, "A new code has been sent to your email", nil)
}

// verifyOTP serves both verify-otp and verify-email
func (s *Server) verifyOTP(c *gin.Context) {
	var req struct {
		Email       string `json:"email"`
		OneTimeCode string `json:"oneTimeCode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUserByEmailLocked(req.Email)
	if u == nil {
		fail(c, http.StatusNotFound, "No account found with this email")
		return
	}
	want, pending := s.pendingOTP[strings.ToLower(req.Email)]
	if !pending {
		want = s.opts.OTP
	}
	if req.OneTimeCode != want {
		fail(c, http.StatusBadRequest, "Invalid or expired code")
		return
	}
	delete(s.pendingOTP, strings.ToLower(req.Email))
	u.IsEmailVerified = true

	access, refresh := s.issueTokensLocked(u.ID)
	ok(c, http.StatusOK, "Code verified", gin.H{
		"user":   u,
		"tokens": gin.H{"accessToken": access, "refreshToken": refresh},
	})
}

func (s *Server) resetPassword(c *gin.Context) {
	var req struct {
		Email           string `json:"email"`
		NewPassword     string `json:"newPassword"`
		ConfirmPassword string `json:"ConfirmPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.NewPassword == "" || req.NewPassword != req.ConfirmPassword {
		fail(c, http.StatusBadRequest, "Passwords do not match")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUserByEmailLocked(req.Email)
	if u == nil {
		fail(c, http.StatusNotFound, "No account found with this email")
		return
	}
	u.password = req.NewPassword
	ok(c, http.StatusOK, "Password reset successfully", nil)
}

func (s *Server) refreshToken(c *gin.Context) {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.RefreshToken == "" {
		fail(c, http.StatusBadRequest, "Refresh token is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	userID, found := s.refreshTokens[req.RefreshToken]
	if !found {
		fail(c, http.StatusUnauthorized, "Please authenticate")
		return
	}
	delete(s.refreshTokens, req.RefreshToken)

	access, refresh := s.issueTokensLocked(userID)
	ok(c, http.StatusOK, "Token refreshed", gin.H{
		"tokens": gin.H{"accessToken": access, "refreshToken": refresh},
	})
}

func (s *Server) changePassword(c *gin.Context) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.NewPassword == "" {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUserLocked(c.GetString("userID"))
	if u == nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	if u.password != req.CurrentPassword {
		fail(c, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	u.password = req.NewPassword
	ok(c, http.StatusOK, "Password changed successfully", nil)
}
