package mockapi

import (
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// listUsers ignores page and limit and returns the whole filtered
// collection in data.attributes, like the production endpoint.
func (s *Server) listUsers(c *gin.Context) {
	role := strings.ToLower(c.Query("role"))
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))

	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*user, 0, len(s.users))
	for _, u := range s.users {
		if role != "" && u.Role != role {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(u.FullName+" "+u.Email), search) {
			continue
		}
		out = append(out, u)
	}
	ok(c, http.StatusOK, "Users retrieved", out)
}

func (s *Server) getUser(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUserLocked(c.Param("id"))
	if u == nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	ok(c, http.StatusOK, "User retrieved", u)
}

func (s *Server) createUser(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	if email == "" || c.PostForm("password") == "" {
		fail(c, http.StatusBadRequest, "Email and password are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findUserByEmailLocked(email) != nil {
		fail(c, http.StatusConflict, "Email already taken")
		return
	}

	role := c.PostForm("role")
	if role == "" {
		role = "user"
	}
	u := &user{
		ID:              s.newIDLocked(),
		FirstName:       c.PostForm("firstName"),
		LastName:        c.PostForm("lastName"),
		Email:           email,
		PhoneNumber:     c.PostForm("phoneNumber"),
		Role:            role,
		Designation:     c.PostForm("Designation"),
		Address:         c.PostForm("address"),
		IsEmailVerified: true,
		CreatedAt:       time.Now().UTC(),
		password:        c.PostForm("password"),
	}
	u.FullName = c.PostForm("fullName")
	if u.FullName == "" {
		u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)
	}
	if fh, err := c.FormFile("profileImage"); err == nil {
		u.ProfileImage = "/uploads/users/" + filepath.Base(fh.Filename)
	}
	if fh, err := c.FormFile("CV"); err == nil {
		u.CV = "/uploads/cv/" + filepath.Base(fh.Filename)
	}

	s.users = append([]*user{u}, s.users...)
	ok(c, http.StatusCreated, "User created successfully", u)
}

type userPatch struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	PhoneNumber *string `json:"phoneNumber"`
	Role        *string `json:"role"`
	Designation *string `json:"Designation"`
	Address     *string `json:"address"`
}

func (p userPatch) apply(u *user) {
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.Role != nil && *p.Role != "" {
		u.Role = *p.Role
	}
	if p.Designation != nil {
		u.Designation = *p.Designation
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	u.FullName = strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (s *Server) updateUser(c *gin.Context) {
	var patch userPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUserLocked(c.Param("id"))
	if u == nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	patch.apply(u)
	ok(c, http.StatusOK, "User updated successfully", u)
}

func (s *Server) deleteUser(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Param("id")
	for i, u := range s.users {
		if u.ID == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			ok(c, http.StatusOK, "User deleted successfully", nil)
			return
		}
	}
	fail(c, http.StatusNotFound, "User not found")
}

func (s *Server) toggleBlock(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUserLocked(c.Param("id"))
	if u == nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	u.IsBlocked = !u.IsBlocked

	message := "User unblocked successfully"
	if u.IsBlocked {
		message = "User blocked successfully"
	}
	ok(c, http.StatusOK, message, u)
}

func (s *Server) getProfile(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUserLocked(c.GetString("userID"))
	if u == nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	ok(c, http.StatusOK, "Profile retrieved", u)
}

func (s *Server) updateProfile(c *gin.Context) {
	var patch userPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	patch.Role = nil

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUserLocked(c.GetString("userID"))
	if u == nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	patch.apply(u)
	ok(c, http.StatusOK, "Profile updated successfully", u)
}

func (s *Server) uploadProfileImage(c *gin.Context) {
	fh, err := c.FormFile("profileImage")
	if err != nil {
		fail(c, http.StatusBadRequest, "Profile image is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUserLocked(c.GetString("userID"))
	if u == nil {
		fail(c, http.StatusNotFound, "User not found")
		return
	}
	u.ProfileImage = "/uploads/users/" + filepath.Base(fh.Filename)
	ok(c, http.StatusOK, "Profile image updated", u)
}
