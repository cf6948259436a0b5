package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// listJobs pages on the server and answers {jobs, total, page, limit}
func (s *Server) listJobs(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	status := c.Query("status")
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))

	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]*job, 0, len(s.jobs))
	for _, j := range s.jobs {
		if status != "" && !strings.EqualFold(j.Status, status) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(j.CompanyName+" "+j.JobTitle), search) {
			continue
		}
		filtered = append(filtered, j)
	}

	c.JSON(http.StatusOK, gin.H{
		"jobs":  pageSlice(filtered, page, limit),
		"total": len(filtered),
		"page":  page,
		"limit": limit,
	})
}

func (s *Server) findJobLocked(id string) (int, *job) {
	for i, j := range s.jobs {
		if j.ID == id {
			return i, j
		}
	}
	return -1, nil
}

func (s *Server) getJob(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, j := s.findJobLocked(c.Param("id"))
	if j == nil {
		fail(c, http.StatusNotFound, "Job not found")
		return
	}
	ok(c, http.StatusOK, "Job retrieved", j)
}

func (s *Server) dashboardData(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[string]int{}
	for _, j := range s.jobs {
		counts[j.Status]++
	}
	ok(c, http.StatusOK, "Dashboard data retrieved", gin.H{
		"totalApplied":   len(s.jobs),
		"totalShortlist": counts["Shortlisted"],
		"totalInterview": counts["Interview"],
		"totalRejected":  counts["Rejected"],
		"totalOffer":     counts["Offer"],
		"totalUsers":     len(s.users),
	})
}

type jobBody struct {
	CompanyName *string `json:"companyName"`
	JobTitle    *string `json:"jobTitle"`
	JdLink      *string `json:"jdLink"`
	Status      *string `json:"status"`
	AppliedDate *string `json:"appliedDate"`
	UserID      *string `json:"userId"`
}

func (s *Server) createJob(c *gin.Context) {
	var body jobBody
	if err := c.ShouldBindJSON(&body); err != nil || body.CompanyName == nil || body.JobTitle == nil {
		fail(c, http.StatusBadRequest, "Company name and job title are required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	j := &job{
		ID:          s.newIDLocked(),
		Status:      "Applied",
		AppliedDate: now.Format("2006-01-02"),
		UserID:      c.GetString("userID"),
		CreatedAt:   now,
	}
	body.apply(j)
	s.jobs = append([]*job{j}, s.jobs...)
	ok(c, http.StatusCreated, "Job created successfully", j)
}

func (b jobBody) apply(j *job) {
	if b.CompanyName != nil {
		j.CompanyName = *b.CompanyName
	}
	if b.JobTitle != nil {
		j.JobTitle = *b.JobTitle
	}
	if b.JdLink != nil {
		j.JdLink = *b.JdLink
	}
	if b.Status != nil && *b.Status != "" {
		j.Status = *b.Status
	}
	if b.AppliedDate != nil && *b.AppliedDate != "" {
		j.AppliedDate = *b.AppliedDate
	}
	if b.UserID != nil && *b.UserID != "" {
		j.UserID = *b.UserID
	}
	j.UpdatedAt = time.Now().UTC()
}

func (s *Server) updateJob(c *gin.Context) {
	var body jobBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, j := s.findJobLocked(c.Param("id"))
	if j == nil {
		fail(c, http.StatusNotFound, "Job not found")
		return
	}
	body.apply(j)
	ok(c, http.StatusOK, "Job updated successfully", j)
}

func (s *Server) deleteJob(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, j := s.findJobLocked(c.Param("id"))
	if j == nil {
		fail(c, http.StatusNotFound, "Job not found")
		return
	}
	s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
	ok(c, http.StatusOK, "Job deleted successfully", nil)
}
