package mockapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// listFAQs answers {items, total}
func (s *Server) listFAQs(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{"items": append([]*faq(nil), s.faqs...), "total": len(s.faqs)})
}

type faqBody struct {
	Question    string `json:"question"`
	Description string `json:"description"`
}

func (s *Server) createFAQ(c *gin.Context) {
	var body faqBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Question == "" {
		fail(c, http.StatusBadRequest, "Question is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := &faq{ID: s.newIDLocked(), Question: body.Question, Description: body.Description, CreatedAt: time.Now().UTC()}
	s.faqs = append(s.faqs, item)
	ok(c, http.StatusCreated, "FAQ created successfully", item)
}

func (s *Server) updateFAQ(c *gin.Context) {
	var body faqBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.faqs {
		if item.ID == c.Param("id") {
			if body.Question != "" {
				item.Question = body.Question
			}
			if body.Description != "" {
				item.Description = body.Description
			}
			ok(c, http.StatusOK, "FAQ updated successfully", item)
			return
		}
	}
	fail(c, http.StatusNotFound, "FAQ not found")
}

func (s *Server) deleteFAQ(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, item := range s.faqs {
		if item.ID == c.Param("id") {
			s.faqs = append(s.faqs[:i], s.faqs[i+1:]...)
			ok(c, http.StatusOK, "FAQ deleted successfully", nil)
			return
		}
	}
	fail(c, http.StatusNotFound, "FAQ not found")
}

func (s *Server) getPrivacyPolicy(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.privacy == nil {
		ok(c, http.StatusOK, "No privacy policy yet", nil)
		return
	}
	ok(c, http.StatusOK, "Privacy policy retrieved", s.privacy)
}

type contentBody struct {
	Content string `json:"content"`
}

func (s *Server) createPrivacyPolicy(c *gin.Context) {
	var body contentBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Content == "" {
		fail(c, http.StatusBadRequest, "Content is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.privacy = &privacyPolicy{ID: s.newIDLocked(), Content: body.Content, UpdatedAt: time.Now().UTC()}
	ok(c, http.StatusCreated, "Privacy policy created successfully", s.privacy)
}

func (s *Server) updatePrivacyPolicy(c *gin.Context) {
	var body contentBody
	if err := c.ShouldBindJSON(&body); err != nil || body.Content == "" {
		fail(c, http.StatusBadRequest, "Content is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.privacy == nil || s.privacy.ID != c.Param("id") {
		fail(c, http.StatusNotFound, "Privacy policy not found")
		return
	}
	s.privacy.Content = body.Content
	s.privacy.UpdatedAt = time.Now().UTC()
	ok(c, http.StatusOK, "Privacy policy updated successfully", s.privacy)
}

func (s *Server) getContentPage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		defer s.mu.Unlock()

		page, found := s.pages[name]
		if !found {
			ok(c, http.StatusOK, "No content yet", nil)
			return
		}
		ok(c, http.StatusOK, "Content retrieved", page)
	}
}

func (s *Server) saveContentPage(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body contentBody
		if err := c.ShouldBindJSON(&body); err != nil || body.Content == "" {
			fail(c, http.StatusBadRequest, "Content is required")
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		page, found := s.pages[name]
		if !found {
			page = &contentPage{ID: s.newIDLocked()}
			s.pages[name] = page
		}
		page.Content = body.Content
		page.UpdatedAt = time.Now().UTC()
		ok(c, http.StatusOK, "Content saved successfully", page)
	}
}

// listNotifications pages on the server inside data.attributes:
// {"results":[...],"page":p,"limit":l,"totalResults":n}
func (s *Server) listNotifications(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	kind := c.Query("type")
	read := c.Query("read")

	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]*notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		if kind != "" && n.Type != kind {
			continue
		}
		if read != "" && (read == "true") != n.Read {
			continue
		}
		filtered = append(filtered, n)
	}

	totalPages := (len(filtered) + limit - 1) / limit
	ok(c, http.StatusOK, "Notifications retrieved", gin.H{
		"results":      pageSlice(filtered, page, limit),
		"page":         page,
		"limit":        limit,
		"totalPages":   totalPages,
		"totalResults": len(filtered),
	})
}

func (s *Server) unreadCount(c *gin.Context) {
	kind := c.Query("type")

	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.notifications {
		if !n.Read && (kind == "" || n.Type == kind) {
			count++
		}
	}
	ok(c, http.StatusOK, "Unread count retrieved", gin.H{"count": count})
}

func (s *Server) markRead(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications {
		if n.ID == c.Param("id") {
			n.Read = true
			ok(c, http.StatusOK, "Notification marked as read", n)
			return
		}
	}
	fail(c, http.StatusNotFound, "Notification not found")
}

func (s *Server) markAllRead(c *gin.Context) {
	var body struct {
		Type string `json:"type"`
	}
	_ = c.ShouldBindJSON(&body)

	s.mu.Lock()
	defer s.mu.Unlock()

	updated := 0
	for _, n := range s.notifications {
		if !n.Read && (body.Type == "" || n.Type == body.Type) {
			n.Read = true
			updated++
		}
	}
	ok(c, http.StatusOK, "All notifications marked as read", gin.H{"modifiedCount": updated})
}

// listReports nests a paginated result in data.attributes
func (s *Server) listReports(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	search := strings.ToLower(strings.TrimSpace(c.Query("search")))

	s.mu.Lock()
	defer s.mu.Unlock()

	filtered := make([]*report, 0, len(s.reports))
	for _, r := range s.reports {
		if search != "" && !strings.Contains(strings.ToLower(r.Title), search) {
			continue
		}
		filtered = append(filtered, r)
	}
	ok(c, http.StatusOK, "Reports retrieved", gin.H{
		"results":      pageSlice(filtered, page, limit),
		"page":         page,
		"limit":        limit,
		"totalResults": len(filtered),
	})
}

func (s *Server) getReport(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reports {
		if r.ID == c.Param("id") {
			ok(c, http.StatusOK, "Report retrieved", r)
			return
		}
	}
	fail(c, http.StatusNotFound, "Report not found")
}
