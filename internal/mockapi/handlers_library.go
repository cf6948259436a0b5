package mockapi

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
)

// listLibrary answers {"data":[...]} with no pagination
func (s *Server) listLibrary(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := append([]*libraryItem(nil), s.library...)
	c.JSON(http.StatusOK, gin.H{"code": http.StatusOK, "data": items})
}

func (s *Server) findLibraryLocked(id string) (int, *libraryItem) {
	for i, item := range s.library {
		if item.ID == id {
			return i, item
		}
	}
	return -1, nil
}

func (s *Server) applyLibraryForm(c *gin.Context, item *libraryItem) {
	for field, dst := range map[string]*string{
		"title":       &item.Title,
		"description": &item.Description,
		"category":    &item.Category,
		"fileType":    &item.FileType,
	} {
		if v, ok := c.GetPostForm(field); ok {
			*dst = v
		}
	}
	if fh, err := c.FormFile("fileUrl"); err == nil {
		item.FileURL = "/uploads/library/" + filepath.Base(fh.Filename)
	}
	if fh, err := c.FormFile("thumbnailUrl"); err == nil {
		item.ThumbnailURL = "/uploads/library/thumbs/" + filepath.Base(fh.Filename)
	}
	item.UpdatedAt = time.Now().UTC()
}

func (s *Server) createLibraryItem(c *gin.Context) {
	if c.PostForm("title") == "" {
		fail(c, http.StatusBadRequest, "Title is required")
		return
	}
	if _, err := c.FormFile("fileUrl"); err != nil {
		fail(c, http.StatusBadRequest, "File is required")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	item := &libraryItem{ID: s.newIDLocked(), CreatedAt: time.Now().UTC()}
	s.applyLibraryForm(c, item)
	s.library = append([]*libraryItem{item}, s.library...)
	ok(c, http.StatusCreated, "Library item created successfully", item)
}

func (s *Server) updateLibraryItem(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, item := s.findLibraryLocked(c.Param("id"))
	if item == nil {
		fail(c, http.StatusNotFound, "Library item not found")
		return
	}
	s.applyLibraryForm(c, item)
	ok(c, http.StatusOK, "Library item updated successfully", item)
}

func (s *Server) deleteLibraryItem(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, item := s.findLibraryLocked(c.Param("id"))
	if item == nil {
		fail(c, http.StatusNotFound, "Library item not found")
		return
	}
	s.library = append(s.library[:i], s.library[i+1:]...)
	ok(c, http.StatusOK, "Library item deleted successfully", nil)
}

// listPayments answers data.attributes as an array
func (s *Server) listPayments(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ok(c, http.StatusOK, "Payments retrieved", append([]*payment(nil), s.payments...))
}

type paymentBody struct {
	UserID        *string     `json:"userId"`
	Amount        interface{} `json:"amount"`
	TransactionID *string     `json:"transactionId"`
	Gateway       *string     `json:"gateway"`
	Date          *string     `json:"date"`
}

// amount accepts JSON numbers only, so a client that forgets to coerce a
// form string fails loudly.
func (b paymentBody) amount() (float64, bool) {
	v, ok := b.Amount.(float64)
	return v, ok
}

func (s *Server) applyPayment(b paymentBody, p *payment) {
	if amount, ok := b.amount(); ok {
		p.Amount = amount
	}
	if b.TransactionID != nil {
		p.TransactionID = *b.TransactionID
	}
	if b.Gateway != nil && *b.Gateway != "" {
		p.Gateway = *b.Gateway
	}
	if b.Date != nil {
		p.Date = *b.Date
	}
	if b.UserID != nil && *b.UserID != "" {
		if u := s.findUserLocked(*b.UserID); u != nil {
			p.User = &paymentUser{ID: u.ID, FullName: u.FullName, Email: u.Email}
		}
	}
}

func (s *Server) createPayment(c *gin.Context) {
	var body paymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if _, ok := body.amount(); !ok {
		fail(c, http.StatusBadRequest, "amount must be a number")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := &payment{ID: s.newIDLocked(), Status: "completed", CreatedAt: time.Now().UTC()}
	s.applyPayment(body, p)
	s.payments = append([]*payment{p}, s.payments...)
	ok(c, http.StatusCreated, "Payment created successfully", p)
}

func (s *Server) updatePayment(c *gin.Context) {
	var body paymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if body.Amount != nil {
		if _, ok := body.amount(); !ok {
			fail(c, http.StatusBadRequest, "amount must be a number")
			return
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.payments {
		if p.ID == c.Param("id") {
			s.applyPayment(body, p)
			ok(c, http.StatusOK, "Payment updated successfully", p)
			return
		}
	}
	fail(c, http.StatusNotFound, "Payment not found")
}

func (s *Server) deletePayment(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, p := range s.payments {
		if p.ID == c.Param("id") {
			s.payments = append(s.payments[:i], s.payments[i+1:]...)
			ok(c, http.StatusOK, "Payment deleted successfully", nil)
			return
		}
	}
	fail(c, http.StatusNotFound, "Payment not found")
}
