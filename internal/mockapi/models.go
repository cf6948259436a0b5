package mockapi

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	pageAbout = "about"
	pageTerms = "term_condition"
	pageLegal = "legal"
)

var (
	jobStatuses       = []string{"Applied", "Shortlisted", "Interview", "Rejected", "Offer"}
	userRoles         = []string{"admin", "analyst", "user"}
	libraryTypes      = []string{"pdf", "video", "text"}
	libraryCategories = []string{"Resume", "Interview", "Career", "Networking"}
	gateways          = []string{"JobPilot", "PayPal", "Bank", "Payonner"}
	notificationTypes = []string{"applied", "shortlisted", "interview", "offer", "system"}
)

type user struct {
	ID              string    `json:"id"`
	FirstName       string    `json:"firstName"`
	LastName        string    `json:"lastName"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	PhoneNumber     string    `json:"phoneNumber"`
	Role            string    `json:"role"`
	Designation     string    `json:"Designation,omitempty"`
	Address         string    `json:"address,omitempty"`
	ProfileImage    string    `json:"profileImage,omitempty"`
	CV              string    `json:"CV,omitempty"`
	IsBlocked       bool      `json:"isBlocked"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`

	password string
}

type job struct {
	ID          string    `json:"_id"`
	CompanyName string    `json:"companyName"`
	JobTitle    string    `json:"jobTitle"`
	JdLink      string    `json:"jdLink,omitempty"`
	Status      string    `json:"status"`
	AppliedDate string    `json:"appliedDate"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type libraryItem struct {
	ID           string    `json:"_id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Category     string    `json:"category"`
	FileType     string    `json:"fileType"`
	FileURL      string    `json:"fileUrl"`
	ThumbnailURL string    `json:"thumbnailUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type paymentUser struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
}

type payment struct {
	ID            string       `json:"_id"`
	User          *paymentUser `json:"userId,omitempty"`
	Amount        float64      `json:"amount"`
	TransactionID string       `json:"transactionId,omitempty"`
	Gateway       string       `json:"gateway"`
	Status        string       `json:"status"`
	Date          string       `json:"date,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
}

type faq struct {
	ID          string    `json:"_id"`
	Question    string    `json:"question"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
}

type privacyPolicy struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type notification struct {
	ID        string                 `json:"_id"`
	Title     string                 `json:"title"`
	Text      string                 `json:"text"`
	Type      string                 `json:"type"`
	Read      bool                   `json:"read"`
	Data      map[string]interface{} `json:"data,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
}

type person struct {
	Name string `json:"name"`
}

type report struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Author      person    `json:"author"`
	ReportBy    person    `json:"reportBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

type contentPage struct {
	ID        string    `json:"_id"`
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// envelope is the response wrapper every JobPilot endpoint uses
func envelope(code int, message string, attributes interface{}) gin.H {
	return gin.H{
		"code":    code,
		"message": message,
		"data":    gin.H{"attributes": attributes},
	}
}

func ok(c *gin.Context, code int, message string, attributes interface{}) {
	c.JSON(code, envelope(code, message, attributes))
}

func fail(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"code": code, "message": message})
}

func mustJSON(v interface{}) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if n, err := strconv.Atoi(c.Query(key)); err == nil && n > 0 {
		return n
	}
	return fallback
}

func pageSlice[T any](items []T, page, limit int) []T {
	if page-1 > len(items)/limit {
		return []T{}
	}
	start := (page - 1) * limit
	if start >= len(items) {
		return []T{}
	}
	end := start + limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
