package mockapi

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// seed fills the store from the faker. Runs once from New.
func (s *Server) seed() {
	f := s.faker
	now := time.Now().UTC()

	admin := &user{
		ID:              s.newIDLocked(),
		FirstName:       "Ada",
		LastName:        "Admin",
		FullName:        "Ada Admin",
		Email:           s.opts.AdminEmail,
		PhoneNumber:     "+1 555 0100",
		Role:            "admin",
		Designation:     "Operations",
		IsEmailVerified: true,
		CreatedAt:       now,
		password:        s.opts.AdminPassword,
	}
	if admin.Email == "" {
		admin.Email = "admin@jobpilot.dev"
	}
	s.users = append(s.users, admin)

	for i := 1; i < s.opts.Users; i++ {
		first, last := f.FirstName(), f.LastName()
		s.users = append(s.users, &user{
			ID:              s.newIDLocked(),
			FirstName:       first,
			LastName:        last,
			FullName:        first + " " + last,
			Email:           fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i),
			PhoneNumber:     f.Phone(),
			Role:            userRoles[i%len(userRoles)],
			Designation:     f.JobTitle(),
			Address:         f.City(),
			IsEmailVerified: true,
			CreatedAt:       now.Add(-time.Duration(i) * time.Hour),
			password:        "password123",
		})
	}

	for i := 0; i < s.opts.Jobs; i++ {
		created := now.Add(-time.Duration(i) * 24 * time.Hour)
		s.jobs = append(s.jobs, &job{
			ID:          s.newIDLocked(),
			CompanyName: f.Company(),
			JobTitle:    f.JobTitle(),
			JdLink:      f.URL(),
			Status:      jobStatuses[i%len(jobStatuses)],
			AppliedDate: created.Format("2006-01-02"),
			UserID:      admin.ID,
			CreatedAt:   created,
			UpdatedAt:   created,
		})
	}

	for i := 0; i < s.opts.Library; i++ {
		fileType := libraryTypes[i%len(libraryTypes)]
		s.library = append(s.library, &libraryItem{
			ID:           s.newIDLocked(),
			Title:        f.Sentence(3),
			Description:  f.Sentence(10),
			Category:     libraryCategories[i%len(libraryCategories)],
			FileType:     fileType,
			FileURL:      "/uploads/library/" + f.UUID() + "." + extensionFor(fileType),
			ThumbnailURL: "/uploads/library/thumbs/" + f.UUID() + ".png",
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}

	for i := 0; i < s.opts.Payments; i++ {
		u := s.users[i%len(s.users)]
		s.payments = append(s.payments, &payment{
			ID:            s.newIDLocked(),
			User:          &paymentUser{ID: u.ID, FullName: u.FullName, Email: u.Email},
			Amount:        float64(f.Number(10, 500)),
			TransactionID: "txn_" + f.UUID()[:8],
			Gateway:       gateways[i%len(gateways)],
			Status:        "completed",
			Date:          now.Add(-time.Duration(i) * 24 * time.Hour).Format("2006-01-02"),
			CreatedAt:     now,
		})
	}

	for i := 0; i < s.opts.FAQs; i++ {
		s.faqs = append(s.faqs, &faq{
			ID:          s.newIDLocked(),
			Question:    strings.TrimSuffix(f.Sentence(6), ".") + "?",
			Description: f.Sentence(15),
			CreatedAt:   now,
		})
	}

	for i := 0; i < s.opts.Notifications; i++ {
		kind := notificationTypes[i%len(notificationTypes)]
		s.notifications = append(s.notifications, &notification{
			ID:        s.newIDLocked(),
			Title:     strings.ToUpper(kind[:1]) + kind[1:] + " update",
			Text:      f.Sentence(8),
			Type:      kind,
			Read:      i%3 == 0,
			CreatedAt: now.Add(-time.Duration(i) * time.Minute),
		})
	}

	for i := 0; i < s.opts.Reports; i++ {
		s.reports = append(s.reports, &report{
			ID:          s.newIDLocked(),
			Title:       f.Sentence(4),
			Description: f.Sentence(20),
			Author:      person{Name: f.Name()},
			ReportBy:    person{Name: f.Name()},
			CreatedAt:   now.Add(-time.Duration(i) * time.Hour),
		})
	}

	s.privacy = &privacyPolicy{ID: s.newIDLocked(), Content: "<p>" + f.Sentence(20) + "</p>", UpdatedAt: now}
	s.pages[pageAbout] = &contentPage{ID: s.newIDLocked(), Content: "<p>" + f.Sentence(12) + "</p>", UpdatedAt: now}
}

// newIDLocked returns a 24-hex id shaped like the API's object ids
func (s *Server) newIDLocked() string {
	s.nextID++
	return fmt.Sprintf("%08x%s", s.nextID, strings.ReplaceAll(uuid.NewString(), "-", "")[:16])
}

func (s *Server) issueTokensLocked(userID string) (string, string) {
	access := "acc_" + uuid.NewString()
	refresh := "ref_" + uuid.NewString()
	s.accessTokens[access] = userID
	s.refreshTokens[refresh] = userID
	return access, refresh
}

func (s *Server) findUserByEmailLocked(email string) *user {
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range s.users {
		if strings.ToLower(u.Email) == email {
			return u
		}
	}
	return nil
}

func (s *Server) findUserLocked(id string) *user {
	for _, u := range s.users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func extensionFor(fileType string) string {
	switch fileType {
	case "pdf":
		return "pdf"
	case "video":
		return "mp4"
	default:
		return "txt"
	}
}
