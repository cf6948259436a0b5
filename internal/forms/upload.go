package forms

import (
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"jobpilot-admin/internal/shared/config"
)

// Library file types a library item can declare
const (
	LibraryFilePDF   = "pdf"
	LibraryFileVideo = "video"
	LibraryFileText  = "text"
)

const (
	mimePDF  = "application/pdf"
	mimeDOC  = "application/msword"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// UploadRule limits one multipart file field by sniffed content type and size
type UploadRule struct {
	Field       string
	Label       string
	MaxSize     int64
	TypeMessage string
	allow       func(m *mimetype.MIME, filename string) bool
}

// UploadRules holds the rule for every file field the dashboard sends
type UploadRules struct {
	UserImage      UploadRule
	ProfileImage   UploadRule
	CV             UploadRule
	LibraryThumb   UploadRule
	LibraryFileMax int64
}

// NewUploadRules builds the upload rules from configured limits
func NewUploadRules(cfg config.UploadConfig) UploadRules {
	return UploadRules{
		UserImage: UploadRule{
			Field:       "profileImage",
			Label:       "Image",
			MaxSize:     cfg.UserImageMaxSize,
			TypeMessage: "You can only upload image files!",
			allow:       isImage,
		},
		ProfileImage: UploadRule{
			Field:       "profileImage",
			Label:       "Image",
			MaxSize:     cfg.ProfileImageMax,
			TypeMessage: "Please select a valid image file",
			allow:       isImage,
		},
		CV: UploadRule{
			Field:       "CV",
			Label:       "CV",
			MaxSize:     cfg.CVMaxSize,
			TypeMessage: "CV must be a PDF or Word document",
			allow:       isDocument,
		},
		LibraryThumb: UploadRule{
			Field:       "thumbnailUrl",
			Label:       "Thumbnail",
			MaxSize:     cfg.LibraryThumbMax,
			TypeMessage: "Please select an image file for thumbnail (JPG, PNG, GIF)",
			allow:       isImage,
		},
		LibraryFileMax: cfg.LibraryFileMax,
	}
}

// LibraryFile returns the rule for a library item's main file, which must
// match the item's declared fileType.
func (r UploadRules) LibraryFile(fileType string) (UploadRule, error) {
	rule := UploadRule{Field: "fileUrl", Label: "File", MaxSize: r.LibraryFileMax}

	switch strings.ToLower(strings.TrimSpace(fileType)) {
	case LibraryFilePDF:
		rule.allow = func(m *mimetype.MIME, _ string) bool { return m.Is(mimePDF) }
		rule.TypeMessage = "Please select a PDF file for PDF type"
	case LibraryFileVideo:
		rule.allow = func(m *mimetype.MIME, _ string) bool { return hasTypePrefix(m, "video/") }
		rule.TypeMessage = "Please select a video file (MP4, MOV, AVI, etc.) for video type"
	case LibraryFileText:
		rule.allow = isTextDocument
		rule.TypeMessage = "Please select a text document (TXT, DOC, DOCX) for text type"
	case "":
		return UploadRule{}, ValidationErrors{{Field: "fileType", Rule: "required", Message: "Please select a file type first"}}
	default:
		return UploadRule{}, ValidationErrors{{
			Field:   "fileType",
			Rule:    "oneof",
			Message: fmt.Sprintf("File type must be one of: %s, %s, %s", LibraryFilePDF, LibraryFileVideo, LibraryFileText),
		}}
	}
	return rule, nil
}

// Check opens an uploaded file and validates it
func (r UploadRule) Check(fh *multipart.FileHeader) (*mimetype.MIME, error) {
	if fh == nil {
		return nil, ValidationErrors{{Field: r.Field, Rule: "required", Message: r.Label + " is required"}}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", r.Field, err)
	}
	defer f.Close()

	return r.CheckContent(fh.Filename, fh.Size, f)
}

// CheckContent validates a file's size and sniffed content type
func (r UploadRule) CheckContent(filename string, size int64, content io.Reader) (*mimetype.MIME, error) {
	if r.MaxSize > 0 && size > r.MaxSize {
		return nil, ValidationErrors{{
			Field:   r.Field,
			Rule:    "max",
			Message: fmt.Sprintf("%s must be smaller than %s!", r.Label, formatSize(r.MaxSize)),
		}}
	}

	m, err := mimetype.DetectReader(content)
	if err != nil {
		return nil, fmt.Errorf("failed to detect content type of %s: %w", r.Field, err)
	}

	if r.allow != nil && !r.allow(m, filename) {
		return m, ValidationErrors{{Field: r.Field, Rule: "mimetype", Message: r.TypeMessage}}
	}
	return m, nil
}

func isImage(m *mimetype.MIME, _ string) bool {
	return hasTypePrefix(m, "image/")
}

func isDocument(m *mimetype.MIME, _ string) bool {
	return m.Is(mimePDF) || m.Is(mimeDOC) || m.Is(mimeDOCX)
}

func isTextDocument(m *mimetype.MIME, filename string) bool {
	if hasTypePrefix(m, "text/") || m.Is(mimeDOC) || m.Is(mimeDOCX) {
		return true
	}
	return strings.EqualFold(filepath.Ext(filename), ".txt")
}

// hasTypePrefix checks m and its parents, so "text/csv" still counts as text
func hasTypePrefix(m *mimetype.MIME, prefix string) bool {
	for ; m != nil; m = m.Parent() {
		if strings.HasPrefix(m.String(), prefix) {
			return true
		}
	}
	return false
}

func formatSize(n int64) string {
	const mb = 1024 * 1024
	if n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	if n >= mb {
		return fmt.Sprintf("%.1fMB", float64(n)/mb)
	}
	return fmt.Sprintf("%dKB", n/1024)
}
