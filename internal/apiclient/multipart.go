package apiclient

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strings"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

type formField struct {
	name  string
	value string
}

type formFile struct {
	field       string
	filename    string
	contentType string
	open        func() (io.ReadCloser, error)
}

// Form is a multipart body streamed to the API. A Form is consumed by the
// request that sends it and cannot be reused.
type Form struct {
	fields []formField
	files  []formFile
}

// NewForm creates an empty multipart form
func NewForm() *Form {
	return &Form{}
}

// AddField appends a text field. Empty values are skipped the same way the
// dashboard dropped null and undefined fields.
func (f *Form) AddField(name, value string) *Form {
	if value == "" {
		return f
	}
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AddFile appends a file part read from r
func (f *Form) AddFile(field, filename, contentType string, r io.Reader) *Form {
	f.files = append(f.files, formFile{
		field:       field,
		filename:    filename,
		contentType: contentType,
		open: func() (io.ReadCloser, error) {
			return io.NopCloser(r), nil
		},
	})
	return f
}

// AddFileHeader appends a file received from the dashboard's own upload
func (f *Form) AddFileHeader(field string, fh *multipart.FileHeader) *Form {
	if fh == nil {
		return f
	}
	f.files = append(f.files, formFile{
		field:       field,
		filename:    fh.Filename,
		contentType: fh.Header.Get("Content-Type"),
		open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	})
	return f
}

// HasFiles reports whether any file part was added
func (f *Form) HasFiles() bool {
	return len(f.files) > 0
}

// reader streams the encoded form through a pipe. The returned content type
// carries the boundary generated by the multipart writer.
func (f *Form) reader() (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(f.write(mw))
	}()

	return pr, mw.FormDataContentType()
}

func (f *Form) write(mw *multipart.Writer) error {
	for _, field := range f.fields {
		if err := mw.WriteField(field.name, field.value); err != nil {
			return fmt.Errorf("writing field %s: %w", field.name, err)
		}
	}

	for _, file := range f.files {
		src, err := file.open()
		if err != nil {
			return fmt.Errorf("opening %s: %w", file.field, err)
		}
		part, err := mw.CreatePart(file.header())
		if err != nil {
			src.Close()
			return fmt.Errorf("creating part %s: %w", file.field, err)
		}
		_, err = io.Copy(part, src)
		src.Close()
		if err != nil {
			return fmt.Errorf("copying %s: %w", file.field, err)
		}
	}

	return mw.Close()
}

func (file formFile) header() textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(file.field), quoteEscaper.Replace(file.filename)))
	ct := file.contentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	return h
}
