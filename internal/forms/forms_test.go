package forms

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobpilot-admin/internal/apiclient"
	"jobpilot-admin/internal/normalize"
	"jobpilot-admin/internal/shared/config"
)

func validationErrors(t *testing.T, err error) ValidationErrors {
	t.Helper()
	require.Error(t, err)
	var verrs ValidationErrors
	require.True(t, errors.As(err, &verrs), "expected ValidationErrors, got %T", err)
	return verrs
}

func TestValidate_ChangePasswordMismatch(t *testing.T) {
	err := Validate(ChangePasswordForm{
		CurrentPassword: "old-secret",
		NewPassword:     "new-secret",
		ConfirmPassword: "other-secret",
	})

	fields := validationErrors(t, err).Fields()
	assert.Equal(t, map[string]string{"confirmPassword": "Passwords do not match"}, fields)
}

func TestValidate_PasswordTooShort(t *testing.T) {
	err := Validate(ResetPasswordForm{
		Email:           "a@b.co",
		NewPassword:     "12345",
		ConfirmPassword: "12345",
	})

	verrs := validationErrors(t, err)
	require.Len(t, verrs, 1)
	assert.Equal(t, "newPassword", verrs[0].Field)
	assert.Equal(t, "min", verrs[0].Rule)
	assert.Equal(t, "New password must be at least 6 characters long", verrs[0].Message)
}

func TestValidate_CreateUserRequiresNameEmailPhone(t *testing.T) {
	err := Validate(CreateUserForm{Password: "secret1", ConfirmPassword: "secret1"})

	fields := validationErrors(t, err).Fields()
	assert.Equal(t, "First name is required", fields["firstName"])
	assert.Equal(t, "Email is required", fields["email"])
	assert.Equal(t, "Phone number is required", fields["phoneNumber"])
	assert.Len(t, fields, 3)
}

func TestValidate_CreateUserValid(t *testing.T) {
	form := CreateUserForm{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		PhoneNumber:     "+1 (555) 010-2030",
		Password:        "secret1",
		ConfirmPassword: "secret1",
		Role:            "analyst",
	}
	assert.NoError(t, Validate(form))
	assert.Equal(t, "Ada Lovelace", form.FullName())
}

func TestValidate_RegisterUsesWireKeys(t *testing.T) {
	err := Validate(RegisterForm{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "not-an-email",
		PhoneNumber:     "abc",
		Password:        "secret1",
		ConfirmPassword: "secret2",
	})

	fields := validationErrors(t, err).Fields()
	assert.Equal(t, "Please enter a valid email address", fields["email"])
	assert.Equal(t, "Please enter a valid phone number", fields["phoneNumber"])
	assert.Equal(t, "Designation is required", fields["Designation"])
	assert.Equal(t, "Passwords do not match", fields["ConfirmPassword"])
}

func TestValidate_OTP(t *testing.T) {
	assert.NoError(t, Validate(OTPForm{Email: "a@b.co", OneTimeCode: "123456"}))

	verrs := validationErrors(t, Validate(OTPForm{Email: "a@b.co", OneTimeCode: "123"}))
	assert.Equal(t, "One time code must be 6 characters", verrs.Summary())
}

func TestValidate_JobForm(t *testing.T) {
	fields := validationErrors(t, Validate(JobForm{
		CompanyName: "Acme",
		Status:      "Hired",
		AppliedDate: "16/10/2026",
	})).Fields()

	assert.Equal(t, "Job title is required", fields["jobTitle"])
	assert.Equal(t, "Status must be one of: Applied, Shortlisted, Interview, Rejected, Offer", fields["status"])
	assert.Equal(t, "Applied date must be a date like 2006-01-02", fields["appliedDate"])

	assert.NoError(t, Validate(JobForm{CompanyName: "Acme", JobTitle: "SRE", AppliedDate: "2026-10-16"}))
	assert.Error(t, Validate(JobStatusForm{}))
}

func TestRegisterRules_ReportsFailure(t *testing.T) {
	v := validator.New()
	assert.NoError(t, registerRules(v, customRules))
	assert.Error(t, registerRules(v, map[string]validator.Func{"": validatePhone}))
	assert.NotPanics(t, func() { NewValidator() })
}

func TestValidationErrors_Error(t *testing.T) {
	verrs := ValidationErrors{
		{Field: "a", Message: "A is required"},
		{Field: "b", Message: "B is required"},
	}
	assert.Equal(t, "A is required; B is required", verrs.Error())
	assert.Equal(t, "validation failed", ValidationErrors{}.Error())
	assert.True(t, IsValidationError(verrs))
	assert.False(t, IsValidationError(errors.New("x")))
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		in   interface{}
		want float64
	}{
		{"plain string", "2000", 2000},
		{"display string", "$2,000.50", 2000.5},
		{"int", 2000, 2000},
		{"float", 19.999, 20},
		{"json number", json.Number("15.25"), 15.25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAmount_Invalid(t *testing.T) {
	for _, in := range []interface{}{"", "abc", "-5", true} {
		_, err := ParseAmount(in)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %v", in)
	}
}

func TestAmount_JSON(t *testing.T) {
	var form PaymentForm
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"$2,000","gateway":"PayPal"}`), &form))
	assert.True(t, form.Amount.IsSet())
	assert.Equal(t, 2000.0, form.Amount.Float64())
	assert.Equal(t, "$2000.00", form.Amount.Display())

	out, err := json.Marshal(form)
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":2000,"gateway":"PayPal"}`, string(out))

	var bad PaymentForm
	assert.Error(t, json.Unmarshal([]byte(`{"amount":"lots"}`), &bad))
}

func TestPaymentForm_Check(t *testing.T) {
	v := NewValidator()

	err := PaymentForm{Gateway: "Bank"}.Check(v)
	assert.Equal(t, "Please enter amount", validationErrors(t, err).Fields()["amount"])

	err = PaymentForm{Gateway: "Cash", Amount: NewAmount(10)}.Check(v)
	assert.Contains(t, validationErrors(t, err).Fields(), "gateway")

	assert.NoError(t, PaymentForm{Gateway: "JobPilot", Amount: NewAmount(2000)}.Check(v))
}

var (
	pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	txtBytes = []byte("just some notes\nsecond line\n")
)

func testUploadRules() UploadRules {
	return NewUploadRules(config.UploadConfig{
		UserImageMaxSize: 2 * 1024 * 1024,
		ProfileImageMax:  5 * 1024 * 1024,
		CVMaxSize:        5 * 1024 * 1024,
		LibraryFileMax:   10 * 1024 * 1024,
		LibraryThumbMax:  5 * 1024 * 1024,
	})
}

func TestUploadRule_UserImage(t *testing.T) {
	rule := testUploadRules().UserImage

	m, err := rule.CheckContent("me.png", int64(len(pngBytes)), bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, "image/png", m.String())

	_, err = rule.CheckContent("me.png", 3*1024*1024, bytes.NewReader(pngBytes))
	verrs := validationErrors(t, err)
	assert.Equal(t, "Image must be smaller than 2MB!", verrs.Summary())

	_, err = rule.CheckContent("me.png", int64(len(pdfBytes)), bytes.NewReader(pdfBytes))
	verrs = validationErrors(t, err)
	assert.Equal(t, "profileImage", verrs[0].Field)
	assert.Equal(t, "mimetype", verrs[0].Rule)
}

func TestUploadRule_ProfileImageAllowsLarger(t *testing.T) {
	rule := testUploadRules().ProfileImage
	_, err := rule.CheckContent("me.png", 3*1024*1024, bytes.NewReader(pngBytes))
	assert.NoError(t, err)
}

func TestUploadRule_CV(t *testing.T) {
	rule := testUploadRules().CV

	_, err := rule.CheckContent("cv.pdf", int64(len(pdfBytes)), bytes.NewReader(pdfBytes))
	assert.NoError(t, err)

	_, err = rule.CheckContent("cv.png", int64(len(pngBytes)), bytes.NewReader(pngBytes))
	assert.Equal(t, "CV must be a PDF or Word document", validationErrors(t, err).Summary())
}

func TestUploadRules_LibraryFile(t *testing.T) {
	rules := testUploadRules()

	pdf, err := rules.LibraryFile("PDF")
	require.NoError(t, err)
	_, err = pdf.CheckContent("guide.pdf", int64(len(pdfBytes)), bytes.NewReader(pdfBytes))
	assert.NoError(t, err)
	_, err = pdf.CheckContent("notes.txt", int64(len(txtBytes)), bytes.NewReader(txtBytes))
	assert.Equal(t, "Please select a PDF file for PDF type", validationErrors(t, err).Summary())

	text, err := rules.LibraryFile("text")
	require.NoError(t, err)
	_, err = text.CheckContent("notes.md", int64(len(txtBytes)), bytes.NewReader(txtBytes))
	assert.NoError(t, err)
	binary := []byte{0x00, 0x01, 0x02, 0x03}
	_, err = text.CheckContent("dump.txt", int64(len(binary)), bytes.NewReader(binary))
	assert.NoError(t, err, ".txt is accepted by extension")

	video, err := rules.LibraryFile("video")
	require.NoError(t, err)
	_, err = video.CheckContent("clip.mp4", int64(len(pdfBytes)), bytes.NewReader(pdfBytes))
	assert.Equal(t, "fileUrl", validationErrors(t, err)[0].Field)

	_, err = rules.LibraryFile("")
	assert.Equal(t, "Please select a file type first", validationErrors(t, err).Summary())
	_, err = rules.LibraryFile("audio")
	assert.Equal(t, "fileType", validationErrors(t, err)[0].Field)
}

func TestUploadRule_LibraryThumb(t *testing.T) {
	rule := testUploadRules().LibraryThumb
	_, err := rule.CheckContent("thumb.txt", int64(len(txtBytes)), bytes.NewReader(txtBytes))
	assert.Equal(t, "Please select an image file for thumbnail (JPG, PNG, GIF)", validationErrors(t, err).Summary())
}

func TestUploadRule_CheckNilHeader(t *testing.T) {
	_, err := testUploadRules().CV.Check(nil)
	assert.Equal(t, "CV is required", validationErrors(t, err).Summary())
}

func TestUserMessage(t *testing.T) {
	apiErr := &apiclient.APIError{Status: http.StatusConflict, Message: "Email already exists"}
	verrs := ValidationErrors{{Field: "email", Message: "Email is required"}}

	tests := []struct {
		name     string
		err      error
		fallback string
		want     string
	}{
		{"server message", apiErr, "", "Email already exists"},
		{"wrapped server message", errors.Join(errors.New("create user"), apiErr), "", "Email already exists"},
		{"validation", verrs, "", "Email is required"},
		{"parse error", &normalize.ParseError{Reason: "bad"}, "", "Could not read the server response. Please try again."},
		{"api error without message", &apiclient.APIError{Status: 500}, "Failed to create FAQ", "Failed to create FAQ"},
		{"transport", &apiclient.TransportError{Err: errors.New("refused")}, "", DefaultErrorMessage},
		{"nil", nil, "", DefaultErrorMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err, tt.fallback))
		})
	}
}
