package forms

// Key casing follows what the JobPilot API accepts, including the capitalised
// Designation and ConfirmPassword keys.

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterForm struct {
	FirstName       string `json:"firstName" validate:"required,max=100"`
	LastName        string `json:"lastName" validate:"required,max=100"`
	Email           string `json:"email" validate:"required,email"`
	PhoneNumber     string `json:"phoneNumber" validate:"required,phone"`
	Designation     string `json:"Designation" validate:"required"`
	Password        string `json:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"ConfirmPassword" validate:"required,eqfield=Password"`
}

// CreateUserForm is the admin "add user" form. It is sent as multipart so
// the profile image and CV can ride along; those are checked by UploadRules.
type CreateUserForm struct {
	FirstName       string `json:"firstName" form:"firstName" validate:"required,max=100"`
	LastName        string `json:"lastName" form:"lastName" validate:"max=100"`
	Email           string `json:"email" form:"email" validate:"required,email"`
	PhoneNumber     string `json:"phoneNumber" form:"phoneNumber" validate:"required,phone"`
	Password        string `json:"password" form:"password" validate:"required,min=6"`
	ConfirmPassword string `json:"ConfirmPassword" form:"ConfirmPassword" validate:"required,eqfield=Password"`
	Role            string `json:"role" form:"role" validate:"omitempty,oneof=super_admin admin analyst user"`
	Designation     string `json:"Designation" form:"Designation"`
	Address         string `json:"address" form:"address"`
}

// FullName joins first and last name the way the users table shows them
func (f CreateUserForm) FullName() string {
	if f.LastName == "" {
		return f.FirstName
	}
	return f.FirstName + " " + f.LastName
}

type UpdateUserForm struct {
	FirstName   string `json:"firstName" form:"firstName" validate:"omitempty,max=100"`
	LastName    string `json:"lastName" form:"lastName" validate:"omitempty,max=100"`
	Email       string `json:"email" form:"email" validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber" validate:"omitempty,phone"`
	Designation string `json:"Designation" form:"Designation"`
	Address     string `json:"address" form:"address"`
}

type ProfileForm struct {
	FirstName   string `json:"firstName" form:"firstName" validate:"omitempty,max=100"`
	LastName    string `json:"lastName" form:"lastName" validate:"omitempty,max=100"`
	PhoneNumber string `json:"phoneNumber" form:"phoneNumber" validate:"omitempty,phone"`
	Address     string `json:"address" form:"address"`
}

type ChangePasswordForm struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=NewPassword"`
}

type ResetPasswordForm struct {
	Email           string `json:"email" validate:"required,email"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
	ConfirmPassword string `json:"ConfirmPassword" validate:"required,eqfield=NewPassword"`
}

type EmailForm struct {
	Email string `json:"email" validate:"required,email"`
}

type OTPForm struct {
	Email       string `json:"email" validate:"required,email"`
	OneTimeCode string `json:"oneTimeCode" validate:"required,len=6,numeric"`
}

type RefreshTokenForm struct {
	RefreshToken string `json:"refreshToken"`
}

type PaymentForm struct {
	UserID        string `json:"userId,omitempty"`
	Amount        Amount `json:"amount"`
	TransactionID string `json:"transactionId,omitempty"`
	Gateway       string `json:"gateway" validate:"required,oneof=JobPilot PayPal Bank Payonner"`
	Date          string `json:"date,omitempty"`
}

// Check validates the form and the amount, which the struct tags cannot see
func (f PaymentForm) Check(v *Validator) error {
	errs := ValidationErrors{}
	if err := v.Struct(f); err != nil {
		verrs, ok := err.(ValidationErrors)
		if !ok {
			return err
		}
		errs = append(errs, verrs...)
	}
	if !f.Amount.IsSet() {
		errs = append(errs, FieldError{Field: "amount", Rule: "required", Message: "Please enter amount"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// FAQForm sends the answer as "description", which is what the FAQ API stores
type FAQForm struct {
	Question    string `json:"question" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// ContentForm covers the privacy policy and the settings singletons
type ContentForm struct {
	Content string `json:"content" validate:"required"`
}

type LibraryForm struct {
	Title       string `form:"title" validate:"required"`
	Description string `form:"description"`
	Category    string `form:"category" validate:"required"`
	FileType    string `form:"fileType" validate:"required,oneof=pdf video text"`
}

// Application statuses, in pipeline order
var JobStatuses = []string{"Applied", "Shortlisted", "Interview", "Rejected", "Offer"}

type JobForm struct {
	CompanyName string `json:"companyName" validate:"required,max=200"`
	JobTitle    string `json:"jobTitle" validate:"required,max=200"`
	JdLink      string `json:"jdLink,omitempty" validate:"omitempty,url"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=Applied Shortlisted Interview Rejected Offer"`
	AppliedDate string `json:"appliedDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	UserID      string `json:"userId,omitempty"`
}

// JobUpdateForm is a partial JobForm
type JobUpdateForm struct {
	CompanyName string `json:"companyName,omitempty" validate:"omitempty,max=200"`
	JobTitle    string `json:"jobTitle,omitempty" validate:"omitempty,max=200"`
	JdLink      string `json:"jdLink,omitempty" validate:"omitempty,url"`
	Status      string `json:"status,omitempty" validate:"omitempty,oneof=Applied Shortlisted Interview Rejected Offer"`
	AppliedDate string `json:"appliedDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	UserID      string `json:"userId,omitempty"`
}

type JobStatusForm struct {
	Status string `json:"status" validate:"required,oneof=Applied Shortlisted Interview Rejected Offer"`
}
