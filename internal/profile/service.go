// Package profile serves the signed-in user's own account and keeps the
// session's copy of that user current.
package profile

import (
	"context"
	"mime/multipart"
	"net/http"

	"jobpilot-admin/internal/apiclient"
	"jobpilot-admin/internal/forms"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/constants"
	"jobpilot-admin/internal/shared/upstream"
	"jobpilot-admin/internal/users"
)

const (
	pathProfile     = "/user/profile"
	pathUploadImage = "/user/upload-profile-image"
)

type updateRequest struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Address     string `json:"address,omitempty"`
}

type Service interface {
	Get(ctx context.Context, sess *session.Store) (*users.User, error)
	Update(ctx context.Context, sess *session.Store, form *forms.ProfileForm) (*users.User, string, error)
	UploadImage(ctx context.Context, sess *session.Store, image *multipart.FileHeader) (*users.User, string, error)
}

type service struct {
	gateway *upstream.Gateway
	uploads forms.UploadRules
}

func NewService(gateway *upstream.Gateway, uploads forms.UploadRules) Service {
	return &service{gateway: gateway, uploads: uploads}
}

func (s *service) Get(ctx context.Context, sess *session.Store) (*users.User, error) {
	q := upstream.ObjectQuery[users.User](s.gateway, sess, constants.QueryProfile, pathProfile, nil)
	return upstream.One[users.User](ctx, s.gateway, q)
}

func (s *service) Update(ctx context.Context, sess *session.Store, form *forms.ProfileForm) (*users.User, string, error) {
	if err := forms.Validate(form); err != nil {
		return nil, "", err
	}
	body := updateRequest{
		FirstName:   form.FirstName,
		LastName:    form.LastName,
		PhoneNumber: form.PhoneNumber,
		Address:     form.Address,
	}

	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationUpdateProfile, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Patch(ctx, pathProfile, body)
	})
	if err != nil {
		return nil, "", err
	}
	return s.adopt(ctx, sess, resp, "Profile updated successfully")
}

func (s *service) UploadImage(ctx context.Context, sess *session.Store, image *multipart.FileHeader) (*users.User, string, error) {
	if _, err := s.uploads.ProfileImage.Check(image); err != nil {
		return nil, "", err
	}
	form := apiclient.NewForm().AddFileHeader(s.uploads.ProfileImage.Field, image)

	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationUploadProfileImage, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.SendForm(ctx, http.MethodPost, pathUploadImage, form)
	})
	if err != nil {
		return nil, "", err
	}
	return s.adopt(ctx, sess, resp, "Profile image updated")
}

// adopt copies the updated user into the session so /auth/me and the
// header avatar follow the change.
func (s *service) adopt(ctx context.Context, sess *session.Store, resp *apiclient.Response, fallback string) (*users.User, string, error) {
	message := upstream.Message(resp, fallback)
	user, err := upstream.Record[users.User](resp)
	if err != nil || user == nil || user.Identifier() == "" {
		return user, message, nil
	}
	if err := sess.UpdateUser(ctx, user.SessionUser()); err != nil {
		return user, message, err
	}
	return user, message, nil
}
