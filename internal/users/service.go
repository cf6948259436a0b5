package users

import (
	"context"
	"mime/multipart"
	"net/http"
	"net/url"

	"jobpilot-admin/internal/apiclient"
	"jobpilot-admin/internal/forms"
	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/normalize"
	"jobpilot-admin/internal/querycache"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/constants"
	"jobpilot-admin/internal/shared/upstream"
)

const (
	pathList   = "/user"
	pathCreate = "/user/create-user"
)

func pathOne(id string) string    { return "/user/" + url.PathEscape(id) }
func pathUpdate(id string) string { return "/user/profile-update/" + url.PathEscape(id) }
func pathBlock(id string) string  { return "/user/" + url.PathEscape(id) + "/block" }

// Uploads are the files attached to a create-user form
type Uploads struct {
	ProfileImage *multipart.FileHeader
	CV           *multipart.FileHeader
}

type Service interface {
	List(ctx context.Context, sess *session.Store, state listview.State) (normalize.Page[User], error)
	ListSource(sess *session.Store) listview.Source
	Get(ctx context.Context, sess *session.Store, id string) (*User, error)
	Create(ctx context.Context, sess *session.Store, form *forms.CreateUserForm, files Uploads) (*User, string, error)
	Update(ctx context.Context, sess *session.Store, id string, form *forms.UpdateUserForm) (*User, string, error)
	Delete(ctx context.Context, sess *session.Store, id string) (string, error)
	ToggleBlock(ctx context.Context, sess *session.Store, id string) (*User, string, error)
}

type service struct {
	gateway *upstream.Gateway
	uploads forms.UploadRules
}

func NewService(gateway *upstream.Gateway, uploads forms.UploadRules) Service {
	return &service{gateway: gateway, uploads: uploads}
}

// ListSource backs the users screen. The endpoint returns every user at
// once, so pages are cut locally.
func (s *service) ListSource(sess *session.Store) listview.Source {
	return func(state listview.State) querycache.Query {
		return upstream.ListQuery[User](s.gateway, sess, constants.QueryUsersList, pathList, state)
	}
}

func (s *service) List(ctx context.Context, sess *session.Store, state listview.State) (normalize.Page[User], error) {
	return upstream.List[User](ctx, s.gateway, s.ListSource(sess)(state))
}

func (s *service) Get(ctx context.Context, sess *session.Store, id string) (*User, error) {
	q := upstream.ObjectQuery[User](s.gateway, sess, constants.QueryUserDetail, pathOne(id), url.Values{"id": {id}})
	return upstream.One[User](ctx, s.gateway, q)
}

// Create validates the form and both files before anything is sent
func (s *service) Create(ctx context.Context, sess *session.Store, form *forms.CreateUserForm, files Uploads) (*User, string, error) {
	if err := forms.Validate(form); err != nil {
		return nil, "", err
	}
	if files.ProfileImage != nil {
		if _, err := s.uploads.UserImage.Check(files.ProfileImage); err != nil {
			return nil, "", err
		}
	}
	if files.CV != nil {
		if _, err := s.uploads.CV.Check(files.CV); err != nil {
			return nil, "", err
		}
	}

	body := apiclient.NewForm().
		AddField("firstName", form.FirstName).
		AddField("lastName", form.LastName).
		AddField("fullName", form.FullName()).
		AddField("email", form.Email).
		AddField("phoneNumber", form.PhoneNumber).
		AddField("password", form.Password).
		AddField("role", form.Role).
		AddField("Designation", form.Designation).
		AddField("address", form.Address).
		AddFileHeader(s.uploads.UserImage.Field, files.ProfileImage).
		AddFileHeader(s.uploads.CV.Field, files.CV)

	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationCreateUser, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.SendForm(ctx, http.MethodPost, pathCreate, body)
	})
	return recordOf(resp, err, "User created successfully")
}

func (s *service) Update(ctx context.Context, sess *session.Store, id string, form *forms.UpdateUserForm) (*User, string, error) {
	if err := forms.Validate(form); err != nil {
		return nil, "", err
	}
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationUpdateUser, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Patch(ctx, pathUpdate(id), newUpdateRequest(form))
	})
	return recordOf(resp, err, "User updated successfully")
}

func (s *service) Delete(ctx context.Context, sess *session.Store, id string) (string, error) {
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationDeleteUser, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Delete(ctx, pathOne(id))
	})
	if err != nil {
		return "", err
	}
	return upstream.Message(resp, "User deleted successfully"), nil
}

func (s *service) ToggleBlock(ctx context.Context, sess *session.Store, id string) (*User, string, error) {
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationToggleBlockUser, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Patch(ctx, pathBlock(id), nil)
	})
	return recordOf(resp, err, "User status updated")
}

// recordOf turns a write's answer into the user it returned. A reply the
// normalizer cannot read still counts as success; the list refetch shows
// the change.
func recordOf(resp *apiclient.Response, err error, fallback string) (*User, string, error) {
	if err != nil {
		return nil, "", err
	}
	user, _ := upstream.Record[User](resp)
	return user, upstream.Message(resp, fallback), nil
}
