package library

import (
	"context"
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
	pathList   = "/library/get-all"
	pathCreate = "/library/create"
)

func pathUpdate(id string) string { return "/library/update/" + url.PathEscape(id) }
func pathDelete(id string) string { return "/library/delete/" + url.PathEscape(id) }

type Service interface {
	List(ctx context.Context, sess *session.Store, state listview.State) (normalize.Page[Item], error)
	ListSource(sess *session.Store) listview.Source
	Create(ctx context.Context, sess *session.Store, form *forms.LibraryForm, files Uploads) (*Item, string, error)
	Update(ctx context.Context, sess *session.Store, id string, form *forms.LibraryForm, files Uploads) (*Item, string, error)
	Delete(ctx context.Context, sess *session.Store, id string) (string, error)
}

type service struct {
	gateway *upstream.Gateway
	uploads forms.UploadRules
}

func NewService(gateway *upstream.Gateway, uploads forms.UploadRules) Service {
	return &service{gateway: gateway, uploads: uploads}
}

func (s *service) ListSource(sess *session.Store) listview.Source {
	return func(state listview.State) querycache.Query {
		return upstream.ListQuery[Item](s.gateway, sess, constants.QueryLibraryList, pathList, state)
	}
}

func (s *service) List(ctx context.Context, sess *session.Store, state listview.State) (normalize.Page[Item], error) {
	return upstream.List[Item](ctx, s.gateway, s.ListSource(sess)(state))
}

// Create needs the main file; its content must match the declared fileType
func (s *service) Create(ctx context.Context, sess *session.Store, form *forms.LibraryForm, files Uploads) (*Item, string, error) {
	if files.File == nil {
		return nil, "", forms.ValidationErrors{{Field: "fileUrl", Rule: "required", Message: "Please upload a file"}}
	}
	body, err := s.buildForm(form, files)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationCreateLibraryItem, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.SendForm(ctx, http.MethodPost, pathCreate, body)
	})
	return itemOf(resp, err, "Library item created successfully")
}

// Update keeps the stored file when none is sent
func (s *service) Update(ctx context.Context, sess *session.Store, id string, form *forms.LibraryForm, files Uploads) (*Item, string, error) {
	body, err := s.buildForm(form, files)
	if err != nil {
		return nil, "", err
	}

	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationUpdateLibraryItem, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.SendForm(ctx, http.MethodPut, pathUpdate(id), body)
	})
	return itemOf(resp, err, "Library item updated successfully")
}

func (s *service) Delete(ctx context.Context, sess *session.Store, id string) (string, error) {
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationDeleteLibraryItem, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Delete(ctx, pathDelete(id))
	})
	if err != nil {
		return "", err
	}
	return upstream.Message(resp, "Library item deleted successfully"), nil
}

func (s *service) buildForm(form *forms.LibraryForm, files Uploads) (*apiclient.Form, error) {
	if err := forms.Validate(form); err != nil {
		return nil, err
	}
	if files.File != nil {
		rule, err := s.uploads.LibraryFile(form.FileType)
		if err != nil {
			return nil, err
		}
		if _, err := rule.Check(files.File); err != nil {
			return nil, err
		}
	}
	if files.Thumbnail != nil {
		if _, err := s.uploads.LibraryThumb.Check(files.Thumbnail); err != nil {
			return nil, err
		}
	}

	return apiclient.NewForm().
		AddField("title", form.Title).
		AddField("description", form.Description).
		AddField("category", form.Category).
		AddField("fileType", form.FileType).
		AddFileHeader("fileUrl", files.File).
		AddFileHeader(s.uploads.LibraryThumb.Field, files.Thumbnail), nil
}

func itemOf(resp *apiclient.Response, err error, fallback string) (*Item, string, error) {
	if err != nil {
		return nil, "", err
	}
	item, _ := upstream.Record[Item](resp)
	return item, upstream.Message(resp, fallback), nil
}
