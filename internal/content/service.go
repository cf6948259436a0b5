package content

import (
	"context"
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
	pathFAQList      = "/faq/read-all"
	pathFAQCreate    = "/faq/create"
	pathPolicyRead   = "/privacy-policy/read"
	pathPolicyCreate = "/privacy-policy/create"
)

func pathFAQUpdate(id string) string    { return "/faq/update/" + url.PathEscape(id) }
func pathFAQDelete(id string) string    { return "/faq/delete/" + url.PathEscape(id) }
func pathPolicyUpdate(id string) string { return "/privacy-policy/update/" + url.PathEscape(id) }

type Service interface {
	ListFAQs(ctx context.Context, sess *session.Store, state listview.State) (normalize.Page[FAQ], error)
	FAQSource(sess *session.Store) listview.Source
	CreateFAQ(ctx context.Context, sess *session.Store, form *forms.FAQForm) (*FAQ, string, error)
	UpdateFAQ(ctx context.Context, sess *session.Store, id string, form *forms.FAQForm) (*FAQ, string, error)
	DeleteFAQ(ctx context.Context, sess *session.Store, id string) (string, error)

	PrivacyPolicy(ctx context.Context, sess *session.Store) (*Document, error)
	CreatePrivacyPolicy(ctx context.Context, sess *session.Store, form *forms.ContentForm) (*Document, string, error)
	UpdatePrivacyPolicy(ctx context.Context, sess *session.Store, id string, form *forms.ContentForm) (*Document, string, error)

	GetPage(ctx context.Context, sess *session.Store, page Page) (*Document, error)
	SavePage(ctx context.Context, sess *session.Store, page Page, form *forms.ContentForm) (*Document, string, error)
}

type service struct {
	gateway *upstream.Gateway
}

func NewService(gateway *upstream.Gateway) Service {
	return &service{gateway: gateway}
}

func (s *service) FAQSource(sess *session.Store) listview.Source {
	return func(state listview.State) querycache.Query {
		return upstream.ListQuery[FAQ](s.gateway, sess, constants.QueryFAQList, pathFAQList, state)
	}
}

func (s *service) ListFAQs(ctx context.Context, sess *session.Store, state listview.State) (normalize.Page[FAQ], error) {
	return upstream.List[FAQ](ctx, s.gateway, s.FAQSource(sess)(state))
}

func (s *service) CreateFAQ(ctx context.Context, sess *session.Store, form *forms.FAQForm) (*FAQ, string, error) {
	if err := forms.Validate(form); err != nil {
		return nil, "", err
	}
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationCreateFAQ, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Post(ctx, pathFAQCreate, form)
	})
	return recordOf[FAQ](resp, err, "FAQ created successfully")
}

func (s *service) UpdateFAQ(ctx context.Context, sess *session.Store, id string, form *forms.FAQForm) (*FAQ, string, error) {
	if err := forms.Validate(form); err != nil {
		return nil, "", err
	}
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationUpdateFAQ, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Patch(ctx, pathFAQUpdate(id), form)
	})
	return recordOf[FAQ](resp, err, "FAQ updated successfully")
}

func (s *service) DeleteFAQ(ctx context.Context, sess *session.Store, id string) (string, error) {
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationDeleteFAQ, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Delete(ctx, pathFAQDelete(id))
	})
	if err != nil {
		return "", err
	}
	return upstream.Message(resp, "FAQ deleted successfully"), nil
}

// PrivacyPolicy returns nil until one has been created
func (s *service) PrivacyPolicy(ctx context.Context, sess *session.Store) (*Document, error) {
	q := upstream.ObjectQuery[Document](s.gateway, sess, constants.QueryPrivacyPolicy, pathPolicyRead, nil)
	return upstream.One[Document](ctx, s.gateway, q)
}

func (s *service) CreatePrivacyPolicy(ctx context.Context, sess *session.Store, form *forms.ContentForm) (*Document, string, error) {
	if err := forms.Validate(form); err != nil {
		return nil, "", err
	}
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationCreatePrivacyPolicy, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Post(ctx, pathPolicyCreate, form)
	})
	return recordOf[Document](resp, err, "Privacy policy created successfully")
}

func (s *service) UpdatePrivacyPolicy(ctx context.Context, sess *session.Store, id string, form *forms.ContentForm) (*Document, string, error) {
	if err := forms.Validate(form); err != nil {
		return nil, "", err
	}
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationUpdatePrivacyPolicy, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Patch(ctx, pathPolicyUpdate(id), form)
	})
	return recordOf[Document](resp, err, "Privacy policy updated successfully")
}

func (s *service) GetPage(ctx context.Context, sess *session.Store, page Page) (*Document, error) {
	b, err := page.binding()
	if err != nil {
		return nil, err
	}
	q := upstream.ObjectQuery[Document](s.gateway, sess, b.query, page.path(), nil)
	return upstream.One[Document](ctx, s.gateway, q)
}

// SavePage creates the page on first save and overwrites it afterwards
func (s *service) SavePage(ctx context.Context, sess *session.Store, page Page, form *forms.ContentForm) (*Document, string, error) {
	b, err := page.binding()
	if err != nil {
		return nil, "", err
	}
	if err := forms.Validate(form); err != nil {
		return nil, "", err
	}
	resp, err := s.gateway.Mutate(ctx, sess, b.mutation, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Post(ctx, page.path(), form)
	})
	return recordOf[Document](resp, err, b.title+" saved successfully")
}

func recordOf[T any](resp *apiclient.Response, err error, fallback string) (*T, string, error) {
	if err != nil {
		return nil, "", err
	}
	item, _ := upstream.Record[T](resp)
	return item, upstream.Message(resp, fallback), nil
}
