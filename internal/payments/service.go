package payments

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
	pathList   = "/payment/read-all"
	pathCreate = "/payment/create"
)

func pathUpdate(id string) string { return "/payment/update/" + url.PathEscape(id) }
func pathDelete(id string) string { return "/payment/delete/" + url.PathEscape(id) }

type Service interface {
	List(ctx context.Context, sess *session.Store, state listview.State) (normalize.Page[Payment], error)
	ListSource(sess *session.Store) listview.Source
	Create(ctx context.Context, sess *session.Store, form *forms.PaymentForm) (*Payment, string, error)
	Update(ctx context.Context, sess *session.Store, id string, form *forms.PaymentForm) (*Payment, string, error)
	Delete(ctx context.Context, sess *session.Store, id string) (string, error)
}

type service struct {
	gateway   *upstream.Gateway
	validator *forms.Validator
}

func NewService(gateway *upstream.Gateway) Service {
	return &service{gateway: gateway, validator: forms.NewValidator()}
}

func (s *service) ListSource(sess *session.Store) listview.Source {
	return func(state listview.State) querycache.Query {
		return upstream.ListQuery[Payment](s.gateway, sess, constants.QueryPaymentsList, pathList, state)
	}
}

func (s *service) List(ctx context.Context, sess *session.Store, state listview.State) (normalize.Page[Payment], error) {
	return upstream.List[Payment](ctx, s.gateway, s.ListSource(sess)(state))
}

// Create sends the amount as a JSON number whatever the form held
func (s *service) Create(ctx context.Context, sess *session.Store, form *forms.PaymentForm) (*Payment, string, error) {
	if err := form.Check(s.validator); err != nil {
		return nil, "", err
	}
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationCreatePayment, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Post(ctx, pathCreate, form)
	})
	return paymentOf(resp, err, "Payment created successfully")
}

func (s *service) Update(ctx context.Context, sess *session.Store, id string, form *forms.PaymentForm) (*Payment, string, error) {
	if err := form.Check(s.validator); err != nil {
		return nil, "", err
	}
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationUpdatePayment, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Patch(ctx, pathUpdate(id), form)
	})
	return paymentOf(resp, err, "Payment updated successfully")
}

func (s *service) Delete(ctx context.Context, sess *session.Store, id string) (string, error) {
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationDeletePayment, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Delete(ctx, pathDelete(id))
	})
	if err != nil {
		return "", err
	}
	return upstream.Message(resp, "Payment deleted successfully"), nil
}

func paymentOf(resp *apiclient.Response, err error, fallback string) (*Payment, string, error) {
	if err != nil {
		return nil, "", err
	}
	p, _ := upstream.Record[Payment](resp)
	return p, upstream.Message(resp, fallback), nil
}
