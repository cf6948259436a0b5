package reports

import (
	"context"
	"net/url"

	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/normalize"
	"jobpilot-admin/internal/querycache"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/constants"
	"jobpilot-admin/internal/shared/upstream"
)

const pathList = "/report"

func pathOne(id string) string { return "/report/" + url.PathEscape(id) }

// Service is read-only; reports are filed by end users
type Service interface {
	List(ctx context.Context, sess *session.Store, state listview.State) (normalize.Page[Report], error)
	ListSource(sess *session.Store) listview.Source
	Get(ctx context.Context, sess *session.Store, id string) (*Report, error)
}

type service struct {
	gateway *upstream.Gateway
}

func NewService(gateway *upstream.Gateway) Service {
	return &service{gateway: gateway}
}

func (s *service) ListSource(sess *session.Store) listview.Source {
	return func(state listview.State) querycache.Query {
		return upstream.ListQueryWith(s.gateway, sess, constants.QueryReportsList, pathList, state, upstream.ParseNested[Report])
	}
}

func (s *service) List(ctx context.Context, sess *session.Store, state listview.State) (normalize.Page[Report], error) {
	return upstream.List[Report](ctx, s.gateway, s.ListSource(sess)(state))
}

func (s *service) Get(ctx context.Context, sess *session.Store, id string) (*Report, error) {
	q := upstream.ObjectQuery[Report](s.gateway, sess, constants.QueryReportDetail, pathOne(id), url.Values{"id": {id}})
	return upstream.One[Report](ctx, s.gateway, q)
}
