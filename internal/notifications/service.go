package notifications

import (
	"context"
	"net/url"

	"jobpilot-admin/internal/apiclient"
	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/normalize"
	"jobpilot-admin/internal/querycache"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/constants"
	"jobpilot-admin/internal/shared/upstream"
)

const (
	pathList        = "/notifications"
	pathUnreadCount = "/notifications/unread-count"
	pathMarkAllRead = "/notifications/mark-all-read"
)

func pathMarkRead(id string) string { return "/notifications/" + url.PathEscape(id) + "/read" }

type Service interface {
	List(ctx context.Context, sess *session.Store, state listview.State) (normalize.Page[Notification], error)
	ListSource(sess *session.Store) listview.Source
	UnreadCount(ctx context.Context, sess *session.Store, kind string) (int, error)
	MarkRead(ctx context.Context, sess *session.Store, id string) (*Notification, string, error)
	MarkAllRead(ctx context.Context, sess *session.Store, kind string) (*MarkAllResult, string, error)
}

type service struct {
	gateway *upstream.Gateway
}

func NewService(gateway *upstream.Gateway) Service {
	return &service{gateway: gateway}
}

// ListSource backs the notifications screen. Pages come back nested in
// data.attributes.
func (s *service) ListSource(sess *session.Store) listview.Source {
	return func(state listview.State) querycache.Query {
		return upstream.ListQueryWith(s.gateway, sess, constants.QueryNotificationsList, pathList, state, upstream.ParseNested[Notification])
	}
}

func (s *service) List(ctx context.Context, sess *session.Store, state listview.State) (normalize.Page[Notification], error) {
	return upstream.List[Notification](ctx, s.gateway, s.ListSource(sess)(state))
}

// UnreadCount counts unread notifications, optionally of one type
func (s *service) UnreadCount(ctx context.Context, sess *session.Store, kind string) (int, error) {
	var params url.Values
	if kind != "" {
		params = url.Values{"type": {kind}}
	}
	q := upstream.ObjectQuery[UnreadCount](s.gateway, sess, constants.QueryUnreadCount, pathUnreadCount, params)
	count, err := upstream.One[UnreadCount](ctx, s.gateway, q)
	if err != nil || count == nil {
		return 0, err
	}
	return count.Count, nil
}

func (s *service) MarkRead(ctx context.Context, sess *session.Store, id string) (*Notification, string, error) {
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationMarkNotificationRead, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Patch(ctx, pathMarkRead(id), nil)
	})
	if err != nil {
		return nil, "", err
	}
	n, _ := upstream.Record[Notification](resp)
	return n, upstream.Message(resp, "Notification marked as read"), nil
}

func (s *service) MarkAllRead(ctx context.Context, sess *session.Store, kind string) (*MarkAllResult, string, error) {
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationMarkAllNotificationRead, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Patch(ctx, pathMarkAllRead, markAllRequest{Type: kind})
	})
	if err != nil {
		return nil, "", err
	}
	result, _ := upstream.Record[MarkAllResult](resp)
	if result == nil {
		result = &MarkAllResult{}
	}
	return result, upstream.Message(resp, "All notifications marked as read"), nil
}
