package jobs

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"

	"jobpilot-admin/internal/apiclient"
	"jobpilot-admin/internal/forms"
	"jobpilot-admin/internal/library"
	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/normalize"
	"jobpilot-admin/internal/querycache"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/constants"
	"jobpilot-admin/internal/shared/upstream"
)

const (
	pathList      = "/job/get-all"
	pathCreate    = "/job/create"
	pathDashboard = "/job/dashboard-data"
)

func pathOne(id string) string    { return "/job/get-single/" + url.PathEscape(id) }
func pathUpdate(id string) string { return "/job/update/" + url.PathEscape(id) }
func pathDelete(id string) string { return "/job/delete/" + url.PathEscape(id) }

type Service interface {
	List(ctx context.Context, sess *session.Store, state listview.State) (normalize.Page[Job], error)
	ListSource(sess *session.Store) listview.Source
	Get(ctx context.Context, sess *session.Store, id string) (*Job, error)
	Create(ctx context.Context, sess *session.Store, form *forms.JobForm) (*Job, string, error)
	Update(ctx context.Context, sess *session.Store, id string, form *forms.JobUpdateForm) (*Job, string, error)
	UpdateStatus(ctx context.Context, sess *session.Store, id string, form *forms.JobStatusForm) (*Job, string, error)
	Delete(ctx context.Context, sess *session.Store, id string) (string, error)
	Stats(ctx context.Context, sess *session.Store) (Stats, error)
	Dashboard(ctx context.Context, sess *session.Store) (*Dashboard, error)
}

type service struct {
	gateway *upstream.Gateway
	library library.Service
}

func NewService(gateway *upstream.Gateway, lib library.Service) Service {
	return &service{gateway: gateway, library: lib}
}

// ListSource backs the applications screen. The endpoint pages, searches
// and filters by status on the server.
func (s *service) ListSource(sess *session.Store) listview.Source {
	return func(state listview.State) querycache.Query {
		return upstream.ListQuery[Job](s.gateway, sess, constants.QueryAppliedJobsList, pathList, state)
	}
}

func (s *service) List(ctx context.Context, sess *session.Store, state listview.State) (normalize.Page[Job], error) {
	return upstream.List[Job](ctx, s.gateway, s.ListSource(sess)(state))
}

func (s *service) Get(ctx context.Context, sess *session.Store, id string) (*Job, error) {
	q := upstream.ObjectQuery[Job](s.gateway, sess, constants.QueryAppliedJobDetail, pathOne(id), url.Values{"id": {id}})
	return upstream.One[Job](ctx, s.gateway, q)
}

func (s *service) Create(ctx context.Context, sess *session.Store, form *forms.JobForm) (*Job, string, error) {
	if err := forms.Validate(form); err != nil {
		return nil, "", err
	}
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationCreateAppliedJob, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Post(ctx, pathCreate, form)
	})
	return jobOf(resp, err, "Job created successfully")
}

func (s *service) Update(ctx context.Context, sess *session.Store, id string, form *forms.JobUpdateForm) (*Job, string, error) {
	if err := forms.Validate(form); err != nil {
		return nil, "", err
	}
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationUpdateAppliedJob, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Patch(ctx, pathUpdate(id), form)
	})
	return jobOf(resp, err, "Job updated successfully")
}

// UpdateStatus moves an application along the pipeline. It shares the
// update endpoint but is its own mutation so the status board refreshes.
func (s *service) UpdateStatus(ctx context.Context, sess *session.Store, id string, form *forms.JobStatusForm) (*Job, string, error) {
	if err := forms.Validate(form); err != nil {
		return nil, "", err
	}
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationUpdateApplicationStatus, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Patch(ctx, pathUpdate(id), form)
	})
	return jobOf(resp, err, "Application status updated successfully")
}

func (s *service) Delete(ctx context.Context, sess *session.Store, id string) (string, error) {
	resp, err := s.gateway.Mutate(ctx, sess, constants.MutationDeleteAppliedJob, func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error) {
		return c.Delete(ctx, pathDelete(id))
	})
	if err != nil {
		return "", err
	}
	return upstream.Message(resp, "Job deleted successfully"), nil
}

func (s *service) Stats(ctx context.Context, sess *session.Store) (Stats, error) {
	q := upstream.ObjectQuery[Stats](s.gateway, sess, constants.QueryDashboardData, pathDashboard, nil)
	stats, err := upstream.One[Stats](ctx, s.gateway, q)
	if err != nil {
		return nil, err
	}
	if stats == nil || *stats == nil {
		return Stats{}, nil
	}
	return *stats, nil
}

// Dashboard loads the three home screen sections concurrently. Any one
// failing fails the whole screen.
func (s *service) Dashboard(ctx context.Context, sess *session.Store) (*Dashboard, error) {
	var (
		out    Dashboard
		recent = listview.State{Page: 1, PageSize: RecentLimit}
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := s.Stats(gctx, sess)
		out.Stats = stats
		return err
	})
	g.Go(func() error {
		q := upstream.ListQuery[Job](s.gateway, sess, constants.QueryRecentJobs, pathList, recent)
		page, err := upstream.List[Job](gctx, s.gateway, q)
		out.RecentJobs = page.Items
		return err
	})
	g.Go(func() error {
		page, err := s.library.List(gctx, sess, recent)
		out.Library = page.Items
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func jobOf(resp *apiclient.Response, err error, fallback string) (*Job, string, error) {
	if err != nil {
		return nil, "", err
	}
	job, _ := upstream.Record[Job](resp)
	return job, upstream.Message(resp, fallback), nil
}
