// Package upstream binds a session to the JobPilot client and the query
// cache, so resource services declare reads and writes without repeating
// the fetch, parse and invalidate plumbing.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"jobpilot-admin/internal/apiclient"
	"jobpilot-admin/internal/listview"
	"jobpilot-admin/internal/normalize"
	"jobpilot-admin/internal/querycache"
	"jobpilot-admin/internal/session"
	"jobpilot-admin/internal/shared/constants"
	"jobpilot-admin/internal/shared/utils/response"
)

// Gateway is shared by every resource service
type Gateway struct {
	client *apiclient.Client
	cache  *querycache.Cache
}

func NewGateway(client *apiclient.Client, cache *querycache.Cache) *Gateway {
	return &Gateway{client: client, cache: cache}
}

// For returns a client that authenticates as sess. A nil session gets the
// anonymous client used by login, register and the OTP flows.
func (g *Gateway) For(sess *session.Store) *apiclient.Client {
	if sess == nil {
		return g.client
	}
	return g.client.WithSession(sess)
}

// Cache returns the query cache
func (g *Gateway) Cache() *querycache.Cache {
	return g.cache
}

// Mutate runs call against the session's client and invalidates the
// mutation's tags when it succeeds.
func (g *Gateway) Mutate(ctx context.Context, sess *session.Store, m constants.Mutation, call func(ctx context.Context, c *apiclient.Client) (*apiclient.Response, error)) (*apiclient.Response, error) {
	client := g.For(sess)

	var resp *apiclient.Response
	err := g.cache.Mutate(ctx, m, func(ctx context.Context) error {
		r, err := call(ctx, client)
		resp = r
		return err
	})
	return resp, err
}

func scopeOf(sess *session.Store) string {
	if sess == nil {
		return ""
	}
	return sess.ID()
}

// Decoder turns a list response body into a page
type Decoder[T any] func(raw []byte) (normalize.Page[T], error)

// ParseList is the default Decoder
func ParseList[T any](raw []byte) (normalize.Page[T], error) {
	page, _, err := normalize.Parse[T](raw)
	return page, err
}

// ParseNested also accepts a paginated result wrapped in data.attributes,
// as in {"data":{"attributes":{"results":[...],"totalResults":n}}}.
func ParseNested[T any](raw []byte) (normalize.Page[T], error) {
	page, shape, err := normalize.Parse[T](raw)
	if err != nil || shape != normalize.ShapeAttributesObject {
		return page, err
	}

	var envelope struct {
		Data struct {
			Attributes json.RawMessage `json:"attributes"`
		} `json:"data"`
	}
	if jsonErr := json.Unmarshal(raw, &envelope); jsonErr != nil {
		return page, nil
	}
	inner, innerShape, innerErr := normalize.Parse[T](envelope.Data.Attributes)
	if innerErr != nil || (innerShape != normalize.ShapeNamedList && innerShape != normalize.ShapeItemsTotal) {
		return page, nil
	}
	return inner, nil
}

// ListQuery declares a list read. The upstream response goes through the
// normalizer and is paginated locally when the API ignored page and limit.
func ListQuery[T any](g *Gateway, sess *session.Store, name constants.QueryName, path string, state listview.State) querycache.Query {
	return ListQueryWith(g, sess, name, path, state, ParseList[T])
}

// ListQueryWith is ListQuery with a custom decoder
func ListQueryWith[T any](g *Gateway, sess *session.Store, name constants.QueryName, path string, state listview.State, decode Decoder[T]) querycache.Query {
	state = state.Normalized()
	params := state.Params()
	client := g.For(sess)

	return querycache.Query{
		Scope:  scopeOf(sess),
		Name:   name,
		Params: params,
		Fetch: func(ctx context.Context) (interface{}, error) {
			resp, err := client.Get(ctx, path, params)
			if err != nil {
				return nil, err
			}
			page, err := decode(resp.Body)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return listview.Fit(page, state), nil
		},
	}
}

// ObjectQuery declares a single-record read. The cached value is *T and is
// nil when the API returned no record.
func ObjectQuery[T any](g *Gateway, sess *session.Store, name constants.QueryName, path string, params url.Values) querycache.Query {
	client := g.For(sess)

	return querycache.Query{
		Scope:  scopeOf(sess),
		Name:   name,
		Params: params,
		Fetch: func(ctx context.Context) (interface{}, error) {
			resp, err := client.Get(ctx, path, params)
			if err != nil {
				return nil, err
			}
			item, _, err := normalize.ParseOne[T](resp.Body)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", name, err)
			}
			return item, nil
		},
	}
}

// List runs a ListQuery through the cache
func List[T any](ctx context.Context, g *Gateway, q querycache.Query) (normalize.Page[T], error) {
	page, err := querycache.FetchAs[normalize.Page[T]](ctx, g.cache, q)
	if err != nil {
		return normalize.Empty[T](), err
	}
	if page.Items == nil {
		page.Items = []T{}
	}
	return page, nil
}

// One runs an ObjectQuery through the cache
func One[T any](ctx context.Context, g *Gateway, q querycache.Query) (*T, error) {
	return querycache.FetchAs[*T](ctx, g.cache, q)
}

// ListData shapes a page for the response envelope
func ListData[T any](page normalize.Page[T], state listview.State) response.ListData {
	state = state.Normalized()
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return response.ListData{
		Items:   items,
		Total:   page.Total,
		Page:    state.Page,
		Limit:   state.PageSize,
		Summary: listview.Summary(state, page.Total),
	}
}

// Payload returns the record an upstream write answered with: the
// data.attributes object when present, else data, else the whole body.
func Payload(resp *apiclient.Response) json.RawMessage {
	if resp == nil {
		return nil
	}
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 || !json.Valid(body) {
		return nil
	}

	var top struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &top); err != nil || len(top.Data) == 0 || string(top.Data) == "null" {
		return json.RawMessage(body)
	}

	var inner struct {
		Attributes json.RawMessage `json:"attributes"`
	}
	if err := json.Unmarshal(top.Data, &inner); err == nil && len(inner.Attributes) > 0 && string(inner.Attributes) != "null" {
		return inner.Attributes
	}
	return top.Data
}

// Message returns the success message the API sent, or fallback
func Message(resp *apiclient.Response, fallback string) string {
	if resp == nil {
		return fallback
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(resp.Body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return fallback
}

// Record decodes the record a write answered with. A nil result with a nil
// error means the API sent none.
func Record[T any](resp *apiclient.Response) (*T, error) {
	if resp == nil {
		return nil, nil
	}
	item, _, err := normalize.ParseOne[T](resp.Body)
	return item, err
}
