// Package api exposes one typed method per backend endpoint on top of the gateway.
// Reads of organization-scoped data append the selected organization slug; writes
// are sent unscoped.
package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"

	domainauth "github.com/church-agenda/agenda-client/internal/domain/auth"
	"github.com/church-agenda/agenda-client/internal/domain/envelope"
	"github.com/church-agenda/agenda-client/internal/domain/tenant"
	"github.com/church-agenda/agenda-client/internal/gateway"
	"github.com/church-agenda/agenda-client/internal/ports"
)

// Transport is the gateway surface the API client needs.
type Transport interface {
	gateway.Doer
	Upload(ctx context.Context, path, field, filename string, r io.Reader) envelope.Envelope[json.RawMessage]
	Download(ctx context.Context, path string) (*http.Response, error)
}

// Client is the typed backend API.
type Client struct {
	transport Transport
	scope     ports.TenantScope
}

var (
	_ ports.AuthAPI            = (*Client)(nil)
	_ ports.OrganizationLister = (*Client)(nil)
)

// New builds a Client. scope may be nil, in which case no request is tenant-scoped.
func New(transport Transport, scope ports.TenantScope) *Client {
	return &Client{transport: transport, scope: scope}
}

// scoped adds organization=<slug> to q when an organization is selected.
func (c *Client) scoped(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	if c.scope == nil {
		return q
	}
	if slug, ok := c.scope.Slug(); ok && slug != "" {
		q.Set("organization", slug)
	}
	return q
}

func get[T any](ctx context.Context, c *Client, path string, q url.Values) envelope.Envelope[T] {
	return gateway.Send[T](ctx, c.transport, gateway.Request{Method: http.MethodGet, Path: path, Query: q})
}

func post[T any](ctx context.Context, c *Client, path string, body any) envelope.Envelope[T] {
	return gateway.Send[T](ctx, c.transport, gateway.Request{Method: http.MethodPost, Path: path, Body: body})
}

func patch[T any](ctx context.Context, c *Client, path string, body any) envelope.Envelope[T] {
	return gateway.Send[T](ctx, c.transport, gateway.Request{Method: http.MethodPatch, Path: path, Body: body})
}

func del[T any](ctx context.Context, c *Client, path string) envelope.Envelope[T] {
	return gateway.Send[T](ctx, c.transport, gateway.Request{Method: http.MethodDelete, Path: path})
}

// Page holds optional pagination. Zero values are omitted from the query.
type Page struct {
	Limit  int
	Offset int
}

func (p Page) apply(q url.Values) {
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Offset > 0 {
		q.Set("offset", strconv.Itoa(p.Offset))
	}
}

func setIf(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func idPath(format string, id int64) string {
	return format + strconv.FormatInt(id, 10)
}

// Login calls POST /auth/login.
func (c *Client) Login(ctx context.Context, req domainauth.LoginRequest) envelope.Envelope[domainauth.LoginResult] {
	return post[domainauth.LoginResult](ctx, c, "/auth/login", req)
}

// Register calls POST /auth/register.
func (c *Client) Register(
	ctx context.Context,
	req domainauth.RegisterRequest,
) envelope.Envelope[domainauth.RegisterResult] {
	return post[domainauth.RegisterResult](ctx, c, "/auth/register", req)
}

// Approve calls POST /auth/approve. The backend requires a privileged session.
func (c *Client) Approve(ctx context.Context, email string) envelope.Envelope[domainauth.MessageResult] {
	return post[domainauth.MessageResult](ctx, c, "/auth/approve", domainauth.ApproveRequest{Email: email})
}

// PublicOrganizations lists the organizations offered before sign-in.
func (c *Client) PublicOrganizations(ctx context.Context) envelope.Envelope[tenant.OrganizationList] {
	return get[tenant.OrganizationList](ctx, c, "/organizations/public", nil)
}
