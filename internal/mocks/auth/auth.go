package auth

// Package auth contains simple hand-written test doubles for the auth and tenant ports.
// These are lightweight and suitable for unit tests without codegen.

import (
	"context"
	"sync"

	domainauth "github.com/church-agenda/agenda-client/internal/domain/auth"
	"github.com/church-agenda/agenda-client/internal/domain/envelope"
	"github.com/church-agenda/agenda-client/internal/domain/tenant"
	"github.com/church-agenda/agenda-client/internal/ports"
)

// Ensure compile-time conformance to ports.
var (
	_ ports.AuthAPI            = (*FakeAuthAPI)(nil)
	_ ports.OrganizationLister = (*FakeOrganizationLister)(nil)
	_ ports.TenantScope        = StaticScope("")
)

// FakeAuthAPI simulates the backend auth endpoints and records every call.
// Unset funcs answer with deterministic defaults: login succeeds for any credentials
// as DefaultUser with DefaultToken.
type FakeAuthAPI struct {
	LoginFunc    func(ctx context.Context, req domainauth.LoginRequest) envelope.Envelope[domainauth.LoginResult]
	RegisterFunc func(ctx context.Context, req domainauth.RegisterRequest) envelope.Envelope[domainauth.RegisterResult]
	ApproveFunc  func(ctx context.Context, email string) envelope.Envelope[domainauth.MessageResult]

	DefaultToken string
	DefaultUser  domainauth.Identity

	mu        sync.Mutex
	logins    []domainauth.LoginRequest
	registers []domainauth.RegisterRequest
	approvals []string
}

// NewFakeAuthAPI creates a FakeAuthAPI with sensible defaults.
func NewFakeAuthAPI() *FakeAuthAPI {
	return &FakeAuthAPI{
		DefaultToken: "fake-token",
		DefaultUser:  domainauth.Identity{ID: 1, Role: domainauth.RoleMember},
	}
}

// RejectLogins makes every login fail with key.
func (f *FakeAuthAPI) RejectLogins(key string) *FakeAuthAPI {
	f.LoginFunc = func(context.Context, domainauth.LoginRequest) envelope.Envelope[domainauth.LoginResult] {
		return envelope.Failure[domainauth.LoginResult](key)
	}
	return f
}

func (f *FakeAuthAPI) Login(ctx context.Context, req domainauth.LoginRequest) envelope.Envelope[domainauth.LoginResult] {
	f.mu.Lock()
	f.logins = append(f.logins, req)
	f.mu.Unlock()

	if f.LoginFunc != nil {
		return f.LoginFunc(ctx, req)
	}

	user := f.DefaultUser
	if !user.Valid() {
		user = domainauth.Identity{ID: 1, Role: domainauth.RoleMember}
	}
	token := f.DefaultToken
	if token == "" {
		token = "fake-token"
	}
	return envelope.Success(domainauth.LoginResult{Token: token, UserID: user.ID, Role: user.Role})
}

func (f *FakeAuthAPI) Register(
	ctx context.Context,
	req domainauth.RegisterRequest,
) envelope.Envelope[domainauth.RegisterResult] {
	f.mu.Lock()
	f.registers = append(f.registers, req)
	n := len(f.registers)
	f.mu.Unlock()

	if f.RegisterFunc != nil {
		return f.RegisterFunc(ctx, req)
	}
	return envelope.Success(domainauth.RegisterResult{UserID: int64(100 + n), Message: "pending approval"})
}

func (f *FakeAuthAPI) Approve(ctx context.Context, email string) envelope.Envelope[domainauth.MessageResult] {
	f.mu.Lock()
	f.approvals = append(f.approvals, email)
	f.mu.Unlock()

	if f.ApproveFunc != nil {
		return f.ApproveFunc(ctx, email)
	}
	return envelope.Success(domainauth.MessageResult{Message: "approved"})
}

// Logins returns a copy of every login request received.
func (f *FakeAuthAPI) Logins() []domainauth.LoginRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domainauth.LoginRequest(nil), f.logins...)
}

// Registers returns a copy of every register request received.
func (f *FakeAuthAPI) Registers() []domainauth.RegisterRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domainauth.RegisterRequest(nil), f.registers...)
}

// Approvals returns the emails approved so far.
func (f *FakeAuthAPI) Approvals() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.approvals...)
}

// FakeOrganizationLister answers the public organization listing from a fixed slice.
type FakeOrganizationLister struct {
	Organizations []tenant.Organization
	// ErrorKey, when set, makes every call fail with that key.
	ErrorKey string
	Calls    int
}

func (f *FakeOrganizationLister) PublicOrganizations(context.Context) envelope.Envelope[tenant.OrganizationList] {
	f.Calls++
	if f.ErrorKey != "" {
		return envelope.Failure[tenant.OrganizationList](f.ErrorKey)
	}
	return envelope.Success(tenant.OrganizationList{Results: f.Organizations})
}

// StaticScope is a fixed tenant scope. The empty scope means no selection.
type StaticScope string

func (s StaticScope) Slug() (string, bool) {
	return string(s), s != ""
}
