package ports

import (
	"context"

	domainauth "github.com/church-agenda/agenda-client/internal/domain/auth"
	"github.com/church-agenda/agenda-client/internal/domain/envelope"
	"github.com/church-agenda/agenda-client/internal/domain/tenant"
)

// AuthAPI is the subset of backend auth endpoints the session layer depends on.
type AuthAPI interface {
	Login(ctx context.Context, req domainauth.LoginRequest) envelope.Envelope[domainauth.LoginResult]
	Register(ctx context.Context, req domainauth.RegisterRequest) envelope.Envelope[domainauth.RegisterResult]
	Approve(ctx context.Context, email string) envelope.Envelope[domainauth.MessageResult]
}

// OrganizationLister lists the organizations offered on the pre-auth landing flow.
type OrganizationLister interface {
	PublicOrganizations(ctx context.Context) envelope.Envelope[tenant.OrganizationList]
}

// TenantScope exposes the selected organization's slug to tenant-scoped callers.
type TenantScope interface {
	Slug() (string, bool)
}
