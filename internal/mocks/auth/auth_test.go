package auth

import (
	"context"
	"testing"

	domainauth "github.com/church-agenda/agenda-client/internal/domain/auth"
	"github.com/church-agenda/agenda-client/internal/domain/envelope"
	"github.com/church-agenda/agenda-client/internal/domain/tenant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFakeAuthAPI_LoginDefaults(t *testing.T) {
	api := NewFakeAuthAPI()
	ctx := context.Background()

	env := api.Login(ctx, domainauth.LoginRequest{Email: "a@b.com", Password: "x"})

	require.True(t, env.Ok)
	require.NotNil(t, env.Data)
	assert.Equal(t, "fake-token", env.Data.Token)
	assert.Equal(t, int64(1), env.Data.UserID)
	assert.Equal(t, domainauth.RoleMember, env.Data.Role)

	logins := api.Logins()
	require.Len(t, logins, 1)
	assert.Equal(t, "a@b.com", logins[0].Email)
}

func TestFakeAuthAPI_ZeroValueStillAnswers(t *testing.T) {
	var api FakeAuthAPI

	env := api.Login(context.Background(), domainauth.LoginRequest{})
	require.True(t, env.Ok)
	assert.Equal(t, "fake-token", env.Data.Token)
}

func TestFakeAuthAPI_RejectLogins(t *testing.T) {
	api := NewFakeAuthAPI().RejectLogins("auth.invalid_credentials")

	env := api.Login(context.Background(), domainauth.LoginRequest{Email: "a@b.com"})
	assert.False(t, env.Ok)
	assert.Nil(t, env.Data)
	assert.Equal(t, "auth.invalid_credentials", env.ErrorKey)
}

func TestFakeAuthAPI_CustomFuncs(t *testing.T) {
	api := &FakeAuthAPI{
		RegisterFunc: func(context.Context, domainauth.RegisterRequest) envelope.Envelope[domainauth.RegisterResult] {
			return envelope.Failure[domainauth.RegisterResult]("auth.email_already_registered")
		},
		ApproveFunc: func(_ context.Context, email string) envelope.Envelope[domainauth.MessageResult] {
			return envelope.Success(domainauth.MessageResult{Message: "ok " + email})
		},
	}
	ctx := context.Background()

	reg := api.Register(ctx, domainauth.RegisterRequest{Email: "new@b.com"})
	assert.Equal(t, "auth.email_already_registered", reg.ErrorKey)

	app := api.Approve(ctx, "new@b.com")
	require.True(t, app.Ok)
	assert.Equal(t, "ok new@b.com", app.Data.Message)

	assert.Len(t, api.Registers(), 1)
	assert.Equal(t, []string{"new@b.com"}, api.Approvals())
}

func TestFakeAuthAPI_RegisterDefaultIDs(t *testing.T) {
	api := NewFakeAuthAPI()
	ctx := context.Background()

	first := api.Register(ctx, domainauth.RegisterRequest{Email: "one@b.com"})
	second := api.Register(ctx, domainauth.RegisterRequest{Email: "two@b.com"})

	assert.Equal(t, int64(101), first.Data.UserID)
	assert.Equal(t, int64(102), second.Data.UserID)
}

func TestFakeOrganizationLister(t *testing.T) {
	lister := &FakeOrganizationLister{
		Organizations: []tenant.Organization{{ID: 2, Name: "Comunidade Cristã", Slug: "comunidade-cristã"}},
	}

	env := lister.PublicOrganizations(context.Background())
	require.True(t, env.Ok)
	assert.Len(t, env.Data.Results, 1)

	lister.ErrorKey = "internal_error"
	env = lister.PublicOrganizations(context.Background())
	assert.False(t, env.Ok)
	assert.Equal(t, 2, lister.Calls)
}

func TestStaticScope(t *testing.T) {
	slug, ok := StaticScope("pibg-greenville").Slug()
	assert.True(t, ok)
	assert.Equal(t, "pibg-greenville", slug)

	_, ok = StaticScope("").Slug()
	assert.False(t, ok)
}
