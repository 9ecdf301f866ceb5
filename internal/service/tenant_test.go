package service

import (
	"context"
	"errors"
	"testing"

	"github.com/church-agenda/agenda-client/internal/adapters/filestore"
	"github.com/church-agenda/agenda-client/internal/adapters/memory"
	"github.com/church-agenda/agenda-client/internal/domain/tenant"
	apperrors "github.com/church-agenda/agenda-client/internal/errors"
	"github.com/church-agenda/agenda-client/internal/mocks"
	fakes "github.com/church-agenda/agenda-client/internal/mocks/auth"
	"github.com/church-agenda/agenda-client/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var comunidade = tenant.Organization{ID: 2, Name: "Comunidade Cristã do Brasil", Slug: "comunidade-cristã"}

func TestTenantContext_StartsUnselected(t *testing.T) {
	tc := NewTenantContext(TenantContextOptions{Storage: memory.NewStore()})

	assert.Equal(t, tenant.StateUnselected, tc.State())
	_, ok := tc.Slug()
	assert.False(t, ok)

	tc.Restore(context.Background())
	assert.Equal(t, tenant.StateUnselected, tc.State())
}

func TestTenantContext_SelectPersistsAndOverwrites(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStore()
	tc := NewTenantContext(TenantContextOptions{Storage: storage})

	require.NoError(t, tc.Select(ctx, tenant.Organization{ID: 1, Name: "PIBG", Slug: "pibg-greenville"}))
	require.NoError(t, tc.Select(ctx, comunidade))

	sel, ok := tc.Current()
	require.True(t, ok)
	assert.Equal(t, tenant.Selection{
		OrganizationID: 2,
		Slug:           "comunidade-cristã",
		DisplayName:    "Comunidade Cristã do Brasil",
	}, sel)
	assert.Equal(t, tenant.StateSelected, tc.State())
	assert.Equal(t, map[string]string{
		ports.KeySelectedChurchID:   "2",
		ports.KeySelectedChurchSlug: "comunidade-cristã",
	}, storage.Snapshot())
}

func TestTenantContext_SelectRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStore()
	tc := NewTenantContext(TenantContextOptions{Storage: storage})

	for _, org := range []tenant.Organization{{ID: 0, Slug: "x"}, {ID: 3, Slug: "  "}} {
		err := tc.Select(ctx, org)
		require.Error(t, err)
		assert.True(t, apperrors.IsValidation(err))
	}
	assert.Equal(t, tenant.StateUnselected, tc.State())
	assert.Empty(t, storage.Snapshot())
}

func TestTenantContext_SelectStorageFailureKeepsPrevious(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockKVStore(ctrl)
	storage.EXPECT().Get(gomock.Any(), ports.KeySelectedChurchID).Return("", false, nil).Times(2)
	storage.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(2)
	storage.EXPECT().Set(gomock.Any(), ports.KeySelectedChurchID, "2").Return(errors.New("read-only"))

	tc := NewTenantContext(TenantContextOptions{Storage: storage})
	require.NoError(t, tc.Select(ctx, tenant.Organization{ID: 1, Slug: "pibg-greenville"}))

	err := tc.Select(ctx, comunidade)
	require.Error(t, err)
	assert.True(t, apperrors.IsStorage(err))

	slug, _ := tc.Slug()
	assert.Equal(t, "pibg-greenville", slug)
}

// slugWriteFails wraps a store so that writes of the selected slug fail.
type slugWriteFails struct {
	ports.KVStore
}

func (s slugWriteFails) Set(ctx context.Context, key, value string) error {
	if key == ports.KeySelectedChurchSlug {
		return errors.New("disk full")
	}
	return s.KVStore.Set(ctx, key, value)
}

func TestTenantContext_SlugWriteFailureRestoresPreviousID(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStore()

	first := NewTenantContext(TenantContextOptions{Storage: storage})
	require.NoError(t, first.Select(ctx, tenant.Organization{ID: 1, Slug: "pibg-greenville"}))

	failing := NewTenantContext(TenantContextOptions{Storage: slugWriteFails{storage}})
	err := failing.Select(ctx, comunidade)
	require.Error(t, err)
	assert.True(t, apperrors.IsStorage(err))
	_, selected := failing.Current()
	assert.False(t, selected)

	assert.Equal(t, map[string]string{
		ports.KeySelectedChurchID:   "1",
		ports.KeySelectedChurchSlug: "pibg-greenville",
	}, storage.Snapshot())

	restored := NewTenantContext(TenantContextOptions{Storage: storage})
	restored.Restore(ctx)
	sel, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, int64(1), sel.OrganizationID)
	assert.Equal(t, "pibg-greenville", sel.Slug)
}

func TestTenantContext_SlugWriteFailureWithoutPreviousRemovesID(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStore()

	tc := NewTenantContext(TenantContextOptions{Storage: slugWriteFails{storage}})
	require.Error(t, tc.Select(ctx, comunidade))

	assert.Empty(t, storage.Snapshot())
}

func TestTenantContext_SlugWriteFailureJoinsRollbackError(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	storage := mocks.NewMockKVStore(ctrl)
	gomock.InOrder(
		storage.EXPECT().Get(gomock.Any(), ports.KeySelectedChurchID).Return("1", true, nil),
		storage.EXPECT().Set(gomock.Any(), ports.KeySelectedChurchID, "2").Return(nil),
		storage.EXPECT().Set(gomock.Any(), ports.KeySelectedChurchSlug, "comunidade-cristã").Return(errors.New("slug failed")),
		storage.EXPECT().Set(gomock.Any(), ports.KeySelectedChurchID, "1").Return(errors.New("rollback failed")),
	)

	tc := NewTenantContext(TenantContextOptions{Storage: storage})
	err := tc.Select(ctx, comunidade)
	require.Error(t, err)
	assert.True(t, apperrors.IsStorage(err))
	assert.Contains(t, err.Error(), "slug failed")
	assert.Contains(t, err.Error(), "rollback failed")
}

func TestTenantContext_SelectThenRestoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store, err := filestore.New(t.TempDir() + "/state.json")
	require.NoError(t, err)

	first := NewTenantContext(TenantContextOptions{Storage: store})
	require.NoError(t, first.Select(ctx, tenant.Organization{ID: 2, Name: "...", Slug: "comunidade-cristã"}))

	reopened, err := filestore.New(store.Path())
	require.NoError(t, err)
	second := NewTenantContext(TenantContextOptions{Storage: reopened})
	second.Restore(ctx)

	sel, ok := second.Current()
	require.True(t, ok)
	assert.Equal(t, int64(2), sel.OrganizationID)
	assert.Equal(t, "comunidade-cristã", sel.Slug)
	assert.Equal(t, "Comunidade Cristã do Brasil", sel.DisplayName)
}

func TestTenantContext_Restore(t *testing.T) {
	tests := []struct {
		name     string
		stored   map[string]string
		wantOK   bool
		wantName string
	}{
		{name: "id only", stored: map[string]string{ports.KeySelectedChurchID: "2"}},
		{name: "slug only", stored: map[string]string{ports.KeySelectedChurchSlug: "pibg-greenville"}},
		{name: "non numeric id", stored: map[string]string{ports.KeySelectedChurchID: "abc", ports.KeySelectedChurchSlug: "x"}},
		{name: "zero id", stored: map[string]string{ports.KeySelectedChurchID: "0", ports.KeySelectedChurchSlug: "x"}},
		{
			name:     "known slug",
			stored:   map[string]string{ports.KeySelectedChurchID: "3", ports.KeySelectedChurchSlug: "templo-pentecostal"},
			wantOK:   true,
			wantName: "Templo Pentecostal Brasileiro",
		},
		{
			name:     "unknown slug falls back",
			stored:   map[string]string{ports.KeySelectedChurchID: "9", ports.KeySelectedChurchSlug: "nova-igreja"},
			wantOK:   true,
			wantName: tenant.FallbackDisplayName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := NewTenantContext(TenantContextOptions{Storage: memory.NewStoreWith(tt.stored)})
			tc.Restore(context.Background())

			sel, ok := tc.Current()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantName, sel.DisplayName)
		})
	}
}

func TestTenantContext_Refresh(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStoreWith(map[string]string{
		ports.KeySelectedChurchID:   "9",
		ports.KeySelectedChurchSlug: "nova-igreja",
	})
	tc := NewTenantContext(TenantContextOptions{Storage: storage})

	lister := &fakes.FakeOrganizationLister{
		Organizations: []tenant.Organization{comunidade, {ID: 9, Name: "Igreja Nova", Slug: "nova-igreja"}},
	}

	require.NoError(t, tc.Refresh(ctx, lister))
	assert.Equal(t, 0, lister.Calls, "nothing selected, nothing fetched")

	tc.Restore(ctx)
	require.NoError(t, tc.Refresh(ctx, lister))
	sel, _ := tc.Current()
	assert.Equal(t, "Igreja Nova", sel.DisplayName)

	lister.ErrorKey = "internal_error"
	err := tc.Refresh(ctx, lister)
	assert.Equal(t, "internal_error", apperrors.KeyOf(err))
	sel, _ = tc.Current()
	assert.Equal(t, "Igreja Nova", sel.DisplayName)
}

func TestTenantContext_TeardownKeepsStorage(t *testing.T) {
	ctx := context.Background()
	storage := memory.NewStore()
	tc := NewTenantContext(TenantContextOptions{Storage: storage})
	require.NoError(t, tc.Select(ctx, comunidade))

	tc.Teardown()
	assert.Equal(t, tenant.StateUnselected, tc.State())
	assert.Len(t, storage.Snapshot(), 2)
}
