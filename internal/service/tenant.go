package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/church-agenda/agenda-client/internal/domain/tenant"
	apperrors "github.com/church-agenda/agenda-client/internal/errors"
	"github.com/church-agenda/agenda-client/internal/ports"
)

// TenantContextOptions groups dependencies for TenantContext.
type TenantContextOptions struct {
	Storage ports.KVStore
	Logger  *slog.Logger
}

// TenantContext holds the selected organization and mirrors it to storage.
// Selecting again overwrites; there is no clear operation.
type TenantContext struct {
	storage ports.KVStore
	logger  *slog.Logger

	mu       sync.RWMutex
	current  tenant.Selection
	selected bool
}

var _ ports.TenantScope = (*TenantContext)(nil)

// NewTenantContext constructs an unselected TenantContext. Call Restore to hydrate it.
func NewTenantContext(opts TenantContextOptions) *TenantContext {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &TenantContext{
		storage: opts.Storage,
		logger:  logger.With("component", "tenant"),
	}
}

// Select persists org as the current selection and then overwrites memory.
// If persisting fails, memory keeps the previous selection.
func (t *TenantContext) Select(ctx context.Context, org tenant.Organization) error {
	sel, err := tenant.FromOrganization(org)
	if err != nil {
		return apperrors.ValidationField("organization", "organization.invalid")
	}

	if err := t.persist(ctx, sel); err != nil {
		t.logger.ErrorContext(ctx, "persist organization", "error", err)
		return err
	}

	t.mu.Lock()
	t.current = sel
	t.selected = true
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "organization selected", "organization_id", sel.OrganizationID, "slug", sel.Slug)
	return nil
}

// persist writes id then slug. A failed slug write puts the previous id back so
// storage never pairs one organization's id with another's slug.
func (t *TenantContext) persist(ctx context.Context, sel tenant.Selection) error {
	prev, hadPrev, err := t.storage.Get(ctx, ports.KeySelectedChurchID)
	if err != nil {
		return apperrors.Storage(err, "read %s", ports.KeySelectedChurchID)
	}
	if err := t.storage.Set(ctx, ports.KeySelectedChurchID, strconv.FormatInt(sel.OrganizationID, 10)); err != nil {
		return apperrors.Storage(err, "persist %s", ports.KeySelectedChurchID)
	}
	if err := t.storage.Set(ctx, ports.KeySelectedChurchSlug, sel.Slug); err != nil {
		cause := err
		if rbErr := t.rollbackID(context.WithoutCancel(ctx), prev, hadPrev); rbErr != nil {
			cause = errors.Join(err, fmt.Errorf("rollback %s: %w", ports.KeySelectedChurchID, rbErr))
		}
		return apperrors.Storage(cause, "persist %s", ports.KeySelectedChurchSlug)
	}
	return nil
}

func (t *TenantContext) rollbackID(ctx context.Context, prev string, hadPrev bool) error {
	if hadPrev {
		return t.storage.Set(ctx, ports.KeySelectedChurchID, prev)
	}
	return t.storage.Remove(ctx, ports.KeySelectedChurchID)
}

// Restore rebuilds the selection from the persisted id and slug; both are required.
// The display name comes from the static directory. It never fails.
func (t *TenantContext) Restore(ctx context.Context) {
	sel, err := t.load(ctx)
	if err != nil {
		t.logger.DebugContext(ctx, "no organization restored", "reason", err)
		return
	}

	t.mu.Lock()
	t.current = sel
	t.selected = true
	t.mu.Unlock()
}

var errNothingPersisted = errors.New("nothing persisted")

func (t *TenantContext) load(ctx context.Context) (tenant.Selection, error) {
	rawID, okID, err := t.storage.Get(ctx, ports.KeySelectedChurchID)
	if err != nil {
		return tenant.Selection{}, err
	}
	slug, okSlug, err := t.storage.Get(ctx, ports.KeySelectedChurchSlug)
	if err != nil {
		return tenant.Selection{}, err
	}
	if !okID || !okSlug {
		return tenant.Selection{}, errNothingPersisted
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return tenant.Selection{}, err
	}
	return tenant.NewSelection(id, slug, "")
}

// Refresh replaces the display name with the one served by the backend when the
// selected slug is listed. Listing failures leave the selection untouched.
func (t *TenantContext) Refresh(ctx context.Context, lister ports.OrganizationLister) error {
	sel, ok := t.Current()
	if !ok {
		return nil
	}

	env := lister.PublicOrganizations(ctx)
	if !env.Ok {
		return env.Err()
	}
	org, found := tenant.Find(env.Value().Results, sel.Slug)
	if !found || org.Name == "" {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	// A concurrent Select wins over a stale refresh.
	if t.selected && t.current.Slug == sel.Slug {
		t.current.DisplayName = org.Name
	}
	return nil
}

// Teardown drops in-memory state without touching storage.
func (t *TenantContext) Teardown() {
	t.mu.Lock()
	t.current = tenant.Selection{}
	t.selected = false
	t.mu.Unlock()
}

// Current returns the selection and whether one is active.
func (t *TenantContext) Current() (tenant.Selection, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.current, t.selected
}

// Slug returns the selected organization slug for tenant-scoped requests.
func (t *TenantContext) Slug() (string, bool) {
	sel, ok := t.Current()
	return sel.Slug, ok
}

// State reports Unselected or Selected.
func (t *TenantContext) State() tenant.State {
	if _, ok := t.Current(); ok {
		return tenant.StateSelected
	}
	return tenant.StateUnselected
}
