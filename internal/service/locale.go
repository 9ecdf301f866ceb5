package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/church-agenda/agenda-client/internal/domain/locale"
	apperrors "github.com/church-agenda/agenda-client/internal/errors"
	"github.com/church-agenda/agenda-client/internal/ports"
)

// LocalePreference holds the interface language and mirrors it to storage.
type LocalePreference struct {
	storage ports.KVStore
	logger  *slog.Logger

	mu      sync.RWMutex
	current locale.Locale
}

// NewLocalePreference starts at the default locale.
func NewLocalePreference(storage ports.KVStore, logger *slog.Logger) *LocalePreference {
	if logger == nil {
		logger = slog.Default()
	}
	return &LocalePreference{
		storage: storage,
		logger:  logger.With("component", "locale"),
		current: locale.Default,
	}
}

// Restore loads the persisted locale. Missing or unknown values keep the default.
func (p *LocalePreference) Restore(ctx context.Context) {
	raw, ok, err := p.storage.Get(ctx, ports.KeyLocale)
	if err != nil || !ok {
		return
	}
	l, err := locale.Parse(raw)
	if err != nil {
		p.logger.DebugContext(ctx, "ignoring persisted locale", "value", raw)
		return
	}
	p.mu.Lock()
	p.current = l
	p.mu.Unlock()
}

// Set matches tag to a supported locale, persists it and makes it current.
func (p *LocalePreference) Set(ctx context.Context, tag string) (locale.Locale, error) {
	l, err := locale.Parse(tag)
	if err != nil {
		return "", apperrors.ValidationField("locale", "validation.locale_unsupported")
	}
	if err := p.storage.Set(ctx, ports.KeyLocale, string(l)); err != nil {
		return "", apperrors.Storage(err, "persist %s", ports.KeyLocale)
	}
	p.mu.Lock()
	p.current = l
	p.mu.Unlock()
	return l, nil
}

// Current returns the active locale.
func (p *LocalePreference) Current() locale.Locale {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}
