package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"WalkSim/internal/domain/models"
	domrepo "WalkSim/internal/domain/repository"
	"WalkSim/pkg/cache"
	applogger "WalkSim/pkg/logger"
	"WalkSim/pkg/util"
)

// FallbackProvider serves bars from the store and falls back to an external
// provider when the store is short. Fetched bars are written back.
type FallbackProvider struct {
	store    domrepo.BarStore
	external domrepo.BarProvider
	l        *applogger.Logger
}

func NewFallbackProvider(store domrepo.BarStore, external domrepo.BarProvider) *FallbackProvider {
	return &FallbackProvider{store: store, external: external, l: applogger.Nop()}
}

func (p *FallbackProvider) SetLogger(l *applogger.Logger) {
	if l != nil {
		p.l = l
	}
}

func (p *FallbackProvider) GetBars(ctx context.Context, symbol string, lookback int) ([]models.Bar, error) {
	stored, err := p.store.GetBars(ctx, symbol, lookback)
	if err != nil {
		p.l.Warn("bar store read failed", applogger.String("symbol", symbol), applogger.Error(err))
	}
	if err == nil && len(stored) >= lookback {
		return stored, nil
	}

	fetched, ferr := p.external.GetBars(ctx, symbol, lookback)
	if ferr != nil {
		if len(stored) > 0 {
			p.l.Warn("external bars unavailable, serving stored bars",
				applogger.String("symbol", symbol),
				applogger.Int("rows", len(stored)),
				applogger.Error(ferr))
			return stored, nil
		}
		return nil, ferr
	}
	if serr := p.store.SaveBars(ctx, fetched); serr != nil {
		p.l.Warn("bar write-back failed", applogger.String("symbol", symbol), applogger.Error(serr))
	}
	return fetched, nil
}

// CachedProvider memoizes bar lookups per (symbol, lookback) for ttl.
type CachedProvider struct {
	next  domrepo.BarProvider
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger
}

func NewCachedProvider(next domrepo.BarProvider, c cache.Service, ttl time.Duration) *CachedProvider {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedProvider{next: next, cache: c, ttl: ttl, l: applogger.Nop()}
}

func (p *CachedProvider) SetLogger(l *applogger.Logger) {
	if l != nil {
		p.l = l
	}
}

func (p *CachedProvider) GetBars(ctx context.Context, symbol string, lookback int) ([]models.Bar, error) {
	symbol = util.NormalizeSymbol(symbol)
	key := cache.Key("bars", symbol, lookback)

	var bars []models.Bar
	err := p.cache.Get(ctx, key, &bars)
	if err == nil {
		return bars, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		p.l.Warn("bar cache read failed", applogger.String("key", key), applogger.Error(err))
	}

	bars, err = p.next.GetBars(ctx, symbol, lookback)
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}
	if len(bars) > 0 {
		if err := p.cache.Set(ctx, key, bars, p.ttl); err != nil {
			p.l.Warn("bar cache write failed", applogger.String("key", key), applogger.Error(err))
		}
	}
	return bars, nil
}

// Invalidate drops every cached lookback for symbol.
func (p *CachedProvider) Invalidate(ctx context.Context, symbol string) error {
	return p.cache.DeleteByPattern(ctx, cache.Key("bars", util.NormalizeSymbol(symbol), "*"))
}

var (
	_ domrepo.BarProvider = (*FallbackProvider)(nil)
	_ domrepo.BarProvider = (*CachedProvider)(nil)
)
