package sanctions

import (
	"context"
	"time"

	"treasury/internal/domain"
	"treasury/pkg/cache"
	"treasury/pkg/logger"
)

// WatchlistSource supplies the candidate entries to screen against.
// Production and test lists are swapped behind this interface.
type WatchlistSource interface {
	Entries(ctx context.Context) ([]domain.WatchlistEntry, error)
}

// StaticList is an in-memory watch-list source.
type StaticList struct {
	entries []domain.WatchlistEntry
}

func NewStaticList(entries []domain.WatchlistEntry) *StaticList {
	return &StaticList{entries: entries}
}

func (l *StaticList) Entries(ctx context.Context) ([]domain.WatchlistEntry, error) {
	return l.entries, nil
}

// DefaultList returns the built-in SDN fixture list used when no external
// sanctions feed is configured.
func DefaultList() *StaticList {
	return NewStaticList([]domain.WatchlistEntry{
		{Name: "NEXUS_BLOCKED_CORP", BIC: "BLCKUS33XXX", Country: "IR", ListType: "SDN"},
		{Name: "PHANTOM_TRADE_LTD", BIC: "PHNTGB2LXXX", Country: "KP", ListType: "SDN"},
		{Name: "DARK_FINANCE_AG", BIC: "DRKNDE00XXX", Country: "SY", ListType: "SDN"},
		{Name: "ROGUE_CAPITAL_PARTNERS", BIC: "ROGUUS44XXX", Country: "CU", ListType: "NONSDN"},
		{Name: "SHADOW_BANK_INTL", BIC: "SHDWSG1XXXX", Country: "MM", ListType: "SDN"},
		{Name: "Oleg Deripaska", BIC: "OLEGRU22XXX", Country: "RU", ListType: "SDN"},
	})
}

const watchlistCacheKey = "sanctions:watchlist"

// CachedSource decorates a WatchlistSource with a TTL'd Redis snapshot.
// Cache failures fall back to the underlying source; screening never fails
// because the cache is down.
type CachedSource struct {
	next   WatchlistSource
	cache  *cache.RedisCache
	ttl    time.Duration
	logger logger.Logger
}

func NewCachedSource(next WatchlistSource, c *cache.RedisCache, ttl time.Duration, log logger.Logger) *CachedSource {
	return &CachedSource{next: next, cache: c, ttl: ttl, logger: log}
}

func (s *CachedSource) Entries(ctx context.Context) ([]domain.WatchlistEntry, error) {
	var cached []domain.WatchlistEntry
	err := s.cache.Get(ctx, watchlistCacheKey, &cached)
	if err == nil && len(cached) > 0 {
		return cached, nil
	}
	if err != nil && !cache.IsMiss(err) {
		s.logger.Warn("Watchlist cache read failed, falling back to source", map[string]interface{}{
			"error": err.Error(),
		})
	}

	entries, err := s.next.Entries(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, watchlistCacheKey, entries, s.ttl); err != nil {
		s.logger.Warn("Watchlist cache write failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return entries, nil
}
