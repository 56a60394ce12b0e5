package catalog

import (
	"context"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"k8s.io/utils/clock"

	"bazaar/internal/domain"
	"bazaar/internal/search"
)

// Searcher is the part of Store the provider needs
type Searcher interface {
	Search(ctx context.Context, text string, limit int) ([]domain.Listing, error)
}

// Provider answers search.Provider calls from the catalog. Identical queries
// that overlap in time share one database execution; every caller still
// gets its own copy of the result.
type Provider struct {
	store  Searcher
	limit  int
	logger *zap.Logger
	group  singleflight.Group
}

var _ search.Provider = (*Provider)(nil)

// NewProvider creates a provider returning at most limit listings per query
func NewProvider(store Searcher, limit int, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{store: store, limit: limit, logger: logger}
}

// Search runs text against the catalog. It returns early when ctx is done;
// the shared execution keeps going for the other callers.
func (p *Provider) Search(ctx context.Context, text string) ([]domain.Listing, error) {
	key := normalizeKey(text)
	ch := p.group.DoChan(key, func() (any, error) {
		return p.store.Search(context.WithoutCancel(ctx), text, p.limit)
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			p.logger.Debug("catalog query shared", zap.String("query", text))
		}
		items, _ := r.Val.([]domain.Listing)
		return slices.Clone(items), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// normalizeKey folds texts the index treats identically onto one key
func normalizeKey(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// WithLatency delays every answer of p by a random duration in [minDelay, maxDelay].
// A call whose ctx ends during the delay returns ctx.Err() without querying p.
func WithLatency(p search.Provider, minDelay, maxDelay time.Duration, clk clock.Clock) search.Provider {
	if maxDelay <= 0 || maxDelay < minDelay {
		return p
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return search.ProviderFunc(func(ctx context.Context, text string) ([]domain.Listing, error) {
		delay := minDelay
		if span := maxDelay - minDelay; span > 0 {
			delay += rand.N(span + 1)
		}

		timer := clk.NewTimer(delay)
		defer timer.Stop()

		select {
		case <-timer.C():
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return p.Search(ctx, text)
	})
}
