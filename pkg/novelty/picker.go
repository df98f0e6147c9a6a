package novelty

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/go-pkgz/lgr"

	"github.com/umputun/newsmith/pkg/domain"
)

//go:generate moq -out mocks/fetcher.go -pkg mocks -skip-ensure -fmt goimports . Fetcher

// DefaultThreshold is the title similarity at which a candidate counts as a near duplicate
const DefaultThreshold = 0.78

// Fetcher retrieves normalized items of a single feed
type Fetcher interface {
	Fetch(ctx context.Context, feedURL string, maxItems int) ([]domain.FeedItem, error)
}

// Params configures Picker
type Params struct {
	Fetcher         Fetcher
	FeedURLs        []string
	MaxItems        int
	BlockedKeywords []string
	Threshold       *float64        // DefaultThreshold if nil, zero is a valid threshold
	PickRandom      bool            // pick uniformly from survivors instead of the first one
	RandIntN        func(n int) int // random source for PickRandom, defaults to math/rand/v2
}

// Picker selects one unseen, unblocked and sufficiently novel feed item
type Picker struct {
	Params
	threshold float64
}

// NewPicker makes a Picker with defaults applied
func NewPicker(params Params) *Picker {
	threshold := DefaultThreshold
	if params.Threshold != nil {
		threshold = *params.Threshold
	}
	if params.RandIntN == nil {
		params.RandIntN = rand.IntN //nolint:gosec // candidate choice doesn't need crypto randomness
	}
	return &Picker{Params: params, threshold: threshold}
}

// Pick fetches all configured feeds and returns the chosen candidate.
// Returns nil without error if nothing survives filtering. Any feed failure aborts the pick.
func (p *Picker) Pick(ctx context.Context, processed map[string]struct{}, past []domain.Article) (*domain.FeedItem, error) {
	pastTokens := make([]TokenSet, 0, len(past))
	for _, a := range past {
		if a.Title == "" {
			continue
		}
		pastTokens = append(pastTokens, Tokens(a.Title))
	}

	var candidates []domain.FeedItem
	for _, feedURL := range p.FeedURLs {
		items, err := p.Fetcher.Fetch(ctx, feedURL, p.MaxItems)
		if err != nil {
			return nil, fmt.Errorf("fetch candidates: %w", err)
		}
		lgr.Printf("[DEBUG] fetched %d items from %s", len(items), feedURL)
		for _, item := range items {
			if reason := p.reject(item, processed, pastTokens); reason != "" {
				lgr.Printf("[DEBUG] skip %q: %s", item.Title, reason)
				continue
			}
			candidates = append(candidates, item)
		}
	}

	lgr.Printf("[INFO] %d candidates after filtering", len(candidates))
	if len(candidates) == 0 {
		return nil, nil
	}

	idx := 0
	if p.PickRandom {
		idx = p.RandIntN(len(candidates))
	}
	res := candidates[idx]
	return &res, nil
}

// reject returns a non-empty reason if the item can't be a candidate
func (p *Picker) reject(item domain.FeedItem, processed map[string]struct{}, pastTokens []TokenSet) string {
	link := NormalizeURL(item.Link)
	if link == "" {
		return "empty link"
	}
	if _, ok := processed[link]; ok {
		return "already processed"
	}
	if IsBlocked(item.Title, p.BlockedKeywords) {
		return "blocked keyword"
	}
	tokens := Tokens(item.Title)
	for _, pt := range pastTokens {
		if Jaccard(tokens, pt) >= p.threshold {
			return "too similar to a past article"
		}
	}
	return ""
}
