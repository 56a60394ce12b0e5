package catalog

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/oklog/ulid/v2"

	"bazaar/internal/domain"
)

var featured = []domain.Listing{
	{Title: "Red baseball cap", Description: "Adjustable strap, barely worn", Category: "clothing", PriceCents: 1200},
	{Title: "Wool flat cap", Description: "Grey herringbone, size M", Category: "clothing", PriceCents: 2500},
	{Title: "Oak dining chair", Description: "Solid oak, set of two available", Category: "furniture", PriceCents: 4500},
	{Title: "Ergonomic office chair", Description: "Mesh back, lumbar support", Category: "furniture", PriceCents: 12000},
	{Title: "Chai tea sampler", Description: "Six loose-leaf chai blends", Category: "grocery", PriceCents: 1800},
	{Title: "Brass desk lamp", Description: "Warm light, adjustable arm", Category: "home", PriceCents: 3900},
	{Title: "Noise-cancelling headphones", Description: "Over-ear, 30h battery", Category: "electronics", PriceCents: 15900},
	{Title: "Wired headphones", Description: "Studio monitor headphones with coiled cable", Category: "electronics", PriceCents: 6900},
}

var (
	adjectives = []string{"Vintage", "Compact", "Handmade", "Refurbished", "Portable", "Classic", "Modern", "Rustic", "Folding", "Wireless"}
	categories = []string{"electronics", "furniture", "clothing", "home", "sports"}
	nouns      = map[string][]string{
		"electronics": {"speaker", "keyboard", "monitor", "camera", "radio", "charger"},
		"furniture":   {"bookshelf", "stool", "bench", "wardrobe", "side table", "armchair"},
		"clothing":    {"jacket", "scarf", "boots", "sweater", "beanie", "raincoat"},
		"home":        {"kettle", "rug", "mirror", "vase", "blender", "clock"},
		"sports":      {"bicycle", "tent", "backpack", "skateboard", "yoga mat", "racket"},
	}
	conditions = []string{"like new", "lightly used", "some scratches", "original box", "needs minor repair"}
	sellers    = []string{"ana", "bruno", "chen", "dara", "eli", "farah", "goran", "hana"}
)

// SampleListings returns the featured listings followed by n generated ones.
// A negative n generates none.
// The same seed always yields the same titles; ids and post times are fresh.
func SampleListings(n int, seed uint64) []domain.Listing {
	n = max(n, 0)
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	now := time.Now()

	var key [32]byte
	binary.LittleEndian.PutUint64(key[:], seed)
	entropy := ulid.Monotonic(rand.NewChaCha8(key), 0)

	out := make([]domain.Listing, 0, len(featured)+n)
	for i, l := range featured {
		l.Seller = sellers[i%len(sellers)]
		l.Currency = "USD"
		l.PostedAt = now.Add(-time.Duration(i) * time.Hour)
		l.ID = ulid.MustNew(ulid.Timestamp(l.PostedAt), entropy).String()
		out = append(out, l)
	}

	for i := 0; i < n; i++ {
		category := categories[rng.IntN(len(categories))]
		noun := nouns[category][rng.IntN(len(nouns[category]))]
		postedAt := now.Add(-time.Duration(rng.IntN(30*24)) * time.Hour)
		out = append(out, domain.Listing{
			ID:          ulid.MustNew(ulid.Timestamp(postedAt), entropy).String(),
			Title:       fmt.Sprintf("%s %s", adjectives[rng.IntN(len(adjectives))], noun),
			Description: conditions[rng.IntN(len(conditions))],
			Category:    category,
			Seller:      sellers[rng.IntN(len(sellers))],
			PriceCents:  int64(500 + rng.IntN(50000)),
			Currency:    "USD",
			PostedAt:    postedAt,
		})
	}
	return out
}

// Seed inserts SampleListings(n, seed) unless the catalog already has listings.
// It returns how many listings were inserted.
func Seed(ctx context.Context, store *Store, n int, seed uint64) (int, error) {
	count, err := store.Count(ctx)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	listings := SampleListings(n, seed)
	if err := store.Insert(ctx, listings...); err != nil {
		return 0, fmt.Errorf("failed to seed catalog: %w", err)
	}
	return len(listings), nil
}
