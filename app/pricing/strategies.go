package pricing

import (
	"context"

	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
)

// EpisodeTier applies Rate while the episode count is at most MaxEpisodes.
// A zero MaxEpisodes matches any count.
type EpisodeTier struct {
	MaxEpisodes int
	Rate        int64
}

var CreateBudgetTiers = []EpisodeTier{
	{MaxEpisodes: 10, Rate: 250000},
	{MaxEpisodes: 25, Rate: 230000},
	{Rate: 210000},
}

type CatalogPrice struct{}

func (CatalogPrice) Price(ctx context.Context, c Catalog, title string, _ Attributes) (int64, error) {
	return c.ServicePrice(ctx, title)
}

// SeriesOrCatalog prices series with Series and everything else from the catalog.
type SeriesOrCatalog struct {
	Series Strategy
}

func (s SeriesOrCatalog) Price(ctx context.Context, c Catalog, title string, a Attributes) (int64, error) {
	if !a.IsSeries() {
		return c.ServicePrice(ctx, title)
	}
	if a.Episodes < 1 {
		return 0, apperror.Validation("a series needs at least one episode")
	}
	return s.Series.Price(ctx, c, title, a)
}

type PerEpisode struct {
	Rate int64
}

func (p PerEpisode) Price(_ context.Context, _ Catalog, _ string, a Attributes) (int64, error) {
	return p.Rate * int64(a.Episodes), nil
}

type TieredPerEpisode struct {
	Tiers []EpisodeTier
}

func (t TieredPerEpisode) Price(_ context.Context, _ Catalog, _ string, a Attributes) (int64, error) {
	for _, tier := range t.Tiers {
		if tier.MaxEpisodes == 0 || a.Episodes <= tier.MaxEpisodes {
			return tier.Rate * int64(a.Episodes), nil
		}
	}
	return 0, apperror.Validation("no rate for this many episodes")
}

type CatalogWithSurcharge struct {
	SeriesSurcharge int64
}

func (s CatalogWithSurcharge) Price(ctx context.Context, c Catalog, title string, a Attributes) (int64, error) {
	base, err := c.ServicePrice(ctx, title)
	if err != nil {
		return 0, err
	}
	if a.IsSeries() {
		if a.Episodes < 1 {
			return 0, apperror.Validation("a series needs at least one episode")
		}
		base += s.SeriesSurcharge
	}
	return base, nil
}

// SessionExtension prices one chat session from the extension table.
type SessionExtension struct{}

func (SessionExtension) Price(ctx context.Context, c Catalog, _ string, a Attributes) (int64, error) {
	minutes := a.SessionMinutes
	if minutes <= 0 {
		minutes = 60
	}
	return c.ExtensionPrice(ctx, minutes)
}
