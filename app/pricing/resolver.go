// Package pricing turns a service title plus order attributes into an amount
// in the smallest currency unit. Each service kind is a Strategy registered
// under its normalized tag; anything unregistered falls back to the catalog.
package pricing

import (
	"context"
	"strings"

	"github.com/gilanghuda/crewhub-backend/pkg/apperror"
)

// Catalog is the read side of the price tables.
type Catalog interface {
	ServicePrice(ctx context.Context, title string) (int64, error)
	ExtensionPrice(ctx context.Context, minutes int) (int64, error)
}

type Attributes struct {
	Episodes       int
	ShowType       string
	SessionMinutes int
}

// IsSeries reports whether showtype marks the production as episodic.
func (a Attributes) IsSeries() bool {
	switch strings.ToLower(strings.TrimSpace(a.ShowType)) {
	case "yes", "series", "true":
		return true
	}
	return false
}

type Strategy interface {
	Price(ctx context.Context, c Catalog, title string, a Attributes) (int64, error)
}

type StrategyFunc func(ctx context.Context, c Catalog, title string, a Attributes) (int64, error)

func (f StrategyFunc) Price(ctx context.Context, c Catalog, title string, a Attributes) (int64, error) {
	return f(ctx, c, title, a)
}

type Resolver struct {
	catalog    Catalog
	strategies map[string]Strategy
	fallback   Strategy
}

// NewResolver returns a resolver with the built-in service strategies registered.
func NewResolver(c Catalog) *Resolver {
	r := &Resolver{
		catalog:    c,
		strategies: make(map[string]Strategy),
		fallback:   CatalogPrice{},
	}
	r.Register("createbudget", SeriesOrCatalog{Series: TieredPerEpisode{Tiers: CreateBudgetTiers}})
	r.Register("marketbudget", CatalogWithSurcharge{SeriesSurcharge: 100000})
	pitch := SeriesOrCatalog{Series: PerEpisode{Rate: 50000}}
	r.Register("pitch", pitch)
	r.Register("pitchdeck", pitch)
	r.Register("chat", SessionExtension{})
	return r
}

// Register binds s to the tag of title, replacing any previous strategy.
func (r *Resolver) Register(title string, s Strategy) {
	r.strategies[Tag(title)] = s
}

func (r *Resolver) Resolve(ctx context.Context, title string, a Attributes) (int64, error) {
	if strings.TrimSpace(title) == "" {
		return 0, apperror.Validation("service title is required")
	}
	if a.Episodes < 0 {
		return 0, apperror.Validation("episodes cannot be negative")
	}
	s, ok := r.strategies[Tag(title)]
	if !ok {
		s = r.fallback
	}
	amount, err := s.Price(ctx, r.catalog, title, a)
	if err != nil {
		return 0, err
	}
	if amount <= 0 {
		return 0, apperror.Validation("resolved price must be positive")
	}
	return amount, nil
}

// Tag normalizes a service title: lowercase, no spaces, dashes or underscores.
func Tag(title string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_', '\t':
			return -1
		}
		return r
	}, strings.ToLower(strings.TrimSpace(title)))
}
