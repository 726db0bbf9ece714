// Package providers holds the team lookup strategies consulted by the resolver.
package providers

import (
	"context"

	"pitchdash/ingestion/internal/models"
)

// KeyKind tells the resolver which key a provider is queried with
type KeyKind int

const (
	// ByID providers need a parsed player ID and are skipped without one
	ByID KeyKind = iota
	// ByName providers are queried with the raw player name
	ByName
)

// Query is the lookup key handed to a provider
type Query struct {
	PlayerID int
	Name     string
}

// Provider is a single team lookup strategy. Lookup returns "" when the
// provider has no answer; errors are treated the same way by the resolver.
type Provider interface {
	Tier() models.Tier
	Kind() KeyKind
	Lookup(ctx context.Context, q Query) (string, error)
}

// Func adapts a plain function into a Provider
type Func struct {
	T  models.Tier
	K  KeyKind
	Fn func(ctx context.Context, q Query) (string, error)
}

func (f Func) Tier() models.Tier { return f.T }
func (f Func) Kind() KeyKind     { return f.K }

func (f Func) Lookup(ctx context.Context, q Query) (string, error) {
	return f.Fn(ctx, q)
}
