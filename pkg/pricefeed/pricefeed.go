// Package pricefeed provides spot exchange rates for converting booking
// amounts into the settlement currency.
//
// A rate is fetched fresh for each payment proposal so a quote reflects
// the market at proposal time. Feed failures surface as errors; there is
// no cached or fallback rate, since settling against a stale price is
// worse than declining to quote.
package pricefeed

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common feed failure conditions.
var (
	// ErrUnsupportedPair is returned when the feed cannot quote the pair.
	ErrUnsupportedPair = errors.New("pricefeed: unsupported currency pair")

	// ErrFeedUnavailable is returned when the upstream source is unreachable.
	ErrFeedUnavailable = errors.New("pricefeed: feed unavailable")

	// ErrInvalidRate is returned when the upstream returns a non-positive rate.
	ErrInvalidRate = errors.New("pricefeed: invalid rate")
)

// Feed quotes spot exchange rates.
type Feed interface {
	// Rate returns how many units of quote currency one unit of base
	// currency is worth, e.g. Rate(ctx, "SOL", "USD") for the dollar
	// price of one SOL.
	Rate(ctx context.Context, base, quote string) (float64, error)
}

// Static is a fixed-rate feed for tests and offline development.
type Static struct {
	rates map[string]float64
}

// NewStatic creates a feed with fixed rates keyed by "BASE/QUOTE".
func NewStatic(rates map[string]float64) *Static {
	return &Static{rates: rates}
}

// Rate implements Feed.
func (s *Static) Rate(_ context.Context, base, quote string) (float64, error) {
	rate, ok := s.rates[base+"/"+quote]
	if !ok {
		return 0, fmt.Errorf("%w: %s/%s", ErrUnsupportedPair, base, quote)
	}
	if rate <= 0 {
		return 0, fmt.Errorf("%w: %s/%s = %v", ErrInvalidRate, base, quote, rate)
	}
	return rate, nil
}
