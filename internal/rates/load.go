package rates

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Settings describe how to build a Converter.
type Settings struct {
	Policy Policy
	Base   string // currency that needs converting, e.g. EUR
	Target string // budget currency, e.g. HUF

	// FixedRate skips the rate request for PolicyFixed when valid.
	FixedRate decimal.NullDecimal

	RateURL   string
	RateQuery string

	HistoryURL   string
	HistoryQuery string
}

// Load builds the Converter for s, fetching rates at most once. When the
// fetch fails the returned Converter is still usable but unresolved: Base
// amounts fail with RateNotFoundError rather than falling back to a default.
// The fetch error is returned alongside it so the caller can report it.
func Load(ctx context.Context, s Settings, c *Client) (Converter, error) {
	switch s.Policy {
	case PolicyNone, "":
		return Identity{}, nil

	case PolicyFixed:
		conv := Fixed{Base: s.Base, Target: s.Target, Rate: s.FixedRate}
		if conv.Rate.Valid {
			return conv, nil
		}
		if s.RateURL == "" {
			return conv, fmt.Errorf("fixed policy needs a rate or a rate URL")
		}
		rate, err := c.FetchRate(ctx, s.RateURL, s.RateQuery)
		if err != nil {
			return conv, err
		}
		conv.Rate = decimal.NewNullDecimal(rate)
		return conv, nil

	case PolicyHistorical:
		conv := Historical{Base: s.Base, Target: s.Target, Table: map[string]decimal.Decimal{}}
		if s.HistoryURL == "" {
			return conv, fmt.Errorf("historical policy needs a history URL")
		}
		table, err := c.FetchHistory(ctx, s.HistoryURL, s.HistoryQuery)
		if err != nil {
			return conv, err
		}
		conv.Table = table
		return conv, nil

	default:
		return Identity{}, fmt.Errorf("unknown conversion policy %q", s.Policy)
	}
}
