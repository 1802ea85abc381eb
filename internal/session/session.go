// Package session is the entry point the surrounding application calls for
// one end-to-end scan: resolve the layout, then hand the names to the price
// and display collaborators.
package session

import (
	"context"
	"image"

	"github.com/rs/zerolog"

	"github.com/ironsheep/relic-scan/internal/imaging"
	"github.com/ironsheep/relic-scan/internal/layout"
)

// PriceFailed is shown in place of a price when the lookup errors.
const PriceFailed = "price lookup failed"

// PriceLookup returns a display string for one catalog name.
type PriceLookup interface {
	Price(ctx context.Context, item string) (string, error)
}

// Priced pairs a scanned name with its display price.
type Priced struct {
	Name  string `json:"name"`
	Price string `json:"price"`
	Err   error  `json:"-"`
}

// Session wires a layout resolver to an optional price lookup.
type Session struct {
	resolver *layout.Resolver
	prices   PriceLookup
	log      zerolog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithPrices sets the price lookup used by Prices.
func WithPrices(p PriceLookup) Option {
	return func(s *Session) { s.prices = p }
}

// WithLogger sets the logger. Scan detail is logged at debug level.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// New creates a Session around resolver.
func New(resolver *layout.Resolver, opts ...Option) *Session {
	s := &Session{resolver: resolver, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunScan resolves capture and returns the resolver's outcome unchanged.
func (s *Session) RunScan(ctx context.Context, capture image.Image) (layout.Outcome, error) {
	out, err := s.resolver.Resolve(ctx, capture)
	if err != nil {
		return layout.Outcome{}, err
	}
	s.logOutcome(out)
	return out, nil
}

// Prices looks up every name of out in order. A failed lookup yields
// PriceFailed for that name and does not stop the others. Without a
// configured lookup it returns nil.
func (s *Session) Prices(ctx context.Context, out layout.Outcome) []Priced {
	if s.prices == nil {
		return nil
	}

	priced := make([]Priced, 0, len(out.Names))
	for _, name := range out.Names {
		p, err := s.prices.Price(ctx, name)
		if err != nil {
			s.log.Warn().Err(err).Str("item", name).Msg("price lookup failed")
			priced = append(priced, Priced{Name: name, Price: PriceFailed, Err: err})
			continue
		}
		priced = append(priced, Priced{Name: name, Price: p})
	}
	return priced
}

func (s *Session) logOutcome(out layout.Outcome) {
	for _, a := range out.Attempts {
		s.log.Debug().
			Stringer("layout", a.Slots).
			Int("resolved", a.Resolved).
			Bool("accepted", a.Accepted).
			Msg("attempt")
	}
	for i, slot := range out.Slots {
		for _, tr := range slot.Traces {
			s.log.Debug().
				Int("region", i+1).
				Str("phrase", tr.Phrase).
				Str("best", tr.Best.Name).
				Float64("score", tr.Best.Score).
				Float64("runner_up", tr.RunnerUp).
				Bool("accepted", tr.Accepted).
				Msg("match")
		}
	}

	if out.Resolved() {
		s.log.Info().Stringer("layout", out.Layout.Slots).Strs("names", out.Names).Msg("scan resolved")
	} else {
		s.log.Info().Msg("no rewards detected")
	}
}

// Labels maps an outcome onto annotation labels for a capture with the given
// bounds. A resolved outcome labels each region with its match. Otherwise the
// regions of the widest layout are outlined as unresolved.
func Labels(out layout.Outcome, bounds image.Rectangle) []imaging.Label {
	if out.Resolved() {
		labels := make([]imaging.Label, len(out.Slots))
		for i, slot := range out.Slots {
			labels[i] = imaging.Label{Region: slot.Region, Text: slot.Label, Resolved: slot.Resolved()}
		}
		return labels
	}

	widest, _ := layout.ForSlots(layout.SearchOrder[0])
	regions := widest.ScaledTo(bounds)
	labels := make([]imaging.Label, len(regions))
	for i, r := range regions {
		labels[i] = imaging.Label{Region: r}
	}
	return labels
}
