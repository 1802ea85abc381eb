package layout

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ironsheep/relic-scan/internal/match"
	"github.com/ironsheep/relic-scan/internal/normalize"
)

// Recognizer runs OCR over one region of a capture and returns its raw
// text lines in reading order. No text is an empty slice, not an error.
type Recognizer interface {
	RecognizeRegion(ctx context.Context, capture image.Image, region image.Rectangle) ([]string, error)
}

// SlotResult is what one region of the accepted layout produced.
type SlotResult struct {
	Region  image.Rectangle `json:"region"`
	Lines   []string        `json:"lines"`
	Cleaned string          `json:"cleaned"`
	Results []match.Result  `json:"results"`
	Traces  []match.Trace   `json:"traces,omitempty"`

	// Label is the first confident match in the region, empty if none.
	Label string `json:"label,omitempty"`
}

// Resolved reports whether the region produced a confident match.
func (s SlotResult) Resolved() bool {
	return s.Label != ""
}

// Attempt records one step of the layout search.
type Attempt struct {
	Slots    SlotCount `json:"slots"`
	Resolved int       `json:"resolved"`
	Accepted bool      `json:"accepted"`
}

// Outcome is the result of a scan. Layout is nil when no layout resolved.
// Names never holds more entries than the layout has slots.
type Outcome struct {
	Layout   *Layout      `json:"layout,omitempty"`
	Names    []string     `json:"names"`
	Slots    []SlotResult `json:"slots,omitempty"`
	Attempts []Attempt    `json:"attempts"`
}

// Resolved reports whether a layout was adopted.
func (o Outcome) Resolved() bool {
	return o.Layout != nil
}

// Resolver searches the layout table for the arrangement that fully resolves
// against a capture.
type Resolver struct {
	ocr     Recognizer
	matcher *match.Matcher
	log     zerolog.Logger
}

// NewResolver creates a Resolver. Attempts are logged at debug level.
func NewResolver(ocr Recognizer, matcher *match.Matcher, log zerolog.Logger) *Resolver {
	return &Resolver{ocr: ocr, matcher: matcher, log: log}
}

// Resolve tries the layouts in SearchOrder and adopts the first one whose
// every region yields a confident match. Finding nothing is a normal outcome
// with a nil Layout; only OCR failures and cancellation return an error.
func (r *Resolver) Resolve(ctx context.Context, capture image.Image) (Outcome, error) {
	out := Outcome{Names: []string{}}

	for _, n := range SearchOrder {
		l := table[n].clone()

		slots, err := r.attempt(ctx, capture, l)
		if err != nil {
			return Outcome{}, fmt.Errorf("%s layout: %w", n, err)
		}

		resolved := 0
		for _, s := range slots {
			if s.Resolved() {
				resolved++
			}
		}
		accepted := resolved == len(slots)
		out.Attempts = append(out.Attempts, Attempt{Slots: n, Resolved: resolved, Accepted: accepted})

		r.log.Debug().
			Stringer("layout", n).
			Int("resolved", resolved).
			Int("regions", len(slots)).
			Bool("accepted", accepted).
			Msg("layout attempt")

		if !accepted {
			continue
		}

		labels := make([]string, len(slots))
		for i, s := range slots {
			labels[i] = s.Label
		}
		out.Layout = &l
		out.Slots = slots
		out.Names = Dedupe(labels)
		return out, nil
	}

	return out, nil
}

func (r *Resolver) attempt(ctx context.Context, capture image.Image, l Layout) ([]SlotResult, error) {
	bounds := capture.Bounds()
	regions := l.ScaledTo(bounds)
	slots := make([]SlotResult, len(regions))

	for i, region := range regions {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		slots[i].Region = region

		if region.Intersect(bounds).Empty() {
			r.log.Debug().Int("region", i+1).Msg("region outside capture")
			continue
		}

		lines, err := r.ocr.RecognizeRegion(ctx, capture, region)
		if err != nil {
			return nil, fmt.Errorf("region %d: %w", i+1, err)
		}
		slots[i].Lines = lines
		if len(lines) == 0 {
			r.log.Debug().Int("region", i+1).Msg("no text recognized")
			continue
		}

		slots[i].Cleaned = normalize.Text(joinLines(lines))
		report := r.matcher.Match(slots[i].Cleaned)
		slots[i].Results = report.Results
		slots[i].Traces = report.Traces
		slots[i].Label, _ = report.First()
	}
	return slots, nil
}

func joinLines(lines []string) string {
	kept := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			kept = append(kept, l)
		}
	}
	return strings.Join(kept, " ")
}

// Dedupe drops case-insensitive repeats, keeping the first spelling and the
// original order.
func Dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, name)
	}
	return out
}
