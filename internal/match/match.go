package match

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"github.com/ironsheep/relic-scan/internal/catalog"
)

// Scoring constants.
const (
	// ConfidenceFloor is the minimum score a candidate needs to be accepted.
	ConfidenceFloor = 0.84

	// TokenBonus is added for every phrase token found inside the candidate.
	TokenBonus = 0.02

	// PrefixPenalty is subtracted when the first tokens disagree.
	PrefixPenalty = 0.05
)

// Kind tells a confident match apart from an unrecognized fragment.
type Kind int

const (
	Unknown Kind = iota
	Matched
)

func (k Kind) String() string {
	if k == Matched {
		return "matched"
	}
	return "unknown"
}

// MarshalText encodes the kind as "matched" or "unknown".
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (k *Kind) UnmarshalText(b []byte) error {
	switch string(b) {
	case "matched":
		*k = Matched
	case "unknown":
		*k = Unknown
	default:
		return fmt.Errorf("unknown match kind %q", b)
	}
	return nil
}

// Result is the outcome for one sub-phrase. Fragment always carries the text
// that was matched, so unknown results can be reported back verbatim.
type Result struct {
	Kind     Kind    `json:"kind"`
	Name     string  `json:"name,omitempty"`
	Fragment string  `json:"fragment"`
	Score    float64 `json:"score"`
}

// IsMatched reports whether r is a confident match.
func (r Result) IsMatched() bool {
	return r.Kind == Matched
}

func (r Result) String() string {
	if r.IsMatched() {
		return r.Name
	}
	return "Unknown: " + r.Fragment
}

// Candidate is a catalog entry scored against one sub-phrase.
type Candidate struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// Trace records how a sub-phrase was decided. Traces are only collected when
// the matcher is built with Options.Debug.
type Trace struct {
	Phrase     string      `json:"phrase"`
	Exact      bool        `json:"exact,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
	Best       Candidate   `json:"best"`
	RunnerUp   float64     `json:"runner_up"`
	Accepted   bool        `json:"accepted"`
}

// Report is everything Match produced for one fragment.
type Report struct {
	Results []Result `json:"results"`
	Traces  []Trace  `json:"traces,omitempty"`
}

// Names returns the matched names in order.
func (r Report) Names() []string {
	var names []string
	for _, res := range r.Results {
		if res.IsMatched() {
			names = append(names, res.Name)
		}
	}
	return names
}

// First returns the first matched name.
func (r Report) First() (string, bool) {
	for _, res := range r.Results {
		if res.IsMatched() {
			return res.Name, true
		}
	}
	return "", false
}

// Options configures a Matcher.
type Options struct {
	// Debug collects a Trace per sub-phrase.
	Debug bool
}

// Matcher maps cleaned OCR fragments onto catalog entries. It holds no
// mutable state and is safe for concurrent use.
type Matcher struct {
	catalog *catalog.Catalog
	debug   bool
}

// New creates a Matcher over c.
func New(c *catalog.Catalog, opts Options) *Matcher {
	return &Matcher{catalog: c, debug: opts.Debug}
}

// Catalog returns the catalog the matcher scores against.
func (m *Matcher) Catalog() *catalog.Catalog {
	return m.catalog
}

// Match resolves fragment into one result per sub-phrase. A fragment equal to
// a catalog entry (ignoring case) short-circuits to that entry. Otherwise the
// fragment is split on separators and every sub-phrase is scored on its own.
func (m *Matcher) Match(fragment string) Report {
	var report Report

	trimmed := strings.TrimSpace(fragment)
	if name, ok := m.catalog.Lookup(trimmed); ok {
		report.Results = []Result{{Kind: Matched, Name: name, Fragment: trimmed, Score: 1}}
		if m.debug {
			best := Candidate{Name: name, Score: 1}
			report.Traces = []Trace{{Phrase: trimmed, Exact: true, Best: best, Accepted: true}}
		}
		return report
	}

	for _, phrase := range SplitPhrases(trimmed) {
		res, trace := m.matchPhrase(phrase)
		report.Results = append(report.Results, res)
		if m.debug {
			report.Traces = append(report.Traces, trace)
		}
	}
	return report
}

func (m *Matcher) matchPhrase(phrase string) (Result, Trace) {
	best := Candidate{Score: math.Inf(-1)}
	runnerUp := math.Inf(-1)

	var candidates []Candidate
	m.catalog.Each(func(name string) {
		s := Score(phrase, name)
		if m.debug {
			candidates = append(candidates, Candidate{Name: name, Score: s})
		}
		switch {
		case s > best.Score:
			runnerUp = best.Score
			best = Candidate{Name: name, Score: s}
		case s > runnerUp:
			runnerUp = s
		}
	})

	// A tie with the runner-up is not a decision.
	accepted := best.Name != "" && best.Score > runnerUp && best.Score >= ConfidenceFloor

	trace := Trace{Phrase: phrase, Best: best, RunnerUp: runnerUp, Accepted: accepted}
	if math.IsInf(runnerUp, -1) {
		// single-entry catalog; keep the trace JSON-encodable
		trace.RunnerUp = 0
	}
	if m.debug {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].Score > candidates[j].Score
		})
		trace.Candidates = candidates
	}

	if !accepted {
		return Result{Kind: Unknown, Fragment: phrase, Score: best.Score}, trace
	}
	return Result{Kind: Matched, Name: best.Name, Fragment: phrase, Score: best.Score}, trace
}

// SplitPhrases splits text on the separators OCR leaves between adjacent
// labels: pipe, hyphen, en and em dash, bullet and newline. Sub-phrases are
// trimmed and empty ones dropped.
func SplitPhrases(text string) []string {
	parts := strings.FieldsFunc(text, isSeparator)
	phrases := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			phrases = append(phrases, p)
		}
	}
	return phrases
}

func isSeparator(r rune) bool {
	switch r {
	case '|', '-', '–', '—', '•', '\n':
		return true
	}
	return false
}

// Score rates phrase against a catalog entry. It is normalized edit
// similarity plus TokenBonus per phrase token contained in the entry, minus
// PrefixPenalty when the first tokens differ. Comparison ignores case.
func Score(phrase, entry string) float64 {
	a := strings.ToLower(phrase)
	b := strings.ToLower(entry)

	score := Similarity(a, b)

	tokens := strings.Fields(a)
	for _, tok := range tokens {
		if strings.Contains(b, tok) {
			score += TokenBonus
		}
	}

	if firstToken(tokens) != firstToken(strings.Fields(b)) {
		score -= PrefixPenalty
	}
	return score
}

// Similarity returns 1 - lev(a, b) / max(len(a), len(b)) with lengths in
// runes. Two empty strings are identical.
func Similarity(a, b string) float64 {
	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1.0
	}
	return 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
}

func firstToken(tokens []string) string {
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}
