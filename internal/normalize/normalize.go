// Package normalize cleans raw OCR text before it is matched against the catalog.
//
// Cleanup is a fixed sequence of deterministic passes: accent stripping, an
// ordered table of literal glyph repairs, separator and whitespace cleanup,
// a token-level "Blueprint" fallback, and removal of a misread leading "I ".
// Line breaks survive cleanup; each line is trimmed and blank lines are dropped.
// The order of the passes, and of the rules inside the literal table, is part
// of the contract. Reordering changes the output for overlapping patterns.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rule is a single literal substring replacement.
type Rule struct {
	Old string
	New string
}

// glyphRules repairs the known ways the OCR engine mangles the "Bl" ligature
// and the "Blueprint" suffix. The "Bl" prefix repairs must run before the
// suffix repairs, otherwise a correct "Bl" gets re-mangled.
var glyphRules = []Rule{
	{`B\'B`, "Bl"},
	{"elB", "Bl"},
	{"B\\‘", "Bl"},
	{"Blue‘print", "Blueprint"},
	{"BlB", "Bl"},
	{"BlBlueprint", "Blueprint"},
	{`B\Blueprint`, "Blueprint"},
	{`B\`, ""},
	{"ueprint", "Blueprint"},
	{"lueprint", "Blueprint"},
	{"eprint", "Blueprint"},
}

// GlyphRules returns a copy of the ordered literal repair table.
func GlyphRules() []Rule {
	out := make([]Rule, len(glyphRules))
	copy(out, glyphRules)
	return out
}

var (
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	quotes = strings.NewReplacer("'", "", "‘", "", "’", "")
)

// Text applies the full cleanup sequence to raw OCR text. It never fails;
// empty or whitespace-only input is returned unchanged.
func Text(s string) string {
	if strings.TrimSpace(s) == "" {
		return s
	}

	s = StripAccents(s)

	for _, r := range glyphRules {
		s = strings.ReplaceAll(s, r.Old, r.New)
	}

	s = quotes.Replace(s)
	s = strings.ReplaceAll(s, "|", " | ")

	// Every pass below only shrinks s, so the loop ends.
	for {
		next := tidy(s)
		if next == s {
			break
		}
		s = next
	}

	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = foldBlueprintTokens(line)
		for strings.HasPrefix(line, "I ") {
			line = line[2:]
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// tidy is one round of the separator cleanup. Line breaks are kept since the
// matcher splits on them.
func tidy(s string) string {
	s = collapseSpaces(s)
	s = collapseRepeats(s, "Prime Prime", "Prime")
	s = strings.ReplaceAll(s, "V4", "")
	s = strings.ReplaceAll(s, "- -", "")
	return collapseSpaces(s)
}

// collapseSpaces turns every run of spaces, tabs and carriage returns into a
// single space.
func collapseSpaces(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inRun := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' {
			if !inRun {
				b.WriteByte(' ')
			}
			inRun = true
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

// StripAccents decomposes s and drops combining marks ("é" becomes "e").
func StripAccents(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		return s
	}
	return out
}

// foldBlueprintTokens replaces every space-delimited token that ends in
// "blueprint" (any case) with the literal "Blueprint". It catches residual
// prefixes the literal table missed, including the ones it produces itself.
func foldBlueprintTokens(s string) string {
	tokens := strings.Split(s, " ")
	for i, tok := range tokens {
		if strings.HasSuffix(strings.ToLower(tok), "blueprint") {
			tokens[i] = "Blueprint"
		}
	}
	return strings.Join(tokens, " ")
}

func collapseRepeats(s, repeated, single string) string {
	for strings.Contains(s, repeated) {
		s = strings.ReplaceAll(s, repeated, single)
	}
	return s
}
