// Package match maps cleaned OCR fragments onto catalog entries.
//
// # Algorithm
//
// Matching a fragment runs in three stages:
//
//  1. Exact pass: a fragment equal to a catalog entry, ignoring case, is
//     returned as that entry without scoring.
//  2. Splitting: the fragment is cut on the separators OCR leaves between
//     adjacent labels (|, -, –, —, •, newline). Each sub-phrase is matched on
//     its own and the results are concatenated in order.
//  3. Scoring: every sub-phrase is scored against every catalog entry.
//
// The score is normalized Levenshtein similarity, plus TokenBonus for every
// sub-phrase token found inside the entry, minus PrefixPenalty when the first
// tokens differ. Catalog entries share a "<name> Prime <part>" shape, so the
// first token is the most discriminating one.
//
// # Acceptance
//
// The best candidate wins only if its score is strictly greater than every
// other candidate's score and at least ConfidenceFloor. A tie at the top, even
// above the floor, produces an Unknown result instead of an arbitrary pick.
//
// Unknown results are ordinary values that carry the unmatched sub-phrase. Match
// never returns an error.
package match
