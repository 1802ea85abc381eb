// Package layout decides how many reward slots a capture shows and which item
// sits in each one.
//
// The reward screen always shows one to four name strips in one of four fixed
// pixel arrangements. The arrangements are a hand-authored table at a
// 1920x1080 reference resolution, and they are scaled to the capture's size.
//
// # Search
//
// Resolver.Resolve is a small state machine over SearchOrder (4, 3, 2, 1).
// Each state crops that layout's regions, runs OCR on each one, cleans the text
// with package normalize, and matches it with package match. The first layout
// in which every region yields a confident match is adopted, and the search
// stops. Trying the richest layout first, and requiring every region to
// resolve, keeps a partial match on a wrong layout from winning.
//
// When no layout resolves, the outcome has a nil Layout and no names. This is
// the normal "no rewards detected" result and not an error.
//
// # Ordering
//
// Regions are recognized one after another, left to right. Names in the outcome
// keep that order, and case-insensitive repeats are dropped (first one wins).
package layout
