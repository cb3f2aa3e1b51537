// Package match decides whether two differently-sourced track records denote
// the same recording.
//
// [Matcher.MatchTrack] tries three strategies in order: lookup by recording
// code (when the source track carries an ISRC and the destination supports
// it), an exact-metadata search accepted at confidence >= 95, and a
// multi-variant fuzzy search accepted at confidence >= 85. A track that fails
// all three yields a no-match result, never an error; individual search
// failures are swallowed and treated as empty candidate sets.
//
// Confidence is a 0-100 heuristic built from character and token-sort
// similarity of cleaned titles and artist credits, with bonuses for close
// durations and matching albums and penalties for compilation releases.
package match
