// Package model defines the data structures shared by the contentscale packages.
//
// This package contains the following main types:
//   - ParserOutput: counts, snippets and metadata extracted from one rendered page
//   - ValidatedCounts: the validator's narrowing of the verifiable parser counts
//   - ScoreBreakdown: the 0-100 score with its three rubric groups
//   - Page: a rendered page as returned by a renderer
//   - ScanReport: one scan of one URL, as printed and persisted
//
// All types serialize to JSON with camelCase keys. The ScoreBreakdown shape is
// consumed by reports, the score history database and the leaderboard.
package model
