// Package parser turns rendered HTML into counts, snippets and metadata.
//
// Parsing never fails outward. Empty input or markup that cannot be processed
// yields a zeroed ParserOutput with Success set to false. A failure inside one
// extraction rule or one JSON-LD block drops only what that rule or block would
// have produced.
//
// Extraction is organized as families of named rules (expert quotes,
// statistics, case studies, FAQ, source citations). Each rule yields candidate
// items and each family deduplicates them by a stable key. Deduplication state
// lives in a single Parse call; a Parser holds no mutable state and is safe for
// concurrent use.
package parser
