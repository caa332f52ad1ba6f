// Package pipeline runs a scan of one URL through a sequence of steps:
// render, parse, validate and score.
//
// Each step receives the report built by the previous steps and adds to it.
// A render or parse failure stops the scan and is recorded on the report as
// its failure stage, so a page that could not be read is never mistaken for
// a page that scored low. Validation never fails a scan; it falls back to the
// parser counts.
//
// BatchProcessor scans many URLs with bounded concurrency.
package pipeline
