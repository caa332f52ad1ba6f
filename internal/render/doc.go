// Package render fetches the HTML of a page so it can be parsed.
//
// HTTPRenderer performs a plain GET and decodes the body to UTF-8.
// BrowserlessRenderer asks a headless Chrome service for the DOM after
// scripts have run. Pool bounds how many renders run at once, and
// CachedRenderer keeps rendered pages in redis for a while.
//
// Every Renderer takes a context and returns an error for network failures,
// non-success statuses and non-HTML responses. Render errors are failures of
// the scan, never low scores.
package render
