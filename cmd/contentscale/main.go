// Package main provides the entry point for the contentscale CLI.
//
// contentscale scores web pages for SEO content quality. It renders a page,
// detects credibility signals (expert quotes, statistics, case studies, FAQs,
// source citations), optionally asks an LLM to reject weak detections, and
// computes a 0-100 score from three rubrics.
//
// Usage:
//
//	contentscale scan <url>
//	contentscale scan --list <file>
//	contentscale leaderboard
//
// See --help for all available options.
package main

func main() {
	Execute()
}
