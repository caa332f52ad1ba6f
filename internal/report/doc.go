// Package report writes scan reports as plain text, Markdown or JSON.
//
// Every writer shows a failed scan (render or parse failure) as a failure,
// never as a score of zero, and labels scores computed without validator
// verdicts as unverified.
package report
