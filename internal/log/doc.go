// Package log provides slog loggers that mask credentials before they reach
// the output.
//
// Scans carry several secrets through their configuration: the validator API
// key, per-site cookies and authorization headers, the rendering service
// token, database DSNs and object storage credentials. SecureHandler masks
// them by attribute key (authorization, cookie, x-api-key, dsn, ...) and by
// value pattern (bearer tokens, JWTs, Anthropic and AWS keys). URLs keep their
// host and path so that logs stay useful; only embedded passwords and
// credential query parameters such as token= are replaced.
//
// # Usage
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("rendering",
//	    "url", "https://chrome.example.com/content?token=abc", // token masked
//	    "cookie", "session=abc123",                              // masked
//	)
package log
