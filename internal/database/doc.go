// Package database stores scan reports keyed by URL, score and timestamp.
//
// The default store is a single SQLite file (modernc.org/sqlite, no cgo) in
// WAL mode. A PostgreSQL store (lib/pq) shares the same schema and queries.
// Each report is kept in full as JSON next to the columns used for history
// and leaderboard queries.
package database
