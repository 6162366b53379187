// Package database provides connection management for MySQL, PostgreSQL
// (lib/pq or pgx) and SQLite on top of Bun, along with configuration types,
// logging, health checks, query hooks and driver-neutral error classification.
package database
