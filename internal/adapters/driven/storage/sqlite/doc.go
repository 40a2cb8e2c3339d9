// Package sqlite persists users and chats with modernc.org/sqlite, so the
// binary builds without CGO. One Store hands out both UserStore and
// ChatStore over a single connection pool.
//
// # Schema
//
// migrations/ holds numbered NNN_name.up.sql scripts (with .down.sql
// counterparts for manual rollback). Open applies those newer than
// PRAGMA user_version and bumps it. Chat messages are one JSON array column.
//
// The database lives at ~/.docqa/data/docqa.db unless a data directory is
// given. WAL mode lets reads run during writes; an append to one chat is a
// single write transaction.
package sqlite
