// Package migrations holds the numbered schema scripts applied by the
// SQLite store at open.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
