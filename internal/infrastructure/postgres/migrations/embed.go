// Package migrations embebe los scripts SQL de golang-migrate (NNNN_nombre.up.sql / .down.sql).
package migrations

import "embed"

// FS scripts de migración en orden de versión.
//
//go:embed *.sql
var FS embed.FS
