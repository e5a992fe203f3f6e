// Package migrations embeds the goose SQL ladder for the Writer database.
// Each file is one schema version; versions are applied in order at open.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
