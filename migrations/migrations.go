package migrations

import "embed"

//go:embed analytics/*.sql
var FS embed.FS
