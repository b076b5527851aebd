// Package migrations embebe las migraciones SQL de postgres para golang-migrate.
package migrations

import "embed"

// FS contiene las migraciones versionadas ({version}_{title}.{up|down}.sql).
//
//go:embed sql/*.sql
var FS embed.FS

// Dir es el directorio dentro de FS donde viven las migraciones.
const Dir = "sql"
