package migrations

import "embed"

// Postgres holds the schema migrations applied by helper.Runner.
//
//go:embed postgres/*.sql
var Postgres embed.FS

const PostgresDir = "postgres"
