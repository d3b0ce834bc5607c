package store

import (
	_ "embed"
	"strconv"
	"strings"
)

// Dialect selects the SQL driver and its placeholder style
type Dialect string

const (
	// DialectSQLite uses modernc.org/sqlite
	DialectSQLite Dialect = "sqlite"
	// DialectPostgres uses github.com/lib/pq
	DialectPostgres Dialect = "postgres"
)

var (
	//go:embed schema_sqlite.sql
	sqliteSchema string
	//go:embed schema_postgres.sql
	postgresSchema string
)

// DetectDialect picks the dialect from a connection string. Postgres URLs and
// keyword DSNs select Postgres, anything else is a SQLite path.
func DetectDialect(dsn string) Dialect {
	lower := strings.ToLower(strings.TrimSpace(dsn))
	switch {
	case strings.HasPrefix(lower, "postgres://"), strings.HasPrefix(lower, "postgresql://"):
		return DialectPostgres
	case strings.Contains(lower, "host=") && strings.Contains(lower, "dbname="):
		return DialectPostgres
	default:
		return DialectSQLite
	}
}

func (d Dialect) driver() string {
	return string(d)
}

func (d Dialect) schema() string {
	if d == DialectPostgres {
		return postgresSchema
	}
	return sqliteSchema
}

// rebind rewrites ? placeholders to $N for Postgres
func (d Dialect) rebind(query string) string {
	if d != DialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
