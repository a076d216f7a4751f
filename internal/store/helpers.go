package store

import "strings"

// DSN type constants returned by DetectDSNType.
const (
	DSNTypePostgres = "postgres"
	DSNTypeSQLite   = "sqlite"
	DSNTypeFile     = "file"
)

// DetectDSNType classifies a cache location string so the caller can
// pick the matching backend. PostgreSQL DSNs use URL or key=value
// forms; anything ending in a SQLite extension is a database file;
// everything else is treated as a flat cache file path.
func DetectDSNType(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") || strings.Contains(dsn, "host=") {
		return DSNTypePostgres
	}
	trimmed := dsn
	if i := strings.IndexByte(trimmed, '?'); i >= 0 {
		trimmed = trimmed[:i]
	}
	trimmed = strings.TrimPrefix(trimmed, "file:")
	if strings.HasSuffix(trimmed, ".db") || strings.HasSuffix(trimmed, ".sqlite") || strings.HasSuffix(trimmed, ".sqlite3") {
		return DSNTypeSQLite
	}
	return DSNTypeFile
}
