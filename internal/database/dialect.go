package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// UpsertQuery builds an insert-or-update statement for a table with a
	// single-column primary key. columns must include keyColumn.
	UpsertQuery(table, keyColumn string, columns []string) string

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

// Placeholders returns a comma-separated list of n ? markers for IN clauses.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	marks := make([]string, n)
	for i := range marks {
		marks[i] = "?"
	}
	return strings.Join(marks, ", ")
}

// onConflictUpsert builds the SQLite/PostgreSQL upsert form shared by both
// dialects: INSERT ... ON CONFLICT (key) DO UPDATE SET col = excluded.col.
func onConflictUpsert(table, keyColumn string, columns []string) string {
	var sets []string
	for _, col := range columns {
		if col == keyColumn {
			continue
		}
		sets = append(sets, col+" = excluded."+col)
	}

	return "INSERT INTO " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" +
		Placeholders(len(columns)) + ") ON CONFLICT (" + keyColumn + ") DO UPDATE SET " +
		strings.Join(sets, ", ")
}
