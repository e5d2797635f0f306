package mysql

import (
	"database/sql"
	"strings"
)

// nullIfEmpty stores empty/whitespace strings as NULL
func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

// fromNull flattens a nullable column back to ""
func fromNull(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
