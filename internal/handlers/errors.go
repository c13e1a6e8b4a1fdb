package handlers

import "strings"

// isUniqueViolation matches the duplicate-key error text of both supported
// drivers (sqlite "UNIQUE constraint failed", postgres "duplicate key").
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE") || strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate key")
}
