package persistence

import "strings"

// ValidateSortOrder normalises a caller supplied direction to ASC or DESC.
// Anything else, including the empty string, falls back to DESC.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "ASC") {
		return "ASC"
	}
	return "DESC"
}

// orderBy builds an ORDER BY clause for a fixed column. The column never
// comes from input.
func orderBy(column, orderDir string) string {
	return column + " " + ValidateSortOrder(orderDir)
}
