// Package repository holds the gorm-backed implementations of the domain
// repository interfaces.
package repository

import "fmt"

// orderClause builds a safe ORDER BY from caller-supplied sorting, falling
// back to newest-first. Column names come from a per-entity whitelist, never
// from the request.
func orderClause(sortBy, sortOrder string, columns map[string]string) string {
	col, ok := columns[sortBy]
	if !ok {
		return "created_at DESC"
	}
	dir := "DESC"
	if sortOrder == "asc" {
		dir = "ASC"
	}
	return fmt.Sprintf("%s %s", col, dir)
}

func totalPages(total int64, pageSize int) int {
	if pageSize <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
