// Package migrations embeds the database schema scripts
package migrations

import (
	"embed"
	"fmt"
)

//go:embed *.sql
var files embed.FS

// Direction selects the up or down script
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// Script returns the schema script for the direction
func Script(direction Direction) (string, error) {
	switch direction {
	case Up, Down:
	default:
		return "", fmt.Errorf("invalid migration direction %q (allowed: up, down)", direction)
	}
	content, err := files.ReadFile(fmt.Sprintf("001_create_schema.%s.sql", direction))
	if err != nil {
		return "", fmt.Errorf("failed to read migration: %w", err)
	}
	return string(content), nil
}
