// Package assets embeds the default treasure catalog and the SQL
// migrations for the run log.
package assets

import (
	"embed"
	"io/fs"
)

//go:embed treasures.txt migrations/*.sql
var FS embed.FS

// Treasures opens the embedded default catalog.
func Treasures() (fs.File, error) {
	return FS.Open("treasures.txt")
}

// Migrations exposes the migrations directory rooted at its own level,
// so file names read as "001_runs.sql".
func Migrations() (fs.FS, error) {
	return fs.Sub(FS, "migrations")
}
