package migrations

import (
	"embed"
	"fmt"
	"io/fs"
)

// Files stores forward-only SQL migrations embedded into the binary, one
// directory per database driver.
//
//go:embed sqlite/*.sql postgres/*.sql
var Files embed.FS

func ForDriver(driver string) (fs.FS, error) {
	switch driver {
	case "sqlite", "postgres":
		return fs.Sub(Files, driver)
	default:
		return nil, fmt.Errorf("no embedded migrations for driver %q", driver)
	}
}
