package repos

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

// SetGooseUp replaces the migration runner and returns a restore func.
func SetGooseUp(f func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error) func() {
	old := gooseUpContext
	gooseUpContext = f
	return func() { gooseUpContext = old }
}
