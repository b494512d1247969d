package migration

import (
	"database/sql"
	"os"
	"path/filepath"

	migrate "github.com/rubenv/sql-migrate"
)

// source resolves dir against the working directory unless it is already absolute.
func source(dir string) (*migrate.FileMigrationSource, error) {
	if !filepath.IsAbs(dir) {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(wd, dir)
	}
	return &migrate.FileMigrationSource{Dir: dir}, nil
}

// Up applies every pending migration and returns how many ran.
func Up(db *sql.DB, dir string) (int, error) {
	migrations, err := source(dir)
	if err != nil {
		return 0, err
	}
	return migrate.Exec(db, "postgres", migrations, migrate.Up)
}

// Down rolls back at most steps migrations.
func Down(db *sql.DB, dir string, steps int) (int, error) {
	migrations, err := source(dir)
	if err != nil {
		return 0, err
	}
	return migrate.ExecMax(db, "postgres", migrations, migrate.Down, steps)
}
