package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

const (
	upSuffix   = "_up.sql"
	downSuffix = "_down.sql"
)

// schemaStep is one versioned change to the run history schema.
//
// Files are named NNNN_<name>_up.sql and NNNN_<name>_down.sql.
type schemaStep struct {
	version int
	name    string
	up      string
	down    string
}

func loadSchemaSteps() ([]schemaStep, error) {
	ups, err := fs.Glob(migrationFiles, "sql/*"+upSuffix)
	if err != nil {
		return nil, fmt.Errorf("failed to list schema files: %w", err)
	}

	steps := make([]schemaStep, 0, len(ups))
	for _, upPath := range ups {
		stem := strings.TrimSuffix(path.Base(upPath), upSuffix)
		prefix, name, ok := strings.Cut(stem, "_")
		if !ok {
			return nil, fmt.Errorf("schema file %s has no version prefix", upPath)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil {
			return nil, fmt.Errorf("schema file %s: bad version %q", upPath, prefix)
		}

		up, err := migrationFiles.ReadFile(upPath)
		if err != nil {
			return nil, err
		}
		down, err := migrationFiles.ReadFile(path.Join("sql", stem+downSuffix))
		if err != nil {
			return nil, fmt.Errorf("schema version %d has no down script: %w", version, err)
		}

		steps = append(steps, schemaStep{version: version, name: name, up: string(up), down: string(down)})
	}

	slices.SortFunc(steps, func(a, b schemaStep) int { return a.version - b.version })
	for i := 1; i < len(steps); i++ {
		if steps[i].version == steps[i-1].version {
			return nil, fmt.Errorf("duplicate schema version %d", steps[i].version)
		}
	}
	return steps, nil
}

// RunMigrations brings the run history schema up to date. Applied versions are tracked in schema_migrations.
func RunMigrations(db *sql.DB) error {
	steps, err := loadSchemaSteps()
	if err != nil {
		return err
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	for _, step := range steps {
		if applied[step.version] {
			continue
		}
		err := inTx(db, step.up, "INSERT INTO schema_migrations (version, name) VALUES (?, ?)", step.version, step.name)
		if err != nil {
			return fmt.Errorf("schema %04d_%s: %w", step.version, step.name, err)
		}
	}
	return nil
}

// ResetSchema drops every applied schema version, newest first, and applies them again.
// All recorded runs are lost.
func ResetSchema(db *sql.DB) error {
	steps, err := loadSchemaSteps()
	if err != nil {
		return err
	}

	applied, err := appliedVersions(db)
	if err != nil {
		return err
	}

	for _, step := range slices.Backward(steps) {
		if !applied[step.version] {
			continue
		}
		if err := inTx(db, step.down, "DELETE FROM schema_migrations WHERE version = ?", step.version); err != nil {
			return fmt.Errorf("revert %04d_%s: %w", step.version, step.name, err)
		}
	}

	return RunMigrations(db)
}

func appliedVersions(db *sql.DB) (map[int]bool, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL DEFAULT '',
		applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		return nil, fmt.Errorf("failed to create schema_migrations: %w", err)
	}

	rows, err := db.Query("SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := map[int]bool{}
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// inTx runs script and the bookkeeping statement atomically.
func inTx(db *sql.DB, script, bookkeeping string, args ...any) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range statements(script) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("%w\n%s", err, stmt)
		}
	}
	if _, err := tx.Exec(bookkeeping, args...); err != nil {
		return err
	}
	return tx.Commit()
}

// statements splits a script on semicolons after dropping "--" line comments.
func statements(script string) []string {
	var b strings.Builder
	for line := range strings.Lines(script) {
		if before, _, found := strings.Cut(line, "--"); found {
			line = before + "\n"
		}
		b.WriteString(line)
	}

	var out []string
	for stmt := range strings.SplitSeq(b.String(), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
