// apps/go-server/internal/rows/sqlite.go
//
// SQLite-backed row source.
// Responsibilities:
//   - Opening SQLite database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded migrations from sql/*.sql (idempotent, recorded in _migrations).
//   - Importing a Source into corpus_rows and loading it back in row order.

package rows

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed sql/*.sql
var migrations embed.FS

// OpenDB opens (and creates if missing) a SQLite database file and applies migrations.
func OpenDB(dsn string) (*sql.DB, error) {
	// Ensure directory exists for ./data/corpus.db, etc.
	dir := filepath.Dir(dsn)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	if err := Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate applies embedded migrations in lexical order.
// Each file runs in its own transaction and is recorded in _migrations.
func Migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	files, err := fs.Glob(migrations, "sql/*.sql")
	if err != nil {
		return fmt.Errorf("list migrations: %w", err)
	}
	sort.Strings(files)

	for _, f := range files {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, f).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", f).Msg("already applied")
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlBytes, err := migrations.ReadFile(f)
		if err != nil {
			return fmt.Errorf("read %s: %w", f, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlBytes)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", f, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, f); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", f, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", f, err)
		}
		log.Info().Str("migration", f).Msg("applied")
	}
	return nil
}

// SQLiteLoader loads rows from the corpus_rows table.
type SQLiteLoader struct {
	DB   *sql.DB
	Name string // used in errors; typically the DSN
}

// Load reads every imported row, ordered by source, sheet and row index.
func (l SQLiteLoader) Load(ctx context.Context) (Source, error) {
	q, err := l.DB.QueryContext(ctx,
		`SELECT source, sheet, data FROM corpus_rows ORDER BY source, sheet, row_index`)
	if err != nil {
		return nil, &LoadError{Path: l.Name, Err: err}
	}
	defer q.Close()

	src := Source{}
	for q.Next() {
		var source, sheet, data string
		if err := q.Scan(&source, &sheet, &data); err != nil {
			return nil, &LoadError{Path: l.Name, Err: err}
		}
		var row Row
		if err := json.Unmarshal([]byte(data), &row); err != nil {
			return nil, &LoadError{Path: l.Name, Err: fmt.Errorf("decode %s/%s: %w", source, sheet, err)}
		}
		if src[source] == nil {
			src[source] = Sheets{}
		}
		src[source][sheet] = append(src[source][sheet], row)
	}
	if err := q.Err(); err != nil {
		return nil, &LoadError{Path: l.Name, Err: err}
	}
	return src, nil
}

// Import writes src into corpus_rows in a single transaction.
// Existing rows with the same (source, sheet, row_index) are replaced.
// It returns the number of rows written.
func Import(ctx context.Context, db *sql.DB, src Source) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO corpus_rows (source, sheet, row_index, data, imported_at) VALUES (?,?,?,?,?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare import: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	n := 0
	for _, source := range sortedKeys(src) {
		for sheet, rs := range src[source] {
			// Rows past the new end of the sheet must not survive a re-import.
			if _, err := tx.ExecContext(ctx,
				`DELETE FROM corpus_rows WHERE source=? AND sheet=?`, source, sheet); err != nil {
				return n, fmt.Errorf("clear %s/%s: %w", source, sheet, err)
			}
			for i, row := range rs {
				data, err := json.Marshal(row)
				if err != nil {
					return n, err
				}
				if _, err := stmt.ExecContext(ctx, source, sheet, i, string(data), now); err != nil {
					return n, fmt.Errorf("insert %s/%s row %d: %w", source, sheet, i, err)
				}
				n++
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return n, fmt.Errorf("commit import: %w", err)
	}
	log.Info().Int("rows", n).Int("sources", len(src)).Msg("imported corpus")
	return n, nil
}
