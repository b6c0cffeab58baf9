package layoutstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/1broseidon/canvaslist/internal/window"

	_ "modernc.org/sqlite"
)

// SQLiteStore keeps layouts in a single SQLite database.
type SQLiteStore struct {
	path string
}

// NewSQLiteStore creates a store backed by the database at path.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func (s *SQLiteStore) open(ctx context.Context) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create layout directory: %w", err)
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := migrateSQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func migrateSQLite(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS layouts (
			name TEXT PRIMARY KEY,
			version INTEGER NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS layout_windows (
			layout TEXT NOT NULL REFERENCES layouts(name) ON DELETE CASCADE,
			id INTEGER NOT NULL,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			x INTEGER,
			y INTEGER,
			width INTEGER,
			height INTEGER,
			z_index INTEGER,
			minimized INTEGER NOT NULL,
			PRIMARY KEY (layout, id)
		);`,
	}
	for _, st := range stmts {
		if _, err := db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("failed to migrate layout database: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, l *Layout) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if l == nil {
		return errors.New("layout is nil")
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	// Replace-all per layout.
	if _, err := tx.ExecContext(ctx, `DELETE FROM layout_windows WHERE layout = ?`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM layouts WHERE name = ?`, name); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO layouts(name, version, updated_at_unixms) VALUES(?, ?, ?)`,
		name, CurrentVersion, time.Now().UTC().UnixMilli()); err != nil {
		return err
	}
	for _, w := range l.Windows {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO layout_windows(layout, id, kind, title, x, y, width, height, z_index, minimized) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			name, w.ID, w.Kind.String(), w.Title,
			nullInt(w.X), nullInt(w.Y), nullInt(w.Width), nullInt(w.Height), nullInt(w.ZIndex),
			boolToInt(w.Minimized)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) Load(ctx context.Context, name string) (*Layout, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	l := &Layout{}
	err = db.QueryRowContext(ctx, `SELECT version FROM layouts WHERE name = ?`, name).Scan(&l.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("layout %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		`SELECT id, kind, title, x, y, width, height, z_index, minimized FROM layout_windows WHERE layout = ? ORDER BY id`, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			w                         WindowLayout
			kind                      string
			x, y, width, height, zIdx sql.NullInt64
			minimized                 int
		)
		if err := rows.Scan(&w.ID, &kind, &w.Title, &x, &y, &width, &height, &zIdx, &minimized); err != nil {
			return nil, err
		}
		k, ok := window.ParseKind(kind)
		if !ok {
			return nil, fmt.Errorf("layout %q: window %d has unknown kind %q", name, w.ID, kind)
		}
		w.Kind = k
		w.X, w.Y = intPtr(x), intPtr(y)
		w.Width, w.Height = intPtr(width), intPtr(height)
		w.ZIndex = intPtr(zIdx)
		w.Minimized = minimized != 0
		l.Windows = append(l.Windows, w)
	}
	return l, rows.Err()
}

func (s *SQLiteStore) List(ctx context.Context) ([]string, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, `SELECT name FROM layouts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, `DELETE FROM layout_windows WHERE layout = ?`, name); err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM layouts WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("layout %q: %w", name, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) Close() error { return nil }

// ImportFiles copies every layout from a JSON file store that is not already
// present in the database, including legacy-format files. It returns the
// imported names.
func (s *SQLiteStore) ImportFiles(ctx context.Context, files *FileStore) ([]string, error) {
	existing, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	have := make(map[string]bool, len(existing))
	for _, n := range existing {
		have[n] = true
	}

	names, err := files.List(ctx)
	if err != nil {
		return nil, err
	}
	var imported []string
	for _, name := range names {
		if have[name] {
			continue
		}
		l, err := files.Load(ctx, name)
		if err != nil {
			return imported, err
		}
		if err := s.Save(ctx, name, l); err != nil {
			return imported, err
		}
		imported = append(imported, name)
	}
	return imported, nil
}

func nullInt(p *int) sql.NullInt64 {
	if p == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*p), Valid: true}
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
