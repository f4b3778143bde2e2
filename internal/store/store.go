// Package store persists module graphs in SQLite. Each module is stored as
// its JSON document next to a few columns used for listing.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/MrLongNight/MapFlow-sub000/flow/graph"
)

const schemaVersion = "1"

// ErrNotFound is returned when a module id is not stored.
var ErrNotFound = errors.New("store: module not found")

// ErrSchemaVersion is returned when the database was written by an
// incompatible version.
var ErrSchemaVersion = errors.New("store: unsupported schema version")

// Summary is one row of ListModules.
type Summary struct {
	ID        graph.ModuleID
	Name      string
	Parts     int
	UpdatedAt time.Time
}

// Store is a SQLite-backed module repository. It is safe for concurrent
// use as far as database/sql is.
type Store struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens or creates the database at path and applies the schema.
func Open(path string, opts ...Option) (*Store, error) {
	s := &Store{
		path:   path,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}

	err := os.MkdirAll(filepath.Dir(path), 0o755)
	if err != nil {
		return nil, fmt.Errorf("store: create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}

	s.db = db

	err = s.migrate()
	if err != nil {
		db.Close()

		return nil, err
	}

	s.logger.Debug("store opened", "path", path)

	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		PRAGMA synchronous = NORMAL;
		PRAGMA temp_store = MEMORY;

		CREATE TABLE IF NOT EXISTS modules (
			id INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			parts INTEGER NOT NULL DEFAULT 0,
			doc TEXT NOT NULL,
			updated_at INTEGER NOT NULL
		);
		CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("store: schema: %w", err)
	}

	version, ok, err := s.meta(context.Background(), s.db, "schema_version")
	if err != nil {
		return err
	}

	if ok && version != schemaVersion {
		return fmt.Errorf("%w: %s", ErrSchemaVersion, version)
	}

	return s.setMeta(context.Background(), s.db, "schema_version", schemaVersion)
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}

	return s.db.Close()
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) meta(ctx context.Context, q execer, key string) (string, bool, error) {
	var value string

	err := q.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}

	if err != nil {
		return "", false, fmt.Errorf("store: read meta %s: %w", key, err)
	}

	return value, true, nil
}

func (s *Store) setMeta(ctx context.Context, q execer, key, value string) error {
	_, err := q.ExecContext(ctx, `INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	if err != nil {
		return fmt.Errorf("store: write meta %s: %w", key, err)
	}

	return nil
}

// SaveModule inserts or replaces a module.
func (s *Store) SaveModule(ctx context.Context, m *graph.Module) error {
	return s.saveModule(ctx, s.db, m)
}

func (s *Store) saveModule(ctx context.Context, q execer, m *graph.Module) error {
	doc, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("store: encode module %d: %w", m.ID, err)
	}

	_, err = q.ExecContext(ctx, `
		INSERT OR REPLACE INTO modules (id, name, parts, doc, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, int64(m.ID), m.Name, len(m.Parts()), string(doc), s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("store: save module %d: %w", m.ID, err)
	}

	s.logger.Debug("module saved", "id", m.ID, "name", m.Name, "parts", len(m.Parts()))

	return nil
}

// LoadModule reads one module.
func (s *Store) LoadModule(ctx context.Context, id graph.ModuleID) (*graph.Module, error) {
	var doc string

	err := s.db.QueryRowContext(ctx, `SELECT doc FROM modules WHERE id = ?`, int64(id)).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	if err != nil {
		return nil, fmt.Errorf("store: load module %d: %w", id, err)
	}

	return decodeModule(id, doc)
}

func decodeModule(id graph.ModuleID, doc string) (*graph.Module, error) {
	var m graph.Module

	err := json.Unmarshal([]byte(doc), &m)
	if err != nil {
		return nil, fmt.Errorf("store: decode module %d: %w", id, err)
	}

	return &m, nil
}

// ListModules returns a summary of every stored module ordered by id.
func (s *Store) ListModules(ctx context.Context) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, parts, updated_at FROM modules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: list modules: %w", err)
	}
	defer rows.Close()

	var out []Summary

	for rows.Next() {
		var (
			id      int64
			sum     Summary
			updated int64
		)

		err = rows.Scan(&id, &sum.Name, &sum.Parts, &updated)
		if err != nil {
			return nil, fmt.Errorf("store: list modules: %w", err)
		}

		sum.ID = graph.ModuleID(id)
		sum.UpdatedAt = time.UnixMilli(updated)
		out = append(out, sum)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("store: list modules: %w", err)
	}

	return out, nil
}

// DeleteModule removes a module. Unknown ids return ErrNotFound.
func (s *Store) DeleteModule(ctx context.Context, id graph.ModuleID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM modules WHERE id = ?`, int64(id))
	if err != nil {
		return fmt.Errorf("store: delete module %d: %w", id, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: delete module %d: %w", id, err)
	}

	if n == 0 {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	return nil
}

// SaveAll replaces the stored modules with those of mg, together with its
// id and color counters, in one transaction.
func (s *Store) SaveAll(ctx context.Context, mg *graph.Manager) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}

	err = s.saveAll(ctx, tx, mg)
	if err != nil {
		_ = tx.Rollback()

		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}

	return nil
}

func (s *Store) saveAll(ctx context.Context, tx *sql.Tx, mg *graph.Manager) error {
	_, err := tx.ExecContext(ctx, `DELETE FROM modules`)
	if err != nil {
		return fmt.Errorf("store: clear modules: %w", err)
	}

	for _, m := range mg.Modules() {
		err = s.saveModule(ctx, tx, m)
		if err != nil {
			return err
		}
	}

	err = s.setMeta(ctx, tx, "next_module_id", strconv.FormatUint(uint64(mg.NextModuleID()), 10))
	if err != nil {
		return err
	}

	return s.setMeta(ctx, tx, "next_color_index", strconv.Itoa(mg.NextColorIndex()))
}

// LoadAll reads every module into a new Manager.
func (s *Store) LoadAll(ctx context.Context) (*graph.Manager, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, doc FROM modules ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("store: load modules: %w", err)
	}
	defer rows.Close()

	mg := graph.NewManager()

	for rows.Next() {
		var (
			id  int64
			doc string
		)

		err = rows.Scan(&id, &doc)
		if err != nil {
			return nil, fmt.Errorf("store: load modules: %w", err)
		}

		m, err := decodeModule(graph.ModuleID(id), doc)
		if err != nil {
			return nil, err
		}

		mg.Adopt(m)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("store: load modules: %w", err)
	}

	nextID, err := s.metaInt(ctx, "next_module_id")
	if err != nil {
		return nil, err
	}

	nextColor, err := s.metaInt(ctx, "next_color_index")
	if err != nil {
		return nil, err
	}

	mg.RestoreCounters(graph.ModuleID(nextID), int(nextColor))

	return mg, nil
}

// metaInt reads an integer meta value; a missing key reads as 0.
func (s *Store) metaInt(ctx context.Context, key string) (int64, error) {
	value, ok, err := s.meta(ctx, s.db, key)
	if err != nil || !ok {
		return 0, err
	}

	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("store: meta %s: %w", key, err)
	}

	return n, nil
}
