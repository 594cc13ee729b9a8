/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists named crop presets in an embedded SQLite database.
// A preset is a reusable crop configuration, not interaction history; the
// undo/redo timeline is deliberately never written to disk.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gocrop/internal/cropper"
	applog "gocrop/internal/log"
	"gocrop/internal/version"
	"log/slog"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// StoreDirName holds all gocrop data under the chosen root directory.
	StoreDirName  = ".gocrop"
	StoreFileName = "presets.sqlite"

	// schemaVersion tracks the local SQLite schema. Bump on breaking changes
	// and add a migration step.
	schemaVersion = 1
)

// Preset is a named, reusable crop configuration.
type Preset struct {
	Name      string
	State     cropper.State
	UpdatedAt time.Time
}

// Store wraps the preset database.
type Store struct {
	db   *sql.DB
	path string
}

// StorePath returns the full path of the preset database under root.
func StorePath(root string) string {
	return filepath.Join(root, StoreDirName, StoreFileName)
}

// Open ensures the preset database exists under root/.gocrop, enables WAL
// mode and brings the schema up to date.
func Open(root string) (*Store, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(
		slog.String("root", root),
	)
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("store root is required")
	}
	if err := os.MkdirAll(filepath.Join(root, StoreDirName), 0o755); err != nil {
		l.Error("create store dir failed", slog.Any("err", err))
		return nil, fmt.Errorf("create %s dir: %w", StoreDirName, err)
	}

	path := StorePath(root)
	// Forward slashes for the SQLite URI on every platform.
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		l.Error("sqlite open failed", slog.Any("err", err))
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// Embedded usage: a single connection avoids writer contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		l.Error("enable WAL failed", slog.Any("err", err))
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		l.Error("ensure schema failed", slog.Any("err", err))
		return nil, err
	}
	l.Info("preset store ready", slog.String("path", path))
	return &Store{db: db, path: path}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// language=SQL
// dialect=SQLite
const upsertPresetSQL = `INSERT INTO presets(name, state_json, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(name) DO UPDATE SET state_json=excluded.state_json, updated_at=excluded.updated_at`

// language=SQL
// dialect=SQLite
const selectPresetSQL = `SELECT state_json, updated_at FROM presets WHERE name = ?`

// language=SQL
// dialect=SQLite
const listPresetsSQL = `SELECT name, state_json, updated_at FROM presets ORDER BY name`

// language=SQL
// dialect=SQLite
const deletePresetSQL = `DELETE FROM presets WHERE name = ?`

// ErrPresetNotFound is returned by Get for an unknown preset name.
var ErrPresetNotFound = errors.New("preset not found")

// Save inserts or replaces a named preset.
func (s *Store) Save(ctx context.Context, name string, st cropper.State) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("preset name is required")
	}
	blob, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal preset state: %w", err)
	}
	_, err = s.db.ExecContext(ctx, upsertPresetSQL, name, string(blob), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save preset %q: %w", name, err)
	}
	return nil
}

// Get returns a preset by name.
func (s *Store) Get(ctx context.Context, name string) (Preset, error) {
	var blob, ts string
	err := s.db.QueryRowContext(ctx, selectPresetSQL, name).Scan(&blob, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	if err != nil {
		return Preset{}, fmt.Errorf("get preset %q: %w", name, err)
	}
	return decodePreset(name, blob, ts)
}

// List returns all presets ordered by name.
func (s *Store) List(ctx context.Context) ([]Preset, error) {
	rows, err := s.db.QueryContext(ctx, listPresetsSQL)
	if err != nil {
		return nil, fmt.Errorf("list presets: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Preset
	for rows.Next() {
		var name, blob, ts string
		if err := rows.Scan(&name, &blob, &ts); err != nil {
			return nil, fmt.Errorf("scan preset row: %w", err)
		}
		p, err := decodePreset(name, blob, ts)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Delete removes a preset; deleting an unknown name is not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if _, err := s.db.ExecContext(ctx, deletePresetSQL, name); err != nil {
		return fmt.Errorf("delete preset %q: %w", name, err)
	}
	return nil
}

func decodePreset(name, blob, ts string) (Preset, error) {
	var st cropper.State
	if err := json.Unmarshal([]byte(blob), &st); err != nil {
		return Preset{}, fmt.Errorf("decode preset %q: %w", name, err)
	}
	t, _ := time.Parse(time.RFC3339Nano, ts)
	return Preset{Name: name, State: st, UpdatedAt: t}, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS presets (
			name        TEXT PRIMARY KEY,
			state_json  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var curSchema int
	err := db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&curSchema)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := db.ExecContext(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		if _, err := db.ExecContext(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}
