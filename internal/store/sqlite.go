package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteConfig holds configuration for the SQLite document store.
type SQLiteConfig struct {
	// Path is the filesystem path to the database file
	Path string
}

// SQLiteDatabase stores each collection as a table of JSON documents.
type SQLiteDatabase struct {
	db        *sql.DB
	writeLock *sync.Mutex // go-sqlite does not support concurrent writes

	mu     sync.Mutex
	tables map[string]*SQLiteCollection
}

var _ Database = (*SQLiteDatabase)(nil)

// NewSQLiteDatabase opens (creating if needed) the database file at cfg.Path.
func NewSQLiteDatabase(cfg SQLiteConfig) (*SQLiteDatabase, error) {
	if cfg.Path == "" {
		return nil, errors.New("store: sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	db.SetConnMaxLifetime(5 * time.Minute)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	return &SQLiteDatabase{
		db:        db,
		writeLock: new(sync.Mutex),
		tables:    make(map[string]*SQLiteCollection),
	}, nil
}

// Collection returns the named collection, creating its table on first use.
func (d *SQLiteDatabase) Collection(name string) (Collection, error) {
	if !validName(name) {
		return nil, fmt.Errorf("store: invalid collection name %q", name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if c, ok := d.tables[name]; ok {
		return c, nil
	}

	d.writeLock.Lock()
	_, err := d.db.Exec(fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %q (
			id  TEXT PRIMARY KEY,
			doc TEXT NOT NULL CHECK (json_valid(doc))
		)`, name))
	d.writeLock.Unlock()
	if err != nil {
		return nil, fmt.Errorf("create collection %s: %w", name, err)
	}

	c := &SQLiteCollection{db: d.db, table: name, writeLock: d.writeLock}
	d.tables[name] = c
	return c, nil
}

func (d *SQLiteDatabase) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *SQLiteDatabase) Close(context.Context) error {
	return d.db.Close()
}

// SQLiteCollection is one table of the SQLite document store.
type SQLiteCollection struct {
	db        *sql.DB
	table     string
	writeLock *sync.Mutex
}

var _ Collection = (*SQLiteCollection)(nil)

func (c *SQLiteCollection) Find(ctx context.Context, filter Filter) ([]Document, error) {
	query := fmt.Sprintf("SELECT id, doc FROM %q", c.table)

	fields := make([]string, 0, len(filter))
	for field := range filter {
		if !validName(field) {
			return nil, fmt.Errorf("store: invalid field name %q", field)
		}
		fields = append(fields, field)
	}
	sort.Strings(fields)

	var (
		where []string
		args  []any
	)
	for _, field := range fields {
		if field == IDField {
			id, err := filterID(filter[field])
			if err != nil {
				return nil, err
			}
			where = append(where, "id = ?")
			args = append(args, id)
			continue
		}
		clause, arg, err := equalityClause(filter[field])
		if err != nil {
			return nil, err
		}
		where = append(where, clause)
		args = append(args, "$."+field, arg)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rowid"

	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.table, err)
	}
	defer rows.Close()

	out := make([]Document, 0)
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", c.table, err)
		}
		doc, err := decodeRow(id, raw)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find in %s: %w", c.table, err)
	}
	return out, nil
}

// equalityClause compares a JSON path against value. Objects and arrays are
// compared by their canonical JSON text.
func equalityClause(value any) (string, any, error) {
	switch value.(type) {
	case nil, string, bool, float64, float32, int, int32, int64, uint, uint32, uint64:
		return "json_extract(doc, ?) IS ?", value, nil
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return "", nil, fmt.Errorf("store: encode filter value: %w", err)
		}
		return "json_extract(doc, ?) IS json(?)", string(raw), nil
	}
}

func (c *SQLiteCollection) FindByID(ctx context.Context, id string) (Document, error) {
	if !ValidID(id) {
		return nil, ErrInvalidID
	}

	var raw string
	err := c.db.QueryRowContext(ctx, fmt.Sprintf("SELECT doc FROM %q WHERE id = ?", c.table), id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find %s in %s: %w", id, c.table, err)
	}
	return decodeRow(id, raw)
}

func (c *SQLiteCollection) Insert(ctx context.Context, doc Document) (InsertResult, error) {
	raw, err := json.Marshal(withoutID(doc))
	if err != nil {
		return InsertResult{}, fmt.Errorf("store: encode document: %w", err)
	}
	id := NewID()

	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	if _, err := c.db.ExecContext(ctx, fmt.Sprintf("INSERT INTO %q (id, doc) VALUES (?, ?)", c.table), id, string(raw)); err != nil {
		return InsertResult{}, fmt.Errorf("insert into %s: %w", c.table, err)
	}
	return InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (c *SQLiteCollection) UpdateByID(ctx context.Context, id string, set Document, upsert bool) (res UpdateResult, err error) {
	if !ValidID(id) {
		return UpdateResult{}, ErrInvalidID
	}
	fields, err := normalize(withoutID(set))
	if err != nil {
		return UpdateResult{}, err
	}

	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("begin update: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	var raw string
	err = tx.QueryRowContext(ctx, fmt.Sprintf("SELECT doc FROM %q WHERE id = ?", c.table), id).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if !upsert {
			err = tx.Commit()
			return UpdateResult{Acknowledged: true}, err
		}
		encoded, encErr := json.Marshal(fields)
		if encErr != nil {
			err = fmt.Errorf("store: encode document: %w", encErr)
			return UpdateResult{}, err
		}
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("INSERT INTO %q (id, doc) VALUES (?, ?)", c.table), id, string(encoded)); err != nil {
			return UpdateResult{}, fmt.Errorf("upsert into %s: %w", c.table, err)
		}
		if err = tx.Commit(); err != nil {
			return UpdateResult{}, fmt.Errorf("commit upsert: %w", err)
		}
		return UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: &id}, nil
	case err != nil:
		return UpdateResult{}, fmt.Errorf("load %s from %s: %w", id, c.table, err)
	}

	doc := Document{}
	if err = json.Unmarshal([]byte(raw), &doc); err != nil {
		return UpdateResult{}, fmt.Errorf("store: decode document: %w", err)
	}

	changed := false
	for k, v := range fields {
		if old, ok := doc[k]; !ok || !reflect.DeepEqual(old, v) {
			doc[k] = v
			changed = true
		}
	}

	res = UpdateResult{Acknowledged: true, MatchedCount: 1}
	if changed {
		encoded, encErr := json.Marshal(doc)
		if encErr != nil {
			err = fmt.Errorf("store: encode document: %w", encErr)
			return UpdateResult{}, err
		}
		if _, err = tx.ExecContext(ctx, fmt.Sprintf("UPDATE %q SET doc = ? WHERE id = ?", c.table), string(encoded), id); err != nil {
			return UpdateResult{}, fmt.Errorf("update %s in %s: %w", id, c.table, err)
		}
		res.ModifiedCount = 1
	}

	if err = tx.Commit(); err != nil {
		return UpdateResult{}, fmt.Errorf("commit update: %w", err)
	}
	return res, nil
}

func (c *SQLiteCollection) DeleteByID(ctx context.Context, id string) (DeleteResult, error) {
	if !ValidID(id) {
		return DeleteResult{}, ErrInvalidID
	}

	c.writeLock.Lock()
	defer c.writeLock.Unlock()

	result, err := c.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %q WHERE id = ?", c.table), id)
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete %s from %s: %w", id, c.table, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return DeleteResult{}, fmt.Errorf("delete %s from %s: %w", id, c.table, err)
	}
	return DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func decodeRow(id, raw string) (Document, error) {
	doc := Document{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("store: decode document %s: %w", id, err)
	}
	doc[IDField] = id
	return doc, nil
}
