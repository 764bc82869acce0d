package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/jobbind/pkg/model"

	_ "modernc.org/sqlite"
)

// timeLayout is a fixed-width UTC timestamp, so created_at sorts
// chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns a Store.
// Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// Every connection to ":memory:" is a separate database.
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable WAL mode for better concurrent read performance.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma busy_timeout: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

const passColumns = `id, job_id, workdir, argv, digest, input_types, files, staged, skipped, short_circuit, inputs, created_at`

// CreatePass inserts a pass. Passes are immutable once written.
func (s *SQLiteStore) CreatePass(ctx context.Context, p *model.Pass) error {
	s.logger.Debug("sql", "op", "insert", "table", "passes", "id", p.ID)

	argvJSON, err := json.Marshal(nonNilStrings(p.Argv))
	if err != nil {
		return fmt.Errorf("marshal argv: %w", err)
	}
	typesJSON, err := json.Marshal(nonNilMap(p.InputTypes))
	if err != nil {
		return fmt.Errorf("marshal input types: %w", err)
	}
	filesJSON, err := json.Marshal(nonNilStrings(p.Files))
	if err != nil {
		return fmt.Errorf("marshal files: %w", err)
	}
	stagedJSON, err := json.Marshal(nonNilMap(p.Staged))
	if err != nil {
		return fmt.Errorf("marshal staged: %w", err)
	}
	skippedJSON, err := json.Marshal(nonNilStrings(p.Skipped))
	if err != nil {
		return fmt.Errorf("marshal skipped: %w", err)
	}
	inputsJSON, err := json.Marshal(p.Inputs)
	if err != nil {
		return fmt.Errorf("marshal inputs: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO passes (`+passColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.JobID, p.WorkDir, string(argvJSON), p.Digest, string(typesJSON),
		string(filesJSON), string(stagedJSON), string(skippedJSON), p.ShortCircuit,
		string(inputsJSON), p.CreatedAt.UTC().Format(timeLayout),
	)
	return err
}

// GetPass retrieves a pass by ID. Returns nil, nil if not found.
func (s *SQLiteStore) GetPass(ctx context.Context, id string) (*model.Pass, error) {
	s.logger.Debug("sql", "op", "select", "table", "passes", "id", id)

	row := s.db.QueryRowContext(ctx, `SELECT `+passColumns+` FROM passes WHERE id = ?`, id)
	p, err := scanPass(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// FindPassByDigest returns the most recent pass with digest. Returns nil, nil
// if there is none.
func (s *SQLiteStore) FindPassByDigest(ctx context.Context, digest string) (*model.Pass, error) {
	s.logger.Debug("sql", "op", "select", "table", "passes", "digest", digest)

	row := s.db.QueryRowContext(ctx,
		`SELECT `+passColumns+` FROM passes WHERE digest = ? ORDER BY created_at DESC LIMIT 1`, digest)
	p, err := scanPass(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// ListPasses returns a page of passes, newest first, and the total count.
func (s *SQLiteStore) ListPasses(ctx context.Context, opts model.ListOptions) ([]*model.Pass, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "passes", "limit", opts.Limit, "offset", opts.Offset)
	opts.Clamp()

	whereSQL := ""
	var args []any
	if opts.JobID != "" {
		whereSQL = " WHERE job_id = ?"
		args = append(args, opts.JobID)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM passes`+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+passColumns+` FROM passes`+whereSQL+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var passes []*model.Pass
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, 0, err
		}
		passes = append(passes, p)
	}
	return passes, total, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPass(row scanner) (*model.Pass, error) {
	var p model.Pass
	var argvJSON, typesJSON, filesJSON, stagedJSON, skippedJSON, inputsJSON, createdAt string

	if err := row.Scan(&p.ID, &p.JobID, &p.WorkDir, &argvJSON, &p.Digest, &typesJSON,
		&filesJSON, &stagedJSON, &skippedJSON, &p.ShortCircuit, &inputsJSON, &createdAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(argvJSON), &p.Argv); err != nil {
		return nil, fmt.Errorf("unmarshal argv: %w", err)
	}
	if err := json.Unmarshal([]byte(typesJSON), &p.InputTypes); err != nil {
		return nil, fmt.Errorf("unmarshal input types: %w", err)
	}
	if err := json.Unmarshal([]byte(filesJSON), &p.Files); err != nil {
		return nil, fmt.Errorf("unmarshal files: %w", err)
	}
	if err := json.Unmarshal([]byte(stagedJSON), &p.Staged); err != nil {
		return nil, fmt.Errorf("unmarshal staged: %w", err)
	}
	if err := json.Unmarshal([]byte(skippedJSON), &p.Skipped); err != nil {
		return nil, fmt.Errorf("unmarshal skipped: %w", err)
	}
	if err := json.Unmarshal([]byte(inputsJSON), &p.Inputs); err != nil {
		return nil, fmt.Errorf("unmarshal inputs: %w", err)
	}
	if len(p.Skipped) == 0 {
		p.Skipped = nil
	}
	p.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
	return &p, nil
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nonNilMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
