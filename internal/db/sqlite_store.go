// Package db provides the sqlite-backed store consumed by the service
// layer. Single inserts and selects are atomic per call; there are no
// cross-call transactions, so uniqueness is guaranteed by the schema's
// unique indexes and surfaced as services.ErrUniqueViolation.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"submithub/internal/services"
)

type SQLiteStore struct {
	db  *sql.DB
	log *slog.Logger
}

func NewSQLiteStore(db *sql.DB, log *slog.Logger) (*SQLiteStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	if log == nil {
		log = slog.Default()
	}
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
	}
	for _, stmt := range pragmas {
		if _, err := db.Exec(stmt); err != nil {
			return nil, fmt.Errorf("apply sqlite pragma %q: %w", stmt, err)
		}
	}
	return &SQLiteStore{db: db, log: log}, nil
}

func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	return errors.As(err, &serr) && serr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func boolToInt64(v bool) int64 {
	if v {
		return 1
	}
	return 0
}

func int64ToBool(v int64) bool { return v != 0 }

// --- Users ---

const userColumns = "id, username, email, pass_hash, role, verified, created_at"

func (s *SQLiteStore) scanUser(row *sql.Row) (*services.User, error) {
	var u services.User
	var role string
	var verified int64
	var created string
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PassHash, &role, &verified, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = services.Role(role)
	u.Verified = int64ToBool(verified)
	if t, perr := time.Parse(time.RFC3339Nano, created); perr == nil {
		u.CreatedAt = t
	}
	return &u, nil
}

func (s *SQLiteStore) InsertUser(u *services.User) error {
	if u == nil {
		return errors.New("nil user")
	}
	_, err := s.db.Exec(`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.Email, u.PassHash, string(u.Role), boolToInt64(u.Verified),
		u.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert user: %w", services.ErrUniqueViolation)
		}
		s.log.Error("insert user", "err", err)
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) FindUserByUsernameOrEmail(username, email string) (*services.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ? OR email = ?`, username, email)
	u, err := s.scanUser(row)
	if err != nil {
		s.log.Error("find user by username or email", "err", err)
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (s *SQLiteStore) FindUserByLogin(login string) (*services.User, error) {
	return s.FindUserByUsernameOrEmail(login, login)
}

func (s *SQLiteStore) FindUserByUsername(username string) (*services.User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	u, err := s.scanUser(row)
	if err != nil {
		s.log.Error("find user by username", "err", err)
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// --- Records ---

func (s *SQLiteStore) InsertRecord(r *services.Record) error {
	if r == nil {
		return errors.New("nil record")
	}
	_, err := s.db.Exec(`INSERT INTO records (id, owner_id, owner_name, title, content, status, created_at)
      VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.OwnerID, r.OwnerName, r.Title, r.Content, r.Status, r.CreatedAt.UnixNano())
	if err != nil {
		s.log.Error("insert record", "err", err)
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListRecords() ([]*services.Record, error) {
	rows, err := s.db.Query(`SELECT id, owner_id, owner_name, title, content, status, created_at
      FROM records ORDER BY created_at DESC, id DESC`)
	if err != nil {
		s.log.Error("list records", "err", err)
		return nil, fmt.Errorf("list records: %w", err)
	}
	return s.collectRecords(rows)
}

func (s *SQLiteStore) ListRecordsByOwners(ownerIDs []string) ([]*services.Record, error) {
	if len(ownerIDs) == 0 {
		return []*services.Record{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ownerIDs)), ",")
	args := make([]any, 0, len(ownerIDs))
	for _, id := range ownerIDs {
		args = append(args, id)
	}
	rows, err := s.db.Query(`SELECT id, owner_id, owner_name, title, content, status, created_at
      FROM records WHERE owner_id IN (`+placeholders+`) ORDER BY created_at DESC, id DESC`, args...)
	if err != nil {
		s.log.Error("list records by owners", "err", err)
		return nil, fmt.Errorf("list records: %w", err)
	}
	return s.collectRecords(rows)
}

func (s *SQLiteStore) collectRecords(rows *sql.Rows) ([]*services.Record, error) {
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.log.Error("close record rows", "err", cerr)
		}
	}()
	out := []*services.Record{}
	for rows.Next() {
		var r services.Record
		var created int64
		if err := rows.Scan(&r.ID, &r.OwnerID, &r.OwnerName, &r.Title, &r.Content, &r.Status, &created); err != nil {
			s.log.Error("scan record", "err", err)
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, &r)
	}
	if err := rows.Err(); err != nil {
		s.log.Error("iterate record rows", "err", err)
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

// --- Relationships ---

func (s *SQLiteStore) InsertRelationship(rel *services.Relationship) error {
	if rel == nil {
		return errors.New("nil relationship")
	}
	_, err := s.db.Exec(`INSERT INTO relationships (guardian_id, submitter_id, granted_at) VALUES (?, ?, ?)`,
		rel.GuardianID, rel.SubmitterID, rel.GrantedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert relationship: %w", services.ErrUniqueViolation)
		}
		s.log.Error("insert relationship", "err", err)
		return fmt.Errorf("insert relationship: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListSubmitterIDs(guardianID string) ([]string, error) {
	rows, err := s.db.Query(`SELECT submitter_id FROM relationships WHERE guardian_id = ?`, guardianID)
	if err != nil {
		s.log.Error("list submitter ids", "err", err)
		return nil, fmt.Errorf("list submitter ids: %w", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			s.log.Error("close relationship rows", "err", cerr)
		}
	}()
	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			s.log.Error("scan relationship", "err", err)
			return nil, fmt.Errorf("scan relationship: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		s.log.Error("iterate relationship rows", "err", err)
		return nil, fmt.Errorf("list submitter ids: %w", err)
	}
	return out, nil
}

var (
	_ services.AuthStore            = (*SQLiteStore)(nil)
	_ services.RecordStore          = (*SQLiteStore)(nil)
	_ services.BindingStore         = (*SQLiteStore)(nil)
	_ services.RelationshipResolver = (*SQLiteStore)(nil)
)
