/*
Package sqlite provides a SQLite-backed implementation of tracker.Store.

PURPOSE:
  Persists users and their attendance/leave/note entries. In production,
  the same patterns apply to PostgreSQL - only minor SQL dialect
  differences.

KEY TABLES:
  users:       Employee records with balances and biometric credential
  attendance:  Clock-in entries with frozen late minutes
  leaves:      Leave days and hourly permissions
  notes:       Free-form dated notes

INDEXES:
  Per-user listing is the hot path, so each entry table indexes user_id.
  attendance additionally indexes (user_id, date) for the duplicate-date
  lookup the API layer performs before insert. There is deliberately NO
  unique constraint there: imported history may carry duplicates, and
  the check is a validation, not an invariant.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency:
  - Multiple readers don't block
  - Single writer at a time
  - Better crash recovery

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - tracker/store.go: Interface definition and contract notes
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/attendance-engine/policy"
	"github.com/warp/attendance-engine/tracker"
)

// Store implements tracker.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		password TEXT NOT NULL DEFAULT '',
		biometric_cred_id TEXT NOT NULL DEFAULT '',
		annual_balance INTEGER NOT NULL,
		casual_balance INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS attendance (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		time TEXT NOT NULL DEFAULT '',
		late_minutes INTEGER NOT NULL DEFAULT 0,
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attendance_user
		ON attendance(user_id);
	-- Hot path for the duplicate-date validation. NOT unique: the check
	-- belongs to the API layer, imported history may carry duplicates.
	CREATE INDEX IF NOT EXISTS idx_attendance_user_date
		ON attendance(user_id, date);

	CREATE TABLE IF NOT EXISTS leaves (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		type TEXT NOT NULL,
		hours INTEGER NOT NULL DEFAULT 0,
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leaves_user
		ON leaves(user_id);

	CREATE TABLE IF NOT EXISTS notes (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_notes_user
		ON notes(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// idCounter disambiguates IDs generated within the same nanosecond tick.
var idCounter atomic.Uint64

func newID(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), idCounter.Add(1))
}

// =============================================================================
// USERS
// =============================================================================

// CreateUser inserts a user, assigning an ID and creation time.
func (s *Store) CreateUser(ctx context.Context, u tracker.User) (tracker.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = newID("usr")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, password, biometric_cred_id, annual_balance, casual_balance, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Password, u.BiometricCredID,
		u.AnnualBalance, u.CasualBalance,
		u.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return tracker.User{}, fmt.Errorf("failed to insert user: %w", err)
	}
	return u, nil
}

// GetUser returns a user, or (nil, nil) when absent.
func (s *Store) GetUser(ctx context.Context, id string) (*tracker.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, password, biometric_cred_id, annual_balance, casual_balance, created_at
		FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListUsers returns all users ordered by creation time.
func (s *Store) ListUsers(ctx context.Context) ([]tracker.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, password, biometric_cred_id, annual_balance, casual_balance, created_at
		FROM users ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	var users []tracker.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// UpdateUserBalances sets both leave entitlements.
func (s *Store) UpdateUserBalances(ctx context.Context, id string, annual, casual int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET annual_balance = ?, casual_balance = ? WHERE id = ?`,
		annual, casual, id)
	if err != nil {
		return fmt.Errorf("failed to update balances: %w", err)
	}
	return requireAffected(res, tracker.ErrUserNotFound)
}

// UpdateUserBiometric stores or clears the WebAuthn credential ID.
func (s *Store) UpdateUserBiometric(ctx context.Context, id string, credID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET biometric_cred_id = ? WHERE id = ?`, credID, id)
	if err != nil {
		return fmt.Errorf("failed to update biometric credential: %w", err)
	}
	return requireAffected(res, tracker.ErrUserNotFound)
}

// DeleteUser removes a user and all their entries. Sequential deletes,
// no cross-table transaction; see tracker.Store contract notes.
func (s *Store) DeleteUser(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check user: %w", err)
	}
	if exists == 0 {
		return tracker.ErrUserNotFound
	}

	if err := s.clearRecordsLocked(ctx, id); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// =============================================================================
// ATTENDANCE
// =============================================================================

// CreateAttendance inserts an attendance entry, assigning an ID.
func (s *Store) CreateAttendance(ctx context.Context, e tracker.AttendanceEntry) (tracker.AttendanceEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = newID("att")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO attendance (id, user_id, date, time, late_minutes, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Date, e.Time, e.LateMinutes, e.Note,
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return tracker.AttendanceEntry{}, fmt.Errorf("failed to insert attendance: %w", err)
	}
	return e, nil
}

// ListAttendanceByUser returns a user's attendance ordered by date.
func (s *Store) ListAttendanceByUser(ctx context.Context, userID string) ([]tracker.AttendanceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, time, late_minutes, note, created_at
		FROM attendance WHERE user_id = ?
		ORDER BY date ASC, created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	defer rows.Close()

	var entries []tracker.AttendanceEntry
	for rows.Next() {
		var (
			e         tracker.AttendanceEntry
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Time, &e.LateMinutes, &e.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteAttendance removes one attendance entry.
func (s *Store) DeleteAttendance(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete attendance: %w", err)
	}
	return requireAffected(res, tracker.ErrRecordNotFound)
}

// =============================================================================
// LEAVES
// =============================================================================

// CreateLeave inserts a leave entry, assigning an ID.
func (s *Store) CreateLeave(ctx context.Context, e tracker.LeaveEntry) (tracker.LeaveEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = newID("lv")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO leaves (id, user_id, date, type, hours, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Date, string(e.Type), e.Hours, e.Note,
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return tracker.LeaveEntry{}, fmt.Errorf("failed to insert leave: %w", err)
	}
	return e, nil
}

// ListLeavesByUser returns a user's leaves ordered by date.
func (s *Store) ListLeavesByUser(ctx context.Context, userID string) ([]tracker.LeaveEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, type, hours, note, created_at
		FROM leaves WHERE user_id = ?
		ORDER BY date ASC, created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaves: %w", err)
	}
	defer rows.Close()

	var entries []tracker.LeaveEntry
	for rows.Next() {
		var (
			e         tracker.LeaveEntry
			leaveType string
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &leaveType, &e.Hours, &e.Note, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan leave: %w", err)
		}
		e.Type = policy.LeaveType(leaveType)
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteLeave removes one leave entry.
func (s *Store) DeleteLeave(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM leaves WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete leave: %w", err)
	}
	return requireAffected(res, tracker.ErrRecordNotFound)
}

// =============================================================================
// NOTES
// =============================================================================

// CreateNote inserts a note, assigning an ID.
func (s *Store) CreateNote(ctx context.Context, e tracker.NoteEntry) (tracker.NoteEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = newID("note")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notes (id, user_id, date, content, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Date, e.Content,
		e.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return tracker.NoteEntry{}, fmt.Errorf("failed to insert note: %w", err)
	}
	return e, nil
}

// ListNotesByUser returns a user's notes ordered by date.
func (s *Store) ListNotesByUser(ctx context.Context, userID string) ([]tracker.NoteEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, date, content, created_at
		FROM notes WHERE user_id = ?
		ORDER BY date ASC, created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	defer rows.Close()

	var entries []tracker.NoteEntry
	for rows.Next() {
		var (
			e         tracker.NoteEntry
			createdAt string
		)
		if err := rows.Scan(&e.ID, &e.UserID, &e.Date, &e.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		e.CreatedAt = parseTime(createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// DeleteNote removes one note.
func (s *Store) DeleteNote(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	return requireAffected(res, tracker.ErrRecordNotFound)
}

// =============================================================================
// BULK OPERATIONS
// =============================================================================

// ClearUserRecords deletes all entries for a user, keeping the user.
func (s *Store) ClearUserRecords(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.clearRecordsLocked(ctx, userID)
}

func (s *Store) clearRecordsLocked(ctx context.Context, userID string) error {
	for _, table := range []string{"attendance", "leaves", "notes"} {
		if _, err := s.db.ExecContext(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE user_id = ?`, table), userID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// Reset wipes everything. Demo scenarios and tests only.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"attendance", "leaves", "notes", "users"} {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (tracker.User, error) {
	var (
		u         tracker.User
		createdAt string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Password, &u.BiometricCredID,
		&u.AnnualBalance, &u.CasualBalance, &createdAt)
	if err == sql.ErrNoRows {
		return u, err
	}
	if err != nil {
		return u, fmt.Errorf("failed to scan user: %w", err)
	}
	u.CreatedAt = parseTime(createdAt)
	return u, nil
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func requireAffected(res sql.Result, missing error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return missing
	}
	return nil
}
