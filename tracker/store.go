/*
store.go - Persistence interface for tracker records

PURPOSE:
  One interface, four record collections. Implementations assign record
  IDs on insert and return the stored record. GetUser returns (nil, nil)
  for a missing user so callers can distinguish "absent" from "broken".

CONTRACT NOTES:
  - DeleteUser cascades: the user's attendance, leaves, and notes go
    with the user record. The cascade is sequential deletes with no
    cross-collection transaction; a crash mid-cascade can orphan
    entries. Accepted for this system's scale.
  - ClearUserRecords wipes the three entry collections but keeps the
    user record and balances.
  - No uniqueness constraint on (user, date) for attendance. The
    duplicate-date check is a validation the API layer performs before
    insert; historical imports may legitimately carry duplicates.

SEE ALSO:
  - store/sqlite: Production implementation
  - store/memory: In-memory implementation for tests
*/
package tracker

import "context"

// Store persists tracker records.
type Store interface {
	// Users
	CreateUser(ctx context.Context, u User) (User, error)
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]User, error)
	UpdateUserBalances(ctx context.Context, id string, annual, casual int) error
	UpdateUserBiometric(ctx context.Context, id string, credID string) error
	DeleteUser(ctx context.Context, id string) error

	// Attendance
	CreateAttendance(ctx context.Context, e AttendanceEntry) (AttendanceEntry, error)
	ListAttendanceByUser(ctx context.Context, userID string) ([]AttendanceEntry, error)
	DeleteAttendance(ctx context.Context, id string) error

	// Leaves
	CreateLeave(ctx context.Context, e LeaveEntry) (LeaveEntry, error)
	ListLeavesByUser(ctx context.Context, userID string) ([]LeaveEntry, error)
	DeleteLeave(ctx context.Context, id string) error

	// Notes
	CreateNote(ctx context.Context, e NoteEntry) (NoteEntry, error)
	ListNotesByUser(ctx context.Context, userID string) ([]NoteEntry, error)
	DeleteNote(ctx context.Context, id string) error

	// ClearUserRecords deletes all entries for a user, keeping the user.
	ClearUserRecords(ctx context.Context, userID string) error

	// Reset wipes everything. Demo scenarios and tests only.
	Reset(ctx context.Context) error
}
