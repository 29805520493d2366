/*
types.go - Domain records for the attendance tracker

PURPOSE:
  The persisted record shapes: users and their three entry collections
  (attendance, leaves, notes). These are storage-facing types; the API
  layer maps them to DTOs and the policy engine consumes trimmed-down
  projections of them.

KEY CONCEPTS:
  Frozen lateness: AttendanceEntry.LateMinutes is computed once, when
    the entry is created, and stored. Later policy changes never rewrite
    recorded history.
  No stored role: every persisted user is a regular user. The admin is
    a virtual identity that exists only in configuration (identity.go).

SEE ALSO:
  - store.go: Persistence interface over these records
  - policy/aggregate.go: The projections the engine consumes
*/
package tracker

import (
	"time"

	"github.com/warp/attendance-engine/policy"
)

// User is a tracked employee.
type User struct {
	ID   string
	Name string

	// Password is stored as plaintext and compared with string
	// equality. An empty password means the account is unprotected.
	// This mirrors the low-stakes deployment this tracker targets;
	// see the auth package notes before reusing elsewhere.
	Password string

	// BiometricCredID is the base64 (raw URL) credential ID registered
	// via WebAuthn. Empty means biometrics are not enrolled.
	BiometricCredID string

	// AnnualBalance and CasualBalance are entitlements in days.
	// Usage is derived from leave records, never decremented here.
	AnnualBalance int
	CasualBalance int

	CreatedAt time.Time
}

// AttendanceEntry records one clock-in.
type AttendanceEntry struct {
	ID          string
	UserID      string
	Date        string // "YYYY-MM-DD"
	Time        string // "HH:MM", may be empty
	LateMinutes int    // frozen at creation
	Note        string
	CreatedAt   time.Time
}

// LeaveEntry records one leave day or permission.
type LeaveEntry struct {
	ID        string
	UserID    string
	Date      string // "YYYY-MM-DD"
	Type      policy.LeaveType
	Hours     int // permission only, 1..3
	Note      string
	CreatedAt time.Time
}

// NoteEntry is a free-form dated note on a user.
type NoteEntry struct {
	ID        string
	UserID    string
	Date      string // "YYYY-MM-DD"
	Content   string
	CreatedAt time.Time
}

// AttendanceRecords projects attendance entries for the policy engine.
func AttendanceRecords(entries []AttendanceEntry) []policy.AttendanceRecord {
	records := make([]policy.AttendanceRecord, len(entries))
	for i, e := range entries {
		records[i] = policy.AttendanceRecord{Date: e.Date, LateMinutes: e.LateMinutes}
	}
	return records
}

// LeaveRecords projects leave entries for the policy engine.
func LeaveRecords(entries []LeaveEntry) []policy.LeaveRecord {
	records := make([]policy.LeaveRecord, len(entries))
	for i, e := range entries {
		records[i] = policy.LeaveRecord{Date: e.Date, Type: e.Type, Hours: e.Hours}
	}
	return records
}
