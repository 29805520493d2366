// Package memory provides an in-memory tracker.Store (for testing/dev).
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/warp/attendance-engine/tracker"
)

// Store implements tracker.Store with maps. Safe for concurrent use.
type Store struct {
	mu         sync.RWMutex
	users      map[string]tracker.User
	attendance map[string]tracker.AttendanceEntry
	leaves     map[string]tracker.LeaveEntry
	notes      map[string]tracker.NoteEntry
	seq        atomic.Uint64
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		users:      make(map[string]tracker.User),
		attendance: make(map[string]tracker.AttendanceEntry),
		leaves:     make(map[string]tracker.LeaveEntry),
		notes:      make(map[string]tracker.NoteEntry),
	}
}

func (s *Store) newID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, s.seq.Add(1))
}

// =============================================================================
// USERS
// =============================================================================

func (s *Store) CreateUser(_ context.Context, u tracker.User) (tracker.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = s.newID("usr")
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.users[u.ID] = u
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (*tracker.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) ListUsers(_ context.Context) ([]tracker.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]tracker.User, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].CreatedAt.Equal(users[j].CreatedAt) {
			return users[i].CreatedAt.Before(users[j].CreatedAt)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (s *Store) UpdateUserBalances(_ context.Context, id string, annual, casual int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return tracker.ErrUserNotFound
	}
	u.AnnualBalance = annual
	u.CasualBalance = casual
	s.users[id] = u
	return nil
}

func (s *Store) UpdateUserBiometric(_ context.Context, id string, credID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return tracker.ErrUserNotFound
	}
	u.BiometricCredID = credID
	s.users[id] = u
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return tracker.ErrUserNotFound
	}
	s.clearRecordsLocked(id)
	delete(s.users, id)
	return nil
}

// =============================================================================
// ENTRIES
// =============================================================================

func (s *Store) CreateAttendance(_ context.Context, e tracker.AttendanceEntry) (tracker.AttendanceEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = s.newID("att")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.attendance[e.ID] = e
	return e, nil
}

func (s *Store) ListAttendanceByUser(_ context.Context, userID string) ([]tracker.AttendanceEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []tracker.AttendanceEntry
	for _, e := range s.attendance {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (s *Store) DeleteAttendance(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.attendance[id]; !ok {
		return tracker.ErrRecordNotFound
	}
	delete(s.attendance, id)
	return nil
}

func (s *Store) CreateLeave(_ context.Context, e tracker.LeaveEntry) (tracker.LeaveEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = s.newID("lv")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.leaves[e.ID] = e
	return e, nil
}

func (s *Store) ListLeavesByUser(_ context.Context, userID string) ([]tracker.LeaveEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []tracker.LeaveEntry
	for _, e := range s.leaves {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (s *Store) DeleteLeave(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leaves[id]; !ok {
		return tracker.ErrRecordNotFound
	}
	delete(s.leaves, id)
	return nil
}

func (s *Store) CreateNote(_ context.Context, e tracker.NoteEntry) (tracker.NoteEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.ID == "" {
		e.ID = s.newID("note")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	s.notes[e.ID] = e
	return e, nil
}

func (s *Store) ListNotesByUser(_ context.Context, userID string) ([]tracker.NoteEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var entries []tracker.NoteEntry
	for _, e := range s.notes {
		if e.UserID == userID {
			entries = append(entries, e)
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Date != entries[j].Date {
			return entries[i].Date < entries[j].Date
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

func (s *Store) DeleteNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.notes[id]; !ok {
		return tracker.ErrRecordNotFound
	}
	delete(s.notes, id)
	return nil
}

// =============================================================================
// BULK OPERATIONS
// =============================================================================

func (s *Store) ClearUserRecords(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clearRecordsLocked(userID)
	return nil
}

func (s *Store) clearRecordsLocked(userID string) {
	for id, e := range s.attendance {
		if e.UserID == userID {
			delete(s.attendance, id)
		}
	}
	for id, e := range s.leaves {
		if e.UserID == userID {
			delete(s.leaves, id)
		}
	}
	for id, e := range s.notes {
		if e.UserID == userID {
			delete(s.notes, id)
		}
	}
}

func (s *Store) Reset(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.users = make(map[string]tracker.User)
	s.attendance = make(map[string]tracker.AttendanceEntry)
	s.leaves = make(map[string]tracker.LeaveEntry)
	s.notes = make(map[string]tracker.NoteEntry)
	return nil
}
