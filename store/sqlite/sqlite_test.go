package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/policy"
	"github.com/warp/attendance-engine/tracker"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func createTestUser(t *testing.T, store *Store, name string) tracker.User {
	t.Helper()
	u, err := store.CreateUser(context.Background(), tracker.User{
		Name:          name,
		Password:      "secret",
		AnnualBalance: 21,
		CasualBalance: 7,
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	return u
}

func TestUserRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, store, "Sara")

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Sara", got.Name)
	assert.Equal(t, "secret", got.Password)
	assert.Equal(t, 21, got.AnnualBalance)
	assert.Equal(t, 7, got.CasualBalance)
	assert.Empty(t, got.BiometricCredID)
}

func TestGetUserAbsentIsNilNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetUser(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListUsersOrdered(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := createTestUser(t, store, "Amal")
	b := createTestUser(t, store, "Badr")

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, []string{a.ID, b.ID}, []string{users[0].ID, users[1].ID})
}

func TestUpdateUserBalances(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, store, "Sara")
	require.NoError(t, store.UpdateUserBalances(ctx, u.ID, 15, 3))

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 15, got.AnnualBalance)
	assert.Equal(t, 3, got.CasualBalance)

	err = store.UpdateUserBalances(ctx, "nope", 1, 1)
	assert.ErrorIs(t, err, tracker.ErrUserNotFound)
}

func TestUpdateUserBiometric(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, store, "Sara")
	require.NoError(t, store.UpdateUserBiometric(ctx, u.ID, "Y3JlZC0x"))

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Y3JlZC0x", got.BiometricCredID)

	// Clearing stores the empty string.
	require.NoError(t, store.UpdateUserBiometric(ctx, u.ID, ""))
	got, err = store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, got.BiometricCredID)
}

func TestAttendanceRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, store, "Sara")

	e, err := store.CreateAttendance(ctx, tracker.AttendanceEntry{
		UserID:      u.ID,
		Date:        "2024-03-04",
		Time:        "08:47",
		LateMinutes: 47,
		Note:        "traffic",
	})
	require.NoError(t, err)
	require.NotEmpty(t, e.ID)

	entries, err := store.ListAttendanceByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 47, entries[0].LateMinutes)
	assert.Equal(t, "traffic", entries[0].Note)

	require.NoError(t, store.DeleteAttendance(ctx, e.ID))
	entries, err = store.ListAttendanceByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)

	err = store.DeleteAttendance(ctx, e.ID)
	assert.ErrorIs(t, err, tracker.ErrRecordNotFound)
}

func TestAttendanceOrderedByDate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, store, "Sara")
	for _, date := range []string{"2024-03-20", "2024-03-01", "2024-03-12"} {
		_, err := store.CreateAttendance(ctx, tracker.AttendanceEntry{
			UserID: u.ID, Date: date, Time: "08:00",
		})
		require.NoError(t, err)
	}

	entries, err := store.ListAttendanceByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "2024-03-01", entries[0].Date)
	assert.Equal(t, "2024-03-12", entries[1].Date)
	assert.Equal(t, "2024-03-20", entries[2].Date)
}

func TestDuplicateDatesAreStorable(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// The store accepts duplicate (user, date) pairs; rejecting them is
	// the API layer's validation.
	u := createTestUser(t, store, "Sara")
	for i := 0; i < 2; i++ {
		_, err := store.CreateAttendance(ctx, tracker.AttendanceEntry{
			UserID: u.ID, Date: "2024-03-04", Time: "08:00",
		})
		require.NoError(t, err)
	}

	entries, err := store.ListAttendanceByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestLeaveRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, store, "Sara")

	e, err := store.CreateLeave(ctx, tracker.LeaveEntry{
		UserID: u.ID,
		Date:   "2024-03-07",
		Type:   policy.LeavePermission,
		Hours:  2,
	})
	require.NoError(t, err)

	entries, err := store.ListLeavesByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, policy.LeavePermission, entries[0].Type)
	assert.Equal(t, 2, entries[0].Hours)

	require.NoError(t, store.DeleteLeave(ctx, e.ID))
	err = store.DeleteLeave(ctx, e.ID)
	assert.ErrorIs(t, err, tracker.ErrRecordNotFound)
}

func TestNoteRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, store, "Sara")

	e, err := store.CreateNote(ctx, tracker.NoteEntry{
		UserID:  u.ID,
		Date:    "2024-03-10",
		Content: "discussed schedule",
	})
	require.NoError(t, err)

	entries, err := store.ListNotesByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "discussed schedule", entries[0].Content)

	require.NoError(t, store.DeleteNote(ctx, e.ID))
}

func TestClearUserRecordsKeepsUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, store, "Sara")
	seedEntries(t, store, u.ID)

	require.NoError(t, store.ClearUserRecords(ctx, u.ID))

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got, "user survives a records clear")

	att, _ := store.ListAttendanceByUser(ctx, u.ID)
	lv, _ := store.ListLeavesByUser(ctx, u.ID)
	nt, _ := store.ListNotesByUser(ctx, u.ID)
	assert.Empty(t, att)
	assert.Empty(t, lv)
	assert.Empty(t, nt)
}

func TestDeleteUserCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, store, "Sara")
	other := createTestUser(t, store, "Badr")
	seedEntries(t, store, u.ID)
	seedEntries(t, store, other.ID)

	require.NoError(t, store.DeleteUser(ctx, u.ID))

	got, err := store.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	att, _ := store.ListAttendanceByUser(ctx, u.ID)
	assert.Empty(t, att)

	// Other users' records are untouched.
	att, _ = store.ListAttendanceByUser(ctx, other.ID)
	assert.Len(t, att, 1)

	err = store.DeleteUser(ctx, "nope")
	assert.ErrorIs(t, err, tracker.ErrUserNotFound)
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	u := createTestUser(t, store, "Sara")
	seedEntries(t, store, u.ID)

	require.NoError(t, store.Reset(ctx))

	users, err := store.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func seedEntries(t *testing.T, store *Store, userID string) {
	t.Helper()
	ctx := context.Background()

	_, err := store.CreateAttendance(ctx, tracker.AttendanceEntry{
		UserID: userID, Date: "2024-03-04", Time: "08:47", LateMinutes: 47,
	})
	require.NoError(t, err)
	_, err = store.CreateLeave(ctx, tracker.LeaveEntry{
		UserID: userID, Date: "2024-03-07", Type: policy.LeaveAnnual,
	})
	require.NoError(t, err)
	_, err = store.CreateNote(ctx, tracker.NoteEntry{
		UserID: userID, Date: "2024-03-10", Content: "note",
	})
	require.NoError(t, err)
}
