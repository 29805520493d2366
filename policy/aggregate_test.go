package policy

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateMonthScoping(t *testing.T) {
	rules := Default()
	month, err := ParseMonth("2024-03")
	require.NoError(t, err)

	// GIVEN records spread over March and April
	attendance := []AttendanceRecord{
		{Date: "2024-03-04", LateMinutes: 40},
		{Date: "2024-03-18", LateMinutes: 65},
		{Date: "2024-04-02", LateMinutes: 200}, // outside
	}
	leaves := []LeaveRecord{
		{Date: "2024-03-07", Type: LeavePermission, Hours: 2},
		{Date: "2024-04-09", Type: LeavePermission, Hours: 1}, // outside
		{Date: "2024-01-15", Type: LeaveAnnual},
		{Date: "2024-04-20", Type: LeaveAnnual},
		{Date: "2023-12-28", Type: LeaveCasual},
	}

	// WHEN aggregating March
	s := rules.AggregateMonth(attendance, leaves, month)

	// THEN lateness and permissions are month-scoped,
	// annual/casual usage counts every record
	assert.Equal(t, 105, s.TotalLateMinutes)
	assert.Equal(t, 1, s.PermissionsUsed)
	assert.Equal(t, 2, s.AnnualUsed)
	assert.Equal(t, 1, s.CasualUsed)
}

func TestAggregateOrderInvariance(t *testing.T) {
	rules := Default()
	month, err := ParseMonth("2024-03")
	require.NoError(t, err)

	attendance := []AttendanceRecord{
		{Date: "2024-03-01", LateMinutes: 31},
		{Date: "2024-03-05", LateMinutes: 90},
		{Date: "2024-03-12", LateMinutes: 45},
		{Date: "2024-03-20", LateMinutes: 120},
	}
	leaves := []LeaveRecord{
		{Date: "2024-03-02", Type: LeavePermission, Hours: 1},
		{Date: "2024-03-09", Type: LeaveAnnual},
		{Date: "2024-03-16", Type: LeavePermission, Hours: 3},
		{Date: "2024-03-23", Type: LeaveCasual},
	}

	want := rules.AggregateMonth(attendance, leaves, month)

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		r.Shuffle(len(attendance), func(a, b int) {
			attendance[a], attendance[b] = attendance[b], attendance[a]
		})
		r.Shuffle(len(leaves), func(a, b int) {
			leaves[a], leaves[b] = leaves[b], leaves[a]
		})
		assert.Equal(t, want, rules.AggregateMonth(attendance, leaves, month))
	}
}

func TestAggregatePermissionHoursDoNotAffectCount(t *testing.T) {
	rules := Default()
	month, _ := ParseMonth("2024-03")

	leaves := []LeaveRecord{
		{Date: "2024-03-03", Type: LeavePermission, Hours: 1},
		{Date: "2024-03-10", Type: LeavePermission, Hours: 3},
	}

	s := rules.AggregateMonth(nil, leaves, month)
	assert.Equal(t, 2, s.PermissionsUsed, "each permission counts once regardless of hours")
}

func TestAggregateMalformedDatesContributeNothing(t *testing.T) {
	rules := Default()
	month, _ := ParseMonth("2024-03")

	attendance := []AttendanceRecord{
		{Date: "not-a-date", LateMinutes: 500},
		{Date: "2024-03-15", LateMinutes: 20},
	}
	leaves := []LeaveRecord{
		{Date: "??", Type: LeavePermission, Hours: 1},
	}

	s := rules.AggregateMonth(attendance, leaves, month)
	assert.Equal(t, 20, s.TotalLateMinutes)
	assert.Equal(t, 0, s.PermissionsUsed)
}

func TestAggregateEmptyInputs(t *testing.T) {
	rules := Default()
	month, _ := ParseMonth("2024-03")

	s := rules.AggregateMonth(nil, nil, month)
	assert.Equal(t, MonthSummary{Month: month}, s)
}

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2024-03")
	require.NoError(t, err)
	assert.Equal(t, "2024-03", m.String())

	_, err = ParseMonth("2024-3")
	assert.Error(t, err)
	_, err = ParseMonth("March 2024")
	assert.Error(t, err)
}

func TestMonthContains(t *testing.T) {
	m, _ := ParseMonth("2024-03")

	assert.True(t, m.Contains("2024-03-01"))
	assert.True(t, m.Contains("2024-03-31"))
	assert.False(t, m.Contains("2024-02-29"))
	assert.False(t, m.Contains("2024-04-01"))
	assert.False(t, m.Contains("2023-03-15"))
	assert.False(t, m.Contains("2024-03-32"))
	assert.False(t, m.Contains(""))
}

func TestRemaining(t *testing.T) {
	assert.Equal(t, 16, Remaining(21, 5))
	assert.Equal(t, 0, Remaining(7, 7))
	assert.Equal(t, -4, Remaining(21, 25), "overdraft is surfaced, not clamped")
}

func TestLateBalance(t *testing.T) {
	rules := Default()

	b := rules.LateBalance(300)
	assert.Equal(t, LateBalance{Remaining: 60, OverLimit: false}, b)

	b = rules.LateBalance(360)
	assert.Equal(t, LateBalance{Remaining: 0, OverLimit: false}, b, "exactly at the allowance is not over")

	b = rules.LateBalance(400)
	assert.Equal(t, LateBalance{Remaining: -40, OverLimit: true}, b)
}
