/*
rules.go - Attendance policy rules and the lateness calculator

PURPOSE:
  Defines the tunable constants of the attendance policy and the core
  lateness computation. This package is pure: no I/O, no storage, no
  clock access. Everything is a function of its inputs, which keeps the
  engine trivially testable and reusable outside the HTTP layer.

KEY CONCEPTS:
  Workday start:   Nominal clock-in time, expressed as minutes since
                   midnight (480 = 08:00).
  Grace limit:     Clock-ins at or before this point incur zero lateness
                   (510 = 08:30).
  Charged lateness: Once the grace limit is crossed, lateness is charged
                   from the workday START, not from the grace limit.
                   Clocking in at 08:31 costs 31 minutes, not 1. The
                   grace window is forgiveness, not a free offset.
  Monthly allowance: Budget of tolerated lateness minutes per month.
  Permissions:     Short excused absences (1-3 hours), capped per month.
                   The cap is advisory; recording a fourth permission is
                   not blocked.

USAGE:
  rules := policy.Default()
  late := rules.Lateness("08:47")  // 47

SEE ALSO:
  - aggregate.go: Monthly rollups over attendance and leave records
  - balance.go: Remaining-balance derivation
  - suggest.go: Advisory suggestions when the allowance is exceeded
  - factory/rules.go: JSON configuration to Rules conversion
*/
package policy

import (
	"strconv"
	"strings"
)

// Rules holds the tunable constants of the attendance policy.
// Zero values are not meaningful; construct via Default() or the factory.
type Rules struct {
	// WorkdayStartMin is the nominal workday start in minutes since
	// midnight. Lateness is charged from this point.
	WorkdayStartMin int

	// GraceLimitMin is the last minute-since-midnight that incurs no
	// lateness. Must be >= WorkdayStartMin.
	GraceLimitMin int

	// MonthlyAllowanceMin is the tolerated lateness budget per month.
	MonthlyAllowanceMin int

	// MonthlyPermissionCap is the advisory limit on permission leaves
	// per month.
	MonthlyPermissionCap int

	// MaxPermissionHours is the longest single permission (hours).
	MaxPermissionHours int

	// DefaultAnnualBalance and DefaultCasualBalance are the leave
	// entitlements (days) granted to a newly created user.
	DefaultAnnualBalance int
	DefaultCasualBalance int

	// WorkdayMinutes is the length of a full workday, used to convert
	// excess lateness into fractional deduction days.
	WorkdayMinutes int
}

// Default returns the production policy values.
func Default() Rules {
	return Rules{
		WorkdayStartMin:      480, // 08:00
		GraceLimitMin:        510, // 08:30
		MonthlyAllowanceMin:  360,
		MonthlyPermissionCap: 3,
		MaxPermissionHours:   3,
		DefaultAnnualBalance: 21,
		DefaultCasualBalance: 7,
		WorkdayMinutes:       480,
	}
}

// Lateness computes the charged lateness in minutes for a clock-in time
// given as "HH:MM" (24-hour). Within the grace window the cost is zero;
// past it, the full distance from the workday start is charged.
//
// Empty or malformed input yields zero. Attendance records imported from
// older data sometimes carry blank times, and a record that cannot be
// parsed must not poison a monthly total.
func (r Rules) Lateness(clockIn string) int {
	t, ok := parseClock(clockIn)
	if !ok {
		return 0
	}
	if t <= r.GraceLimitMin {
		return 0
	}
	return t - r.WorkdayStartMin
}

// parseClock converts "HH:MM" to minutes since midnight.
func parseClock(s string) (int, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
