/*
aggregate.go - Monthly rollups over attendance and leave records

PURPOSE:
  Folds a user's raw records into the per-month numbers the rest of the
  system reasons about. Lateness and permissions are month-scoped;
  annual and casual leave usage is counted across ALL records, because
  those entitlements are running balances, not monthly budgets.

KEY CONCEPTS:
  Frozen lateness: AttendanceRecord carries the LateMinutes computed at
    creation time. Aggregation sums the stored value; it never re-derives
    lateness from the clock-in time. Policy changes do not rewrite
    history.
  Order invariance: The rollup is a pure fold with commutative
    operations. Input order does not matter.

SEE ALSO:
  - rules.go: Lateness computation (done once, at record creation)
  - balance.go: Turning these sums into remaining balances
*/
package policy

// LeaveType classifies a leave record.
type LeaveType string

const (
	LeaveAnnual     LeaveType = "annual"
	LeaveCasual     LeaveType = "casual"
	LeavePermission LeaveType = "permission"
)

// Valid reports whether t is a known leave type.
func (t LeaveType) Valid() bool {
	switch t {
	case LeaveAnnual, LeaveCasual, LeavePermission:
		return true
	}
	return false
}

// AttendanceRecord is the slice of an attendance entry the engine needs.
type AttendanceRecord struct {
	Date        string // "YYYY-MM-DD"
	LateMinutes int    // frozen at creation
}

// LeaveRecord is the slice of a leave entry the engine needs.
type LeaveRecord struct {
	Date  string // "YYYY-MM-DD"
	Type  LeaveType
	Hours int // permission only
}

// MonthSummary is the rollup of a user's records for one month.
type MonthSummary struct {
	Month            Month
	TotalLateMinutes int // month-scoped
	PermissionsUsed  int // month-scoped count (hours do not matter)
	AnnualUsed       int // all-time count of annual leave days
	CasualUsed       int // all-time count of casual leave days
}

// AggregateMonth rolls up attendance and leave records for the given
// month. Records with dates outside the month contribute nothing to the
// month-scoped fields; annual/casual usage counts every record
// regardless of month.
func (r Rules) AggregateMonth(attendance []AttendanceRecord, leaves []LeaveRecord, month Month) MonthSummary {
	s := MonthSummary{Month: month}

	for _, a := range attendance {
		if month.Contains(a.Date) {
			s.TotalLateMinutes += a.LateMinutes
		}
	}

	for _, l := range leaves {
		switch l.Type {
		case LeaveAnnual:
			s.AnnualUsed++
		case LeaveCasual:
			s.CasualUsed++
		case LeavePermission:
			if month.Contains(l.Date) {
				s.PermissionsUsed++
			}
		}
	}

	return s
}
