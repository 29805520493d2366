/*
suggest.go - Advisory suggestions for over-allowance months

PURPOSE:
  When a month's lateness exceeds the allowance, suggest what the user
  should do about it. The heuristic weighs how much excess there is
  against how many permissions remain:

    permissions exhausted      -> danger  (deduction will apply)
    excess needs > one max     -> warning (a single permission cannot
    permission                            cover it)
    otherwise                  -> success (file a permission for the
                                          computed hours)

  Under or at the allowance there is nothing to say and the suggestion
  is nil. Suggestions are advisory: nothing here blocks record creation.

SEE ALSO:
  - balance.go: LateBalance decides whether a suggestion fires at all
*/
package policy

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Severity grades a suggestion.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeveritySuccess Severity = "success"
)

// Suggestion is an advisory recommendation for an over-allowance month.
type Suggestion struct {
	Severity        Severity
	Message         string
	ExcessMinutes   int
	PermissionsLeft int
	HoursNeeded     int
	// DeductionDays is the estimated salary deduction in workdays.
	// Only set on danger suggestions.
	DeductionDays decimal.Decimal
}

// Suggest evaluates the month's lateness total against the allowance
// and, when exceeded, recommends a course of action. Returns nil when
// the total is within the allowance.
func (r Rules) Suggest(totalLateMinutes, permissionsUsed int) *Suggestion {
	if totalLateMinutes <= r.MonthlyAllowanceMin {
		return nil
	}

	excess := totalLateMinutes - r.MonthlyAllowanceMin
	permissionsLeft := r.MonthlyPermissionCap - permissionsUsed
	hoursNeeded := (excess + 59) / 60

	s := &Suggestion{
		ExcessMinutes:   excess,
		PermissionsLeft: permissionsLeft,
		HoursNeeded:     hoursNeeded,
	}

	switch {
	case permissionsLeft <= 0:
		s.Severity = SeverityDanger
		s.DeductionDays = r.DeductionDays(excess)
		s.Message = fmt.Sprintf(
			"Lateness exceeds the monthly allowance by %d minutes and all permissions are used. A deduction of %s day(s) will apply.",
			excess, s.DeductionDays.String())
	case hoursNeeded > r.MaxPermissionHours:
		s.Severity = SeverityWarning
		s.Message = fmt.Sprintf(
			"Lateness exceeds the monthly allowance by %d minutes. A single permission cannot cover %d hour(s); split it or expect a deduction.",
			excess, hoursNeeded)
	default:
		s.Severity = SeveritySuccess
		s.Message = fmt.Sprintf(
			"Submit a %d-hour permission to cover the %d excess minute(s).",
			hoursNeeded, excess)
	}

	return s
}

// DeductionDays converts excess lateness minutes into fractional
// workdays, rounded to two decimal places.
func (r Rules) DeductionDays(excessMinutes int) decimal.Decimal {
	if excessMinutes <= 0 || r.WorkdayMinutes <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(excessMinutes)).
		Div(decimal.NewFromInt(int64(r.WorkdayMinutes))).
		Round(2)
}
