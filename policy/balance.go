/*
balance.go - Remaining-balance derivation

PURPOSE:
  Balances are never stored as running totals that drift out of sync
  with the records. They are derived on demand: entitlement minus usage.
  Negative remainders are legal and meaningful; they represent overdraft
  (leave taken beyond entitlement, lateness beyond allowance) and are
  surfaced rather than clamped.

SEE ALSO:
  - aggregate.go: Produces the usage counts consumed here
  - suggest.go: Acts on overdrafted lateness
*/
package policy

// Remaining derives a leave balance from an entitlement and a usage
// count. The result may be negative.
func Remaining(entitlement, used int) int {
	return entitlement - used
}

// LateBalance describes where a month's lateness stands against the
// allowance.
type LateBalance struct {
	Remaining int  // allowance minus total, may be negative
	OverLimit bool // true when the allowance is exhausted
}

// LateBalance derives the lateness balance for a month's total.
func (r Rules) LateBalance(totalLateMinutes int) LateBalance {
	remaining := r.MonthlyAllowanceMin - totalLateMinutes
	return LateBalance{
		Remaining: remaining,
		OverLimit: remaining < 0,
	}
}
