/*
Package factory provides JSON to Go policy-rules conversion.

PURPOSE:
  Converts JSON rule definitions into policy.Rules. This enables policy
  configuration without code changes - HR can adjust the grace window or
  the monthly allowance in a JSON file, and the factory produces the
  proper Go struct.

WHY JSON?
  - Non-developers can modify the rules
  - Easy integration with an admin UI later
  - Version control for rule changes

JSON SCHEMA:
  {
    "workday_start": "08:00",
    "grace_limit": "08:30",
    "monthly_allowance_minutes": 360,
    "monthly_permission_cap": 3,
    "max_permission_hours": 3,
    "default_annual_balance": 21,
    "default_casual_balance": 7,
    "workday_minutes": 480
  }

  Times accept either "HH:MM" strings or raw minutes-since-midnight
  numbers. Absent fields fall back to the production defaults.

USAGE:
  rules, err := factory.ParseRules(jsonStr)

SEE ALSO:
  - policy/rules.go: Rules type and Default()
  - config/config.go: Where the rules file path comes from
*/
package factory

import (
	"encoding/json"
	"fmt"

	"github.com/warp/attendance-engine/policy"
)

// RulesJSON is the JSON representation of the attendance rules.
type RulesJSON struct {
	WorkdayStart         json.RawMessage `json:"workday_start,omitempty"`
	GraceLimit           json.RawMessage `json:"grace_limit,omitempty"`
	MonthlyAllowanceMin  *int            `json:"monthly_allowance_minutes,omitempty"`
	MonthlyPermissionCap *int            `json:"monthly_permission_cap,omitempty"`
	MaxPermissionHours   *int            `json:"max_permission_hours,omitempty"`
	DefaultAnnualBalance *int            `json:"default_annual_balance,omitempty"`
	DefaultCasualBalance *int            `json:"default_casual_balance,omitempty"`
	WorkdayMinutes       *int            `json:"workday_minutes,omitempty"`
}

// ParseRules parses a JSON string into policy.Rules, with defaults for
// absent fields.
func ParseRules(jsonStr string) (policy.Rules, error) {
	var rj RulesJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return policy.Rules{}, fmt.Errorf("failed to parse rules JSON: %w", err)
	}
	return FromJSON(rj)
}

// FromJSON converts RulesJSON to policy.Rules.
func FromJSON(rj RulesJSON) (policy.Rules, error) {
	rules := policy.Default()

	if rj.WorkdayStart != nil {
		m, err := parseTimeField("workday_start", rj.WorkdayStart)
		if err != nil {
			return policy.Rules{}, err
		}
		rules.WorkdayStartMin = m
	}
	if rj.GraceLimit != nil {
		m, err := parseTimeField("grace_limit", rj.GraceLimit)
		if err != nil {
			return policy.Rules{}, err
		}
		rules.GraceLimitMin = m
	}
	if rj.MonthlyAllowanceMin != nil {
		rules.MonthlyAllowanceMin = *rj.MonthlyAllowanceMin
	}
	if rj.MonthlyPermissionCap != nil {
		rules.MonthlyPermissionCap = *rj.MonthlyPermissionCap
	}
	if rj.MaxPermissionHours != nil {
		rules.MaxPermissionHours = *rj.MaxPermissionHours
	}
	if rj.DefaultAnnualBalance != nil {
		rules.DefaultAnnualBalance = *rj.DefaultAnnualBalance
	}
	if rj.DefaultCasualBalance != nil {
		rules.DefaultCasualBalance = *rj.DefaultCasualBalance
	}
	if rj.WorkdayMinutes != nil {
		rules.WorkdayMinutes = *rj.WorkdayMinutes
	}

	if err := validate(rules); err != nil {
		return policy.Rules{}, err
	}
	return rules, nil
}

// parseTimeField accepts "HH:MM" or raw minutes-since-midnight.
func parseTimeField(name string, raw json.RawMessage) (int, error) {
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		m, ok := clockMinutes(asString)
		if !ok {
			return 0, fmt.Errorf("invalid %s time %q (use HH:MM)", name, asString)
		}
		return m, nil
	}

	var asInt int
	if err := json.Unmarshal(raw, &asInt); err == nil {
		if asInt < 0 || asInt >= 24*60 {
			return 0, fmt.Errorf("invalid %s minutes %d", name, asInt)
		}
		return asInt, nil
	}

	return 0, fmt.Errorf("invalid %s: expected HH:MM string or minutes", name)
}

func clockMinutes(s string) (int, bool) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

func validate(r policy.Rules) error {
	if r.GraceLimitMin < r.WorkdayStartMin {
		return fmt.Errorf("grace_limit (%d) before workday_start (%d)", r.GraceLimitMin, r.WorkdayStartMin)
	}
	if r.MonthlyAllowanceMin < 0 {
		return fmt.Errorf("monthly_allowance_minutes must be >= 0")
	}
	if r.MonthlyPermissionCap < 0 {
		return fmt.Errorf("monthly_permission_cap must be >= 0")
	}
	if r.MaxPermissionHours < 1 {
		return fmt.Errorf("max_permission_hours must be >= 1")
	}
	if r.WorkdayMinutes < 1 {
		return fmt.Errorf("workday_minutes must be >= 1")
	}
	return nil
}
