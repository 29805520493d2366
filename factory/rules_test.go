package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/policy"
)

func TestParseRulesDefaults(t *testing.T) {
	// An empty document yields the production defaults.
	rules, err := ParseRules(`{}`)
	require.NoError(t, err)
	assert.Equal(t, policy.Default(), rules)
}

func TestParseRulesOverrides(t *testing.T) {
	rules, err := ParseRules(`{
		"workday_start": "09:00",
		"grace_limit": "09:15",
		"monthly_allowance_minutes": 240,
		"monthly_permission_cap": 2,
		"default_annual_balance": 25
	}`)
	require.NoError(t, err)

	assert.Equal(t, 540, rules.WorkdayStartMin)
	assert.Equal(t, 555, rules.GraceLimitMin)
	assert.Equal(t, 240, rules.MonthlyAllowanceMin)
	assert.Equal(t, 2, rules.MonthlyPermissionCap)
	assert.Equal(t, 25, rules.DefaultAnnualBalance)
	// Untouched fields keep their defaults.
	assert.Equal(t, 7, rules.DefaultCasualBalance)
	assert.Equal(t, 480, rules.WorkdayMinutes)
}

func TestParseRulesNumericTimes(t *testing.T) {
	rules, err := ParseRules(`{"workday_start": 480, "grace_limit": 510}`)
	require.NoError(t, err)
	assert.Equal(t, 480, rules.WorkdayStartMin)
	assert.Equal(t, 510, rules.GraceLimitMin)
}

func TestParseRulesRejectsBadInput(t *testing.T) {
	cases := []string{
		`not json`,
		`{"workday_start": "25:00"}`,
		`{"grace_limit": "eight thirty"}`,
		`{"workday_start": 1500}`,
		`{"workday_start": "09:00", "grace_limit": "08:00"}`,
		`{"monthly_allowance_minutes": -1}`,
		`{"max_permission_hours": 0}`,
		`{"workday_minutes": 0}`,
	}

	for _, c := range cases {
		_, err := ParseRules(c)
		assert.Error(t, err, "input: %s", c)
	}
}
