/*
scenarios.go - Demo scenario loaders

PURPOSE:
  Seeds the database with recognizable situations so the suggestion
  heuristic and balance math can be demonstrated without hand-entering a
  month of records. Each scenario resets the database first.

SCENARIOS:
  quiet-month:           Lateness well inside the allowance
  needs-permission:      Over the allowance, coverable by one permission
  permissions-exhausted: Over the allowance with all permissions burned
  big-backlog:           Excess too large for a single permission

SEE ALSO:
  - handlers.go: Handler context
  - policy/suggest.go: The heuristic these scenarios exercise
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/warp/attendance-engine/policy"
	"github.com/warp/attendance-engine/tracker"
)

var scenarios = []ScenarioDTO{
	{
		ID:          "quiet-month",
		Name:        "Quiet Month",
		Description: "A user with a little lateness, well inside the monthly allowance. No suggestion fires.",
	},
	{
		ID:          "needs-permission",
		Name:        "Needs a Permission",
		Description: "Lateness just over the allowance. The engine recommends a one-hour permission.",
	},
	{
		ID:          "permissions-exhausted",
		Name:        "Permissions Exhausted",
		Description: "Over the allowance with all monthly permissions used. A deduction estimate is shown.",
	},
	{
		ID:          "big-backlog",
		Name:        "Big Backlog",
		Description: "Excess lateness too large for a single permission to cover.",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario reports which scenario was loaded last.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"scenario_id": h.currentScenario})
}

// ResetDatabase wipes everything.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// LoadScenario resets the database and seeds the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}

	var err error
	switch req.ScenarioID {
	case "quiet-month":
		err = h.loadQuietMonth(ctx)
	case "needs-permission":
		err = h.loadNeedsPermission(ctx)
	case "permissions-exhausted":
		err = h.loadPermissionsExhausted(ctx)
	case "big-backlog":
		err = h.loadBigBacklog(ctx)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario: %s", req.ScenarioID), nil)
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario_id": req.ScenarioID})
}

// =============================================================================
// SCENARIO BUILDERS
// =============================================================================

// quiet-month: 75 late minutes total, one annual leave. Nothing fires.
func (h *Handler) loadQuietMonth(ctx context.Context) error {
	user, err := h.seedUser(ctx, "Sara Haddad")
	if err != nil {
		return err
	}
	// 45 + 60 = 105 minutes, well under the 360 allowance.
	if err := h.seedAttendance(ctx, user.ID, map[int]string{
		2:  "08:10",
		5:  "08:45",
		9:  "08:30",
		12: "08:00",
		16: "09:00",
	}); err != nil {
		return err
	}
	return h.seedLeave(ctx, user.ID, 19, policy.LeaveAnnual, 0)
}

// needs-permission: 400 late minutes, no permissions used. The engine
// should answer with a success suggestion for a 1-hour permission.
func (h *Handler) loadNeedsPermission(ctx context.Context) error {
	user, err := h.seedUser(ctx, "Omar Nassif")
	if err != nil {
		return err
	}
	// 4 x 100 = 400 minutes, 40 over the allowance.
	return h.seedAttendance(ctx, user.ID, map[int]string{
		3:  "09:40",
		8:  "09:40",
		15: "09:40",
		22: "09:40",
	})
}

// permissions-exhausted: 500 late minutes with 3 permissions burned.
// Danger: a deduction estimate is attached.
func (h *Handler) loadPermissionsExhausted(ctx context.Context) error {
	user, err := h.seedUser(ctx, "Lina Aziz")
	if err != nil {
		return err
	}
	// 5 x 100 = 500 minutes.
	if err := h.seedAttendance(ctx, user.ID, map[int]string{
		2:  "09:40",
		6:  "09:40",
		13: "09:40",
		20: "09:40",
		27: "09:40",
	}); err != nil {
		return err
	}
	for _, day := range []int{7, 14, 21} {
		if err := h.seedLeave(ctx, user.ID, day, policy.LeavePermission, 1); err != nil {
			return err
		}
	}
	return nil
}

// big-backlog: 600 late minutes, one permission used. 240 excess needs
// 4 hours, more than one permission can cover.
func (h *Handler) loadBigBacklog(ctx context.Context) error {
	user, err := h.seedUser(ctx, "Khaled Mansour")
	if err != nil {
		return err
	}
	// 4 x 150 = 600 minutes.
	if err := h.seedAttendance(ctx, user.ID, map[int]string{
		4:  "10:30",
		11: "10:30",
		18: "10:30",
		25: "10:30",
	}); err != nil {
		return err
	}
	return h.seedLeave(ctx, user.ID, 10, policy.LeavePermission, 2)
}

// =============================================================================
// SEED HELPERS
// =============================================================================

func (h *Handler) seedUser(ctx context.Context, name string) (tracker.User, error) {
	return h.Store.CreateUser(ctx, tracker.User{
		Name:          name,
		Password:      "demo",
		AnnualBalance: h.Rules.DefaultAnnualBalance,
		CasualBalance: h.Rules.DefaultCasualBalance,
	})
}

func (h *Handler) seedAttendance(ctx context.Context, userID string, days map[int]string) error {
	month := policy.MonthOf(time.Now())
	for day, clockIn := range days {
		_, err := h.Store.CreateAttendance(ctx, tracker.AttendanceEntry{
			UserID:      userID,
			Date:        fmt.Sprintf("%s-%02d", month, day),
			Time:        clockIn,
			LateMinutes: h.Rules.Lateness(clockIn),
			Note:        "demo data",
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) seedLeave(ctx context.Context, userID string, day int, leaveType policy.LeaveType, hours int) error {
	month := policy.MonthOf(time.Now())
	_, err := h.Store.CreateLeave(ctx, tracker.LeaveEntry{
		UserID: userID,
		Date:   fmt.Sprintf("%s-%02d", month, day),
		Type:   leaveType,
		Hours:  hours,
	})
	return err
}
