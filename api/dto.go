/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

VALIDATION:
  Validation is done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
  - policy/suggest.go: Suggestion source type
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/warp/attendance-engine/policy"
	"github.com/warp/attendance-engine/tracker"
)

// =============================================================================
// USERS
// =============================================================================

// UserDTO represents a user in API responses. The password never leaves
// the server.
type UserDTO struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	AnnualBalance     int    `json:"annual_balance"`
	CasualBalance     int    `json:"casual_balance"`
	BiometricEnrolled bool   `json:"biometric_enrolled"`
	CreatedAt         string `json:"created_at,omitempty"`
}

func toUserDTO(u tracker.User) UserDTO {
	return UserDTO{
		ID:                u.ID,
		Name:              u.Name,
		AnnualBalance:     u.AnnualBalance,
		CasualBalance:     u.CasualBalance,
		BiometricEnrolled: u.BiometricCredID != "",
		CreatedAt:         u.CreatedAt.Format(time.RFC3339),
	}
}

// CreateUserRequest is the request to create a user.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// UpdateBalancesRequest sets both leave entitlements.
type UpdateBalancesRequest struct {
	AnnualBalance int `json:"annual_balance"`
	CasualBalance int `json:"casual_balance"`
}

// =============================================================================
// AUTH
// =============================================================================

// LoginRequest authenticates a user by ID and password.
type LoginRequest struct {
	UserID   string `json:"user_id"`
	Password string `json:"password"`
}

// AdminLoginRequest authenticates the virtual admin.
type AdminLoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse carries a session token and who it belongs to.
type TokenResponse struct {
	Token string   `json:"token"`
	Admin bool     `json:"admin"`
	User  *UserDTO `json:"user,omitempty"`
}

// CeremonyResponse carries WebAuthn options plus the session the client
// must echo back to the finish endpoint.
type CeremonyResponse struct {
	SessionID string          `json:"session_id"`
	Options   json.RawMessage `json:"options"`
}

// FinishCeremonyRequest completes a WebAuthn ceremony.
type FinishCeremonyRequest struct {
	SessionID string          `json:"session_id"`
	Response  json.RawMessage `json:"response"`
}

// =============================================================================
// ENTRIES
// =============================================================================

// AttendanceDTO represents an attendance entry in API responses.
type AttendanceDTO struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	LateMinutes int    `json:"late_minutes"`
	Note        string `json:"note,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

func toAttendanceDTO(e tracker.AttendanceEntry) AttendanceDTO {
	return AttendanceDTO{
		ID:          e.ID,
		UserID:      e.UserID,
		Date:        e.Date,
		Time:        e.Time,
		LateMinutes: e.LateMinutes,
		Note:        e.Note,
		CreatedAt:   e.CreatedAt.Format(time.RFC3339),
	}
}

// CreateAttendanceRequest records a clock-in. late_minutes is derived
// server-side; clients cannot set it.
type CreateAttendanceRequest struct {
	Date string `json:"date"`
	Time string `json:"time"`
	Note string `json:"note,omitempty"`
}

// LeaveDTO represents a leave entry in API responses.
type LeaveDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	Type      string `json:"type"`
	Hours     int    `json:"hours,omitempty"`
	Note      string `json:"note,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toLeaveDTO(e tracker.LeaveEntry) LeaveDTO {
	return LeaveDTO{
		ID:        e.ID,
		UserID:    e.UserID,
		Date:      e.Date,
		Type:      string(e.Type),
		Hours:     e.Hours,
		Note:      e.Note,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

// CreateLeaveRequest records a leave day or permission.
type CreateLeaveRequest struct {
	Date  string `json:"date"`
	Type  string `json:"type"`
	Hours int    `json:"hours,omitempty"`
	Note  string `json:"note,omitempty"`
}

// NoteDTO represents a note in API responses.
type NoteDTO struct {
	ID        string `json:"id"`
	UserID    string `json:"user_id"`
	Date      string `json:"date"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at,omitempty"`
}

func toNoteDTO(e tracker.NoteEntry) NoteDTO {
	return NoteDTO{
		ID:        e.ID,
		UserID:    e.UserID,
		Date:      e.Date,
		Content:   e.Content,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

// CreateNoteRequest records a dated note.
type CreateNoteRequest struct {
	Date    string `json:"date"`
	Content string `json:"content"`
}

// =============================================================================
// MONTH VIEW
// =============================================================================

// MonthViewDTO is the month dashboard: the month's records plus every
// derived number the policy engine produces for it.
type MonthViewDTO struct {
	Month      string          `json:"month"`
	Attendance []AttendanceDTO `json:"attendance"`
	Leaves     []LeaveDTO      `json:"leaves"`
	Notes      []NoteDTO       `json:"notes"`

	TotalLateMinutes int  `json:"total_late_minutes"`
	LateRemaining    int  `json:"late_remaining"`
	OverLimit        bool `json:"over_limit"`

	PermissionsUsed int `json:"permissions_used"`
	PermissionsLeft int `json:"permissions_left"`

	AnnualUsed      int `json:"annual_used"`
	AnnualRemaining int `json:"annual_remaining"`
	CasualUsed      int `json:"casual_used"`
	CasualRemaining int `json:"casual_remaining"`

	Suggestion *SuggestionDTO `json:"suggestion,omitempty"`
}

// SuggestionDTO is the advisory recommendation for an over-allowance month.
type SuggestionDTO struct {
	Severity        string `json:"severity"`
	Message         string `json:"message"`
	ExcessMinutes   int    `json:"excess_minutes"`
	PermissionsLeft int    `json:"permissions_left"`
	HoursNeeded     int    `json:"hours_needed"`
	DeductionDays   string `json:"deduction_days,omitempty"`
}

func toSuggestionDTO(s *policy.Suggestion) *SuggestionDTO {
	if s == nil {
		return nil
	}
	dto := &SuggestionDTO{
		Severity:        string(s.Severity),
		Message:         s.Message,
		ExcessMinutes:   s.ExcessMinutes,
		PermissionsLeft: s.PermissionsLeft,
		HoursNeeded:     s.HoursNeeded,
	}
	if !s.DeductionDays.IsZero() {
		dto.DeductionDays = s.DeductionDays.String()
	}
	return dto
}

// =============================================================================
// SCENARIOS AND ERRORS
// =============================================================================

// ScenarioDTO describes a loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
