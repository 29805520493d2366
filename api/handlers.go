/*
handlers.go - HTTP API handlers for the attendance tracker

PURPOSE:
  Exposes the attendance engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Users:
    GET    /api/users                  List all users
    POST   /api/users                  Create user
    GET    /api/users/{id}             Get user details
    DELETE /api/users/{id}             Delete user + records (admin)
    PUT    /api/users/{id}/balances    Edit leave entitlements (admin)

  Auth:
    POST   /api/login                  Password login
    POST   /api/admin/login            Virtual admin login
    POST   /api/users/{id}/biometrics/registration/{begin,finish}
    POST   /api/biometrics/login/{begin,finish}
    DELETE /api/users/{id}/biometrics  Disable biometrics

  Records (admin):
    POST   /api/users/{id}/attendance  Record clock-in
    POST   /api/users/{id}/leaves      Record leave/permission
    POST   /api/users/{id}/notes       Record note
    DELETE /api/attendance/{id}        Remove entry
    DELETE /api/leaves/{id}
    DELETE /api/notes/{id}
    DELETE /api/users/{id}/records     Bulk clear entries

  Views:
    GET    /api/users/{id}/months/{month}  Month dashboard

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Load a demo scenario
    POST   /api/scenarios/reset        Wipe the database

REQUEST FLOW:
  1. Parse HTTP request
  2. Validate input
  3. Call domain logic (store, policy engine)
  4. Serialize response
  5. Handle errors

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 401/403: Missing or insufficient identity
  - 404: Resource not found
  - 409: Duplicate attendance date
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/warp/attendance-engine/auth"
	"github.com/warp/attendance-engine/policy"
	"github.com/warp/attendance-engine/tracker"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store tracker.Store
	Rules policy.Rules
	Auth  *auth.Service
	Bio   *auth.Biometrics

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler.
func NewHandler(store tracker.Store, rules policy.Rules, authSvc *auth.Service, bio *auth.Biometrics) *Handler {
	return &Handler{
		Store: store,
		Rules: rules,
		Auth:  authSvc,
		Bio:   bio,
	}
}

// =============================================================================
// USER HANDLERS
// =============================================================================

// ListUsers returns all users.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.Store.ListUsers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	dtos := make([]UserDTO, len(users))
	for i, u := range users {
		dtos[i] = toUserDTO(u)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetUser returns a single user.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*user))
}

// CreateUser creates a new user with the default leave entitlements.
func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}

	user, err := h.Store.CreateUser(r.Context(), tracker.User{
		Name:          strings.TrimSpace(req.Name),
		Password:      req.Password,
		AnnualBalance: h.Rules.DefaultAnnualBalance,
		CasualBalance: h.Rules.DefaultCasualBalance,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, toUserDTO(user))
}

// DeleteUser removes a user and all their records.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.Store.DeleteUser(r.Context(), id); err != nil {
		writeStoreError(w, "Failed to delete user", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateBalances edits a user's leave entitlements.
func (h *Handler) UpdateBalances(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateBalancesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.AnnualBalance < 0 || req.CasualBalance < 0 {
		writeError(w, http.StatusBadRequest, "Balances must be >= 0", nil)
		return
	}

	if err := h.Store.UpdateUserBalances(r.Context(), id, req.AnnualBalance, req.CasualBalance); err != nil {
		writeStoreError(w, "Failed to update balances", err)
		return
	}

	user, err := h.Store.GetUser(r.Context(), id)
	if err != nil || user == nil {
		writeError(w, http.StatusInternalServerError, "Failed to reload user", err)
		return
	}
	writeJSON(w, http.StatusOK, toUserDTO(*user))
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login authenticates a user by password.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	identity, token, err := h.Auth.LoginUser(r.Context(), req.UserID, req.Password)
	if err != nil {
		writeLoginError(w, err)
		return
	}

	user, _ := identity.User()
	dto := toUserDTO(user)
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, User: &dto})
}

// AdminLogin authenticates the virtual admin.
func (h *Handler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	_, token, err := h.Auth.LoginAdmin(req.Username, req.Password)
	if err != nil {
		writeLoginError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, Admin: true})
}

// BeginBiometricRegistration starts WebAuthn enrollment for a user.
func (h *Handler) BeginBiometricRegistration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.requireAccess(w, r, id) {
		return
	}

	options, sessionID, err := h.Bio.BeginRegistration(r.Context(), id)
	if err != nil {
		writeStoreError(w, "Failed to begin enrollment", err)
		return
	}
	writeJSON(w, http.StatusOK, CeremonyResponse{SessionID: sessionID, Options: options})
}

// FinishBiometricRegistration completes enrollment and stores the
// credential ID on the user.
func (h *Handler) FinishBiometricRegistration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.requireAccess(w, r, id) {
		return
	}

	var req FinishCeremonyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	credID, err := h.Bio.FinishRegistration(r.Context(), req.SessionID, req.Response)
	if err != nil {
		writeCeremonyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"credential_id": credID})
}

// BeginBiometricLogin starts the assertion ceremony.
func (h *Handler) BeginBiometricLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	options, sessionID, err := h.Bio.BeginLogin(r.Context(), req.UserID)
	if err != nil {
		writeCeremonyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CeremonyResponse{SessionID: sessionID, Options: options})
}

// FinishBiometricLogin completes the assertion and issues a session token.
func (h *Handler) FinishBiometricLogin(w http.ResponseWriter, r *http.Request) {
	var req FinishCeremonyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	user, err := h.Bio.FinishLogin(r.Context(), req.SessionID, req.Response)
	if err != nil {
		writeCeremonyError(w, err)
		return
	}

	token, err := h.Auth.IssueUserToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to issue token", err)
		return
	}
	dto := toUserDTO(user)
	writeJSON(w, http.StatusOK, TokenResponse{Token: token, User: &dto})
}

// DisableBiometrics clears the enrolled credential.
func (h *Handler) DisableBiometrics(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !h.requireAccess(w, r, id) {
		return
	}

	if err := h.Bio.Disable(r.Context(), id); err != nil {
		writeStoreError(w, "Failed to disable biometrics", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

// CreateAttendance records a clock-in. Lateness is computed here, once,
// and frozen on the entry. A second entry on the same date is rejected.
func (h *Handler) CreateAttendance(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req CreateAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Date == "" {
		writeError(w, http.StatusBadRequest, "Date is required", nil)
		return
	}

	if ok := h.ensureUser(w, r, userID); !ok {
		return
	}

	existing, err := h.Store.ListAttendanceByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to check attendance", err)
		return
	}
	for _, e := range existing {
		if e.Date == req.Date {
			writeStoreError(w, "Attendance already recorded", &tracker.DuplicateAttendanceError{
				UserID:     userID,
				Date:       req.Date,
				ExistingID: e.ID,
			})
			return
		}
	}

	entry, err := h.Store.CreateAttendance(r.Context(), tracker.AttendanceEntry{
		UserID:      userID,
		Date:        req.Date,
		Time:        req.Time,
		LateMinutes: h.Rules.Lateness(req.Time),
		Note:        req.Note,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record attendance", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAttendanceDTO(entry))
}

// DeleteAttendance removes one attendance entry.
func (h *Handler) DeleteAttendance(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteAttendance(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "Failed to delete attendance", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateLeave records a leave day or hourly permission.
func (h *Handler) CreateLeave(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req CreateLeaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Date == "" {
		writeError(w, http.StatusBadRequest, "Date is required", nil)
		return
	}

	leaveType := policy.LeaveType(req.Type)
	if !leaveType.Valid() {
		writeError(w, http.StatusBadRequest, "Unknown leave type", tracker.ErrInvalidLeave)
		return
	}
	if leaveType == policy.LeavePermission {
		if req.Hours < 1 || req.Hours > h.Rules.MaxPermissionHours {
			writeError(w, http.StatusBadRequest, "Permission hours out of range", tracker.ErrInvalidLeave)
			return
		}
	} else if req.Hours != 0 {
		writeError(w, http.StatusBadRequest, "Hours apply to permissions only", tracker.ErrInvalidLeave)
		return
	}

	if ok := h.ensureUser(w, r, userID); !ok {
		return
	}

	entry, err := h.Store.CreateLeave(r.Context(), tracker.LeaveEntry{
		UserID: userID,
		Date:   req.Date,
		Type:   leaveType,
		Hours:  req.Hours,
		Note:   req.Note,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record leave", err)
		return
	}
	writeJSON(w, http.StatusCreated, toLeaveDTO(entry))
}

// DeleteLeave removes one leave entry.
func (h *Handler) DeleteLeave(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteLeave(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "Failed to delete leave", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateNote records a dated note.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Date == "" || strings.TrimSpace(req.Content) == "" {
		writeError(w, http.StatusBadRequest, "Date and content are required", nil)
		return
	}

	if ok := h.ensureUser(w, r, userID); !ok {
		return
	}

	entry, err := h.Store.CreateNote(r.Context(), tracker.NoteEntry{
		UserID:  userID,
		Date:    req.Date,
		Content: req.Content,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record note", err)
		return
	}
	writeJSON(w, http.StatusCreated, toNoteDTO(entry))
}

// DeleteNote removes one note.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.DeleteNote(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, "Failed to delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearRecords wipes a user's entries, keeping the user.
func (h *Handler) ClearRecords(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")

	if ok := h.ensureUser(w, r, userID); !ok {
		return
	}
	if err := h.Store.ClearUserRecords(r.Context(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to clear records", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// MONTH VIEW
// =============================================================================

// MonthView assembles the month dashboard: the month's records plus the
// engine's derived numbers and the optional suggestion.
func (h *Handler) MonthView(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if !h.requireAccess(w, r, userID) {
		return
	}

	month, err := policy.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return
	}

	user, err := h.Store.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return
	}

	attendance, err := h.Store.ListAttendanceByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list attendance", err)
		return
	}
	leaves, err := h.Store.ListLeavesByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list leaves", err)
		return
	}
	notes, err := h.Store.ListNotesByUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list notes", err)
		return
	}

	summary := h.Rules.AggregateMonth(
		tracker.AttendanceRecords(attendance),
		tracker.LeaveRecords(leaves),
		month,
	)
	lateBalance := h.Rules.LateBalance(summary.TotalLateMinutes)
	suggestion := h.Rules.Suggest(summary.TotalLateMinutes, summary.PermissionsUsed)

	view := MonthViewDTO{
		Month:            month.String(),
		Attendance:       []AttendanceDTO{},
		Leaves:           []LeaveDTO{},
		Notes:            []NoteDTO{},
		TotalLateMinutes: summary.TotalLateMinutes,
		LateRemaining:    lateBalance.Remaining,
		OverLimit:        lateBalance.OverLimit,
		PermissionsUsed:  summary.PermissionsUsed,
		PermissionsLeft:  h.Rules.MonthlyPermissionCap - summary.PermissionsUsed,
		AnnualUsed:       summary.AnnualUsed,
		AnnualRemaining:  policy.Remaining(user.AnnualBalance, summary.AnnualUsed),
		CasualUsed:       summary.CasualUsed,
		CasualRemaining:  policy.Remaining(user.CasualBalance, summary.CasualUsed),
		Suggestion:       toSuggestionDTO(suggestion),
	}

	for _, e := range attendance {
		if month.Contains(e.Date) {
			view.Attendance = append(view.Attendance, toAttendanceDTO(e))
		}
	}
	for _, e := range leaves {
		if month.Contains(e.Date) {
			view.Leaves = append(view.Leaves, toLeaveDTO(e))
		}
	}
	for _, e := range notes {
		if month.Contains(e.Date) {
			view.Notes = append(view.Notes, toNoteDTO(e))
		}
	}

	writeJSON(w, http.StatusOK, view)
}

// =============================================================================
// HELPERS
// =============================================================================

// requireAccess enforces that the caller is the user in the path or the
// admin.
func (h *Handler) requireAccess(w http.ResponseWriter, r *http.Request, userID string) bool {
	identity, ok := auth.IdentityFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required", nil)
		return false
	}
	if !identity.CanAccess(userID) {
		writeError(w, http.StatusForbidden, "Access denied", nil)
		return false
	}
	return true
}

// ensureUser 404s when the path user doesn't exist.
func (h *Handler) ensureUser(w http.ResponseWriter, r *http.Request, userID string) bool {
	user, err := h.Store.GetUser(r.Context(), userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get user", err)
		return false
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "User not found", nil)
		return false
	}
	return true
}

func writeStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, tracker.ErrDuplicateAttendanceDate):
		writeError(w, http.StatusConflict, message, err)
	case tracker.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case tracker.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	default:
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeLoginError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
	case errors.Is(err, tracker.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found", nil)
	default:
		writeError(w, http.StatusInternalServerError, "Login failed", err)
	}
}

func writeCeremonyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrSessionNotFound):
		writeError(w, http.StatusBadRequest, "Ceremony session not found or expired", nil)
	case errors.Is(err, auth.ErrNotEnrolled):
		writeError(w, http.StatusBadRequest, "Biometrics not enrolled", nil)
	case errors.Is(err, auth.ErrCredentialMismatch):
		writeError(w, http.StatusUnauthorized, "Credential does not match enrollment", nil)
	case errors.Is(err, tracker.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "User not found", nil)
	default:
		writeError(w, http.StatusBadRequest, "Ceremony failed", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
