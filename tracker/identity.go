/*
identity.go - Authenticated identity as a tagged variant

PURPOSE:
  An authenticated caller is either a regular user backed by a persisted
  record, or the virtual admin. The admin has no row in the users table
  and no balances; modeling it as a separate variant keeps "is this the
  admin?" an explicit question instead of a magic user ID or a role
  column that only ever holds one value.
*/
package tracker

// Identity is the authenticated caller: a regular user or the virtual
// admin. The zero value is no identity at all.
type Identity struct {
	admin bool
	user  *User
}

// UserIdentity wraps a persisted user.
func UserIdentity(u User) Identity {
	return Identity{user: &u}
}

// AdminIdentity is the virtual admin. It has no backing record.
func AdminIdentity() Identity {
	return Identity{admin: true}
}

// IsAdmin reports whether this is the virtual admin.
func (i Identity) IsAdmin() bool {
	return i.admin
}

// IsZero reports whether no identity is present.
func (i Identity) IsZero() bool {
	return !i.admin && i.user == nil
}

// User returns the backing user record for a regular identity.
func (i Identity) User() (User, bool) {
	if i.user == nil {
		return User{}, false
	}
	return *i.user, true
}

// UserID returns the backing user's ID, or "" for the admin.
func (i Identity) UserID() string {
	if i.user == nil {
		return ""
	}
	return i.user.ID
}

// CanAccess reports whether the identity may act on the given user's
// records. The admin may act on anyone; a regular user only on itself.
func (i Identity) CanAccess(userID string) bool {
	if i.admin {
		return true
	}
	return i.user != nil && i.user.ID == userID
}
