package domain

// User represents an authoring user as exposed by the backend.
// The feed only ever reads these fields; account management lives in
// the authentication flow outside this module.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// SessionStore exposes the device-local session values written by the
// login flow. Callers re-read on every operation instead of caching
// the values in memory.
type SessionStore interface {
	// Token returns the stored auth token, empty when logged out.
	Token() (string, error)

	// UserID returns the logged-in user's id.
	// Returns ErrNoUser when no user is stored.
	UserID() (int64, error)
}
