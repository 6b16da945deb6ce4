package entities

// SessionState is the client's authorization context
type SessionState int

const (
	SessionAnonymous SessionState = iota
	SessionAuthenticatedUser
	SessionAuthenticatedAdmin
)

func (s SessionState) String() string {
	switch s {
	case SessionAuthenticatedUser:
		return "AuthenticatedUser"
	case SessionAuthenticatedAdmin:
		return "AuthenticatedAdmin"
	default:
		return "Anonymous"
	}
}

// IsAuthenticated reports whether a token is held
func (s SessionState) IsAuthenticated() bool {
	return s == SessionAuthenticatedUser || s == SessionAuthenticatedAdmin
}

// Session is the single client session. The zero value is anonymous.
type Session struct {
	Token   string `json:"token,omitempty"`
	UserID  string `json:"userId,omitempty"`
	IsAdmin bool   `json:"isAdmin"`
}

// State derives the session state
func (s Session) State() SessionState {
	switch {
	case s.Token == "":
		return SessionAnonymous
	case s.IsAdmin:
		return SessionAuthenticatedAdmin
	default:
		return SessionAuthenticatedUser
	}
}

// LoginResponse is returned by POST /auth/login
type LoginResponse struct {
	Token string `json:"token"`
}

// AdminProfile is the user object returned by admin login
type AdminProfile struct {
	ID      string `json:"_id"`
	IsAdmin bool   `json:"isAdmin"`
}

// AdminLoginResponse is returned by POST /auth/admin/login
type AdminLoginResponse struct {
	Token   string        `json:"token"`
	User    *AdminProfile `json:"user"`
	Message string        `json:"message,omitempty"`
}

// MessageResponse is the common `{ message }` success shape
type MessageResponse struct {
	Message string `json:"message"`
}
