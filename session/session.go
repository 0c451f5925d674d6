package session

import "github.com/jrsteele09/go-flexcrew-dashboard/credentials"

// Roles sent by the FlexCrew API
const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// Session is the in-memory authentication state. Empty fields are absent.
type Session struct {
	AccessToken  string
	RefreshToken string
	UserEmail    string
	Role         string
}

// IsAuthenticated is true iff an access token is present
func (s Session) IsAuthenticated() bool {
	return s.AccessToken != ""
}

// IsAdmin reports whether the session carries the administrative role
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func (s Session) record() credentials.Record {
	return credentials.Record{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		UserEmail:    s.UserEmail,
		UserRole:     s.Role,
	}
}

func fromRecord(r credentials.Record) Session {
	return Session{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		UserEmail:    r.UserEmail,
		Role:         r.UserRole,
	}
}
