// Package domain defines the portal's authentication and authorization model: principals of
// four kinds, the claims carried by a session token, and the ordered access policy table that
// the gatekeeper evaluates on every page request.
package domain

import "time"

// Kind identifies which principal table an account lives in. The string value doubles as the
// role carried in session tokens and as the first path segment of the kind's landing page.
type Kind string

const (
	// KindAdmin is an institution administrator.
	KindAdmin Kind = "admin"

	// KindTeacher is a faculty member.
	KindTeacher Kind = "teacher"

	// KindStudent is an enrolled student.
	KindStudent Kind = "student"

	// KindParent is a student's guardian.
	KindParent Kind = "parent"
)

// LookupOrder is the fixed priority in which principal kinds are searched during login.
// Login names are unique per kind only, so a name present in two kinds always resolves to
// the earlier kind in this list.
var LookupOrder = []Kind{KindAdmin, KindTeacher, KindStudent, KindParent}

// DefaultSessionTTL is the validity window of a freshly issued session token.
const DefaultSessionTTL = 7 * 24 * time.Hour

// SessionCookieName is the default name of the cookie carrying the session token.
const SessionCookieName = "session"
