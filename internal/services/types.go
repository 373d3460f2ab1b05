package services

import "time"

// Role is the closed set of caller roles. Scoping logic switches over it
// exhaustively; anything outside the three known values fails closed.
type Role string

const (
	RoleSubmitter Role = "submitter"
	RoleReviewer  Role = "reviewer"
	RoleGuardian  Role = "guardian"
)

// ParseRole maps a client-supplied role string onto the enum. The empty
// string defaults to submitter; unknown values are rejected.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case "":
		return RoleSubmitter, true
	case RoleSubmitter, RoleReviewer, RoleGuardian:
		return Role(s), true
	}
	return "", false
}

const StatusPending = "pending"

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	PassHash  []byte    `json:"-"`
	Role      Role      `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// PublicUser is the identity view returned to clients.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Role: u.Role}
}

type Record struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	OwnerName string    `json:"owner_name"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// Relationship links a guardian to one submitter whose records it may read.
// The pair is unique; the store enforces that with a primary key.
type Relationship struct {
	GuardianID  string    `json:"guardian_id"`
	SubmitterID string    `json:"submitter_id"`
	GrantedAt   time.Time `json:"granted_at"`
}

// Session is the verified identity for one request, decoded from the
// bearer token by the auth middleware. Role staleness between issuance
// and use is accepted; re-authentication picks up role changes.
type Session struct {
	UserID   string
	Username string
	Role     Role
}
