package services

import (
	"errors"
	"strings"
	"time"
)

type BindingStore interface {
	FindUserByUsername(username string) (*User, error)
	InsertRelationship(rel *Relationship) error
	ListSubmitterIDs(guardianID string) ([]string, error)
}

type BindingService struct {
	store BindingStore
	now   func() time.Time
}

type BindingResult struct {
	GuardianID string `json:"guardian_id"`
	Username   string `json:"username"`
}

func NewBindingService(store BindingStore) *BindingService {
	return &BindingService{
		store: store,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

// Bind links the guardian session to the submitter with the given
// username. Duplicate pairs are rejected by the store's primary key;
// that violation is reported as a conflict, distinct from other store
// failures.
func (s *BindingService) Bind(sess *Session, username string) (*BindingResult, error) {
	if sess == nil || sess.Role != RoleGuardian {
		return nil, NewUnauthorizedRoleError("only guardians can bind submitters")
	}
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, NewInvalidError("username required")
	}
	target, err := s.store.FindUserByUsername(username)
	if err != nil {
		return nil, NewStoreError()
	}
	if target == nil {
		return nil, NewTargetNotFoundError("no such user")
	}
	if target.Role != RoleSubmitter {
		return nil, NewInvalidTargetRoleError("target is not a submitter")
	}
	rel := &Relationship{GuardianID: sess.UserID, SubmitterID: target.ID, GrantedAt: s.now()}
	if err := s.store.InsertRelationship(rel); err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return nil, NewDuplicateRelationshipError("submitter already bound")
		}
		return nil, NewStoreError()
	}
	return &BindingResult{GuardianID: sess.UserID, Username: target.Username}, nil
}
