package services

import (
	"strings"
	"time"
)

type RecordStore interface {
	InsertRecord(r *Record) error
	// ListRecords and ListRecordsByOwners return newest-first.
	ListRecords() ([]*Record, error)
	ListRecordsByOwners(ownerIDs []string) ([]*Record, error)
}

// RelationshipResolver reads the submitter ids bound to a guardian.
type RelationshipResolver interface {
	ListSubmitterIDs(guardianID string) ([]string, error)
}

type RecordService struct {
	store RecordStore
	rels  RelationshipResolver
	now   func() time.Time
	idGen func(prefix string, n int) string
}

func NewRecordService(store RecordStore, rels RelationshipResolver) *RecordService {
	return &RecordService{
		store: store,
		rels:  rels,
		now:   func() time.Time { return time.Now().UTC() },
		idGen: func(prefix string, n int) string { return prefix + shortID(n) },
	}
}

// Submit creates a pending record owned by the session identity. Owner id
// and display name come from the verified session, never from the body.
func (s *RecordService) Submit(sess *Session, title, content string) (*Record, error) {
	if sess == nil || sess.Role != RoleSubmitter {
		return nil, NewUnauthorizedRoleError("only submitters can create records")
	}
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, NewInvalidError("title and content required")
	}
	rec := &Record{
		ID:        s.idGen("r", 8),
		OwnerID:   sess.UserID,
		OwnerName: sess.Username,
		Title:     title,
		Content:   content,
		Status:    StatusPending,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertRecord(rec); err != nil {
		return nil, NewStoreError()
	}
	return rec, nil
}

// List returns the records the session is allowed to see, newest first.
// The switch is exhaustive over the role enum: an unrecognized role is
// rejected, never handed the unrestricted reviewer view.
func (s *RecordService) List(sess *Session) ([]*Record, error) {
	if sess == nil {
		return nil, NewUnauthorizedRoleError("session required")
	}
	switch sess.Role {
	case RoleSubmitter:
		recs, err := s.store.ListRecordsByOwners([]string{sess.UserID})
		if err != nil {
			return nil, NewStoreError()
		}
		return recs, nil
	case RoleReviewer:
		recs, err := s.store.ListRecords()
		if err != nil {
			return nil, NewStoreError()
		}
		return recs, nil
	case RoleGuardian:
		ids, err := s.rels.ListSubmitterIDs(sess.UserID)
		if err != nil {
			return nil, NewStoreError()
		}
		if len(ids) == 0 {
			// A guardian with no bindings sees nothing; skip the record query.
			return []*Record{}, nil
		}
		recs, err := s.store.ListRecordsByOwners(ids)
		if err != nil {
			return nil, NewStoreError()
		}
		return recs, nil
	default:
		return nil, NewUnauthorizedRoleError("unrecognized role")
	}
}
