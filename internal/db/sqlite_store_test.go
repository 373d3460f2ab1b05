package db

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"submithub/internal/services"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	// One named in-memory db per test; cache=shared keeps it alive
	// across the pool's connections.
	sqlDB, err := sql.Open("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared&_busy_timeout=5000")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, RunMigrations(sqlDB, ""))
	store, err := NewSQLiteStore(sqlDB, nil)
	require.NoError(t, err)
	return store
}

func testUser(id, username string, role services.Role) *services.User {
	return &services.User{
		ID:        id,
		Username:  username,
		Email:     username + "@example.com",
		PassHash:  []byte("$2a$10$fakehash"),
		Role:      role,
		Verified:  true,
		CreatedAt: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC),
	}
}

func TestUserRoundTripAndLookups(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.InsertUser(testUser("u1", "alice", services.RoleReviewer)))

	u, err := store.FindUserByUsername("alice")
	require.NoError(t, err)
	require.NotNil(t, u)
	require.Equal(t, services.RoleReviewer, u.Role)
	require.True(t, u.Verified)
	require.Equal(t, []byte("$2a$10$fakehash"), u.PassHash)

	byLogin, err := store.FindUserByLogin("alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, byLogin)
	require.Equal(t, "u1", byLogin.ID)

	missing, err := store.FindUserByUsername("nobody")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestInsertUserUniqueViolations(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.InsertUser(testUser("u1", "alice", services.RoleSubmitter)))

	sameName := testUser("u2", "alice", services.RoleSubmitter)
	sameName.Email = "fresh@example.com"
	err := store.InsertUser(sameName)
	require.True(t, errors.Is(err, services.ErrUniqueViolation), "username collision: %v", err)

	sameMail := testUser("u3", "bob", services.RoleSubmitter)
	sameMail.Email = "alice@example.com"
	err = store.InsertUser(sameMail)
	require.True(t, errors.Is(err, services.ErrUniqueViolation), "email collision: %v", err)
}

func TestRecordListingOrderAndScope(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.InsertUser(testUser("s1", "sam", services.RoleSubmitter)))
	require.NoError(t, store.InsertUser(testUser("s2", "sue", services.RoleSubmitter)))

	base := time.Date(2026, 2, 2, 10, 0, 0, 0, time.UTC)
	insert := func(id, owner string, offset time.Duration) {
		require.NoError(t, store.InsertRecord(&services.Record{
			ID: id, OwnerID: owner, OwnerName: owner, Title: "t", Content: "c",
			Status: services.StatusPending, CreatedAt: base.Add(offset),
		}))
	}
	insert("r1", "s1", 0)
	insert("r2", "s2", time.Minute)
	insert("r3", "s1", 2*time.Minute)

	all, err := store.ListRecords()
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []string{"r3", "r2", "r1"}, []string{all[0].ID, all[1].ID, all[2].ID})
	require.True(t, all[0].CreatedAt.Equal(base.Add(2*time.Minute)))

	scoped, err := store.ListRecordsByOwners([]string{"s1"})
	require.NoError(t, err)
	require.Len(t, scoped, 2)
	require.Equal(t, "r3", scoped[0].ID)
	require.Equal(t, "r1", scoped[1].ID)

	both, err := store.ListRecordsByOwners([]string{"s1", "s2"})
	require.NoError(t, err)
	require.Len(t, both, 3)

	none, err := store.ListRecordsByOwners(nil)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestRelationshipUniquePair(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.InsertUser(testUser("g1", "gwen", services.RoleGuardian)))
	require.NoError(t, store.InsertUser(testUser("s1", "sam", services.RoleSubmitter)))
	require.NoError(t, store.InsertUser(testUser("s2", "sue", services.RoleSubmitter)))

	granted := time.Date(2026, 2, 3, 8, 0, 0, 0, time.UTC)
	require.NoError(t, store.InsertRelationship(&services.Relationship{GuardianID: "g1", SubmitterID: "s1", GrantedAt: granted}))
	require.NoError(t, store.InsertRelationship(&services.Relationship{GuardianID: "g1", SubmitterID: "s2", GrantedAt: granted}))

	err := store.InsertRelationship(&services.Relationship{GuardianID: "g1", SubmitterID: "s1", GrantedAt: granted})
	require.True(t, errors.Is(err, services.ErrUniqueViolation), "duplicate pair: %v", err)

	ids, err := store.ListSubmitterIDs("g1")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"s1", "s2"}, ids)

	empty, err := store.ListSubmitterIDs("g2")
	require.NoError(t, err)
	require.Empty(t, empty)
}
