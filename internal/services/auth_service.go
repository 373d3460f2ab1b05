package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type AuthStore interface {
	// FindUserByUsernameOrEmail matches either column; nil without error
	// means no user exists.
	FindUserByUsernameOrEmail(username, email string) (*User, error)
	// FindUserByLogin matches the single login value against username OR email.
	FindUserByLogin(login string) (*User, error)
	InsertUser(u *User) error
}

// TokenSigner issues a signed session token for a verified identity.
type TokenSigner func(uid, username, role string) (string, error)

type AuthService struct {
	store     AuthStore
	signToken TokenSigner
	now       func() time.Time
	idGen     func(prefix string, n int) string
	hashCost  int
}

type AuthResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

func NewAuthService(store AuthStore, signer TokenSigner) *AuthService {
	return &AuthService{
		store:     store,
		signToken: signer,
		now:       func() time.Time { return time.Now().UTC() },
		idGen:     func(prefix string, n int) string { return prefix + shortID(n) },
		hashCost:  bcrypt.DefaultCost,
	}
}

// Register creates an identity and immediately issues a session token, so
// registration doubles as login. The duplicate lookup is advisory; the
// unique indexes on username and email are what actually guarantee
// one identity per field, and a constraint violation on insert is
// reported as the same conflict.
func (s *AuthService) Register(username, email, password, role string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("username, email and password required")
	}
	r, ok := ParseRole(strings.TrimSpace(role))
	if !ok {
		return nil, NewInvalidError("unknown role")
	}
	existing, err := s.store.FindUserByUsernameOrEmail(username, email)
	if err != nil {
		return nil, NewStoreError()
	}
	if existing != nil {
		return nil, NewDuplicateIdentityError("username or email already registered")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, NewInvalidError("password not hashable")
	}
	u := &User{
		ID:        s.idGen("u", 8),
		Username:  username,
		Email:     email,
		PassHash:  hash,
		Role:      r,
		Verified:  true,
		CreatedAt: s.now(),
	}
	if err := s.store.InsertUser(u); err != nil {
		if errors.Is(err, ErrUniqueViolation) {
			return nil, NewDuplicateIdentityError("username or email already registered")
		}
		return nil, NewStoreError()
	}
	token, err := s.signToken(u.ID, u.Username, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: token, User: u.Public()}, nil
}

// Login accepts a username or an email as the login value. An unknown
// login and a wrong password produce the identical error so the caller
// cannot probe which field was wrong.
func (s *AuthService) Login(login, password string) (*AuthResult, error) {
	login = strings.TrimSpace(login)
	if login == "" || strings.TrimSpace(password) == "" {
		return nil, NewInvalidError("login and password required")
	}
	u, err := s.store.FindUserByLogin(login)
	if err != nil {
		return nil, NewStoreError()
	}
	if u == nil {
		return nil, NewInvalidCredentialsError()
	}
	if err := bcrypt.CompareHashAndPassword(u.PassHash, []byte(password)); err != nil {
		return nil, NewInvalidCredentialsError()
	}
	token, err := s.signToken(u.ID, u.Username, string(u.Role))
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{Token: token, User: u.Public()}, nil
}

func shortID(n int) string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:n]
}
