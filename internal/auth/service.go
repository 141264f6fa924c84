package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mukasa-Matthew/expense-api/internal/core"
	"github.com/Mukasa-Matthew/expense-api/internal/log"
)

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrEmailTaken is returned when registering an email that already
	// has an account.
	ErrEmailTaken = errors.New("email already registered")

	// ErrNoSession is returned for missing, expired or revoked tokens.
	ErrNoSession = errors.New("no valid session")
)

const minPasswordLen = 8

// Store is the persistence surface the auth service depends on.
type Store interface {
	CreateUser(ctx context.Context, u *core.User) error
	GetUserByEmail(ctx context.Context, email string) (*core.User, error)
	GetUser(ctx context.Context, id int64) (*core.User, error)
	CreateSession(ctx context.Context, token string, userID int64, expiresAt time.Time) error
	SessionUser(ctx context.Context, token string, now time.Time) (int64, error)
	TouchSession(ctx context.Context, token string, expiresAt time.Time) error
	DeleteSession(ctx context.Context, token string) error
	PurgeExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

// Service handles registration, login and session lifecycle. Sessions are
// opaque random tokens with a sliding expiry window.
type Service struct {
	store      Store
	logger     *log.Logger
	sessionTTL time.Duration
	bcryptCost int
	now        func() time.Time
}

func NewService(store Store, sessionTTL time.Duration, bcryptCost int, logger *log.Logger) *Service {
	return &Service{
		store:      store,
		logger:     logger.WithComponent(log.ComponentAuth),
		sessionTTL: sessionTTL,
		bcryptCost: bcryptCost,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a new account. The password is never stored, only its
// bcrypt hash.
func (s *Service) Register(ctx context.Context, email, name, password string, currency core.Currency) (*core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)

	var ve core.ValidationError
	if email == "" || !strings.Contains(email, "@") {
		ve.Add("email", "must be a valid email address")
	}
	if name == "" {
		ve.Add("name", "is required")
	}
	if len(password) < minPasswordLen {
		ve.Add("password", "must be at least 8 characters")
	}
	if currency == "" {
		currency = core.DefaultCurrency
	} else if !currency.Valid() {
		ve.Add("defaultCurrency", "is not a supported currency")
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, core.ErrNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	u := &core.User{
		Email:           email,
		Name:            name,
		PasswordHash:    string(hash),
		DefaultCurrency: currency,
		CreatedAt:       s.now(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", log.FieldUserID, u.ID, log.FieldOperation, log.OpRegister)
	return u, nil
}

// Login verifies the credentials and opens a session. The returned token is
// the only handle on the session; it is not derivable from stored state.
func (s *Service) Login(ctx context.Context, email, password string) (string, *core.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.store.CreateSession(ctx, token, u.ID, s.now().Add(s.sessionTTL)); err != nil {
		return "", nil, err
	}

	s.logger.Info("user logged in", log.FieldUserID, u.ID, log.FieldOperation, log.OpLogin)
	return token, u, nil
}

// Logout revokes the session. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSession(ctx, token)
}

// Authenticate resolves a token to its user and slides the expiry forward.
func (s *Service) Authenticate(ctx context.Context, token string) (int64, error) {
	if token == "" {
		return 0, ErrNoSession
	}
	now := s.now()
	userID, err := s.store.SessionUser(ctx, token, now)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return 0, ErrNoSession
		}
		return 0, err
	}
	if err := s.store.TouchSession(ctx, token, now.Add(s.sessionTTL)); err != nil {
		s.logger.Warn("session touch failed", log.FieldError, err)
	}
	return userID, nil
}

// User loads the account behind an authenticated user ID.
func (s *Service) User(ctx context.Context, userID int64) (*core.User, error) {
	return s.store.GetUser(ctx, userID)
}

// PurgeExpired removes expired sessions and reports how many went.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	purged, err := s.store.PurgeExpiredSessions(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if purged > 0 {
		s.logger.Debug("expired sessions purged", log.FieldDeletedCount, purged)
	}
	return purged, nil
}
