package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"moodwall/internal/models"
	"moodwall/internal/session"
	"moodwall/internal/store"
)

const (
	MinPasswordLength = 6
	guestPrefKey      = "is_guest"
	guestNameChars    = "abcdefghijklmnopqrstuvwxyz0123456789"
)

type IdentityStore interface {
	CreateAuthAccount(ctx context.Context, a *models.AuthAccount) error
	GetAuthAccount(ctx context.Context, id string) (*models.AuthAccount, error)
	GetAuthAccountByBlindIndex(ctx context.Context, blindIndex string) (*models.AuthAccount, error)
	DeleteAuthAccount(ctx context.Context, id string) error
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByAuthAccount(ctx context.Context, accountID string) (*models.User, error)
	UpdateUser(ctx context.Context, id string, upd store.UserUpdate) (*models.User, error)
	LinkAuthAccount(ctx context.Context, userID, accountID string) (*models.User, error)
	DeleteUser(ctx context.Context, id string) error
}

type IdentityService struct {
	store IdentityStore
	enc   *EncryptionService
	log   *zap.Logger
	cost  int
}

func NewIdentityService(st IdentityStore, enc *EncryptionService, log *zap.Logger) *IdentityService {
	if log == nil {
		log = zap.NewNop()
	}
	return &IdentityService{store: st, enc: enc, log: log, cost: bcrypt.DefaultCost}
}

// SetHashCost overrides the bcrypt cost used for new passwords.
func (s *IdentityService) SetHashCost(cost int) { s.cost = cost }

// StartGuest resumes the guest row named by guestID, or creates a new one when
// guestID is empty or does not name a guest.
func (s *IdentityService) StartGuest(ctx context.Context, guestID string) (*models.User, error) {
	if _, err := uuid.Parse(guestID); err == nil {
		u, err := s.store.GetUser(ctx, guestID)
		switch {
		case err == nil && u.IsGuest():
			return u, nil
		case err != nil && !errors.Is(err, store.ErrNotFound):
			return nil, fmt.Errorf("lookup guest: %w", err)
		}
	}

	name := "Guest_" + randomSuffix(6)
	u := &models.User{
		DisplayName: &name,
		Preferences: models.Preferences{guestPrefKey: true},
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create guest: %w", err)
	}
	s.log.Info("guest started", zap.String("user_id", u.ID))
	return u, nil
}

// SignUp registers an email account. A guest session, when given, is
// converted in place so its history stays attached to the same user row.
func (s *IdentityService) SignUp(ctx context.Context, email, password, username string, guest *session.Session) (*models.User, error) {
	email = normalizeEmail(email)
	if !strings.Contains(email, "@") || len(password) < MinPasswordLength {
		return nil, ErrInvalidSignup
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	acct := &models.AuthAccount{Email: email, PasswordHash: string(hashed)}
	if err := s.enc.EncryptAccount(acct); err != nil {
		return nil, fmt.Errorf("encrypt account: %w", err)
	}
	if err := s.store.CreateAuthAccount(ctx, acct); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create account: %w", err)
	}

	u, err := s.attachProfile(ctx, acct.ID, strings.TrimSpace(username), guest)
	if err != nil {
		if delErr := s.store.DeleteAuthAccount(ctx, acct.ID); delErr != nil {
			s.log.Error("orphaned auth account", zap.String("account_id", acct.ID), zap.Error(delErr))
		}
		return nil, err
	}
	s.log.Info("account created", zap.String("user_id", u.ID), zap.Bool("converted_guest", guest != nil && guest.IsGuest))
	return u, nil
}

func (s *IdentityService) attachProfile(ctx context.Context, accountID, username string, guest *session.Session) (*models.User, error) {
	if guest != nil && guest.IsGuest && guest.Valid() {
		u, err := s.store.LinkAuthAccount(ctx, guest.UserID, accountID)
		if errors.Is(err, store.ErrNotFound) {
			return nil, s.conversionFailure(ctx, guest.UserID)
		}
		if err != nil {
			return nil, fmt.Errorf("convert guest: %w", err)
		}
		upd := store.UserUpdate{Preferences: u.Preferences.Clone()}
		delete(upd.Preferences, guestPrefKey)
		if username != "" {
			upd.DisplayName = &username
		}
		return s.store.UpdateUser(ctx, u.ID, upd)
	}

	u := &models.User{AuthAccountID: &accountID, Preferences: models.Preferences{}}
	if username != "" {
		u.DisplayName = &username
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return u, nil
}

// conversionFailure tells a guest row that is already linked apart from one
// that no longer exists.
func (s *IdentityService) conversionFailure(ctx context.Context, userID string) error {
	u, err := s.store.GetUser(ctx, userID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrUserNotFound
	case err != nil:
		return fmt.Errorf("convert guest: %w", err)
	case !u.IsGuest():
		return ErrGuestConverted
	default:
		return fmt.Errorf("convert guest %s: link refused", userID)
	}
}

// SignIn verifies the credentials and returns the linked profile, creating it
// if the account has none yet.
func (s *IdentityService) SignIn(ctx context.Context, email, password string) (*models.User, error) {
	acct, err := s.store.GetAuthAccountByBlindIndex(ctx, s.enc.EmailIndex(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup account: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	u, err := s.store.GetUserByAuthAccount(ctx, acct.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("lookup profile: %w", err)
	}
	u = &models.User{AuthAccountID: &acct.ID, Preferences: models.Preferences{}}
	err = s.store.CreateUser(ctx, u)
	if errors.Is(err, store.ErrConflict) {
		// a concurrent sign-in created the profile first
		u, err = s.store.GetUserByAuthAccount(ctx, acct.ID)
		if err != nil {
			return nil, fmt.Errorf("lookup profile: %w", err)
		}
		return u, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create profile: %w", err)
	}
	return u, nil
}

// Resolve checks a verified token against the current user row. The guest
// flag comes from the row, and a guest token for a row that has since been
// registered is rejected with ErrGuestConverted. Missing rows pass through so
// each operation can report them its own way.
func (s *IdentityService) Resolve(ctx context.Context, sess session.Session) (session.Session, error) {
	u, err := s.store.GetUser(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return sess, nil
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("resolve session: %w", err)
	}
	if sess.IsGuest && !u.IsGuest() {
		return session.Session{}, ErrGuestConverted
	}
	return session.Session{UserID: u.ID, IsGuest: u.IsGuest()}, nil
}

func (s *IdentityService) Profile(ctx context.Context, sess session.Session) (*models.User, error) {
	u, err := s.store.GetUser(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// Email returns the decrypted address of a registered user, or "" for a guest.
func (s *IdentityService) Email(ctx context.Context, u *models.User) (string, error) {
	if u.AuthAccountID == nil {
		return "", nil
	}
	acct, err := s.store.GetAuthAccount(ctx, *u.AuthAccountID)
	if err != nil {
		return "", fmt.Errorf("lookup account: %w", err)
	}
	if err := s.enc.DecryptAccount(acct); err != nil {
		return "", fmt.Errorf("decrypt account: %w", err)
	}
	return acct.Email, nil
}

// UpdateProfile changes the display name and replaces the preference map.
func (s *IdentityService) UpdateProfile(ctx context.Context, sess session.Session, displayName *string, prefs models.Preferences) (*models.User, error) {
	upd := store.UserUpdate{Preferences: prefs}
	if displayName != nil {
		name := strings.TrimSpace(*displayName)
		upd.DisplayName = &name
	}
	if upd.Empty() {
		return s.Profile(ctx, sess)
	}
	u, err := s.store.UpdateUser(ctx, sess.UserID, upd)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// DeleteAccount removes the user with everything it owns, then its auth account.
func (s *IdentityService) DeleteAccount(ctx context.Context, sess session.Session) error {
	u, err := s.Profile(ctx, sess)
	if err != nil {
		return err
	}
	if err := s.store.DeleteUser(ctx, u.ID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("delete user: %w", err)
	}
	if u.AuthAccountID != nil {
		if err := s.store.DeleteAuthAccount(ctx, *u.AuthAccountID); err != nil && !errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("delete auth account: %w", err)
		}
	}
	s.log.Info("account deleted", zap.String("user_id", u.ID), zap.Bool("guest", u.IsGuest()))
	return nil
}

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = guestNameChars[rand.IntN(len(guestNameChars))]
	}
	return string(b)
}
