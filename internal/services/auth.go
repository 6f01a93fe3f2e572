package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"grubio/internal/domain"
)

const minPasswordLen = 8

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// refreshRevoker is implemented by identity providers that hold their own refresh tokens (Firebase).
type refreshRevoker interface {
	RevokeUser(ctx context.Context, userID string) error
}

type authService struct {
	userRepo     domain.UserRepository
	sessionRepo  domain.SessionRepository
	hasher       domain.PasswordHasher
	issuer       domain.TokenIssuer
	verifier     domain.TokenVerifier
	releaser     domain.SubscriptionReleaser
	emailService domain.EmailService
	tokenExpiry  time.Duration
	provision    bool
	logger       *slog.Logger
}

// AuthOption customizes an AuthService.
type AuthOption func(*authService)

// WithUserProvisioning makes Authenticate create a user record for principals it has not seen,
// which is needed when identities are issued by an external provider.
func WithUserProvisioning() AuthOption {
	return func(s *authService) { s.provision = true }
}

// NewAuthService creates the identity provider service.
func NewAuthService(
	userRepo domain.UserRepository,
	sessionRepo domain.SessionRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
	verifier domain.TokenVerifier,
	releaser domain.SubscriptionReleaser,
	emailService domain.EmailService,
	tokenExpiry time.Duration,
	logger *slog.Logger,
	opts ...AuthOption,
) domain.AuthService {
	s := &authService{
		userRepo:     userRepo,
		sessionRepo:  sessionRepo,
		hasher:       hasher,
		issuer:       issuer,
		verifier:     verifier,
		releaser:     releaser,
		emailService: emailService,
		tokenExpiry:  tokenExpiry,
		logger:       logger,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *authService) SignUp(ctx context.Context, email, password, displayName string) (*domain.User, error) {
	if s.issuer == nil {
		return nil, fmt.Errorf("password sign-up: %w", domain.ErrUnavailable)
	}
	email = strings.TrimSpace(strings.ToLower(email))
	var problems []string
	if !emailRegexp.MatchString(email) {
		problems = append(problems, "invalid email format")
	}
	if len(password) < minPasswordLen {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}

	if _, err := s.userRepo.GetByEmail(ctx, email); err == nil {
		return nil, domain.ErrEmailInUse
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, err
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user := domain.NewUser(email, strings.TrimSpace(displayName), now, now)
	user.PasswordHash = hash
	user.Salt = salt
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrEmailInUse) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if s.emailService != nil {
		data := &domain.WelcomeEmailData{Email: user.Email, DisplayName: user.Name()}
		if err := s.emailService.SendWelcome(ctx, data); err != nil {
			s.logger.WarnContext(ctx, "welcome email not sent", "user_id", user.ID, "err", err)
		}
	}
	return user, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	if s.issuer == nil {
		return "", nil, fmt.Errorf("password sign-in: %w", domain.ErrUnavailable)
	}
	user, err := s.userRepo.GetByEmail(ctx, strings.TrimSpace(strings.ToLower(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrUserNotFound
		}
		return "", nil, fmt.Errorf("get user by email: %w", err)
	}
	if user.PasswordHash == "" {
		return "", nil, domain.ErrWrongPassword
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrWrongPassword
	}
	token, err := s.issuer.Issue(user.ID, user.Email, uuid.NewString(), s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}
	return token, user, nil
}

// SignOut cancels the session's live subscriptions first, so none of them can
// observe the revoked session, then revokes it.
func (s *authService) SignOut(ctx context.Context, p *domain.Principal) error {
	if s.releaser != nil {
		n := s.releaser.Release(p.SessionID)
		s.logger.DebugContext(ctx, "released live queries", "session_id", p.SessionID, "count", n)
	}
	if err := s.sessionRepo.Revoke(ctx, p.SessionID, p.UserID, time.Now()); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if s.releaser != nil {
		// Connections that authenticated between the first release and the revoke.
		if n := s.releaser.Release(p.SessionID); n > 0 {
			s.logger.DebugContext(ctx, "released late live queries", "session_id", p.SessionID, "count", n)
		}
	}
	if r, ok := s.verifier.(refreshRevoker); ok {
		if err := r.RevokeUser(ctx, p.UserID); err != nil {
			return fmt.Errorf("revoke provider tokens: %w", err)
		}
	}
	return nil
}

func (s *authService) Authenticate(ctx context.Context, token string) (*domain.Principal, error) {
	p, err := s.verifier.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.CheckSession(ctx, p); err != nil {
		return nil, err
	}
	if s.provision {
		now := time.Now()
		u := domain.NewUser(p.Email, "", now, now)
		u.ID = p.UserID
		if err := s.userRepo.EnsureExists(ctx, u); err != nil {
			return nil, fmt.Errorf("provision user: %w", err)
		}
	}
	return p, nil
}

func (s *authService) CheckSession(ctx context.Context, p *domain.Principal) error {
	revoked, err := s.sessionRepo.IsRevoked(ctx, p.SessionID)
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if revoked {
		return domain.ErrSessionEnded
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID, displayName string) (*domain.User, error) {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.DisplayName = strings.TrimSpace(displayName)
	user.UpdatedAt = time.Now()
	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
