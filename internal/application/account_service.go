package application

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/helpers"
	"github.com/oksasatya/account-service/pkg/mailer"
	tpl "github.com/oksasatya/account-service/pkg/mailer/templates"
	"github.com/oksasatya/account-service/pkg/validation"
)

// EmailPublisher is the notifier boundary. Delivery is fire-and-forget:
// publish failures are logged, never surfaced to the caller.
type EmailPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

const profileCacheTTL = 15 * time.Minute

func profileKey(accountID string) string {
	return "account:profile:" + accountID
}

// Service is the account lifecycle orchestrator. It drives an account from
// registered through verified to login-enabled, composing the account store,
// the verification token service, the credential hasher, and the session
// token manager.
type Service struct {
	Accounts      repository.AccountRepository
	Verifications *VerificationService
	JWT           *helpers.JWTManager
	Redis         *redis.Client
	Pub           EmailPublisher
	Logger        *logrus.Logger

	AppName        string
	VerifyEmailURL string
	MailEnabled    bool
}

func NewService(
	accounts repository.AccountRepository,
	verifications *VerificationService,
	jwt *helpers.JWTManager,
	rdb *redis.Client,
	pub EmailPublisher,
	logger *logrus.Logger,
	appName, verifyEmailURL string,
	mailEnabled bool,
) *Service {
	return &Service{
		Accounts:       accounts,
		Verifications:  verifications,
		JWT:            jwt,
		Redis:          rdb,
		Pub:            pub,
		Logger:         logger,
		AppName:        appName,
		VerifyEmailURL: verifyEmailURL,
		MailEnabled:    mailEnabled,
	}
}

type RegisterInput struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// AccountProjection is the public view of an account; the password hash never
// leaves the service.
type AccountProjection struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Verified     bool      `json:"verified"`
	LoginEnabled bool      `json:"login_enabled"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func project(a *entity.Account) *AccountProjection {
	return &AccountProjection{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		Verified:     a.Verified,
		LoginEnabled: a.LoginEnabled,
		IsAdmin:      a.IsAdmin,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// AuthResult is returned by Register and Login: public account fields plus a
// freshly issued session token.
type AuthResult struct {
	Account      *AccountProjection
	SessionToken string
	TokenExpiry  time.Time
}

func validateRegisterInput(in RegisterInput) error {
	if in.Name == "" {
		return invalidField("name", "is required")
	}
	if in.Email == "" {
		return invalidField("email", "is required")
	}
	if in.Password == "" {
		return invalidField("password", "is required")
	}
	if in.ConfirmPassword == "" {
		return invalidField("confirm_password", "is required")
	}
	if !validation.ValidName(in.Name) {
		return invalidField("name", "must contain letters and spaces only")
	}
	if !validation.ValidEmail(in.Email) {
		return invalidField("email", "must be a valid email")
	}
	if !validation.ValidPassword(in.Password) {
		return invalidField("password", "must be at least 8 characters with uppercase, lowercase, number and special character")
	}
	if in.Password != in.ConfirmPassword {
		return invalidField("confirm_password", "must match password")
	}
	return nil
}

// Register creates an unverified account, issues its verification token, and
// dispatches the verification email without blocking the response. A session
// token is issued immediately, before verification completes.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if err := validateRegisterInput(in); err != nil {
		return nil, err
	}

	// Best-effort pre-check for a friendlier conflict error; the unique
	// constraint on email is the real enforcement point.
	if existing, err := s.Accounts.GetByEmail(ctx, in.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	a := &entity.Account{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
	}
	if err := s.Accounts.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	plainToken, err := s.Verifications.Issue(ctx, a.ID)
	if err != nil {
		return nil, err
	}
	s.dispatchVerificationEmail(a, plainToken)

	token, exp, err := s.JWT.GenerateSessionToken(a.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: project(a), SessionToken: token, TokenExpiry: exp}, nil
}

// VerifyEmail completes (or abandons) the verification started at
// registration. An expired link destroys the pending account entirely; the
// not-found and mismatch cases collapse into one generic error so callers
// cannot probe which occurred.
func (s *Service) VerifyEmail(ctx context.Context, accountID, plaintext string) error {
	outcome, err := s.Verifications.Verify(ctx, accountID, plaintext)
	if err != nil {
		return err
	}
	switch outcome {
	case VerificationValid:
		a, err := s.Accounts.GetByID(ctx, accountID)
		if errors.Is(err, repository.ErrNotFound) {
			return ErrInvalidLink
		}
		if err != nil {
			return err
		}
		a.Verified = true
		a.LoginEnabled = true
		if err := s.Accounts.Update(ctx, a); err != nil {
			return err
		}
		s.invalidateProfileCache(ctx, accountID)
		return nil
	case VerificationExpired:
		// An expired, unconsumed verification is an abandoned registration.
		if err := s.Accounts.DeleteByID(ctx, accountID); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return err
		}
		s.invalidateProfileCache(ctx, accountID)
		return ErrExpiredLink
	default:
		return ErrInvalidLink
	}
}

// Login authenticates by email and password. Unknown email and wrong
// password share one generic error; the verification-state branches are
// deliberately distinct and may reveal account existence.
func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" {
		return nil, invalidField("email", "is required")
	}
	if password == "" {
		return nil, invalidField("password", "is required")
	}

	a, err := s.Accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !a.Verified {
		return nil, ErrEmailNotVerified
	}
	if !a.LoginEnabled {
		return nil, ErrLoginNotAllowed
	}
	if !helpers.CompareHashAndPassword(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.JWT.GenerateSessionToken(a.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Account: project(a), SessionToken: token, TokenExpiry: exp}, nil
}

// CurrentAccount returns the projection for an already-authenticated account
// id, via a redis read-through cache. An account deleted after token issuance
// reports not-found.
func (s *Service) CurrentAccount(ctx context.Context, accountID string) (*AccountProjection, error) {
	if s.Redis != nil {
		var cached AccountProjection
		if ok, err := helpers.RedisGetJSON(ctx, s.Redis, profileKey(accountID), &cached); err == nil && ok {
			return &cached, nil
		}
	}

	a, err := s.Accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	p := project(a)

	if s.Redis != nil {
		if err := helpers.RedisSetJSON(ctx, s.Redis, profileKey(accountID), p, profileCacheTTL); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", accountID).Warn("profile cache write failed")
		}
	}
	return p, nil
}

func (s *Service) invalidateProfileCache(ctx context.Context, accountID string) {
	if s.Redis == nil {
		return
	}
	if err := helpers.RedisDel(ctx, s.Redis, profileKey(accountID)); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("account_id", accountID).Warn("profile cache invalidation failed")
	}
}

func (s *Service) dispatchVerificationEmail(a *entity.Account, plainToken string) {
	if s.Pub == nil || !s.MailEnabled {
		return
	}
	link := s.VerifyEmailURL + "/" + a.ID + "/" + plainToken
	data := tpl.NewVerifyEmailData(s.AppName, a.Name, a.Email, link, time.Now().Add(s.Verifications.TTL))
	job := mailer.EmailJob{To: a.Email, Template: "verify_email", Data: data}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Pub.PublishJSON(ctx, job); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", a.ID).Warn("failed to enqueue verification email")
		}
	}()
}
