package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/helpers"
)

// VerificationOutcome classifies a verification attempt.
type VerificationOutcome int

const (
	VerificationValid VerificationOutcome = iota
	VerificationNotFound
	VerificationExpired
	VerificationMismatch
)

const verificationTokenBytes = 32

// VerificationService issues and validates the time-limited email
// verification tokens. Only bcrypt hashes of the emailed secrets are stored,
// so a store-read compromise never yields a usable verification link.
type VerificationService struct {
	Tokens repository.VerificationTokenRepository
	TTL    time.Duration
	Logger *logrus.Logger

	now func() time.Time
}

func NewVerificationService(tokens repository.VerificationTokenRepository, ttl time.Duration, logger *logrus.Logger) *VerificationService {
	return &VerificationService{Tokens: tokens, TTL: ttl, Logger: logger, now: time.Now}
}

// Issue generates a fresh opaque token for the account, persists its hash,
// and returns the plaintext for out-of-band delivery. Any prior token for the
// account is replaced.
func (s *VerificationService) Issue(ctx context.Context, accountID string) (string, error) {
	plain, err := helpers.GenerateOpaqueToken(verificationTokenBytes)
	if err != nil {
		return "", err
	}
	hash, err := helpers.HashPassword(plain)
	if err != nil {
		return "", err
	}
	now := s.now()
	t := &entity.VerificationToken{
		AccountID: accountID,
		TokenHash: hash,
		CreatedAt: now,
		ExpiresAt: now.Add(s.TTL),
	}
	if err := s.Tokens.Insert(ctx, t); err != nil {
		return "", err
	}
	return plain, nil
}

// Verify checks the presented plaintext against the account's stored token.
// A valid token is consumed atomically; losing the consumption race degrades
// to NotFound so a token can never be accepted twice. An expired token is
// deleted here, account cleanup is the orchestrator's job.
func (s *VerificationService) Verify(ctx context.Context, accountID, plaintext string) (VerificationOutcome, error) {
	t, err := s.Tokens.GetByAccountID(ctx, accountID)
	if errors.Is(err, repository.ErrNotFound) {
		return VerificationNotFound, nil
	}
	if err != nil {
		return VerificationNotFound, err
	}

	if t.Expired(s.now()) {
		if _, err := s.Tokens.DeleteByAccountID(ctx, accountID); err != nil {
			return VerificationExpired, err
		}
		return VerificationExpired, nil
	}

	if !helpers.CompareHashAndPassword(t.TokenHash, plaintext) {
		return VerificationMismatch, nil
	}

	deleted, err := s.Tokens.DeleteByAccountID(ctx, accountID)
	if err != nil {
		return VerificationNotFound, err
	}
	if !deleted {
		// Another request consumed the token between read and delete.
		return VerificationNotFound, nil
	}
	return VerificationValid, nil
}
