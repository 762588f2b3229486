package application

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/helpers"
)

type fixture struct {
	svc      *Service
	accounts *memAccounts
	tokens   *memTokens
	verify   *VerificationService
	pub      *capturePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	accounts := newMemAccounts()
	tokens := newMemTokens()
	verify := NewVerificationService(tokens, 24*time.Hour, nil)
	pub := newCapturePublisher()
	jwt := helpers.NewJWTManager("test-secret", time.Hour)

	svc := NewService(accounts, verify, jwt, nil, pub, nil,
		"account-service", "http://localhost:8080/api/accounts/verify", true)
	return &fixture{svc: svc, accounts: accounts, tokens: tokens, verify: verify, pub: pub}
}

func validInput() RegisterInput {
	return RegisterInput{
		Name:            "Alice Doe",
		Email:           "alice@example.com",
		Password:        "Abcd123!",
		ConfirmPassword: "Abcd123!",
	}
}

func TestRegister_CreatesUnverifiedAccountWithToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)
	require.NotNil(t, res.Account)
	assert.NotEmpty(t, res.Account.ID)
	assert.Equal(t, "Alice Doe", res.Account.Name)
	assert.Equal(t, "alice@example.com", res.Account.Email)
	assert.False(t, res.Account.Verified)
	assert.False(t, res.Account.LoginEnabled)
	assert.NotEmpty(t, res.SessionToken)

	rec, err := f.tokens.GetByAccountID(ctx, res.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, rec.ExpiresAt.Sub(rec.CreatedAt))
}

func TestRegister_DispatchesVerificationEmail(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Register(context.Background(), validInput())
	require.NoError(t, err)

	job, ok := f.pub.wait(2 * time.Second)
	require.True(t, ok, "expected an email job to be enqueued")
	assert.Equal(t, "alice@example.com", job.To)
	assert.Equal(t, "verify_email", job.Template)
	link, _ := job.Data["VerifyURL"].(string)
	assert.True(t, strings.Contains(link, res.Account.ID), "link should embed the account id")
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Name = "Alice Imposter"
	_, err = f.svc.Register(ctx, in)
	assert.ErrorIs(t, err, ErrEmailTaken)

	// No second account appeared.
	a, err := f.accounts.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice Doe", a.Name)
}

func TestRegister_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"empty name", func(in *RegisterInput) { in.Name = "" }},
		{"name with digits", func(in *RegisterInput) { in.Name = "Alice 2" }},
		{"malformed email", func(in *RegisterInput) { in.Email = "not-an-email" }},
		{"email without tld", func(in *RegisterInput) { in.Email = "alice@example" }},
		{"short password", func(in *RegisterInput) { in.Password = "Ab1!"; in.ConfirmPassword = "Ab1!" }},
		{"password without symbol", func(in *RegisterInput) { in.Password = "Abcd1234"; in.ConfirmPassword = "Abcd1234" }},
		{"password without upper", func(in *RegisterInput) { in.Password = "abcd123!"; in.ConfirmPassword = "abcd123!" }},
		{"confirm mismatch", func(in *RegisterInput) { in.ConfirmPassword = "Abcd124!" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.mutate(&in)
			_, err := f.svc.Register(ctx, in)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestVerifyEmail_TransitionsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)

	job, ok := f.pub.wait(2 * time.Second)
	require.True(t, ok)
	link, _ := job.Data["VerifyURL"].(string)
	parts := strings.Split(link, "/")
	plain := parts[len(parts)-1]

	require.NoError(t, f.svc.VerifyEmail(ctx, res.Account.ID, plain))

	a, err := f.accounts.GetByID(ctx, res.Account.ID)
	require.NoError(t, err)
	assert.True(t, a.Verified)
	assert.True(t, a.LoginEnabled)

	// Second presentation: token already consumed.
	err = f.svc.VerifyEmail(ctx, res.Account.ID, plain)
	assert.ErrorIs(t, err, ErrInvalidLink)
}

func TestVerifyEmail_WrongTokenIsGeneric(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)

	err = f.svc.VerifyEmail(ctx, res.Account.ID, "bogus")
	assert.ErrorIs(t, err, ErrInvalidLink)

	err = f.svc.VerifyEmail(ctx, "acct-missing", "bogus")
	assert.ErrorIs(t, err, ErrInvalidLink)
}

func TestVerifyEmail_ExpiredDeletesAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)

	job, ok := f.pub.wait(2 * time.Second)
	require.True(t, ok)
	link, _ := job.Data["VerifyURL"].(string)
	parts := strings.Split(link, "/")
	plain := parts[len(parts)-1]

	f.verify.now = func() time.Time { return time.Now().Add(25 * time.Hour) }

	err = f.svc.VerifyEmail(ctx, res.Account.ID, plain)
	assert.ErrorIs(t, err, ErrExpiredLink)

	// The abandoned registration is gone entirely.
	_, err = f.accounts.GetByEmail(ctx, "alice@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = f.tokens.GetByAccountID(ctx, res.Account.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func verifyRegistered(t *testing.T, f *fixture, res *AuthResult) {
	t.Helper()
	job, ok := f.pub.wait(2 * time.Second)
	require.True(t, ok)
	link, _ := job.Data["VerifyURL"].(string)
	parts := strings.Split(link, "/")
	require.NoError(t, f.svc.VerifyEmail(context.Background(), res.Account.ID, parts[len(parts)-1]))
}

func TestLogin_Succeeds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)
	verifyRegistered(t, f, res)

	out, err := f.svc.Login(ctx, "alice@example.com", "Abcd123!")
	require.NoError(t, err)
	assert.Equal(t, res.Account.ID, out.Account.ID)
	assert.NotEmpty(t, out.SessionToken)
}

func TestLogin_UnknownEmailIsGeneric(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Login(context.Background(), "nobody@example.com", "Abcd123!")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_WrongPasswordIsGeneric(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)
	verifyRegistered(t, f, res)

	_, err = f.svc.Login(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnverifiedIsDistinct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)

	// Correct password, but the account has not verified its email.
	_, err = f.svc.Login(ctx, "alice@example.com", "Abcd123!")
	assert.ErrorIs(t, err, ErrEmailNotVerified)
}

func TestLogin_DisabledIsDistinct(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)
	verifyRegistered(t, f, res)

	a, err := f.accounts.GetByID(ctx, res.Account.ID)
	require.NoError(t, err)
	a.LoginEnabled = false
	require.NoError(t, f.accounts.Update(ctx, a))

	_, err = f.svc.Login(ctx, "alice@example.com", "Abcd123!")
	assert.ErrorIs(t, err, ErrLoginNotAllowed)
}

func TestLogin_MissingFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, "", "Abcd123!")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = f.svc.Login(ctx, "alice@example.com", "")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCurrentAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Register(ctx, validInput())
	require.NoError(t, err)

	p, err := f.svc.CurrentAccount(ctx, res.Account.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", p.Email)

	// Deleted after token issuance.
	require.NoError(t, f.accounts.DeleteByID(ctx, res.Account.ID))
	_, err = f.svc.CurrentAccount(ctx, res.Account.ID)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}
