package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/oksasatya/account-service/internal/domain/entity"
	"github.com/oksasatya/account-service/internal/domain/repository"
	"github.com/oksasatya/account-service/pkg/mailer"
)

// memAccounts is an in-memory AccountRepository enforcing the unique email
// constraint the way postgres does.
type memAccounts struct {
	mu   sync.Mutex
	byID map[string]*entity.Account
	seq  int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byID: map[string]*entity.Account{}}
}

func (m *memAccounts) Create(_ context.Context, a *entity.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.Email == a.Email {
			return repository.ErrDuplicateEmail
		}
	}
	m.seq++
	a.ID = fmt.Sprintf("acct-%d", m.seq)
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAccounts) GetByID(_ context.Context, id string) (*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *memAccounts) GetByEmail(_ context.Context, email string) (*entity.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byID {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memAccounts) Update(_ context.Context, a *entity.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[a.ID]; !ok {
		return repository.ErrNotFound
	}
	a.UpdatedAt = time.Now()
	cp := *a
	m.byID[a.ID] = &cp
	return nil
}

func (m *memAccounts) DeleteByID(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

// memTokens is an in-memory VerificationTokenRepository with at most one row
// per account.
type memTokens struct {
	mu        sync.Mutex
	byAccount map[string]*entity.VerificationToken
}

func newMemTokens() *memTokens {
	return &memTokens{byAccount: map[string]*entity.VerificationToken{}}
}

func (m *memTokens) Insert(_ context.Context, t *entity.VerificationToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *t
	m.byAccount[t.AccountID] = &cp
	return nil
}

func (m *memTokens) GetByAccountID(_ context.Context, accountID string) (*entity.VerificationToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.byAccount[accountID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (m *memTokens) DeleteByAccountID(_ context.Context, accountID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byAccount[accountID]; !ok {
		return false, nil
	}
	delete(m.byAccount, accountID)
	return true, nil
}

// capturePublisher records enqueued email jobs; Register dispatches on a
// goroutine, so tests receive from the channel with a timeout.
type capturePublisher struct {
	jobs chan mailer.EmailJob
}

func newCapturePublisher() *capturePublisher {
	return &capturePublisher{jobs: make(chan mailer.EmailJob, 8)}
}

func (p *capturePublisher) PublishJSON(_ context.Context, body any) error {
	if job, ok := body.(mailer.EmailJob); ok {
		p.jobs <- job
	}
	return nil
}

func (p *capturePublisher) wait(timeout time.Duration) (mailer.EmailJob, bool) {
	select {
	case j := <-p.jobs:
		return j, true
	case <-time.After(timeout):
		return mailer.EmailJob{}, false
	}
}
