package application

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/gatekit/gatekit/internal/domain/entity"
	"github.com/gatekit/gatekit/internal/domain/repository"
	"github.com/gatekit/gatekit/internal/infrastructure/mfa"
	"github.com/gatekit/gatekit/pkg/mailer"
)

// In-memory fakes backing the service tests.

type memUsers struct {
	mu     sync.Mutex
	seq    int
	byID   map[string]*entity.User
	broken bool // simulate an unreachable store
}

func newMemUsers() *memUsers {
	return &memUsers{byID: map[string]*entity.User{}}
}

var errStoreDown = errors.New("store unreachable")

func (m *memUsers) Create(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return errStoreDown
	}
	m.seq++
	u.ID = "u" + strconv.Itoa(m.seq)
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return nil, errStoreDown
	}
	if u, ok := m.byID[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return nil, errStoreDown
	}
	for _, u := range m.byID {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memUsers) Update(ctx context.Context, u *entity.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return errStoreDown
	}
	if _, ok := m.byID[u.ID]; !ok {
		return repository.ErrNotFound
	}
	u.UpdatedAt = time.Now()
	cp := *u
	m.byID[u.ID] = &cp
	return nil
}

func (m *memUsers) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return errStoreDown
	}
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memUsers) UpdatePassword(ctx context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return errStoreDown
	}
	u, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type memTokens struct {
	mu     sync.Mutex
	byTok  map[string]*entity.Token
	broken bool
}

func newMemTokens() *memTokens {
	return &memTokens{byTok: map[string]*entity.Token{}}
}

func (m *memTokens) Create(ctx context.Context, t *entity.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return errStoreDown
	}
	if t.DateCreation.IsZero() {
		t.DateCreation = time.Now()
	}
	cp := *t
	m.byTok[t.Token] = &cp
	return nil
}

func (m *memTokens) FindByTokenAndPurpose(ctx context.Context, token string, purpose entity.TokenPurpose) (*entity.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.broken {
		return nil, errStoreDown
	}
	if t, ok := m.byTok[token]; ok && t.Purpose == purpose {
		cp := *t
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memTokens) Delete(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byTok, token)
	return nil
}

// backdate rewrites a stored token's creation time.
func (m *memTokens) backdate(token string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.byTok[token]; ok {
		t.DateCreation = at
	}
}

type fakeChecker struct {
	enr   mfa.Enrollment
	err   error
	calls int
}

func (f *fakeChecker) CheckEnrollment(ctx context.Context, email string) (mfa.Enrollment, error) {
	f.calls++
	if f.err != nil {
		return mfa.Enrollment{}, f.err
	}
	return f.enr, nil
}

type fakePublisher struct {
	mu   sync.Mutex
	jobs []mailer.EmailJob
}

func (f *fakePublisher) PublishJSON(ctx context.Context, body any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := body.(mailer.EmailJob); ok {
		f.jobs = append(f.jobs, job)
	}
	return nil
}
