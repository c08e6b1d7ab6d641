package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hitoshi/authgate/internal/model"
	"github.com/hitoshi/authgate/internal/repository"
	"github.com/hitoshi/authgate/internal/security"
)

// --- インメモリ実装（シナリオテスト用） ---

type memoryCredentialRepo struct {
	mu      sync.Mutex
	hasher  security.PasswordHasher
	byEmail map[string]*model.Identity
	nextID  int
}

func newMemoryCredentialRepo(hasher security.PasswordHasher) *memoryCredentialRepo {
	return &memoryCredentialRepo{hasher: hasher, byEmail: make(map[string]*model.Identity)}
}

func (r *memoryCredentialRepo) FindByEmail(_ context.Context, email string) (*model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	identity, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	copied := *identity
	return &copied, nil
}

func (r *memoryCredentialRepo) Create(_ context.Context, email, password string) (*model.Identity, error) {
	hash, err := r.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[email]; exists {
		return nil, repository.ErrEmailAlreadyExists
	}
	r.nextID++
	now := time.Now()
	identity := &model.Identity{
		ID:           fmt.Sprintf("identity-%d", r.nextID),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byEmail[email] = identity
	copied := *identity
	return &copied, nil
}

func (r *memoryCredentialRepo) UpdatePassword(_ context.Context, identityID, newPassword string) error {
	hash, err := r.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, identity := range r.byEmail {
		if identity.ID == identityID {
			identity.PasswordHash = hash
			identity.UpdatedAt = time.Now()
			return nil
		}
	}
	return repository.ErrIdentityNotFound
}

type memorySessionRepo struct {
	mu      sync.Mutex
	tokens  security.TokenGenerator
	byToken map[string]string
	// resolveCalls はResolveの呼び出し回数。
	resolveCalls int
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{tokens: security.NewRandomTokenGenerator(), byToken: make(map[string]string)}
}

func (r *memorySessionRepo) Create(_ context.Context, identityID string) (string, error) {
	token, err := r.tokens.NewToken()
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byToken[token] = identityID
	return token, nil
}

func (r *memorySessionRepo) Resolve(_ context.Context, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resolveCalls++
	return r.byToken[token], nil
}

func (r *memorySessionRepo) Revoke(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byToken[token]; !ok {
		return false, nil
	}
	delete(r.byToken, token)
	return true, nil
}

// --- モック定義（エラー注入用） ---

type mockCredentialRepo struct {
	findByEmailFn    func(ctx context.Context, email string) (*model.Identity, error)
	createFn         func(ctx context.Context, email, password string) (*model.Identity, error)
	updatePasswordFn func(ctx context.Context, identityID, newPassword string) error
}

func (m *mockCredentialRepo) FindByEmail(ctx context.Context, email string) (*model.Identity, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockCredentialRepo) Create(ctx context.Context, email, password string) (*model.Identity, error) {
	if m.createFn != nil {
		return m.createFn(ctx, email, password)
	}
	return &model.Identity{ID: "identity-1", Email: email}, nil
}

func (m *mockCredentialRepo) UpdatePassword(ctx context.Context, identityID, newPassword string) error {
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, identityID, newPassword)
	}
	return nil
}

type mockSessionRepo struct {
	createFn  func(ctx context.Context, identityID string) (string, error)
	resolveFn func(ctx context.Context, token string) (string, error)
	revokeFn  func(ctx context.Context, token string) (bool, error)
}

func (m *mockSessionRepo) Create(ctx context.Context, identityID string) (string, error) {
	if m.createFn != nil {
		return m.createFn(ctx, identityID)
	}
	return "token", nil
}

func (m *mockSessionRepo) Resolve(ctx context.Context, token string) (string, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, token)
	}
	return "", nil
}

func (m *mockSessionRepo) Revoke(ctx context.Context, token string) (bool, error) {
	if m.revokeFn != nil {
		return m.revokeFn(ctx, token)
	}
	return false, nil
}

type recordedEvent struct {
	operation string
	outcome   string
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *fakeRecorder) RecordAuthEvent(operation, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{operation: operation, outcome: outcome})
}

// --- compile-time interface checks ---
var _ repository.CredentialRepository = (*memoryCredentialRepo)(nil)
var _ repository.SessionRepository = (*memorySessionRepo)(nil)
var _ repository.CredentialRepository = (*mockCredentialRepo)(nil)
var _ repository.SessionRepository = (*mockSessionRepo)(nil)
var _ EventRecorder = (*fakeRecorder)(nil)
