package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/compozy/defaultdesk/engine/auth/model"
	"github.com/compozy/defaultdesk/engine/auth/uc"
	"github.com/compozy/defaultdesk/engine/core"
	"golang.org/x/crypto/bcrypt"
)

// Settings keeps bcrypt cheap in tests.
var Settings = uc.Settings{SessionTTL: time.Hour, BcryptCost: bcrypt.MinCost}

// MemoryRepository is an in-process uc.Repository for handler and
// middleware tests.
type MemoryRepository struct {
	mu       sync.Mutex
	users    map[core.ID]*model.User
	sessions map[string]*model.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:    make(map[core.ID]*model.User),
		sessions: make(map[string]*model.Session),
	}
}

// SeedUser stores an active user with the given password and role.
func (r *MemoryRepository) SeedUser(email, password string, role model.Role) *model.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	now := time.Now().UTC()
	user := &model.User{
		ID:           core.MustNewID(),
		Email:        model.NormalizeEmail(email),
		DisplayName:  string(role),
		PasswordHash: hash,
		Role:         role,
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.mu.Lock()
	r.users[user.ID] = user
	r.mu.Unlock()
	return user
}

func (r *MemoryRepository) CreateUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return uc.ErrEmailExists
		}
	}
	r.users[user.ID] = clone(user)
	return nil
}

func (r *MemoryRepository) GetUserByID(_ context.Context, id core.ID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return clone(u), nil
	}
	return nil, uc.ErrUserNotFound
}

func (r *MemoryRepository) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return clone(u), nil
		}
	}
	return nil, uc.ErrUserNotFound
}

func (r *MemoryRepository) ListUsers(_ context.Context) ([]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, clone(u))
	}
	return out, nil
}

func (r *MemoryRepository) UpdateUser(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return uc.ErrUserNotFound
	}
	r.users[user.ID] = clone(user)
	return nil
}

func (r *MemoryRepository) CreateInitialAdminIfNone(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Role == model.RoleAdmin {
			return uc.ErrAlreadyBootstrapped
		}
	}
	r.users[user.ID] = clone(user)
	return nil
}

func (r *MemoryRepository) CreateSession(_ context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := *session
	r.sessions[string(session.Fingerprint)] = &s
	return nil
}

func (r *MemoryRepository) GetSessionByFingerprint(_ context.Context, fingerprint []byte) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[string(fingerprint)]; ok {
		out := *s
		return &out, nil
	}
	return nil, uc.ErrSessionNotFound
}

func (r *MemoryRepository) TouchSession(_ context.Context, id core.ID, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.ID == id {
			s.LastUsed.Time, s.LastUsed.Valid = at, true
		}
	}
	return nil
}

func (r *MemoryRepository) RevokeSession(_ context.Context, fingerprint []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[string(fingerprint)]
	if !ok || s.RevokedAt.Valid {
		return uc.ErrSessionNotFound
	}
	s.RevokedAt.Time, s.RevokedAt.Valid = time.Now().UTC(), true
	return nil
}

func clone(u *model.User) *model.User {
	out := *u
	return &out
}
