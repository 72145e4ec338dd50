// Package memory implementa store.Repository en memoria para dev y tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropDatabas3/syncup/internal/store"
)

type Store struct {
	mu sync.RWMutex

	usersByEmail map[string]*store.User
	members      map[uuid.UUID]uuid.UUID // user → workspace
	workspaces   map[uuid.UUID]*store.Workspace
	links        map[uuid.UUID]*store.MagicLink
}

func New() *Store {
	return &Store{
		usersByEmail: make(map[string]*store.User),
		members:      make(map[uuid.UUID]uuid.UUID),
		workspaces:   make(map[uuid.UUID]*store.Workspace),
		links:        make(map[uuid.UUID]*store.MagicLink),
	}
}

func (s *Store) Users() store.UserRepository           { return (*userRepo)(s) }
func (s *Store) Workspaces() store.WorkspaceRepository { return (*workspaceRepo)(s) }
func (s *Store) MagicLinks() store.MagicLinkRepository { return (*magicRepo)(s) }

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close()                     {}

// AddWorkspace es un helper de seed para tests.
func (s *Store) AddWorkspace(w *store.Workspace, memberIDs ...uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	s.workspaces[w.ID] = w
	for _, uid := range memberIDs {
		s.members[uid] = w.ID
	}
}

// ─── Users ───

type userRepo Store

func (r *userRepo) GetByEmail(_ context.Context, email string) (*store.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.usersByEmail[normalize(email)]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) Create(_ context.Context, u *store.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	cp := *u
	cp.Email = normalize(u.Email)
	r.usersByEmail[cp.Email] = &cp
	return nil
}

func (r *userRepo) EnsureActive(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.usersByEmail {
		if u.ID == id {
			u.Active = true
			return nil
		}
	}
	return store.ErrNotFound
}

// ─── Workspaces ───

type workspaceRepo Store

func (r *workspaceRepo) ForUser(_ context.Context, userID uuid.UUID) (*store.Workspace, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wid, ok := r.members[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	w, ok := r.workspaces[wid]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

// ─── Magic links ───

type magicRepo Store

func (r *magicRepo) Create(_ context.Context, m *store.MagicLink) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	cp := *m
	cp.Email = normalize(m.Email)
	r.links[cp.ID] = &cp
	return nil
}

func (r *magicRepo) Get(_ context.Context, id uuid.UUID) (*store.MagicLink, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.links[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *magicRepo) Consume(_ context.Context, id uuid.UUID, now time.Time) (*store.MagicLink, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.links[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	if m.Used() {
		return nil, store.ErrLinkConsumed
	}
	if !m.ExpiresAt.After(now) {
		return nil, store.ErrLinkExpired
	}
	ts := now.UTC()
	m.UsedAt = &ts
	cp := *m
	return &cp, nil
}

func (r *magicRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, m := range r.links {
		if !m.ExpiresAt.After(now) {
			delete(r.links, id)
			n++
		}
	}
	return n, nil
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
