// Package session owns the current identity of the client process.
//
// Exactly one of two stores holds the active session document at a time: the
// durable store when the user asked to be remembered, the process-scoped
// store otherwise. Establishing a session in one store always clears the
// other, so a stale duplicate can never be restored later.
//
// The Manager is an explicit dependency handed to the services and handlers,
// not package-level state: initialized once at startup from persisted
// storage, mutated only by login/register/guest/logout.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/queueoverflow/queueoverflow/internal/auth"
	"github.com/queueoverflow/queueoverflow/internal/kvstore"
)

// Identity is who the process is currently acting as. A zero Identity means
// nobody: not logged in, not a guest.
type Identity struct {
	UserID   int64  `json:"user_id,omitempty"`
	GuestKey string `json:"guest_key,omitempty"`
}

func (i Identity) IsZero() bool  { return i.UserID == 0 && i.GuestKey == "" }
func (i Identity) IsGuest() bool { return i.GuestKey != "" }

// OwnerKey is the string under which per-identity data (prefs) is filed.
func (i Identity) OwnerKey() string {
	if i.IsGuest() {
		return "guest:" + i.GuestKey
	}
	return fmt.Sprintf("user:%d", i.UserID)
}

// record is the persisted session document.
type record struct {
	Identity
	Token     string    `json:"token,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Manager struct {
	durable kvstore.Store // survives restarts
	scoped  kvstore.Store // gone when the process ends
	tokens  *auth.TokenService

	mu      sync.Mutex
	current *record
}

func NewManager(durable, scoped kvstore.Store, tokens *auth.TokenService) *Manager {
	return &Manager{durable: durable, scoped: scoped, tokens: tokens}
}

// Restore loads a previously persisted session, durable store first. A
// session whose token no longer validates is discarded rather than restored.
func (m *Manager) Restore(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, store := range []kvstore.Store{m.durable, m.scoped} {
		data, err := store.Get(ctx, kvstore.KeySession)
		if err != nil {
			return err
		}
		if data == nil {
			continue
		}
		var rec record
		if err := json.Unmarshal(data, &rec); err != nil {
			// Corrupt session document: drop it and keep looking.
			_ = store.Delete(ctx, kvstore.KeySession)
			continue
		}
		if rec.Token != "" {
			if _, err := m.tokens.Validate(rec.Token); err != nil {
				_ = store.Delete(ctx, kvstore.KeySession)
				continue
			}
		}
		m.current = &rec
		return nil
	}
	return nil
}

// EstablishUser records an authenticated session for userID. remember picks
// the durable store; the other store's session is cleared either way.
func (m *Manager) EstablishUser(ctx context.Context, userID int64, remember bool) (string, error) {
	token, err := m.tokens.Generate(userID)
	if err != nil {
		return "", err
	}

	rec := record{
		Identity:  Identity{UserID: userID},
		Token:     token,
		CreatedAt: time.Now(),
	}

	target, other := m.scoped, m.durable
	if remember {
		target, other = m.durable, m.scoped
	}
	if err := m.write(ctx, target, other, rec); err != nil {
		return "", err
	}
	return token, nil
}

// EstablishGuest starts a guest session with a fresh synthetic identity.
// Guest sessions are tab-scoped; they never survive a restart.
func (m *Manager) EstablishGuest(ctx context.Context) (Identity, error) {
	rec := record{
		Identity:  Identity{GuestKey: xid.New().String()},
		CreatedAt: time.Now(),
	}
	if err := m.write(ctx, m.scoped, m.durable, rec); err != nil {
		return Identity{}, err
	}
	return rec.Identity, nil
}

func (m *Manager) write(ctx context.Context, target, other kvstore.Store, rec record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("session: encoding session: %w", err)
	}
	if err := target.Put(ctx, kvstore.KeySession, data); err != nil {
		return err
	}
	if err := other.Delete(ctx, kvstore.KeySession); err != nil {
		return err
	}
	m.current = &rec
	return nil
}

// Clear ends the session in both stores. Entity data is untouched.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, store := range []kvstore.Store{m.durable, m.scoped} {
		if err := store.Delete(ctx, kvstore.KeySession); err != nil {
			return err
		}
	}
	m.current = nil
	return nil
}

// Current returns the active identity, or a zero Identity when there is none.
func (m *Manager) Current() Identity {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Identity{}
	}
	return m.current.Identity
}

// Token returns the active session token, empty for guests and when logged out.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// IsAuthenticated reports whether a registered user is logged in.
// Guests are never authenticated.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil && m.current.UserID != 0 && m.current.Token != ""
}

// IsGuest reports whether the active session is a guest session.
func (m *Manager) IsGuest() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil && m.current.Identity.IsGuest()
}
