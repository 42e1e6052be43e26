package wallet

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Klingon-tech/hdlattice/internal/log"
	"github.com/Klingon-tech/hdlattice/pkg/hdwallet"
)

// ErrWalletLocked is returned when a wallet has no open session.
var ErrWalletLocked = errors.New("wallet is locked")

// minSweepInterval bounds how often Run checks for idle sessions.
const minSweepInterval = time.Second

type session struct {
	mu       sync.RWMutex // Held for reading while in use, for writing while wiping.
	h        *hdwallet.HDLattice
	closed   bool
	dialect  string
	opened   time.Time
	lastUsed time.Time
}

func (s *session) wipe() {
	s.mu.Lock()
	s.h.Zero()
	s.closed = true
	s.mu.Unlock()
}

// SessionInfo describes one unlocked wallet.
type SessionInfo struct {
	Wallet    string    `json:"wallet"`
	Dialect   string    `json:"dialect"`
	Opened    time.Time `json:"opened"`
	LastUsed  time.Time `json:"last_used"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Sessions keeps unlocked wallets in memory for the signer service.
// A session expires after ttl without use; its seed material is zeroed.
type Sessions struct {
	ks  *Keystore
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessions creates an empty session table over ks.
func NewSessions(ks *Keystore, ttl time.Duration) *Sessions {
	return &Sessions{
		ks:       ks,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*session),
	}
}

// Unlock decrypts the named wallet and keeps it open. Unlocking an already
// open wallet replaces its session.
func (s *Sessions) Unlock(name string, password []byte) (SessionInfo, error) {
	h, err := s.ks.Open(name, password)
	if err != nil {
		return SessionInfo{}, err
	}

	now := s.now()
	sess := &session{h: h, dialect: h.Scheme().Dialect.String(), opened: now, lastUsed: now}

	s.mu.Lock()
	old := s.sessions[name]
	s.sessions[name] = sess
	info := s.info(name, sess)
	s.mu.Unlock()

	if old != nil {
		old.wipe()
	}
	log.Wallet.Info().Str("wallet", name).Msg("Wallet unlocked")
	return info, nil
}

// Lock closes the named session. It reports whether one was open.
func (s *Sessions) Lock(name string) bool {
	s.mu.Lock()
	sess, ok := s.sessions[name]
	delete(s.sessions, name)
	s.mu.Unlock()

	if !ok {
		return false
	}
	sess.wipe()
	log.Wallet.Info().Str("wallet", name).Msg("Wallet locked")
	return true
}

// LockAll closes every session and returns how many were open.
func (s *Sessions) LockAll() int {
	s.mu.Lock()
	open := s.sessions
	s.sessions = make(map[string]*session)
	s.mu.Unlock()

	for _, sess := range open {
		sess.wipe()
	}
	return len(open)
}

// With runs fn against the unlocked wallet and refreshes its idle timer.
// fn must not retain h.
func (s *Sessions) With(name string, fn func(h *hdwallet.HDLattice) error) error {
	s.mu.Lock()
	sess, ok := s.sessions[name]
	if ok {
		sess.lastUsed = s.now()
	}
	s.mu.Unlock()
	if !ok {
		return ErrWalletLocked
	}

	sess.mu.RLock()
	defer sess.mu.RUnlock()
	if sess.closed {
		return ErrWalletLocked
	}
	return fn(sess.h)
}

// Expire locks every session idle for longer than the TTL.
func (s *Sessions) Expire() int {
	cutoff := s.now().Add(-s.ttl)

	s.mu.Lock()
	var expired []*session
	for name, sess := range s.sessions {
		if sess.lastUsed.Before(cutoff) {
			expired = append(expired, sess)
			delete(s.sessions, name)
			log.Wallet.Info().Str("wallet", name).Msg("Session expired")
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		sess.wipe()
	}
	return len(expired)
}

// Run expires idle sessions until ctx is done, then locks the rest.
func (s *Sessions) Run(ctx context.Context) {
	interval := s.ttl / 4
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if n := s.LockAll(); n > 0 {
				log.Wallet.Info().Int("count", n).Msg("Locked open sessions on shutdown")
			}
			return
		case <-ticker.C:
			s.Expire()
		}
	}
}

// List returns the open sessions sorted by wallet name.
func (s *Sessions) List() []SessionInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]SessionInfo, 0, len(s.sessions))
	for name, sess := range s.sessions {
		out = append(out, s.info(name, sess))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Wallet < out[j].Wallet })
	return out
}

// IsUnlocked reports whether the named wallet has an open session.
func (s *Sessions) IsUnlocked(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[name]
	return ok
}

// info must be called with s.mu held.
func (s *Sessions) info(name string, sess *session) SessionInfo {
	return SessionInfo{
		Wallet:    name,
		Dialect:   sess.dialect,
		Opened:    sess.opened,
		LastUsed:  sess.lastUsed,
		ExpiresAt: sess.lastUsed.Add(s.ttl),
	}
}
