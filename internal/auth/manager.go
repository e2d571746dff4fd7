// Package auth owns the admin session lifecycle: bootstrap probe, mobile/OTP
// login and logout.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/kingrea/engadmin/internal/api"
	"github.com/kingrea/engadmin/internal/session"
)

// State is the session state machine value.
type State int

const (
	StateUnauthenticated State = iota
	StateChecking
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

var (
	ErrInvalidMobile     = errors.New("auth: mobile number must be exactly 10 digits")
	ErrInvalidOTP        = errors.New("auth: otp must be exactly 6 digits")
	ErrMissingIdentifier = errors.New("auth: missing otp identifier, request a new code")
)

const (
	MobileLength = 10
	OTPLength    = 6
)

// Gateway is the part of the API client the manager needs.
type Gateway interface {
	SendOTP(ctx context.Context, mobile string) (api.OTPChallenge, error)
	VerifyOTP(ctx context.Context, identifier, otp string) (api.TokenResponse, error)
	AdminHome(ctx context.Context) (api.Message, error)
	OnUnauthorized(fn func())
}

// Journal records login activity.
type Journal interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
}

// Manager tracks whether the admin is signed in.
type Manager struct {
	gateway Gateway
	store   session.Store
	journal Journal

	mu        sync.Mutex
	state     State
	listeners []func(State)
}

// Option customizes a Manager.
type Option func(*Manager)

// WithJournal records logins and logouts.
func WithJournal(j Journal) Option {
	return func(m *Manager) {
		m.journal = j
	}
}

// New returns a manager in the unauthenticated state. It subscribes to the
// gateway so any 401 drops the session.
func New(gateway Gateway, store session.Store, opts ...Option) *Manager {
	m := &Manager{gateway: gateway, store: store, state: StateUnauthenticated}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	gateway.OnUnauthorized(func() {
		if m.setState(StateUnauthenticated) {
			m.warn("session expired, signed out")
		}
	})
	return m
}

// State returns the current state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Subscribe registers fn for state transitions. fn runs synchronously on the
// goroutine that caused the transition.
func (m *Manager) Subscribe(fn func(State)) {
	if fn == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Bootstrap decides the initial state from the stored credential. A stored
// credential is trusted only after the admin probe succeeds.
func (m *Manager) Bootstrap(ctx context.Context) State {
	if m.store.Token() == "" {
		m.setState(StateUnauthenticated)
		return StateUnauthenticated
	}
	m.setState(StateChecking)
	if _, err := m.gateway.AdminHome(ctx); err != nil {
		// A 401 has already cleared the credential and run the
		// unauthorized hook.
		if errors.Is(err, api.ErrUnauthorized) {
			m.setState(StateUnauthenticated)
			return StateUnauthenticated
		}
		_ = m.store.Clear()
		m.setState(StateUnauthenticated)
		m.warn("stored session rejected: %s", api.UserMessage(err))
		return StateUnauthenticated
	}
	m.setState(StateAuthenticated)
	m.info("session restored")
	return StateAuthenticated
}

// SendOTP validates mobile locally and requests a code.
func (m *Manager) SendOTP(ctx context.Context, mobile string) (api.OTPChallenge, error) {
	if err := ValidateMobile(mobile); err != nil {
		return api.OTPChallenge{}, err
	}
	challenge, err := m.gateway.SendOTP(ctx, mobile)
	if err != nil {
		return api.OTPChallenge{}, err
	}
	if strings.TrimSpace(challenge.Identifier) == "" {
		return api.OTPChallenge{}, fmt.Errorf("auth: send otp: %w", ErrMissingIdentifier)
	}
	m.info("otp requested for %s", maskMobile(mobile))
	return challenge, nil
}

// VerifyOTP validates otp locally, exchanges it for a credential and marks
// the session authenticated.
func (m *Manager) VerifyOTP(ctx context.Context, identifier, otp string) error {
	if strings.TrimSpace(identifier) == "" {
		return ErrMissingIdentifier
	}
	if err := ValidateOTP(otp); err != nil {
		return err
	}
	if _, err := m.gateway.VerifyOTP(ctx, identifier, otp); err != nil {
		m.setState(StateUnauthenticated)
		m.warn("otp verification failed: %s", api.UserMessage(err))
		return err
	}
	m.setState(StateAuthenticated)
	m.info("signed in")
	return nil
}

// Logout clears the credential regardless of state.
func (m *Manager) Logout() error {
	err := m.store.Clear()
	m.setState(StateUnauthenticated)
	m.info("signed out")
	if err != nil {
		return fmt.Errorf("auth: logout: %w", err)
	}
	return nil
}

// setState reports whether the state changed.
func (m *Manager) setState(next State) bool {
	m.mu.Lock()
	if m.state == next {
		m.mu.Unlock()
		return false
	}
	m.state = next
	listeners := append([]func(State){}, m.listeners...)
	m.mu.Unlock()
	for _, fn := range listeners {
		fn(next)
	}
	return true
}

func (m *Manager) info(format string, args ...any) {
	if m.journal != nil {
		m.journal.Info(format, args...)
	}
}

func (m *Manager) warn(format string, args ...any) {
	if m.journal != nil {
		m.journal.Warn(format, args...)
	}
}

func maskMobile(mobile string) string {
	if len(mobile) <= 4 {
		return mobile
	}
	return strings.Repeat("*", len(mobile)-4) + mobile[len(mobile)-4:]
}
