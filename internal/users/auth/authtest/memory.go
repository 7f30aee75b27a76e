// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package authtest provides in-memory doubles of the auth repositories and
// the notification publisher for handler and service tests.
package authtest

import (
	"context"
	"sync"
	"time"

	"github.com/taibuivan/shopii/internal/platform/apperr"
	"github.com/taibuivan/shopii/internal/platform/notify"
	"github.com/taibuivan/shopii/internal/platform/sec"
	"github.com/taibuivan/shopii/internal/users/auth"
)

// Accounts is a goroutine-safe [auth.AccountRepository] backed by maps.
type Accounts struct {
	mu      sync.Mutex
	byID    map[string]*auth.Account
	devices map[string][]auth.TrustedDevice
}

// NewAccounts returns an empty store seeded with the given accounts.
func NewAccounts(seed ...*auth.Account) *Accounts {
	store := &Accounts{
		byID:    make(map[string]*auth.Account),
		devices: make(map[string][]auth.TrustedDevice),
	}
	for _, account := range seed {
		copied := *account
		store.byID[account.ID] = &copied
	}
	return store
}

func (s *Accounts) find(match func(*auth.Account) bool) (*auth.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, account := range s.byID {
		if match(account) {
			copied := *account
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("Account")
}

func (s *Accounts) FindByID(_ context.Context, id string) (*auth.Account, error) {
	return s.find(func(a *auth.Account) bool { return a.ID == id })
}

func (s *Accounts) FindByEmail(_ context.Context, email string) (*auth.Account, error) {
	return s.find(func(a *auth.Account) bool { return a.Email == email })
}

func (s *Accounts) FindByUsername(_ context.Context, username string) (*auth.Account, error) {
	return s.find(func(a *auth.Account) bool { return a.Username == username })
}

func (s *Accounts) Create(_ context.Context, account *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkUnique(account); err != nil {
		return err
	}
	now := time.Now().UTC()
	account.CreatedAt, account.UpdatedAt = now, now
	copied := *account
	s.byID[account.ID] = &copied
	return nil
}

func (s *Accounts) Update(_ context.Context, account *auth.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[account.ID]
	if !ok {
		return apperr.NotFound("Account")
	}
	if err := s.checkUnique(account); err != nil {
		return err
	}
	stored.Username = account.Username
	stored.Email = account.Email
	stored.Fullname = account.Fullname
	stored.AvatarURL = account.AvatarURL
	stored.Locked = account.Locked
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *Accounts) checkUnique(account *auth.Account) error {
	for id, other := range s.byID {
		if id == account.ID {
			continue
		}
		if other.Email == account.Email {
			return apperr.Conflict("Email is already registered")
		}
		if other.Username == account.Username {
			return apperr.Conflict("Username is already taken")
		}
	}
	return nil
}

func (s *Accounts) mutate(id string, fn func(*auth.Account)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.byID[id]
	if !ok {
		return apperr.NotFound("Account")
	}
	fn(stored)
	return nil
}

func (s *Accounts) UpdatePassword(_ context.Context, id string, passwordHash string) error {
	return s.mutate(id, func(a *auth.Account) { a.PasswordHash = passwordHash })
}

func (s *Accounts) UpdateRole(_ context.Context, id string, role sec.UserRole) error {
	return s.mutate(id, func(a *auth.Account) { a.Role = role })
}

func (s *Accounts) EnableTwoFA(_ context.Context, id string, secret string) error {
	return s.mutate(id, func(a *auth.Account) {
		a.TwoFASecret = secret
		a.TwoFAEnabled = true
	})
}

func (s *Accounts) ListTrustedDevices(_ context.Context, accountID string, now time.Time) ([]auth.TrustedDevice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var active []auth.TrustedDevice
	for _, device := range s.devices[accountID] {
		if device.Active(now) {
			active = append(active, device)
		}
	}
	return active, nil
}

func (s *Accounts) AddTrustedDevice(_ context.Context, accountID string, device auth.TrustedDevice, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[accountID]; !ok {
		return apperr.NotFound("Account")
	}
	kept := s.devices[accountID][:0]
	for _, existing := range s.devices[accountID] {
		if existing.Active(now) {
			kept = append(kept, existing)
		}
	}
	s.devices[accountID] = append(kept, device)
	return nil
}

// Delete removes an account and its devices.
func (s *Accounts) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return apperr.NotFound("Account")
	}
	delete(s.byID, id)
	delete(s.devices, id)
	return nil
}

// Snapshot returns a copy of every stored account.
func (s *Accounts) Snapshot() []auth.Account {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]auth.Account, 0, len(s.byID))
	for _, account := range s.byID {
		out = append(out, *account)
	}
	return out
}

// Devices returns every stored device of an account, expired ones included.
func (s *Accounts) Devices(accountID string) []auth.TrustedDevice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]auth.TrustedDevice(nil), s.devices[accountID]...)
}

// SeedDevice stores a device without pruning.
func (s *Accounts) SeedDevice(accountID string, device auth.TrustedDevice) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.devices[accountID] = append(s.devices[accountID], device)
}

// # Reset Tokens

// ResetTokens is an in-memory [auth.ResetTokenRepository] that ignores TTLs.
type ResetTokens struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewResetTokens() *ResetTokens {
	return &ResetTokens{tokens: make(map[string]string)}
}

func (r *ResetTokens) Set(_ context.Context, tokenHash string, accountID string, _ time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[tokenHash] = accountID
	return nil
}

func (r *ResetTokens) Consume(_ context.Context, tokenHash string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	accountID, ok := r.tokens[tokenHash]
	if !ok {
		return "", apperr.NotFound("Reset token")
	}
	delete(r.tokens, tokenHash)
	return accountID, nil
}

// # Notifications

// Outbox records published notifications.
type Outbox struct {
	mu       sync.Mutex
	messages []notify.Message
	Err      error
}

func (o *Outbox) Publish(_ context.Context, msg notify.Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Err != nil {
		return o.Err
	}
	o.messages = append(o.messages, msg)
	return nil
}

// Messages returns everything published so far.
func (o *Outbox) Messages() []notify.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]notify.Message(nil), o.messages...)
}

// Kinds returns the kinds of everything published so far, in order.
func (o *Outbox) Kinds() []notify.Kind {
	var kinds []notify.Kind
	for _, msg := range o.Messages() {
		kinds = append(kinds, msg.Kind)
	}
	return kinds
}
