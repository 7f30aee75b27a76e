// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/shopii/internal/platform/apperr"
	"github.com/taibuivan/shopii/internal/platform/ctxutil"
	"github.com/taibuivan/shopii/internal/platform/notify"
	"github.com/taibuivan/shopii/internal/platform/sec"
	"github.com/taibuivan/shopii/internal/platform/validate"
	"github.com/taibuivan/shopii/internal/users/auth"
	"github.com/taibuivan/shopii/pkg/normalize"
	"github.com/taibuivan/shopii/pkg/uuid"
)

// RoleChanger is satisfied by [*auth.Service].
type RoleChanger interface {
	ChangeRole(ctx context.Context, caller *sec.AuthClaims, input auth.ChangeRoleInput) (*auth.ChangeRoleResult, error)
}

// Service implements the back-office use cases.
type Service struct {
	accounts  AccountStore
	users     UserRepository
	roles     RoleChanger
	publisher notify.Publisher
	now       func() time.Time
}

// NewService constructs a new admin [Service].
func NewService(accounts AccountStore, users UserRepository, roles RoleChanger, publisher notify.Publisher) *Service {
	return &Service{
		accounts:  accounts,
		users:     users,
		roles:     roles,
		publisher: publisher,
		now:       time.Now,
	}
}

// # Directory

// ListUsers returns one page of the user directory. Accounts with role admin never appear.
func (service *Service) ListUsers(ctx context.Context, filter Filter, limit, offset int) ([]*auth.Account, int, error) {
	if filter.Role == sec.RoleAdmin {
		filter.Role = ""
	}

	accounts, total, err := service.users.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("admin_service_list_users_failed: %w", err)
	}
	return accounts, total, nil
}

// GetUser returns a single account.
func (service *Service) GetUser(ctx context.Context, id string) (*auth.Account, error) {
	account, err := service.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("admin_service_get_user_failed: %w", err)
	}
	return account, nil
}

// # Moderation

// UpdateUserInput carries the editable fields. Empty strings mean unchanged.
type UpdateUserInput struct {
	Username string
	Email    string
	// Action is "lock", "unlock" or empty.
	Action string
}

/*
UpdateUser edits identity fields and the lock state of an account.

Description: When the lock state actually changes the account owner is
notified best-effort. A lock takes effect at the next login; sessions
already issued stay valid until they expire.

Parameters:
  - ctx: context.Context
  - id: string
  - input: UpdateUserInput

Returns:
  - *auth.Account: Updated account
  - error: ValidationError, NotFound, Conflict or storage failures
*/
func (service *Service) UpdateUser(ctx context.Context, id string, input UpdateUserInput) (*auth.Account, error) {
	username := normalize.Username(input.Username)
	email := normalize.Email(input.Email)

	validator := &validate.Validator{}
	if username != "" {
		validator.Username(auth.FieldUsername, username).MaxLen(auth.FieldUsername, username, auth.MaxUsernameLength)
	}
	if email != "" {
		validator.Email(auth.FieldEmail, email).MaxLen(auth.FieldEmail, email, auth.MaxEmailLength)
	}
	if input.Action != "" {
		validator.OneOf("action", input.Action, ActionLock, ActionUnlock)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	account, err := service.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("admin_service_update_lookup_failed: %w", err)
	}

	if username != "" {
		account.Username = username
	}
	if email != "" {
		account.Email = email
	}

	wasLocked := account.Locked
	switch input.Action {
	case ActionLock:
		account.Locked = true
	case ActionUnlock:
		account.Locked = false
	}

	if err := service.accounts.Update(ctx, account); err != nil {
		return nil, fmt.Errorf("admin_service_update_failed: %w", err)
	}

	if account.Locked != wasLocked {
		service.notifyLockChange(ctx, account)
	}

	return account, nil
}

func (service *Service) notifyLockChange(ctx context.Context, account *auth.Account) {
	msg := notify.Message{
		Kind:    notify.KindAccountUnlocked,
		To:      account.Email,
		Subject: "Your Shopii account has been unlocked",
		Body:    fmt.Sprintf("Hi %s, your account has been unlocked. You can keep using Shopii.", account.Username),
	}
	if account.Locked {
		msg.Kind = notify.KindAccountLocked
		msg.Subject = "Your Shopii account has been locked"
		msg.Body = fmt.Sprintf("Hi %s, your account has been locked by an administrator. Please contact support for details.", account.Username)
	}

	notify.Deliver(ctx, service.publisher, msg)

	ctxutil.GetLogger(ctx).InfoContext(ctx, "account_lock_changed",
		slog.String("user_id", account.ID),
		slog.Bool("locked", account.Locked),
	)
}

// DeleteUser removes an account. Administrators cannot delete themselves.
func (service *Service) DeleteUser(ctx context.Context, actor *sec.AuthClaims, id string) error {
	if actor.UserID == id {
		return apperr.Forbidden("You cannot delete your own account")
	}

	if err := service.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("admin_service_delete_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).WarnContext(ctx, "account_deleted",
		slog.String("actor_id", actor.UserID),
		slog.String("user_id", id),
	)
	return nil
}

// # Staffing

// ChangeUserRole assigns role to the target account through the role rules of [auth.Service].
func (service *Service) ChangeUserRole(ctx context.Context, actor *sec.AuthClaims, id, role string) (*auth.ChangeRoleResult, error) {
	return service.roles.ChangeRole(ctx, actor, auth.ChangeRoleInput{TargetID: id, Role: role})
}

// CreateStaffInput describes a new back-office account.
type CreateStaffInput struct {
	Username string
	Email    string
	Password string
	Fullname string
	Role     string
}

/*
CreateStaffUser creates an account with an admin-tier role.

Description: Buyer and seller are rejected; those sign up themselves. The
fullname defaults to the username.

Parameters:
  - ctx: context.Context
  - input: CreateStaffInput

Returns:
  - *auth.Account: Created account
  - error: ValidationError, Conflict or storage failures
*/
func (service *Service) CreateStaffUser(ctx context.Context, input CreateStaffInput) (*auth.Account, error) {
	username := normalize.Username(input.Username)
	email := normalize.Email(input.Email)
	role, roleOK := sec.ParseRole(input.Role)

	validator := &validate.Validator{}
	validator.
		Required(auth.FieldUsername, username).
		Username(auth.FieldUsername, username).
		MaxLen(auth.FieldUsername, username, auth.MaxUsernameLength).
		Required(auth.FieldEmail, email).
		Email(auth.FieldEmail, email).
		Required(auth.FieldPassword, input.Password).
		Password(auth.FieldPassword, input.Password).
		Custom(auth.FieldRole, !roleOK || !role.IsAdminTier(), "Role must be one of: admin, monitor, support, finance")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.ensureAbsent(ctx, service.accounts.FindByEmail, email); err != nil {
		return nil, err
	}
	if err := service.ensureAbsent(ctx, service.accounts.FindByUsername, username); err != nil {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("admin_service_hash_failed: %w", err)
	}

	fullname := normalize.Text(input.Fullname)
	if fullname == "" {
		fullname = username
	}

	account := &auth.Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Fullname:     fullname,
		Role:         role,
	}

	if err := service.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("admin_service_create_staff_failed: %w", err)
	}

	notify.Deliver(ctx, service.publisher, notify.Message{
		Kind:    notify.KindAdminCreated,
		To:      account.Email,
		Subject: "Your Shopii back-office account",
		Body:    fmt.Sprintf("Hi %s, a %s account has been created for you.", account.Username, account.Role),
	})

	ctxutil.GetLogger(ctx).InfoContext(ctx, "staff_account_created",
		slog.String("user_id", account.ID),
		slog.String("role", account.Role.String()),
	)

	return account, nil
}

func (service *Service) ensureAbsent(ctx context.Context, lookup func(context.Context, string) (*auth.Account, error), value string) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return apperr.Conflict("Username or email already exists")
	case apperr.IsNotFound(err):
		return nil
	default:
		return fmt.Errorf("admin_service_staff_lookup_failed: %w", err)
	}
}

// # Reporting

// Report summarises the account base over the last [NewAccountWindow].
func (service *Service) Report(ctx context.Context) (*Report, error) {
	report, err := service.users.Report(ctx, service.now().Add(-NewAccountWindow))
	if err != nil {
		return nil, fmt.Errorf("admin_service_report_failed: %w", err)
	}
	return report, nil
}
