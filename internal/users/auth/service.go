// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package auth implements Shopii's identity and access management core.

It handles registration, credential login, the admin step-up gate (TOTP
second factor plus trusted devices), role changes and password reset.

Architecture:

  - Service: Orchestrates business logic (Register, Login, 2FA, ChangeRole).
  - Repository: Interfaces for Postgres (accounts, trusted devices) and Redis (reset tokens).
  - Security: bcrypt credential hashes, HS256 session JWTs and RFC 6238 TOTP from [sec].

Capability checks are never made here by comparing role strings; the
[sec] registry is the single source of truth for what a role may do.
*/
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/taibuivan/shopii/internal/platform/apperr"
	"github.com/taibuivan/shopii/internal/platform/constants"
	"github.com/taibuivan/shopii/internal/platform/ctxutil"
	"github.com/taibuivan/shopii/internal/platform/network"
	"github.com/taibuivan/shopii/internal/platform/notify"
	"github.com/taibuivan/shopii/internal/platform/sec"
	"github.com/taibuivan/shopii/internal/platform/validate"
	"github.com/taibuivan/shopii/pkg/normalize"
	"github.com/taibuivan/shopii/pkg/uuid"
)

// # Contracts & Types

// TokenIssuer signs and verifies the three kinds of session token.
// [*sec.TokenService] satisfies it.
type TokenIssuer interface {
	IssueSession(userID string, role sec.UserRole, twoFAVerified bool) (string, error)
	IssueChallenge(userID string, role sec.UserRole) (string, error)
	IssueSetup(userID string, role sec.UserRole) (string, error)
	VerifyToken(token string) (*sec.AuthClaims, error)
}

// Authenticator enrols and checks TOTP second factors. [*sec.TOTP] satisfies it.
type Authenticator interface {
	Enroll(accountName string) (*sec.Enrollment, error)
	Validate(code, secret string) bool
}

// Options carries deployment-dependent settings for [Service].
type Options struct {
	// TrustedDeviceTTL is how long a remembered device skips the challenge.
	TrustedDeviceTTL time.Duration

	// ResetURL is the client page that receives ?token=... in reset mails.
	ResetURL string
}

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, the
// step-up gate or trusted-device handling must be reviewed by the security team.
type Service struct {
	accountRepository    AccountRepository
	resetTokenRepository ResetTokenRepository
	tokens               TokenIssuer
	authenticator        Authenticator
	publisher            notify.Publisher
	options              Options
	now                  func() time.Time
}

// NewService constructs a new [Service] with necessary dependencies.
func NewService(
	accountRepo AccountRepository,
	resetRepo ResetTokenRepository,
	tokens TokenIssuer,
	authenticator Authenticator,
	publisher notify.Publisher,
	options Options,
) *Service {
	return &Service{
		accountRepository:    accountRepo,
		resetTokenRepository: resetRepo,
		tokens:               tokens,
		authenticator:        authenticator,
		publisher:            publisher,
		options:              options,
		now:                  time.Now,
	}
}

// VerifyToken implements the middleware token verifier by delegating to [TokenIssuer].
func (service *Service) VerifyToken(token string) (*sec.AuthClaims, error) {
	return service.tokens.VerifyToken(token)
}

// # Registration Flow

// RegisterInput holds the data required to enrol a new member.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Fullname string
	// Role is optional; empty means buyer.
	Role string
}

/*
Register validates, hashes, and persists a brand new account.

Description: Only buyer and seller may be chosen at sign-up. A welcome
notification is published best-effort after the account is stored.

Parameters:
  - ctx: context.Context
  - input: RegisterInput

Returns:
  - *Account: Created entity
  - err: ValidationError, Conflict (if identity exists) or storage errors
*/
func (service *Service) Register(ctx context.Context, input RegisterInput) (*Account, error) {
	username := normalize.Username(input.Username)
	email := normalize.Email(input.Email)

	role, roleOK := sec.RoleBuyer, true
	if input.Role != "" {
		role, roleOK = sec.ParseRole(input.Role)
	}

	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, username).
		MaxLen(FieldUsername, username, MaxUsernameLength).
		Username(FieldUsername, username).
		Required(FieldEmail, email).
		MaxLen(FieldEmail, email, MaxEmailLength).
		Email(FieldEmail, email).
		Required(FieldPassword, input.Password).
		Password(FieldPassword, input.Password).
		MaxLen(FieldFullname, input.Fullname, MaxFullnameLength).
		Custom(FieldRole, !roleOK || !role.IsSelfAssignable(), "Role must be buyer or seller")

	if err := validator.Err(); err != nil {
		return nil, err
	}

	// Verify email uniqueness. Return a client-safe Conflict err.
	if err := service.ensureAbsent(ctx, service.accountRepository.FindByEmail, email, "Email is already registered"); err != nil {
		return nil, err
	}

	// Verify username uniqueness.
	if err := service.ensureAbsent(ctx, service.accountRepository.FindByUsername, username, "Username is already taken"); err != nil {
		return nil, err
	}

	hashedPassword, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	account := &Account{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: hashedPassword,
		Fullname:     normalize.Text(input.Fullname),
		Role:         role,
	}

	// The unique constraints still decide races between concurrent sign-ups.
	if err := service.accountRepository.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("auth_service_register_failed: %w", err)
	}

	notify.Deliver(ctx, service.publisher, notify.Message{
		Kind:    notify.KindWelcome,
		To:      account.Email,
		Subject: "Welcome to Shopii",
		Body:    fmt.Sprintf("Hi %s, your Shopii account is ready.", account.Username),
	})

	ctxutil.GetLogger(ctx).InfoContext(ctx, "account_registered",
		slog.String("user_id", account.ID),
		slog.String("role", account.Role.String()),
	)

	return account, nil
}

func (service *Service) ensureAbsent(
	ctx context.Context,
	lookup func(context.Context, string) (*Account, error),
	value, conflictMessage string,
) error {
	_, err := lookup(ctx, value)
	switch {
	case err == nil:
		return apperr.Conflict(conflictMessage)
	case apperr.IsNotFound(err):
		return nil
	default:
		return fmt.Errorf("auth_service_lookup_failed: %w", err)
	}
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
	Origin   network.Origin
	// DeviceToken is the raw trusted-device cookie value, if any.
	DeviceToken string
}

// LoginResult is the outcome of a successful credential check.
type LoginResult struct {
	State   StepUpState
	Token   string
	Account *Account
}

/*
Login validates credentials and runs the step-up gate.

Description: Unknown accounts and wrong passwords yield the same
InvalidCredentials error. Locked accounts are refused only after the
password matched, so lock state is never disclosed to a guesser.

Parameters:
  - ctx: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Gate state and the token it earned
  - err: InvalidCredentials, Forbidden or internal failures
*/
func (service *Service) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	validator := &validate.Validator{}
	validator.
		Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		return nil, err
	}

	account, err := service.accountRepository.FindByEmail(ctx, normalize.Email(input.Email))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.InvalidCredentials()
		}
		return nil, fmt.Errorf("auth_service_login_lookup_failed: %w", err)
	}

	// bcrypt comparison is constant-time.
	if !sec.CheckPasswordHash(input.Password, account.PasswordHash) {
		return nil, apperr.InvalidCredentials()
	}

	if account.Locked {
		return nil, apperr.Forbidden(MsgAccountLocked)
	}

	gate := StepUpInput{
		Role:         account.Role,
		Internal:     input.Origin.Internal,
		TwoFAEnabled: account.TwoFAEnabled,
	}

	if account.Role.IsAdminTier() && !input.Origin.Internal && input.DeviceToken != "" {
		trusted, err := service.isTrustedDevice(ctx, account.ID, input.DeviceToken)
		if err != nil {
			return nil, err
		}
		gate.TrustedDevice = trusted
	}

	state := EvaluateStepUp(gate)

	var token string
	switch state {
	case StepUpNone:
		token, err = service.tokens.IssueSession(account.ID, account.Role, input.Origin.Internal)
	case StepUpVerified:
		token, err = service.tokens.IssueSession(account.ID, account.Role, true)
	case StepUpSetupRequired:
		token, err = service.tokens.IssueSetup(account.ID, account.Role)
	case StepUpChallengeIssued:
		token, err = service.tokens.IssueChallenge(account.ID, account.Role)
	}
	if err != nil {
		return nil, fmt.Errorf("auth_service_token_generation_failed: %w", err)
	}

	ctxutil.GetLogger(ctx).InfoContext(ctx, "login_succeeded",
		slog.String("user_id", account.ID),
		slog.String("role", account.Role.String()),
		slog.String("step_up", string(state)),
		slog.Bool("internal", input.Origin.Internal),
	)

	return &LoginResult{State: state, Token: token, Account: account}, nil
}

// isTrustedDevice reports whether rawToken hashes to an active device of the account.
func (service *Service) isTrustedDevice(ctx context.Context, accountID, rawToken string) (bool, error) {
	now := service.now()
	devices, err := service.accountRepository.ListTrustedDevices(ctx, accountID, now)
	if err != nil {
		return false, fmt.Errorf("auth_service_trusted_devices_failed: %w", err)
	}

	hash := sec.HashToken(rawToken)
	for _, device := range devices {
		if device.Active(now) && sec.EqualHash(device.TokenHash, hash) {
			return true, nil
		}
	}
	return false, nil
}

// # Password Recovery

/*
RequestPasswordReset generates a one-time reset token and mails its link.

Description: Unknown emails succeed silently so the endpoint cannot be used
to enumerate accounts. Only the token hash is stored in Redis.

Parameters:
  - ctx: context.Context
  - email: string

Returns:
  - error: Validation or storage failures
*/
func (service *Service) RequestPasswordReset(ctx context.Context, email string) error {
	email = normalize.Email(email)

	validator := &validate.Validator{}
	validator.Required(FieldEmail, email).Email(FieldEmail, email)
	if err := validator.Err(); err != nil {
		return err
	}

	account, err := service.accountRepository.FindByEmail(ctx, email)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("auth_service_reset_lookup_failed: %w", err)
	}

	token, err := sec.GenerateSecureToken()
	if err != nil {
		return fmt.Errorf("auth_service_reset_token_failed: %w", err)
	}

	if err := service.resetTokenRepository.Set(ctx, sec.HashToken(token), account.ID, constants.ResetTokenTTL); err != nil {
		return fmt.Errorf("auth_service_reset_store_failed: %w", err)
	}

	notify.Deliver(ctx, service.publisher, notify.Message{
		Kind:    notify.KindPasswordReset,
		To:      account.Email,
		Subject: "Reset your Shopii password",
		Body:    "Use the link below to choose a new password. It expires in one hour.",
		Data:    map[string]string{"link": service.options.ResetURL + "?token=" + token},
	})

	return nil
}

/*
ResetPassword redeems a reset token and replaces the account's credential.

Parameters:
  - ctx: context.Context
  - token: string (raw token from the mailed link)
  - newPassword: string

Returns:
  - error: ValidationError, InvalidTokenState or storage failures
*/
func (service *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	validator := &validate.Validator{}
	validator.
		Required(FieldToken, token).
		Required(FieldPassword, newPassword).
		Password(FieldPassword, newPassword)

	if err := validator.Err(); err != nil {
		return err
	}

	accountID, err := service.resetTokenRepository.Consume(ctx, sec.HashToken(token))
	if err != nil {
		if apperr.IsNotFound(err) {
			return apperr.InvalidTokenState("Reset token is invalid or expired")
		}
		return fmt.Errorf("auth_service_reset_consume_failed: %w", err)
	}

	hashedPassword, err := sec.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	if err := service.accountRepository.UpdatePassword(ctx, accountID, hashedPassword); err != nil {
		return fmt.Errorf("auth_service_reset_update_failed: %w", err)
	}

	if account, err := service.accountRepository.FindByID(ctx, accountID); err == nil {
		notify.Deliver(ctx, service.publisher, notify.Message{
			Kind:    notify.KindPasswordChanged,
			To:      account.Email,
			Subject: "Your Shopii password was changed",
		})
	}

	return nil
}
