// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/shopii/internal/platform/apperr"
	"github.com/taibuivan/shopii/internal/platform/database/schema"
	"github.com/taibuivan/shopii/internal/platform/dberr"
	"github.com/taibuivan/shopii/internal/platform/postgres"
	"github.com/taibuivan/shopii/internal/platform/sec"
)

// Unique constraints declared in the users schema migration.
const (
	ConstraintAccountUsername = "uq_account_username"
	ConstraintAccountEmail    = "uq_account_email"
)

const resourceAccount = "Account"

// AccountColumns is the canonical column list for hydrating an [Account].
// Other packages reading users.account reuse it with [ScanAccount].
const AccountColumns = `id, username, email, passwordhash, fullname, avatarurl, role, locked,
	twofaenabled, COALESCE(twofasecret, ''), createdat, updatedat`

// # Account Repository

// PostgresAccountRepository implements [AccountRepository] using pgx.
type PostgresAccountRepository struct {
	pool *pgxpool.Pool
}

// NewAccountRepository creates a new PostgreSQL implementation of [AccountRepository].
func NewAccountRepository(pool *pgxpool.Pool) *PostgresAccountRepository {
	return &PostgresAccountRepository{pool: pool}
}

// ScanAccount hydrates an account from a row selected with [AccountColumns].
func ScanAccount(row pgx.Row) (*Account, error) {
	account := &Account{}
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.Fullname,
		&account.AvatarURL,
		&account.Role,
		&account.Locked,
		&account.TwoFAEnabled,
		&account.TwoFASecret,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (repository *PostgresAccountRepository) findOne(ctx context.Context, column, value string) (*Account, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, AccountColumns, schema.UserAccount.Table, column)

	account, err := ScanAccount(repository.pool.QueryRow(ctx, query, value))
	if err != nil {
		return nil, dberr.Wrap(err, resourceAccount, "postgres_account_repo_find_by_"+column+"_failed")
	}
	return account, nil
}

// FindByID implements [AccountRepository].
func (repository *PostgresAccountRepository) FindByID(ctx context.Context, id string) (*Account, error) {
	return repository.findOne(ctx, schema.UserAccount.ID, id)
}

// FindByEmail implements [AccountRepository].
func (repository *PostgresAccountRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	return repository.findOne(ctx, schema.UserAccount.Email, email)
}

// FindByUsername implements [AccountRepository].
func (repository *PostgresAccountRepository) FindByUsername(ctx context.Context, username string) (*Account, error) {
	return repository.findOne(ctx, schema.UserAccount.Username, username)
}

/*
Create persists a new account record into the users.account table.

Description: Initialises timestamps when absent. Unique violations on
username or email are mapped to a client-safe Conflict.

Parameters:
  - ctx: context.Context
  - account: *Account

Returns:
  - error: apperr.Conflict or database errors
*/
func (repository *PostgresAccountRepository) Create(ctx context.Context, account *Account) error {
	const query = `
		INSERT INTO users.account (
			id, username, email, passwordhash, fullname, avatarurl, role, locked,
			twofaenabled, twofasecret, createdat, updatedat
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), $11, $12)`

	now := time.Now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := repository.pool.Exec(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.Fullname,
		account.AvatarURL,
		account.Role,
		account.Locked,
		account.TwoFAEnabled,
		account.TwoFASecret,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return identityConflict(err, "postgres_account_repo_create_failed")
	}
	return nil
}

// Update implements [AccountRepository].
func (repository *PostgresAccountRepository) Update(ctx context.Context, account *Account) error {
	const query = `
		UPDATE users.account
		SET username = $2, email = $3, fullname = $4, avatarurl = $5, locked = $6, updatedat = $7
		WHERE id = $1`

	account.UpdatedAt = time.Now().UTC()

	tag, err := repository.pool.Exec(ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.Fullname,
		account.AvatarURL,
		account.Locked,
		account.UpdatedAt,
	)
	if err != nil {
		return identityConflict(err, "postgres_account_repo_update_failed")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceAccount)
	}
	return nil
}

// UpdatePassword implements [AccountRepository].
func (repository *PostgresAccountRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	const query = `UPDATE users.account SET passwordhash = $2, updatedat = NOW() WHERE id = $1`
	return repository.execOne(ctx, "postgres_account_repo_update_password_failed", query, id, passwordHash)
}

// UpdateRole implements [AccountRepository].
func (repository *PostgresAccountRepository) UpdateRole(ctx context.Context, id string, role sec.UserRole) error {
	const query = `UPDATE users.account SET role = $2, updatedat = NOW() WHERE id = $1`
	return repository.execOne(ctx, "postgres_account_repo_update_role_failed", query, id, role)
}

// EnableTwoFA implements [AccountRepository].
func (repository *PostgresAccountRepository) EnableTwoFA(ctx context.Context, id string, secret string) error {
	const query = `
		UPDATE users.account
		SET twofasecret = $2, twofaenabled = TRUE, updatedat = NOW()
		WHERE id = $1`
	return repository.execOne(ctx, "postgres_account_repo_enable_twofa_failed", query, id, secret)
}

func (repository *PostgresAccountRepository) execOne(ctx context.Context, action, query string, args ...any) error {
	tag, err := repository.pool.Exec(ctx, query, args...)
	if err != nil {
		return dberr.Wrap(err, resourceAccount, action)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(resourceAccount)
	}
	return nil
}

// # Trusted Devices

// ListTrustedDevices implements [AccountRepository].
func (repository *PostgresAccountRepository) ListTrustedDevices(ctx context.Context, accountID string, now time.Time) ([]TrustedDevice, error) {
	table := schema.UserTrustedDevice
	query := fmt.Sprintf(`
		SELECT %[1]s, %[2]s, %[3]s
		FROM %[4]s
		WHERE %[5]s = $1 AND %[3]s > $2
		ORDER BY %[3]s DESC`,
		table.TokenHash, table.UserAgent, table.ExpiresAt, table.Table, table.AccountID)

	rows, err := repository.pool.Query(ctx, query, accountID, now)
	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_list_devices_failed: %w", err)
	}

	devices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (TrustedDevice, error) {
		var device TrustedDevice
		err := row.Scan(&device.TokenHash, &device.UserAgent, &device.ExpiresAt)
		return device, err
	})
	if err != nil {
		return nil, fmt.Errorf("postgres_account_repo_list_devices_scan_failed: %w", err)
	}
	return devices, nil
}

/*
AddTrustedDevice prunes expired devices and appends a new one in a single transaction.

Description: The account row is locked with SELECT ... FOR UPDATE so that
two concurrent verifications for the same account are serialised and both
inserts survive. A cancelled context rolls back both steps.

Parameters:
  - ctx: context.Context
  - accountID: string
  - device: TrustedDevice
  - now: time.Time

Returns:
  - error: apperr.NotFound or database errors
*/
func (repository *PostgresAccountRepository) AddTrustedDevice(ctx context.Context, accountID string, device TrustedDevice, now time.Time) error {
	const (
		lockQuery   = `SELECT id FROM users.account WHERE id = $1 FOR UPDATE`
		pruneQuery  = `DELETE FROM users.trusted_device WHERE accountid = $1 AND expiresat <= $2`
		insertQuery = `
			INSERT INTO users.trusted_device (accountid, tokenhash, useragent, expiresat, createdat)
			VALUES ($1, $2, $3, $4, $5)`
	)

	return postgres.WithTx(ctx, repository.pool, func(tx pgx.Tx) error {
		var lockedID string
		if err := tx.QueryRow(ctx, lockQuery, accountID).Scan(&lockedID); err != nil {
			return dberr.Wrap(err, resourceAccount, "postgres_account_repo_lock_failed")
		}

		if _, err := tx.Exec(ctx, pruneQuery, accountID, now); err != nil {
			return fmt.Errorf("postgres_account_repo_prune_devices_failed: %w", err)
		}

		if _, err := tx.Exec(ctx, insertQuery, accountID, device.TokenHash, device.UserAgent, device.ExpiresAt, now); err != nil {
			return dberr.Wrap(err, "Trusted device", "postgres_account_repo_insert_device_failed")
		}
		return nil
	})
}

// identityConflict names the clashing field on unique violations.
func identityConflict(err error, action string) error {
	switch {
	case dberr.IsUniqueViolation(err, ConstraintAccountEmail):
		conflict := apperr.Conflict("Email is already registered")
		conflict.Cause = err
		return conflict
	case dberr.IsUniqueViolation(err, ConstraintAccountUsername):
		conflict := apperr.Conflict("Username is already taken")
		conflict.Cause = err
		return conflict
	}
	return dberr.Wrap(err, resourceAccount, action)
}
