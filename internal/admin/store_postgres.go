// Copyright (c) 2026 Shopii. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/shopii/internal/platform/apperr"
	"github.com/taibuivan/shopii/internal/platform/database/schema"
	"github.com/taibuivan/shopii/internal/platform/dberr"
	"github.com/taibuivan/shopii/internal/platform/sec"
	"github.com/taibuivan/shopii/internal/users/auth"
)

// PostgresUserRepository implements [UserRepository] over users.account.
type PostgresUserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new PostgreSQL implementation of [UserRepository].
func NewUserRepository(pool *pgxpool.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

/*
List returns a filtered and paginated list of accounts, excluding role admin.

Description: Builds the WHERE clause incrementally; the total is computed in
the same round trip with COUNT(*) OVER().

Parameters:
  - ctx: context.Context
  - filter: Filter
  - limit, offset: int

Returns:
  - []*auth.Account: Page of accounts
  - int: Total matches
  - error: Database failures
*/
func (repository *PostgresUserRepository) List(ctx context.Context, filter Filter, limit, offset int) ([]*auth.Account, int, error) {
	var queryBuilder strings.Builder
	account := schema.UserAccount
	queryBuilder.WriteString(fmt.Sprintf(`SELECT %s, COUNT(*) OVER() AS total FROM %s WHERE %s <> $1`,
		auth.AccountColumns, account.Table, account.Role))

	args := []any{sec.RoleAdmin}
	argID := 2

	if filter.Role != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", account.Role, argID))
		args = append(args, filter.Role)
		argID++
	}

	if filter.Locked != nil {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s = $%d", account.Locked, argID))
		args = append(args, *filter.Locked)
		argID++
	}

	if filter.Search != "" {
		queryBuilder.WriteString(fmt.Sprintf(" AND (%s ILIKE $%d OR %s ILIKE $%d OR %s::text = $%d)",
			account.Username, argID, account.Email, argID, account.ID, argID+1))
		args = append(args, "%"+escapeLike(filter.Search)+"%", filter.Search)
		argID += 2
	}

	if !filter.CreatedAfter.IsZero() {
		queryBuilder.WriteString(fmt.Sprintf(" AND %s >= $%d", account.CreatedAt, argID))
		args = append(args, filter.CreatedAfter)
		argID++
	}

	queryBuilder.WriteString(fmt.Sprintf(" ORDER BY %s DESC LIMIT $%d OFFSET $%d", account.CreatedAt, argID, argID+1))
	args = append(args, limit, offset)

	rows, err := repository.pool.Query(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Account", "admin_list_users")
	}
	defer rows.Close()

	accounts := []*auth.Account{}
	var total int
	for rows.Next() {
		item := &auth.Account{}
		err := rows.Scan(
			&item.ID, &item.Username, &item.Email, &item.PasswordHash,
			&item.Fullname, &item.AvatarURL, &item.Role, &item.Locked,
			&item.TwoFAEnabled, &item.TwoFASecret, &item.CreatedAt, &item.UpdatedAt,
			&total,
		)
		if err != nil {
			return nil, 0, dberr.Wrap(err, "Account", "admin_scan_user")
		}
		accounts = append(accounts, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, dberr.Wrap(err, "Account", "admin_list_users_rows")
	}

	return accounts, total, nil
}

// Delete implements [UserRepository]. users.trusted_device rows cascade.
func (repository *PostgresUserRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.UserAccount.Table, schema.UserAccount.ID)

	tag, err := repository.pool.Exec(ctx, query, id)
	if err != nil {
		return dberr.Wrap(err, "Account", "admin_delete_user")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Account")
	}
	return nil
}

// Report implements [UserRepository].
func (repository *PostgresUserRepository) Report(ctx context.Context, since time.Time) (*Report, error) {
	account := schema.UserAccount
	query := fmt.Sprintf(`
		SELECT
			%[1]s,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE %[2]s) AS locked,
			COUNT(*) FILTER (WHERE %[3]s >= $1) AS recent
		FROM %[4]s
		GROUP BY %[1]s`,
		account.Role, account.Locked, account.CreatedAt, account.Table)

	rows, err := repository.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("admin_report_query_failed: %w", err)
	}

	report := &Report{ByRole: make(map[string]int, len(sec.Roles)), Since: since}
	for _, role := range sec.Roles {
		report.ByRole[role.String()] = 0
	}

	var (
		role                  string
		total, locked, recent int
	)
	_, err = pgx.ForEachRow(rows, []any{&role, &total, &locked, &recent}, func() error {
		report.ByRole[role] = total
		report.Total += total
		report.Locked += locked
		report.NewAccounts += recent
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("admin_report_scan_failed: %w", err)
	}

	return report, nil
}

// escapeLike neutralises LIKE wildcards in user-supplied search text.
func escapeLike(raw string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(raw)
}
